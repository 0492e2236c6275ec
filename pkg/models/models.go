// Package models defines the persisted documents of the raffle system.
// A Raffle is a single Firestore document carrying its ticket pools,
// pending purchase queue, and confirmed purchase history; invariants on
// the pools are enforced by the raffle service on every mutation.
package models

import (
	"time"

	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

// RaffleStatus is the lifecycle state of a raffle.
type RaffleStatus string

const (
	RaffleStatusActive   RaffleStatus = "active"
	RaffleStatusFinished RaffleStatus = "finished"
)

// PurchaseStatus is the state of a purchase record. Pending purchases
// carry no status field; once approved they are written to the raffle's
// Users list with StatusConfirmed.
type PurchaseStatus string

const PurchaseStatusConfirmed PurchaseStatus = "confirmed"

// Raffle is the unit of persistence: one document holding the ticket
// pools and purchase queues for a single raffle.
//
// Pool invariants, maintained by every mutation:
//   - SoldTickets and ReservedTickets are disjoint
//   - |SoldTickets| + |ReservedTickets| <= TotalTickets
//   - no ticket number appears twice across the pools
//   - AvailableNumbers = TotalTickets - |SoldTickets| - |ReservedTickets|
//
// For raffles with RandomTickets set, ReservedTickets holds
// ticket.Placeholder entries: the reservation is a count, not a set of
// identities, and real numbers are drawn at approval time.
type Raffle struct {
	ID            string       `firestore:"id" json:"id"`
	Title         string       `firestore:"title" json:"title"`
	Description   string       `firestore:"description" json:"description"`
	TotalTickets  int          `firestore:"totalTickets" json:"totalTickets"`
	Price         float64      `firestore:"price" json:"price"`
	RandomTickets bool         `firestore:"randomTickets" json:"randomTickets"`
	MinTickets    int          `firestore:"minTickets" json:"minTickets"`
	Status        RaffleStatus `firestore:"status" json:"status"`

	SoldTickets      []ticket.Number   `firestore:"soldTickets" json:"soldTickets"`
	ReservedTickets  []ticket.Number   `firestore:"reservedTickets" json:"reservedTickets"`
	PendingPurchases []PendingPurchase `firestore:"pendingPurchases" json:"pendingPurchases"`
	Users            []Purchase        `firestore:"users" json:"users"`
	AvailableNumbers int               `firestore:"availableNumbers" json:"availableNumbers"`

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// RecomputeAvailable refreshes the derived AvailableNumbers counter.
func (r *Raffle) RecomputeAvailable() {
	r.AvailableNumbers = r.TotalTickets - len(r.SoldTickets) - len(r.ReservedTickets)
}

// PendingIndex returns the position of the pending purchase with the
// given ID, or -1 when no entry matches.
func (r *Raffle) PendingIndex(purchaseID string) int {
	for i, p := range r.PendingPurchases {
		if p.ID == purchaseID {
			return i
		}
	}
	return -1
}

// Available returns the ticket numbers not yet sold or identity-reserved,
// in ascending order. For random raffles reserved slots are placeholders
// and do not exclude specific numbers; callers that need the allocation
// pool for a random draw should exclude SoldTickets only.
func (r *Raffle) Available() []ticket.Number {
	taken := make(map[ticket.Number]bool, len(r.SoldTickets)+len(r.ReservedTickets))
	for _, n := range r.SoldTickets {
		taken[n] = true
	}
	for _, n := range r.ReservedTickets {
		if n != ticket.Placeholder {
			taken[n] = true
		}
	}

	var available []ticket.Number
	for _, n := range ticket.All(r.TotalTickets) {
		if !taken[n] {
			available = append(available, n)
		}
	}
	return available
}

// PendingPurchase is a buyer's unconfirmed reservation awaiting admin
// action. For random raffles SelectedTickets holds placeholder entries
// whose count is the requested ticket count.
type PendingPurchase struct {
	ID               string          `firestore:"id" json:"id"`
	Name             string          `firestore:"name" json:"name"`
	Email            string          `firestore:"email" json:"email"`
	Phone            string          `firestore:"phone" json:"phone"`
	SelectedTickets  []ticket.Number `firestore:"selectedTickets" json:"selectedTickets"`
	PaymentMethod    string          `firestore:"paymentMethod" json:"paymentMethod"`
	PaymentReference string          `firestore:"paymentReference" json:"paymentReference"`
	CreatedAt        time.Time       `firestore:"createdAt" json:"createdAt"`
}

// Purchase is a confirmed purchase record. Once written it is only read
// back for ranking and ticket-ownership lookups.
type Purchase struct {
	PendingPurchase

	Status       PurchaseStatus `firestore:"status" json:"status"`
	PurchaseDate time.Time      `firestore:"purchaseDate" json:"purchaseDate"`
}

// RankingEntry is the denormalized per-buyer aggregate: total tickets
// bought across raffles and the date of the last confirmed purchase.
type RankingEntry struct {
	Name         string    `firestore:"name" json:"name"`
	Email        string    `firestore:"email" json:"email"`
	Phone        string    `firestore:"phone" json:"phone"`
	TicketCount  int       `firestore:"ticketCount" json:"ticketCount"`
	LastPurchase time.Time `firestore:"lastPurchase" json:"lastPurchase"`
}
