// Package store persists raffle documents and the buyer ranking
// aggregate. The production implementation is backed by Firestore; an
// in-memory implementation with the same semantics backs the tests.
//
// All raffle mutations go through UpdateRaffle, which runs the caller's
// mutate function inside a transaction: the document is read, mutated in
// memory, and written back as a whole, and concurrent updates to the
// same raffle cannot clobber each other.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/TheDevBianchi/rifa-camiari/pkg/models"
)

// ErrNotFound is returned when a document ID does not resolve.
var ErrNotFound = errors.New("document not found")

// RaffleStore persists raffle documents.
type RaffleStore interface {
	// CreateRaffle writes a new raffle document.
	CreateRaffle(ctx context.Context, r *models.Raffle) error

	// GetRaffle returns the raffle with the given ID, or ErrNotFound.
	GetRaffle(ctx context.Context, id string) (*models.Raffle, error)

	// ListRaffles returns raffles, filtered by status unless status is
	// empty, newest first.
	ListRaffles(ctx context.Context, status models.RaffleStatus) ([]models.Raffle, error)

	// UpdateRaffle applies mutate to the current raffle state inside a
	// transaction and persists the result as a full-document write. If
	// mutate returns an error the transaction is aborted and the error
	// is returned unchanged; no partial state is persisted.
	UpdateRaffle(ctx context.Context, id string, mutate func(*models.Raffle) error) error
}

// RankingUpdate is the increment applied to a buyer's ranking aggregate
// when a purchase is confirmed.
type RankingUpdate struct {
	// EventID identifies the confirmed-purchase event this increment
	// comes from. The store applies each event at most once, so
	// consumer retries and redeliveries cannot inflate the aggregate.
	EventID string

	Name        string
	Email       string
	Phone       string
	TicketCount int
	PurchasedAt time.Time
}

// RankingStore persists the per-buyer ranking aggregate.
type RankingStore interface {
	// ApplyRankingUpdate increments the buyer's ticket count and moves
	// their last-purchase timestamp forward. Buyers are keyed by
	// normalized email, so aliases of one address share an entry.
	// Updates carrying an EventID already applied are dropped.
	ApplyRankingUpdate(ctx context.Context, u RankingUpdate) error

	// TopRankings returns up to limit entries ordered by ticket count
	// descending.
	TopRankings(ctx context.Context, limit int) ([]models.RankingEntry, error)
}
