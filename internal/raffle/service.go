// Package raffle implements the ticket-reservation and purchase-approval
// workflow: buyers reserve numbered or count-based tickets, admins
// approve or reject the pending queue, and the ticket pools of a raffle
// stay a consistent partition of [1, totalTickets] throughout.
//
// Every mutation runs inside a store transaction, so two admins
// approving purchases of the same raffle at once serialize instead of
// overwriting each other's writes.
package raffle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/TheDevBianchi/rifa-camiari/internal/events"
	"github.com/TheDevBianchi/rifa-camiari/internal/mailer"
	"github.com/TheDevBianchi/rifa-camiari/internal/store"
	"github.com/TheDevBianchi/rifa-camiari/pkg/models"
	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

// maxTotalTickets is the largest raffle size the zero-padded ticket
// format supports.
const maxTotalTickets = 10000

// Service owns the raffle workflow. The publisher may be nil: approvals
// then fall back to updating the ranking aggregate directly, and email
// delivery is left to the caller of Approve via the returned template
// parameters.
type Service struct {
	raffles   store.RaffleStore
	rankings  store.RankingStore
	publisher events.Publisher
	now       func() time.Time
}

// New creates a Service.
func New(raffles store.RaffleStore, rankings store.RankingStore, publisher events.Publisher) *Service {
	return &Service{
		raffles:   raffles,
		rankings:  rankings,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateRaffleRequest carries the admin form for a new raffle.
type CreateRaffleRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	TotalTickets  int     `json:"totalTickets"`
	Price         float64 `json:"price"`
	RandomTickets bool    `json:"randomTickets"`
	MinTickets    int     `json:"minTickets"`
}

// CreateRaffle validates and persists a new active raffle.
func (s *Service) CreateRaffle(ctx context.Context, req CreateRaffleRequest) (*models.Raffle, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if req.TotalTickets < 1 || req.TotalTickets > maxTotalTickets {
		return nil, fmt.Errorf("%w: totalTickets must be between 1 and %d", ErrInvalidRequest, maxTotalTickets)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidRequest)
	}
	if req.MinTickets == 0 {
		req.MinTickets = 1
	}
	if req.MinTickets < 1 || req.MinTickets > req.TotalTickets {
		return nil, fmt.Errorf("%w: minTickets must be between 1 and totalTickets", ErrInvalidRequest)
	}

	now := s.now()
	r := &models.Raffle{
		ID:               uuid.NewString(),
		Title:            req.Title,
		Description:      req.Description,
		TotalTickets:     req.TotalTickets,
		Price:            req.Price,
		RandomTickets:    req.RandomTickets,
		MinTickets:       req.MinTickets,
		Status:           models.RaffleStatusActive,
		AvailableNumbers: req.TotalTickets,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.raffles.CreateRaffle(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRaffle returns a raffle by ID.
func (s *Service) GetRaffle(ctx context.Context, id string) (*models.Raffle, error) {
	r, err := s.raffles.GetRaffle(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return r, nil
}

// ListRaffles returns raffles filtered by status; empty status lists all.
func (s *Service) ListRaffles(ctx context.Context, status models.RaffleStatus) ([]models.Raffle, error) {
	return s.raffles.ListRaffles(ctx, status)
}

// FinishRaffle marks a raffle finished; no further purchases are taken.
func (s *Service) FinishRaffle(ctx context.Context, id string) error {
	err := s.raffles.UpdateRaffle(ctx, id, func(r *models.Raffle) error {
		r.Status = models.RaffleStatusFinished
		return nil
	})
	return translateStoreErr(err)
}

// TopRankings returns the buyers with the most confirmed tickets.
func (s *Service) TopRankings(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	return s.rankings.TopRankings(ctx, limit)
}

// PurchaseRequest carries a buyer's submission. Fixed raffles send the
// requested ticket numbers in Tickets; random raffles send only
// TicketCount.
type PurchaseRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	PaymentMethod    string   `json:"paymentMethod"`
	PaymentReference string   `json:"paymentReference"`
	Tickets          []string `json:"tickets"`
	TicketCount      int      `json:"ticketCount"`
}

// SubmitPurchase reserves tickets and appends a pending purchase in one
// transaction. For fixed raffles the requested numbers are reserved by
// identity; for random raffles only a count is reserved, held as
// placeholder slots until approval draws real numbers.
func (s *Service) SubmitPurchase(ctx context.Context, raffleID string, req PurchaseRequest) (*models.PendingPurchase, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidRequest)
	}
	if req.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrInvalidRequest)
	}

	var pending models.PendingPurchase
	err := s.raffles.UpdateRaffle(ctx, raffleID, func(r *models.Raffle) error {
		if r.Status != models.RaffleStatusActive {
			return ErrRaffleNotActive
		}

		selected, err := s.reserveTickets(r, req)
		if err != nil {
			return err
		}

		pending = models.PendingPurchase{
			ID:               uuid.NewString(),
			Name:             req.Name,
			Email:            req.Email,
			Phone:            req.Phone,
			SelectedTickets:  selected,
			PaymentMethod:    req.PaymentMethod,
			PaymentReference: req.PaymentReference,
			CreatedAt:        s.now(),
		}
		r.PendingPurchases = append(r.PendingPurchases, pending)
		r.RecomputeAvailable()
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return &pending, nil
}

// reserveTickets validates the request against the current pools and
// appends the reservation to r.ReservedTickets. It returns the
// SelectedTickets value for the pending purchase.
func (s *Service) reserveTickets(r *models.Raffle, req PurchaseRequest) ([]ticket.Number, error) {
	if r.RandomTickets {
		count := req.TicketCount
		if count < 1 || count < r.MinTickets {
			return nil, fmt.Errorf("%w: minimum is %d", ErrBelowMinimum, r.MinTickets)
		}
		if count > r.AvailableNumbers {
			return nil, fmt.Errorf("%w: %d requested, %d remain", ErrInsufficientTickets, count, r.AvailableNumbers)
		}

		selected := make([]ticket.Number, count)
		for i := range selected {
			selected[i] = ticket.Placeholder
			r.ReservedTickets = append(r.ReservedTickets, ticket.Placeholder)
		}
		return selected, nil
	}

	if len(req.Tickets) == 0 {
		return nil, fmt.Errorf("%w: no tickets selected", ErrInvalidRequest)
	}

	taken := make(map[ticket.Number]bool, len(r.SoldTickets)+len(r.ReservedTickets))
	for _, n := range r.SoldTickets {
		taken[n] = true
	}
	for _, n := range r.ReservedTickets {
		taken[n] = true
	}

	selected := make([]ticket.Number, 0, len(req.Tickets))
	for _, raw := range req.Tickets {
		n, err := ticket.Normalize(raw, r.TotalTickets)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if taken[n] {
			return nil, fmt.Errorf("%w: %s", ErrTicketUnavailable, n)
		}
		taken[n] = true
		selected = append(selected, n)
	}

	r.ReservedTickets = append(r.ReservedTickets, selected...)
	return selected, nil
}

// ApprovalResult reports a confirmed purchase: the record written to
// the raffle's users list, the final ticket numbers, and the email
// template parameters for the confirmation message.
type ApprovalResult struct {
	Purchase        models.Purchase       `json:"purchase"`
	AssignedTickets []ticket.Number       `json:"assignedTickets"`
	TemplateParams  mailer.TemplateParams `json:"templateParams"`
}

// Approve transitions a pending purchase to confirmed/sold in one
// transaction: the purchase leaves the pending queue, final ticket
// numbers are resolved (drawn from the remaining pool for random
// raffles), the reservation is released, and the confirmed record is
// appended. The pool invariants are re-checked before the write; any
// violation aborts the transaction.
//
// After the commit a PurchaseConfirmed event is published for the
// notification worker. Publish failures never undo the approval.
func (s *Service) Approve(ctx context.Context, raffleID, purchaseID string) (*ApprovalResult, error) {
	var (
		confirmed models.Purchase
		assigned  []ticket.Number
		title     string
		price     float64
		random    bool
	)

	err := s.raffles.UpdateRaffle(ctx, raffleID, func(r *models.Raffle) error {
		idx := r.PendingIndex(purchaseID)
		if idx < 0 {
			return ErrPurchaseNotFound
		}
		p := r.PendingPurchases[idx]
		r.PendingPurchases = append(r.PendingPurchases[:idx], r.PendingPurchases[idx+1:]...)

		var err error
		assigned = p.SelectedTickets
		if r.RandomTickets {
			assigned, err = drawTickets(r, len(p.SelectedTickets))
			if err != nil {
				return err
			}
		}

		r.SoldTickets = append(r.SoldTickets, assigned...)
		releaseReservation(r, p)

		confirmed = models.Purchase{
			PendingPurchase: p,
			Status:          models.PurchaseStatusConfirmed,
			PurchaseDate:    s.now(),
		}
		confirmed.SelectedTickets = assigned
		r.Users = append(r.Users, confirmed)
		r.RecomputeAvailable()

		if err := validateApproval(r, confirmed, assigned); err != nil {
			return err
		}

		title, price, random = r.Title, r.Price, r.RandomTickets
		return nil
	})
	if err != nil {
		return nil, translateStoreErr(err)
	}

	ev := events.PurchaseConfirmed{
		ID:               uuid.NewString(),
		RaffleID:         raffleID,
		RaffleTitle:      title,
		RandomTickets:    random,
		TicketPrice:      price,
		BuyerName:        confirmed.Name,
		BuyerEmail:       confirmed.Email,
		BuyerPhone:       confirmed.Phone,
		Tickets:          assigned,
		PaymentMethod:    confirmed.PaymentMethod,
		PaymentReference: confirmed.PaymentReference,
		ConfirmedAt:      confirmed.PurchaseDate,
	}
	s.notifyConfirmed(ctx, ev)

	return &ApprovalResult{
		Purchase:        confirmed,
		AssignedTickets: assigned,
		TemplateParams:  mailer.Build(ev),
	}, nil
}

// Reject discards a pending purchase and releases its reservation in
// one transaction.
func (s *Service) Reject(ctx context.Context, raffleID, purchaseID string) error {
	err := s.raffles.UpdateRaffle(ctx, raffleID, func(r *models.Raffle) error {
		idx := r.PendingIndex(purchaseID)
		if idx < 0 {
			return ErrPurchaseNotFound
		}
		p := r.PendingPurchases[idx]
		r.PendingPurchases = append(r.PendingPurchases[:idx], r.PendingPurchases[idx+1:]...)

		releaseReservation(r, p)
		r.RecomputeAvailable()
		return nil
	})
	return translateStoreErr(err)
}

// drawTickets picks count distinct numbers uniformly from the tickets
// not yet sold.
func drawTickets(r *models.Raffle, count int) ([]ticket.Number, error) {
	sold := make(map[ticket.Number]bool, len(r.SoldTickets))
	for _, n := range r.SoldTickets {
		sold[n] = true
	}

	var pool []ticket.Number
	for _, n := range ticket.All(r.TotalTickets) {
		if !sold[n] {
			pool = append(pool, n)
		}
	}

	if len(pool) < count {
		return nil, fmt.Errorf("%w: %d requested, %d remain", ErrInsufficientTickets, count, len(pool))
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:count], nil
}

// releaseReservation removes the purchase's hold from the reserved
// pool. Fixed raffles release by identity; random raffles release by
// count, dropping as many placeholder slots as the purchase held.
func releaseReservation(r *models.Raffle, p models.PendingPurchase) {
	if r.RandomTickets {
		n := len(p.SelectedTickets)
		kept := make([]ticket.Number, 0, len(r.ReservedTickets))
		for _, t := range r.ReservedTickets {
			if t == ticket.Placeholder && n > 0 {
				n--
				continue
			}
			kept = append(kept, t)
		}
		r.ReservedTickets = kept
		return
	}

	release := make(map[ticket.Number]bool, len(p.SelectedTickets))
	for _, t := range p.SelectedTickets {
		release[t] = true
	}
	kept := make([]ticket.Number, 0, len(r.ReservedTickets))
	for _, t := range r.ReservedTickets {
		if !release[t] {
			kept = append(kept, t)
		}
	}
	r.ReservedTickets = kept
}

// validateApproval re-checks the pool invariants after the in-memory
// mutation and before the transaction commits: every assigned number
// must appear in the sold pool exactly once, and the appended record's
// tickets must set-equal the assignment.
func validateApproval(r *models.Raffle, confirmed models.Purchase, assigned []ticket.Number) error {
	counts := make(map[ticket.Number]int, len(r.SoldTickets))
	for _, n := range r.SoldTickets {
		counts[n]++
	}
	for _, n := range assigned {
		if counts[n] != 1 {
			return fmt.Errorf("%w: ticket %s appears %d times in sold pool", ErrTicketAssignment, n, counts[n])
		}
	}

	if len(confirmed.SelectedTickets) != len(assigned) {
		return fmt.Errorf("%w: record has %d tickets, assigned %d", ErrUserRecordMismatch, len(confirmed.SelectedTickets), len(assigned))
	}
	want := make(map[ticket.Number]bool, len(assigned))
	for _, n := range assigned {
		want[n] = true
	}
	for _, n := range confirmed.SelectedTickets {
		if !want[n] {
			return fmt.Errorf("%w: record holds unassigned ticket %s", ErrUserRecordMismatch, n)
		}
	}
	return nil
}

// notifyConfirmed hands the event to the outbox. When no publisher is
// configured, or the publish fails, the ranking aggregate is updated
// directly as a best-effort fallback; either way the approval stands.
func (s *Service) notifyConfirmed(ctx context.Context, ev events.PurchaseConfirmed) {
	if s.publisher != nil {
		err := s.publisher.Publish(ctx, ev)
		if err == nil {
			return
		}
		log.Printf("raffle: publish purchase-confirmed %s failed, applying ranking directly: %v", ev.ID, err)
	}

	update := store.RankingUpdate{
		EventID:     ev.ID,
		Name:        ev.BuyerName,
		Email:       ev.BuyerEmail,
		Phone:       ev.BuyerPhone,
		TicketCount: len(ev.Tickets),
		PurchasedAt: ev.ConfirmedAt,
	}
	if err := s.rankings.ApplyRankingUpdate(ctx, update); err != nil {
		log.Printf("raffle: ranking update for %s failed: %v", ev.BuyerEmail, err)
	}
}

func translateStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrRaffleNotFound
	}
	return err
}
