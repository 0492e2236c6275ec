package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TheDevBianchi/rifa-camiari/pkg/identity"
	"github.com/TheDevBianchi/rifa-camiari/pkg/models"
	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

// Memory is an in-process RaffleStore and RankingStore used by tests.
// UpdateRaffle mutates a deep copy and only installs it when the mutate
// function succeeds, matching the abort semantics of the Firestore
// transaction.
type Memory struct {
	mu            sync.Mutex
	raffles       map[string]*models.Raffle
	rankings      map[string]*models.RankingEntry
	appliedEvents map[string]bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		raffles:       make(map[string]*models.Raffle),
		rankings:      make(map[string]*models.RankingEntry),
		appliedEvents: make(map[string]bool),
	}
}

// CreateRaffle stores a copy of the raffle.
func (m *Memory) CreateRaffle(_ context.Context, r *models.Raffle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raffles[r.ID] = cloneRaffle(r)
	return nil
}

// GetRaffle returns a copy of the raffle with the given ID.
func (m *Memory) GetRaffle(_ context.Context, id string) (*models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.raffles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRaffle(r), nil
}

// ListRaffles returns raffles newest first, filtered by status unless
// status is empty.
func (m *Memory) ListRaffles(_ context.Context, st models.RaffleStatus) ([]models.Raffle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var raffles []models.Raffle
	for _, r := range m.raffles {
		if st != "" && r.Status != st {
			continue
		}
		raffles = append(raffles, *cloneRaffle(r))
	}
	sort.Slice(raffles, func(i, j int) bool {
		return raffles[i].CreatedAt.After(raffles[j].CreatedAt)
	})
	return raffles, nil
}

// UpdateRaffle applies mutate to a copy of the stored raffle and swaps
// it in only when mutate succeeds.
func (m *Memory) UpdateRaffle(_ context.Context, id string, mutate func(*models.Raffle) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.raffles[id]
	if !ok {
		return ErrNotFound
	}

	next := cloneRaffle(current)
	if err := mutate(next); err != nil {
		return err
	}

	next.UpdatedAt = time.Now()
	m.raffles[id] = next
	return nil
}

// ApplyRankingUpdate increments the buyer's aggregate, at most once per
// event ID.
func (m *Memory) ApplyRankingUpdate(_ context.Context, u RankingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.EventID != "" {
		if m.appliedEvents[u.EventID] {
			return nil
		}
		m.appliedEvents[u.EventID] = true
	}

	key := identity.EmailHash(u.Email)
	entry, ok := m.rankings[key]
	if !ok {
		entry = &models.RankingEntry{
			Name:  u.Name,
			Email: identity.NormalizeEmail(u.Email),
			Phone: u.Phone,
		}
		m.rankings[key] = entry
	}

	entry.TicketCount += u.TicketCount
	if u.PurchasedAt.After(entry.LastPurchase) {
		entry.LastPurchase = u.PurchasedAt
	}
	return nil
}

// TopRankings returns the highest ticket counts first.
func (m *Memory) TopRankings(_ context.Context, limit int) ([]models.RankingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]models.RankingEntry, 0, len(m.rankings))
	for _, e := range m.rankings {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TicketCount > entries[j].TicketCount
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func cloneRaffle(r *models.Raffle) *models.Raffle {
	c := *r
	c.SoldTickets = append([]ticket.Number(nil), r.SoldTickets...)
	c.ReservedTickets = append([]ticket.Number(nil), r.ReservedTickets...)

	c.PendingPurchases = make([]models.PendingPurchase, len(r.PendingPurchases))
	for i, p := range r.PendingPurchases {
		p.SelectedTickets = append([]ticket.Number(nil), p.SelectedTickets...)
		c.PendingPurchases[i] = p
	}

	c.Users = make([]models.Purchase, len(r.Users))
	for i, u := range r.Users {
		u.SelectedTickets = append([]ticket.Number(nil), u.SelectedTickets...)
		c.Users[i] = u
	}
	return &c
}
