package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/TheDevBianchi/rifa-camiari/pkg/identity"
	"github.com/TheDevBianchi/rifa-camiari/pkg/models"
)

const (
	rafflesCollection       = "raffles"
	rankingsCollection      = "rankings"
	rankingEventsCollection = "ranking-events"
)

// Firestore implements RaffleStore and RankingStore on Cloud Firestore.
// Raffles are whole documents in the "raffles" collection; the ranking
// aggregate lives in "rankings", one document per buyer keyed by the
// hash of their normalized email.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an existing Firestore client.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (s *Firestore) raffleRef(id string) *firestore.DocumentRef {
	return s.client.Collection(rafflesCollection).Doc(id)
}

// CreateRaffle writes a new raffle document, failing if one already
// exists under the same ID.
func (s *Firestore) CreateRaffle(ctx context.Context, r *models.Raffle) error {
	if _, err := s.raffleRef(r.ID).Create(ctx, r); err != nil {
		return fmt.Errorf("create raffle %s: %w", r.ID, err)
	}
	return nil
}

// GetRaffle fetches a raffle document by ID.
func (s *Firestore) GetRaffle(ctx context.Context, id string) (*models.Raffle, error) {
	doc, err := s.raffleRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get raffle %s: %w", id, err)
	}

	var r models.Raffle
	if err := doc.DataTo(&r); err != nil {
		return nil, fmt.Errorf("decode raffle %s: %w", id, err)
	}
	return &r, nil
}

// ListRaffles returns raffles newest first, filtered by status unless
// status is empty.
func (s *Firestore) ListRaffles(ctx context.Context, st models.RaffleStatus) ([]models.Raffle, error) {
	q := s.client.Collection(rafflesCollection).Query
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	q = q.OrderBy("createdAt", firestore.Desc)

	var raffles []models.Raffle
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list raffles: %w", err)
		}
		var r models.Raffle
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("decode raffle %s: %w", doc.Ref.ID, err)
		}
		raffles = append(raffles, r)
	}
	return raffles, nil
}

// UpdateRaffle runs mutate against the current document state inside a
// Firestore transaction. The transaction reads the raffle, applies the
// mutation in memory, and writes the full document back; Firestore
// retries the whole function on contention, so two concurrent updates
// serialize instead of overwriting each other.
func (s *Firestore) UpdateRaffle(ctx context.Context, id string, mutate func(*models.Raffle) error) error {
	ref := s.raffleRef(id)
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return fmt.Errorf("get raffle %s: %w", id, err)
		}

		var r models.Raffle
		if err := doc.DataTo(&r); err != nil {
			return fmt.Errorf("decode raffle %s: %w", id, err)
		}

		if err := mutate(&r); err != nil {
			return err
		}

		r.UpdatedAt = time.Now()
		return tx.Set(ref, &r)
	})
}

// ApplyRankingUpdate increments the buyer's aggregate inside a
// transaction. The document is keyed by the buyer's normalized email
// hash so the same person accumulates one entry across raffles. Each
// event ID is recorded alongside the increment in the same transaction,
// so a redelivered event is recognized and dropped instead of credited
// again.
func (s *Firestore) ApplyRankingUpdate(ctx context.Context, u RankingUpdate) error {
	ref := s.client.Collection(rankingsCollection).Doc(identity.EmailHash(u.Email))
	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// Reads first: Firestore transactions reject reads after writes.
		var evRef *firestore.DocumentRef
		if u.EventID != "" {
			evRef = s.client.Collection(rankingEventsCollection).Doc(u.EventID)
			switch _, err := tx.Get(evRef); {
			case err == nil:
				// Already applied.
				return nil
			case status.Code(err) == codes.NotFound:
			default:
				return fmt.Errorf("get ranking event marker: %w", err)
			}
		}

		entry := models.RankingEntry{
			Name:  u.Name,
			Email: identity.NormalizeEmail(u.Email),
			Phone: u.Phone,
		}

		doc, err := tx.Get(ref)
		switch {
		case err == nil:
			if derr := doc.DataTo(&entry); derr != nil {
				return fmt.Errorf("decode ranking entry: %w", derr)
			}
		case status.Code(err) == codes.NotFound:
			// First purchase for this buyer.
		default:
			return fmt.Errorf("get ranking entry: %w", err)
		}

		entry.TicketCount += u.TicketCount
		if u.PurchasedAt.After(entry.LastPurchase) {
			entry.LastPurchase = u.PurchasedAt
		}

		if evRef != nil {
			if err := tx.Set(evRef, map[string]interface{}{"appliedAt": time.Now()}); err != nil {
				return fmt.Errorf("set ranking event marker: %w", err)
			}
		}
		return tx.Set(ref, &entry)
	})
}

// TopRankings returns the highest ticket counts first.
func (s *Firestore) TopRankings(ctx context.Context, limit int) ([]models.RankingEntry, error) {
	q := s.client.Collection(rankingsCollection).
		OrderBy("ticketCount", firestore.Desc).
		Limit(limit)

	var entries []models.RankingEntry
	it := q.Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list rankings: %w", err)
		}
		var e models.RankingEntry
		if err := doc.DataTo(&e); err != nil {
			return nil, fmt.Errorf("decode ranking entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
