// Package notifier reacts to confirmed purchases: it sends the buyer a
// confirmation email and folds the purchase into the buyer rankings.
package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/TheDevBianchi/rifa-camiari/internal/events"
	"github.com/TheDevBianchi/rifa-camiari/internal/mailer"
	"github.com/TheDevBianchi/rifa-camiari/internal/store"
)

// Notifier handles PurchaseConfirmed events.
type Notifier struct {
	sender   mailer.Sender
	rankings store.RankingStore
}

// New creates a Notifier. Either dependency may be nil to disable that
// half of the work, which is handy for partial deployments.
func New(sender mailer.Sender, rankings store.RankingStore) *Notifier {
	return &Notifier{sender: sender, rankings: rankings}
}

// Handle updates the ranking first, then sends the email. A failed
// email send returns an error so the consumer retries the whole event;
// the ranking store drops updates whose event ID was already applied,
// so retries and redeliveries never credit a purchase twice.
func (n *Notifier) Handle(ctx context.Context, ev events.PurchaseConfirmed) error {
	if n.rankings != nil {
		update := store.RankingUpdate{
			EventID:     ev.ID,
			Name:        ev.BuyerName,
			Email:       ev.BuyerEmail,
			Phone:       ev.BuyerPhone,
			TicketCount: len(ev.Tickets),
			PurchasedAt: ev.ConfirmedAt,
		}
		if err := n.rankings.ApplyRankingUpdate(ctx, update); err != nil {
			return fmt.Errorf("apply ranking update: %w", err)
		}
	}

	if n.sender != nil {
		if err := n.sender.Send(ctx, mailer.Build(ev)); err != nil {
			return fmt.Errorf("send confirmation email: %w", err)
		}
		log.Printf("Confirmation email sent for purchase %s to %s", ev.ID, ev.BuyerEmail)
	}
	return nil
}
