// Package events carries confirmed-purchase events from the approval
// path to the notification worker over a Kafka outbox topic. The
// approval transaction itself never waits on email delivery or the
// ranking aggregate; it publishes an event and moves on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/TheDevBianchi/rifa-camiari/pkg/ticket"
)

const (
	// Topic is where the approval path publishes confirmed purchases.
	Topic = "purchase-confirmed"

	// DLQTopic is where events that exhaust all retries are written so
	// they can be inspected and replayed manually without blocking the
	// main consumer.
	DLQTopic = "purchase-confirmed-dlq"
)

// PurchaseConfirmed is the canonical schema for events on the
// purchase-confirmed topic. It carries everything the downstream
// handlers need (email payload, ranking increment) so consumers never
// have to read the raffle document back.
type PurchaseConfirmed struct {
	// ID is a generated UUID used for correlation and duplicate
	// detection when replaying a partition.
	ID string `json:"id"`

	RaffleID      string  `json:"raffle_id"`
	RaffleTitle   string  `json:"raffle_title"`
	RandomTickets bool    `json:"random_tickets"`
	TicketPrice   float64 `json:"ticket_price"`

	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	BuyerPhone string `json:"buyer_phone"`

	Tickets          []ticket.Number `json:"tickets"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`

	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Publisher publishes confirmed-purchase events.
type Publisher interface {
	Publish(ctx context.Context, ev PurchaseConfirmed) error
}

// KafkaPublisher writes PurchaseConfirmed events to the outbox topic.
// Events for the same raffle share a key so they stay ordered within a
// partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher connected to the given brokers.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish writes the event as JSON.
func (p *KafkaPublisher) Publish(ctx context.Context, ev PurchaseConfirmed) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.RaffleID),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("write event %s: %w", ev.ID, err)
	}
	return nil
}

// Close releases the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
