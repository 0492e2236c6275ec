package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// maxRetries is the number of handling attempts before an event is
// routed to the DLQ. Each attempt adds a short backoff.
const maxRetries = 3

// Handler processes a confirmed-purchase event. A non-nil error makes
// the consumer retry and, after maxRetries, route the event to the DLQ.
type Handler interface {
	Handle(ctx context.Context, ev PurchaseConfirmed) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, ev PurchaseConfirmed) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, ev PurchaseConfirmed) error {
	return f(ctx, ev)
}

// Consumer reads PurchaseConfirmed events from the purchase-confirmed
// topic and dispatches them to a Handler. Offsets are committed only
// after handling, giving at-least-once semantics: a crash mid-handle
// redelivers the event, so handlers must tolerate duplicates (the
// ranking store applies each event ID at most once; the buyer at worst
// receives the confirmation email twice).
//
// On repeated failure an event is forwarded to the DLQ so the consumer
// keeps making progress without losing the record.
type Consumer struct {
	reader  *kafka.Reader
	dlq     *kafka.Writer
	handler Handler
}

// NewConsumer creates a Consumer connected to the given Kafka brokers.
func NewConsumer(brokers []string, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          Topic,
		GroupID:        "rifa-notifier",
		MinBytes:       1,
		MaxBytes:       1 << 20, // 1 MiB
		CommitInterval: 0,       // explicit commits only
		StartOffset:    kafka.LastOffset,
	})

	dlq := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        DLQTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Consumer{reader: reader, dlq: dlq, handler: handler}
}

// Run blocks, consuming events until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	log.Printf("notifier: consuming from topic %q", Topic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				// Clean shutdown.
				return nil
			}
			return fmt.Errorf("fetch: %w", err)
		}

		if err := c.dispatch(ctx, m); err != nil {
			log.Printf("notifier: routed event key=%s to DLQ: %v", string(m.Key), err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Printf("notifier: commit failed (event may be redelivered): %v", err)
		}
	}
}

// Close releases all Kafka resources.
func (c *Consumer) Close() error {
	rerr := c.reader.Close()
	werr := c.dlq.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// dispatch attempts to handle the event up to maxRetries times with
// backoff. If all attempts fail it writes the raw message to the DLQ.
func (c *Consumer) dispatch(ctx context.Context, m kafka.Message) error {
	var ev PurchaseConfirmed
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		return c.sendToDLQ(ctx, m, fmt.Errorf("unmarshal: %w", err))
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		lastErr = c.handler.Handle(ctx, ev)
		if lastErr == nil {
			log.Printf("notifier: handled event id=%s buyer=%s (attempt %d)", ev.ID, ev.BuyerEmail, attempt)
			return nil
		}

		log.Printf("notifier: attempt %d/%d failed for event id=%s: %v", attempt, maxRetries, ev.ID, lastErr)

		if attempt < maxRetries {
			backoff := time.Duration(attempt) * 2 * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return c.sendToDLQ(ctx, m, lastErr)
}

// sendToDLQ writes the original raw message to the dead-letter topic so
// it can be inspected and replayed without blocking the main consumer.
func (c *Consumer) sendToDLQ(ctx context.Context, original kafka.Message, reason error) error {
	err := c.dlq.WriteMessages(ctx, kafka.Message{
		Key:   original.Key,
		Value: original.Value,
	})
	if err != nil {
		log.Printf("notifier: CRITICAL - could not write to DLQ: %v", err)
	}
	return reason
}
