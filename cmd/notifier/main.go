// notifier is a long-running Kafka consumer that reads confirmed
// purchases from the "purchase-confirmed" topic, sends the buyer a
// confirmation email through EmailJS, and updates the buyer rankings
// in Firestore.
//
// Configuration is done entirely via environment variables so the
// binary runs identically in Docker, on bare metal, or in any CI
// environment:
//
//	KAFKA_BROKERS        comma-separated broker list, e.g. "kafka:9092"
//	FIREBASE_PROJECT_ID  Firestore project holding the rankings
//	EMAILJS_SERVICE_ID   EmailJS service to send through
//	EMAILJS_TEMPLATE_ID  EmailJS template for confirmation mail
//	EMAILJS_PUBLIC_KEY   EmailJS public key (user_id)
//	EMAILJS_PRIVATE_KEY  EmailJS private key (strict mode accounts)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/firestore"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/TheDevBianchi/rifa-camiari/config"
	"github.com/TheDevBianchi/rifa-camiari/internal/events"
	"github.com/TheDevBianchi/rifa-camiari/internal/mailer"
	"github.com/TheDevBianchi/rifa-camiari/internal/notifier"
	"github.com/TheDevBianchi/rifa-camiari/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("notifier: no .env file found, using environment variables")
	}

	cfg := config.Load()
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("notifier: required environment variable \"KAFKA_BROKERS\" is not set")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rankings, cleanup := rankingStore(ctx, cfg)
	defer cleanup()

	var sender mailer.Sender
	if cfg.Email.ServiceID != "" && cfg.Email.TemplateID != "" && cfg.Email.PublicKey != "" {
		sender = mailer.NewEmailJSSender(cfg.Email.ServiceID, cfg.Email.TemplateID, cfg.Email.PublicKey, cfg.Email.PrivateKey)
	} else {
		log.Println("notifier: EmailJS not configured, confirmation emails disabled")
	}

	handler := notifier.New(sender, rankings)
	consumer := events.NewConsumer(cfg.Kafka.Brokers, handler)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Printf("notifier: error closing consumer: %v", err)
		}
	}()

	log.Printf("notifier: starting (brokers=%v)", cfg.Kafka.Brokers)
	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("notifier: fatal error: %v", err)
	}
	log.Println("notifier: shutdown complete")
}

// rankingStore connects to Firestore for ranking updates. Rankings are
// skipped when no project is configured.
func rankingStore(ctx context.Context, cfg *config.Config) (store.RankingStore, func()) {
	if cfg.Firebase.ProjectID == "" {
		log.Println("notifier: FIREBASE_PROJECT_ID not set, ranking updates disabled")
		return nil, func() {}
	}

	if cfg.Firebase.UseEmulator {
		os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firebase.EmulatorFirestoreHost)
	}

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}

	client, err := firestore.NewClientWithDatabase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.FirestoreDatabase, opts...)
	if err != nil {
		log.Fatalf("notifier: firestore client: %v", err)
	}
	return store.NewFirestore(client), func() {
		if err := client.Close(); err != nil {
			log.Printf("notifier: error closing firestore client: %v", err)
		}
	}
}
