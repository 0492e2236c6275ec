package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/TheDevBianchi/rifa-camiari/config"
	"github.com/TheDevBianchi/rifa-camiari/internal/events"
	"github.com/TheDevBianchi/rifa-camiari/internal/raffle"
	"github.com/TheDevBianchi/rifa-camiari/internal/store"
	"github.com/TheDevBianchi/rifa-camiari/internal/token"
	"github.com/TheDevBianchi/rifa-camiari/internal/web/handlers"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rifa-server %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.JWT.SigningKey == "" {
		log.Println("WARNING: JWT_SIGNING_KEY is empty — using insecure default (set JWT_SIGNING_KEY in production)")
		cfg.JWT.SigningKey = "insecure-dev-secret-change-me"
	}

	ctx := context.Background()

	// Initialize Firebase and Firestore.
	fsClient, authClient, err := initFirebase(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer fsClient.Close()

	raffleStore := store.NewFirestore(fsClient)

	// Kafka publisher is optional: without brokers the service updates
	// rankings directly and skips the notification pipeline.
	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Printf("Error closing Kafka publisher: %v", err)
			}
		}()
		publisher = kp
	} else {
		log.Println("KAFKA_BROKERS not set — purchase events disabled, rankings updated inline")
	}

	svc := raffle.New(raffleStore, raffleStore, publisher)
	tokens := token.New(cfg.JWT.SigningKey, cfg.JWT.Issuer, authClient)

	// Initialize router.
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	h := handlers.New(svc, tokens, cfg)
	r.Mount("/", h.Routes())

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Rifa server starting on %s (env: %s)", addr, cfg.Server.Env)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

// initFirebase builds the Firestore and Auth clients, honoring the
// emulator settings for local development.
func initFirebase(ctx context.Context, cfg *config.Config) (*firestore.Client, *auth.Client, error) {
	if cfg.Firebase.UseEmulator {
		os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firebase.EmulatorFirestoreHost)
		os.Setenv("FIREBASE_AUTH_EMULATOR_HOST", cfg.Firebase.EmulatorAuthHost)
		log.Printf("Using Firebase emulators (firestore=%s auth=%s)",
			cfg.Firebase.EmulatorFirestoreHost, cfg.Firebase.EmulatorAuthHost)
	}

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("firebase auth: %w", err)
	}

	fsClient, err := firestore.NewClientWithDatabase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.FirestoreDatabase, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("firestore client: %w", err)
	}

	return fsClient, authClient, nil
}
