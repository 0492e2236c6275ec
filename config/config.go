package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Firebase FirebaseConfig
	Kafka    KafkaConfig
	Email    EmailConfig
	Auth     AuthConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type FirebaseConfig struct {
	ProjectID         string
	CredentialsPath   string
	FirestoreDatabase string
	// Emulator support for integration testing
	UseEmulator           bool
	EmulatorAuthHost      string
	EmulatorFirestoreHost string
}

type KafkaConfig struct {
	Brokers []string
}

// EmailConfig carries the EmailJS credentials for confirmation mail.
type EmailConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
}

type AuthConfig struct {
	// AdminEmails lists the Firebase accounts allowed to obtain an
	// admin API token.
	AdminEmails []string
}

type JWTConfig struct {
	SigningKey string // Secret key for JWT signing
	Issuer     string // JWT issuer claim
}

// IsAdminEmail reports whether the email belongs to a configured admin.
func (c AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(admin)) == email {
			return true
		}
	}
	return false
}

// Load returns application configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Firebase: FirebaseConfig{
			ProjectID:             getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsPath:       getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			FirestoreDatabase:     getEnv("FIRESTORE_DATABASE", "(default)"),
			UseEmulator:           getEnvBool("USE_FIREBASE_EMULATOR", false),
			EmulatorAuthHost:      getEnv("FIREBASE_AUTH_EMULATOR_HOST", "localhost:9099"),
			EmulatorFirestoreHost: getEnv("FIRESTORE_EMULATOR_HOST", "localhost:8080"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
		},
		Email: EmailConfig{
			ServiceID:  getEnv("EMAILJS_SERVICE_ID", ""),
			TemplateID: getEnv("EMAILJS_TEMPLATE_ID", ""),
			PublicKey:  getEnv("EMAILJS_PUBLIC_KEY", ""),
			PrivateKey: getEnv("EMAILJS_PRIVATE_KEY", ""),
		},
		Auth: AuthConfig{
			AdminEmails: getEnvList("ADMIN_EMAILS", nil),
		},
		JWT: JWTConfig{
			SigningKey: getEnv("JWT_SIGNING_KEY", ""),
			Issuer:     getEnv("JWT_ISSUER", "rifa-camiari"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
