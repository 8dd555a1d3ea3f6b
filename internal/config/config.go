// internal/config/config.go

// Package config loads service configuration from the environment, with a
// .env file honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the server needs, selected once at startup.
type Config struct {
	Port        string
	StoreDriver string // "postgres" or "memory"
	DatabaseURL string

	AllowedOrigins []string
	EmailDomain    string

	SessionTTL         time.Duration
	LoanPeriod         time.Duration
	MaxRenewals        int
	AuthAttemptsPerMin int

	LogLevel        string
	TracingEnabled  bool
	TracingEndpoint string

	// DemoSeed loads fixture members and books into the memory store.
	DemoSeed bool
}

// Load reads the environment. Missing keys fall back to demo-friendly
// defaults: memory store, seeded fixtures, no tracing.
func Load() Config {
	loadDotenv()

	return Config{
		Port:            envOr("PORT", "8080"),
		StoreDriver:     envOr("STORE_DRIVER", "memory"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AllowedOrigins:  splitList(envOr("CORS_ORIGINS", "http://localhost:3000")),
		EmailDomain:     os.Getenv("EMAIL_DOMAIN"),
		SessionTTL:         envDuration("SESSION_TTL", 24*time.Hour),
		LoanPeriod:         envDuration("LOAN_PERIOD", 14*24*time.Hour),
		MaxRenewals:        envInt("MAX_RENEWALS", 3),
		AuthAttemptsPerMin: envInt("AUTH_ATTEMPTS_PER_MINUTE", 30),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		TracingEnabled:  envBool("TRACING_ENABLED", false),
		TracingEndpoint: envOr("TRACING_ENDPOINT", "localhost:4318"),
		DemoSeed:        envBool("DEMO_SEED", true),
	}
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxRenewals < 1 {
		return fmt.Errorf("MAX_RENEWALS must be at least 1")
	}
	return nil
}

func loadDotenv() {
	for _, p := range []string{".env", "../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimRight(strings.TrimSpace(part), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
