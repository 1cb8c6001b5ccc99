// Package config provides centralized configuration loaded from environment
// variables. The environment is read here and only here — core packages
// receive explicit values so they stay testable without env mutation.
// Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultFuzzyThreshold is the minimum title similarity score at which two
// records with different deterministic keys are linked as the same game.
const DefaultFuzzyThreshold = 0.5

// Config struct — populated from environment variables.
type Config struct {
	// Catalog persistence
	DataDir string // root for the snapshots/ directory

	// Ingestion
	FuzzyThreshold float64
	FetchTimeout   time.Duration

	// Optional Postgres mirror (snapshots remain the durability contract)
	DatabaseURL string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	threshold := envFloat("FUZZY_THRESHOLD", DefaultFuzzyThreshold)
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("FUZZY_THRESHOLD must be in (0, 1], got %v", threshold)
	}

	return &Config{
		DataDir: envOr("DATA_DIR", "./data"),

		FuzzyThreshold: threshold,
		FetchTimeout:   time.Duration(envInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,

		DatabaseURL: envOr("DATABASE_URL", ""),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
