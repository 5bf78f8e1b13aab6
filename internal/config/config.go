// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultSpendingFallback is used as total spending when the webhook
// delivers no expense records.
const DefaultSpendingFallback = 940.0

// Config holds all configurable values for the service.
type Config struct {
	// Env selects logger flavour ("production" or anything else).
	Env string

	// WebhookURL is the primary data endpoint. Empty means not configured.
	WebhookURL string `validate:"omitempty,url"`

	// RefreshWebhookURL asks the upstream workflow to regenerate data.
	RefreshWebhookURL string `validate:"omitempty,url"`

	PollInterval time.Duration `validate:"min=1s"`
	RefreshDelay time.Duration `validate:"min=0s"`
	FetchTimeout time.Duration `validate:"min=0s"`

	// Location is used for date parsing and bucket boundaries.
	Location *time.Location `validate:"required"`

	SpendingFallback float64 `validate:"gte=0"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	RedisPrefix   string
	CacheTTL      time.Duration `validate:"min=0s"`
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	loc := time.Local
	if tz := os.Getenv("TZ"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %w", err)
		}
		loc = l
	}

	pollInterval, err := getEnvDuration("POLL_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	refreshDelay, err := getEnvDuration("REFRESH_DELAY", 3*time.Second)
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := getEnvDuration("FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvDuration("CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	fallback, err := strconv.ParseFloat(getEnv("SPENDING_FALLBACK", "940"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SPENDING_FALLBACK: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		WebhookURL:        getEnv("WEBHOOK_URL", os.Getenv("N8N_WEBHOOK_URL")),
		RefreshWebhookURL: getEnv("REFRESH_WEBHOOK_URL", os.Getenv("N8N_REFRESH_WEBHOOK_URL")),
		PollInterval:      pollInterval,
		RefreshDelay:      refreshDelay,
		FetchTimeout:      fetchTimeout,
		Location:          loc,
		SpendingFallback:  fallback,
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           redisDB,
		RedisPrefix:       getEnv("REDIS_PREFIX", "barber-dashboard:"),
		CacheTTL:          cacheTTL,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// WebhookConfigured reports whether the primary data endpoint is set.
func (c *Config) WebhookConfigured() bool {
	return c.WebhookURL != ""
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
