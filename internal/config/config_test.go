package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "WEBHOOK_URL", "N8N_WEBHOOK_URL", "REFRESH_WEBHOOK_URL",
		"N8N_REFRESH_WEBHOOK_URL", "POLL_INTERVAL", "REFRESH_DELAY", "FETCH_TIMEOUT",
		"TZ", "SPENDING_FALLBACK", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX",
		"CACHE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "", cfg.WebhookURL)
	assert.False(t, cfg.WebhookConfigured())
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.RefreshDelay)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, DefaultSpendingFallback, cfg.SpendingFallback)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "barber-dashboard:", cfg.RedisPrefix)
}

func TestLoad_CustomEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/data")
	t.Setenv("REFRESH_WEBHOOK_URL", "https://hooks.example.com/refresh")
	t.Setenv("POLL_INTERVAL", "1m")
	t.Setenv("TZ", "America/Chicago")
	t.Setenv("SPENDING_FALLBACK", "0")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.WebhookConfigured())
	assert.Equal(t, "https://hooks.example.com/refresh", cfg.RefreshWebhookURL)
	assert.Equal(t, time.Minute, cfg.PollInterval)
	assert.Equal(t, "America/Chicago", cfg.Location.String())
	assert.Equal(t, 0.0, cfg.SpendingFallback)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoad_LegacyWebhookNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("N8N_WEBHOOK_URL", "https://n8n.example.com/webhook/data")
	t.Setenv("N8N_REFRESH_WEBHOOK_URL", "https://n8n.example.com/webhook/refresh")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://n8n.example.com/webhook/data", cfg.WebhookURL)
	assert.Equal(t, "https://n8n.example.com/webhook/refresh", cfg.RefreshWebhookURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad interval", key: "POLL_INTERVAL", value: "soon"},
		{name: "interval too short", key: "POLL_INTERVAL", value: "10ms"},
		{name: "bad fallback", key: "SPENDING_FALLBACK", value: "lots"},
		{name: "negative fallback", key: "SPENDING_FALLBACK", value: "-1"},
		{name: "bad url", key: "WEBHOOK_URL", value: "not a url"},
		{name: "bad tz", key: "TZ", value: "Mars/Olympus"},
		{name: "bad redis db", key: "REDIS_DB", value: "x"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
