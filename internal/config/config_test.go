package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"APP_ENV":             "",
		"PORT":                "",
		"DATABASE_URL":        "",
		"REDIS_URL":           "",
		"WEBHOOK_URL":         "",
		"WEBHOOK_TIMEOUT":     "",
		"ID_MAX_ATTEMPTS":     "",
		"SCAN_PAGE_SIZE":      "",
		"ANALYTICS_CACHE_TTL": "",
		"IDEMPOTENCY_TTL":     "",
	})
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, 50, cfg.IDMaxAttempts)
	require.Equal(t, 200, cfg.ScanPageSize)
	require.Equal(t, 5*time.Second, cfg.WebhookTimeout)
	require.Equal(t, 30*time.Second, cfg.AnalyticsCacheTTL)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"APP_ENV":              "production",
		"PORT":                 "9090",
		"DATABASE_URL":         "postgres://app@localhost:5432/plantpass",
		"REDIS_URL":            "redis://localhost:6379/0",
		"CORS_ALLOWED_ORIGINS": "https://pos.example.org, https://admin.example.org",
		"WEBHOOK_URL":          "https://hooks.example.org/sales",
		"WEBHOOK_TIMEOUT":      "2s",
		"ID_MAX_ATTEMPTS":      "10",
		"SCAN_PAGE_SIZE":       "25",
		"ANALYTICS_CACHE_TTL":  "1m",
	})
	require.NoError(t, err)

	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "postgres://app@localhost:5432/plantpass", cfg.DatabaseURL)
	require.Equal(t, []string{"https://pos.example.org", "https://admin.example.org"}, cfg.CORSAllowedOrigins)
	require.Equal(t, "https://hooks.example.org/sales", cfg.WebhookURL)
	require.Equal(t, 2*time.Second, cfg.WebhookTimeout)
	require.Equal(t, 10, cfg.IDMaxAttempts)
	require.Equal(t, 25, cfg.ScanPageSize)
	require.Equal(t, time.Minute, cfg.AnalyticsCacheTTL)
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"ID_MAX_ATTEMPTS":     "not-a-number",
		"SCAN_PAGE_SIZE":      "-3",
		"ANALYTICS_CACHE_TTL": "soon",
	})
	require.NoError(t, err)

	require.Equal(t, 50, cfg.IDMaxAttempts)
	require.Equal(t, 200, cfg.ScanPageSize)
	require.Equal(t, 30*time.Second, cfg.AnalyticsCacheTTL)
}
