package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Contains(t, cfg.DBURL, "@db:5432/")
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.1")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.InDelta(t, 0.1, cfg.OtelSampleRatio, 1e-9)
}
