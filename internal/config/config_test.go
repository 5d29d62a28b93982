package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SPATIAL_CONCURRENCY", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	cfg := Load()

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.False(t, cfg.DB.Enabled())
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 8, cfg.Spatial.Concurrency)
	assert.False(t, cfg.OTel.Enabled())
	assert.Equal(t, "siterisk", cfg.OTel.ServiceName)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://localhost/spatial")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("SPATIAL_CONCURRENCY", "3")
	t.Setenv("BATCH_WORKERS", "not-a-number")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.True(t, cfg.DB.Enabled())
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, 3, cfg.Spatial.Concurrency)
	assert.Equal(t, 4, cfg.BatchWorkers, "invalid integers fall back to the default")
}
