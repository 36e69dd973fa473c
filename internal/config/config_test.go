package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("RESULT_CACHE_TTL", "")
	t.Setenv("API_AUTH_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.ResultCacheTTL)
	assert.False(t, cfg.APIAuthEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("RESULT_CACHE_TTL", "90m")
	t.Setenv("API_AUTH_ENABLED", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 8, cfg.WorkerConcurrency)
	assert.Equal(t, 90*time.Minute, cfg.ResultCacheTTL)
	assert.True(t, cfg.APIAuthEnabled)
	assert.Equal(t, "127.0.0.1:6379", cfg.GetRedisAddr())
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("WORKER_CONCURRENCY", "many")
	t.Setenv("API_AUTH_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUsername: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBDatabase: "cashai"}
	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "u:p@tcp(db:3306)/cashai?")
	assert.Contains(t, dsn, "clientFoundRows=true")
}
