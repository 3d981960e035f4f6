package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/piaopiao")
	for _, key := range []string{"PORT", "CORS_ORIGINS", "FETCH_TIMEOUT_SECONDS", "SCOPE_REPLIES_TO_PROJECT", "COUNT_EMPTY_TASKS_COMPLETE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "postgres://localhost/piaopiao", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Nil(t, cfg.CorsOrigins)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.ScopeRepliesToProject)
	assert.False(t, cfg.CountEmptyTasksComplete)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "file:dev.db")
	t.Setenv("PORT", "5000")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("SCOPE_REPLIES_TO_PROJECT", "true")
	t.Setenv("COUNT_EMPTY_TASKS_COMPLETE", "1")
	t.Setenv("LOG_MAX_SIZE_MB", "not-a-number")

	cfg := Load()
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.ScopeRepliesToProject)
	assert.True(t, cfg.CountEmptyTasksComplete)
	assert.Equal(t, 50, cfg.LogMaxSizeMB)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	assert.PanicsWithValue(t, "missing env var: DATABASE_URL", func() { Load() })
}
