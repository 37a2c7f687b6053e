package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DB_USER", "gym")
	t.Setenv("DB_PORT", "")
	t.Setenv("SESSION_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 12*time.Hour, cfg.HTTP.SessionTTL)
	assert.Contains(t, cfg.Database.DSN(), "user=gym")
}

func TestLoadCollectsAllErrors(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("COOKIE_SECRET", "")
	t.Setenv("CSRF_KEY", "")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{"DB_USER", "DB_PASSWORD", "COOKIE_SECRET", "CSRF_KEY"} {
		assert.Contains(t, msg, want)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "90m")

	assert.False(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.Equal(t, 90*time.Minute, getEnvAsDuration("X_DUR", time.Hour))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
