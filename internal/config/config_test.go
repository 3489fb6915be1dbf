package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("RECORD_STORE_URL", "https://store.example.com/")
	t.Setenv("SERVICE_ROLE_KEY", "service-key")
	t.Setenv("LIVEKIT_API_KEY", "lk-key")
	t.Setenv("LIVEKIT_API_SECRET", "lk-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com", cfg.RecordStore.URL)
	assert.Equal(t, 15*time.Second, cfg.RecordStore.Timeout)
	assert.Equal(t, "http://livekit:7880", cfg.LiveKit.ServerURL)
	assert.Equal(t, 24*time.Hour, cfg.LiveKit.TokenTTL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "@every 1h", cfg.Reconcile.Schedule)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("RECONCILE_SCHEDULE", "0 3 * * *")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, "0 3 * * *", cfg.Reconcile.Schedule)
	assert.Equal(t, "redis:6380", cfg.RedisAddr())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		unset       string
		key         string
		value       string
		expectedErr string
	}{
		{name: "missing store url", unset: "RECORD_STORE_URL", expectedErr: "RECORD_STORE_URL is required"},
		{name: "missing service key", unset: "SERVICE_ROLE_KEY", expectedErr: "SERVICE_ROLE_KEY is required"},
		{name: "missing livekit secret", unset: "LIVEKIT_API_SECRET", expectedErr: "LIVEKIT_API_SECRET is required"},
		{name: "invalid token ttl", key: "MEDIA_TOKEN_TTL", value: "forever", expectedErr: "invalid MEDIA_TOKEN_TTL"},
		{name: "invalid port", key: "SERVER_PORT", value: "http", expectedErr: "invalid SERVER_PORT"},
		{name: "invalid cookie flag", key: "SESSION_COOKIE_SECURE", value: "maybe", expectedErr: "invalid SESSION_COOKIE_SECURE"},
		{name: "invalid redis db", key: "REDIS_DB", value: "first", expectedErr: "invalid REDIS_DB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			if tt.unset != "" {
				t.Setenv(tt.unset, "")
			}
			if tt.key != "" {
				t.Setenv(tt.key, tt.value)
			}

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErr)
		})
	}
}
