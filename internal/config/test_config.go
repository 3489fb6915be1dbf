package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration for integration tests from TEST_* variables
// Missing values fall back to fixed test credentials so that tests can run against
// the in-memory record store without any environment
func LoadTestConfig() (*Config, error) {
	// Try loading from project root (ignore error if file doesn't exist)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.RecordStore.URL = os.Getenv("TEST_RECORD_STORE_URL")
	cfg.RecordStore.ServiceRoleKey = getenvDefault("TEST_SERVICE_ROLE_KEY", "test-service-role-key")
	cfg.RecordStore.Timeout = 5 * time.Second

	cfg.LiveKit.APIKey = getenvDefault("TEST_LIVEKIT_API_KEY", "test-livekit-key")
	cfg.LiveKit.APISecret = getenvDefault("TEST_LIVEKIT_API_SECRET", "test-livekit-secret")
	cfg.LiveKit.ServerURL = getenvDefault("TEST_LIVEKIT_SERVER_URL", "http://livekit:7880")
	cfg.LiveKit.TokenTTL = 24 * time.Hour

	cfg.Session.TTL = time.Hour
	cfg.APIKey = getenvDefault("TEST_API_KEY", "test-api-key")
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Logging.Level = "debug"

	if ttl := os.Getenv("TEST_SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid TEST_SESSION_TTL: %w", err)
		}
		cfg.Session.TTL = d
	}

	return cfg, nil
}

func getenvDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
