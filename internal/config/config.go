// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	RecordStore RecordStoreConfig
	LiveKit     LiveKitConfig
	Redis       RedisConfig
	Server      ServerConfig
	Logging     LoggingConfig
	CORS        CORSConfig
	Session     SessionConfig
	Reconcile   ReconcileConfig
	APIKey      string
}

// RecordStoreConfig holds settings of the REST record store and its auth endpoints
type RecordStoreConfig struct {
	URL            string
	ServiceRoleKey string
	Timeout        time.Duration
}

// LiveKitConfig holds media server credentials used to sign room tokens
type LiveKitConfig struct {
	APIKey    string
	APISecret string
	ServerURL string
	TokenTTL  time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds operator session settings
type SessionConfig struct {
	TTL          time.Duration
	CookieSecure bool
}

// ReconcileConfig holds settings of the relation reconciliation job
type ReconcileConfig struct {
	Schedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Record store configuration
	storeURL := os.Getenv("RECORD_STORE_URL")
	if storeURL == "" {
		return nil, fmt.Errorf("RECORD_STORE_URL is required")
	}
	cfg.RecordStore.URL = strings.TrimRight(storeURL, "/")

	serviceRoleKey := os.Getenv("SERVICE_ROLE_KEY")
	if serviceRoleKey == "" {
		return nil, fmt.Errorf("SERVICE_ROLE_KEY is required")
	}
	cfg.RecordStore.ServiceRoleKey = serviceRoleKey

	storeTimeout, err := parseDuration("RECORD_STORE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.RecordStore.Timeout = storeTimeout

	// LiveKit configuration
	liveKitKey := os.Getenv("LIVEKIT_API_KEY")
	if liveKitKey == "" {
		return nil, fmt.Errorf("LIVEKIT_API_KEY is required")
	}
	cfg.LiveKit.APIKey = liveKitKey

	liveKitSecret := os.Getenv("LIVEKIT_API_SECRET")
	if liveKitSecret == "" {
		return nil, fmt.Errorf("LIVEKIT_API_SECRET is required")
	}
	cfg.LiveKit.APISecret = liveKitSecret

	liveKitURL := os.Getenv("LIVEKIT_SERVER_URL")
	if liveKitURL == "" {
		liveKitURL = "http://livekit:7880" // default
	}
	cfg.LiveKit.ServerURL = liveKitURL

	tokenTTL, err := parseDuration("MEDIA_TOKEN_TTL", "24h")
	if err != nil {
		return nil, err
	}
	cfg.LiveKit.TokenTTL = tokenTTL

	// Server configuration
	serverPortStr := os.Getenv("SERVER_PORT")
	if serverPortStr == "" {
		serverPortStr = "8080" // default port
	}
	serverPort, err := strconv.Atoi(serverPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Session configuration
	sessionTTL, err := parseDuration("SESSION_TTL", "12h")
	if err != nil {
		return nil, err
	}
	cfg.Session.TTL = sessionTTL

	if secureStr := os.Getenv("SESSION_COOKIE_SECURE"); secureStr != "" {
		secure, err := strconv.ParseBool(secureStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE: %w", err)
		}
		cfg.Session.CookieSecure = secure
	}

	// Reconciliation schedule (cron expression or @every descriptor)
	schedule := os.Getenv("RECONCILE_SCHEDULE")
	if schedule == "" {
		schedule = "@every 1h"
	}
	cfg.Reconcile.Schedule = schedule

	// API Key configuration (optional, for service-to-service authentication)
	cfg.APIKey = os.Getenv("API_KEY")

	// Redis configuration
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost" // default
	}
	cfg.Redis.Host = redisHost

	redisPortStr := os.Getenv("REDIS_PORT")
	if redisPortStr == "" {
		redisPortStr = "6379" // default
	}
	redisPort, err := strconv.Atoi(redisPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDBStr := os.Getenv("REDIS_DB")
	if redisDBStr == "" {
		redisDBStr = "0" // default
	}
	redisDB, err := strconv.Atoi(redisDBStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.Redis.DB = redisDB

	return cfg, nil
}

// RedisAddr returns the Redis address in host:port form
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// parseDuration reads a duration variable, falling back to def when unset
func parseDuration(name, def string) (time.Duration, error) {
	value := os.Getenv(name)
	if value == "" {
		value = def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

// parseOrigins splits a comma-separated origin list.
// An empty list allows all origins.
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
