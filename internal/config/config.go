package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the platform services. Each binary
// loads the full config and picks the sections it needs.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Broker   BrokerConfig
	Notify   NotifyConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
}

// CacheConfig selects and tunes the cache provider.
type CacheConfig struct {
	Provider        string // "memory" or "redis"
	TTL             time.Duration
	MaxKeys         int
	CleanupInterval time.Duration
	RedisURL        string
	RedisDB         int
	RedisPassword   string
	PoolSize        int
}

// AuthConfig holds the OAuth gateway and JWT settings.
type AuthConfig struct {
	JWTSecret          string
	JWTExpiry          time.Duration
	OAuthClientID      string
	OAuthClientSecret  string
	OAuthAuthorizeURL  string
	OAuthTokenURL      string
	OAuthUserinfoURL   string
	OAuthRedirectURL   string
	OAuthScopes        []string
}

// BrokerConfig holds NATS settings for the NFC ingestion pipeline.
type BrokerConfig struct {
	URL            string
	Subject        string
	QueueGroup     string
	ConnectRetries int
	ConnectBackoff time.Duration
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// NotifyConfig holds the notification relay settings.
type NotifyConfig struct {
	Port         string
	ExpoPushURL  string
	ExpoTimeout  time.Duration
	ExpoRetries  int
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
}

// Load reads configuration from the environment, after loading .env when
// present. Missing optional values fall back to development defaults.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := getEnv("GO_ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "9000"),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:     env,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
			SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
			MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
		},
		Cache: CacheConfig{
			Provider:        getEnv("CACHE_PROVIDER", "memory"),
			TTL:             getDurationEnv("CACHE_TTL", 15*time.Minute),
			MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
			CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
			RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
			RedisDB:         getIntEnv("REDIS_DB", 0),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			PoolSize:        getIntEnv("REDIS_POOL_SIZE", 10),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			JWTExpiry:         getDurationEnv("JWT_EXPIRY", 24*time.Hour),
			OAuthClientID:     getEnv("OAUTH_CLIENT_ID", ""),
			OAuthClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
			OAuthAuthorizeURL: getEnv("OAUTH_AUTHORIZE_URL", ""),
			OAuthTokenURL:     getEnv("OAUTH_TOKEN_URL", ""),
			OAuthUserinfoURL:  getEnv("OAUTH_USERINFO_URL", ""),
			OAuthRedirectURL:  getEnv("OAUTH_REDIRECT_URL", "http://localhost:5000/callback"),
			OAuthScopes:       []string{"openid", "email", "profile"},
		},
		Broker: BrokerConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			Subject:        getEnv("NATS_TAG_SUBJECT", "nfc.tags"),
			QueueGroup:     getEnv("NATS_QUEUE_GROUP", "nfc-consumers"),
			ConnectRetries: getIntEnv("NATS_CONNECT_RETRIES", 30),
			ConnectBackoff: getDurationEnv("NATS_CONNECT_BACKOFF", 2*time.Second),
			MaxReconnects:  getIntEnv("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getDurationEnv("NATS_RECONNECT_WAIT", 2*time.Second),
		},
		Notify: NotifyConfig{
			Port:         getEnv("NOTIFIER_PORT", "9100"),
			ExpoPushURL:  getEnv("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
			ExpoTimeout:  getDurationEnv("EXPO_TIMEOUT", 10*time.Second),
			ExpoRetries:  getIntEnv("EXPO_RETRIES", 3),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromAddress:  getEnv("SMTP_FROM", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings every binary depends on. Service-specific
// settings (SMTP credentials, OAuth endpoints) are validated by the service
// that uses them at startup.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Cache.Provider != "memory" && c.Cache.Provider != "redis" {
		return fmt.Errorf("CACHE_PROVIDER must be %q or %q, got %q", "memory", "redis", c.Cache.Provider)
	}
	if c.Server.Environment == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// ValidateOAuth checks the gateway-only settings.
func (a *AuthConfig) ValidateOAuth() error {
	switch {
	case a.OAuthClientID == "":
		return fmt.Errorf("OAUTH_CLIENT_ID is required")
	case a.OAuthClientSecret == "":
		return fmt.Errorf("OAUTH_CLIENT_SECRET is required")
	case a.OAuthAuthorizeURL == "":
		return fmt.Errorf("OAUTH_AUTHORIZE_URL is required")
	case a.OAuthTokenURL == "":
		return fmt.Errorf("OAUTH_TOKEN_URL is required")
	case a.OAuthUserinfoURL == "":
		return fmt.Errorf("OAUTH_USERINFO_URL is required")
	}
	return nil
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
