package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the corkboard service.
// Environment variables are automatically parsed from the CORKBOARD_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: "auto" picks sqlite unless POSTGRES_DSN is set.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/corkboard.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Auth: when a signing secret is present, bearer tokens are verified
	// with it; otherwise the hardcoded development credentials apply.
	AuthSecret string `envconfig:"AUTH_SECRET" default:""`

	// Guestbook rate limiting (fixed window per visitor per canvas).
	GuestbookRateLimit  int           `envconfig:"GUESTBOOK_RATE_LIMIT" default:"5"`
	GuestbookRateWindow time.Duration `envconfig:"GUESTBOOK_RATE_WINDOW" default:"1h"`
	// GuestbookAutoApprove publishes visitor entries without moderation.
	GuestbookAutoApprove bool `envconfig:"GUESTBOOK_AUTO_APPROVE" default:"false"`

	// Redis backs the rate limiter when set; empty keeps counters local.
	RedisAddr string `envconfig:"REDIS_ADDR" default:""`

	// Audio embeds are restricted to these host suffixes (comma separated).
	AudioAllowedHosts []string `envconfig:"AUDIO_ALLOWED_HOSTS" default:"soundcloud.com,bandcamp.com,archive.org,youtube.com"`

	// Undo depth advertised to editor clients.
	HistoryDepth int `envconfig:"HISTORY_DEPTH" default:"40"`
}

// ResolveDefaults validates the driver selection and derives DBDriver when
// set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}

	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH required for sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN required for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	if c.GuestbookRateLimit < 1 {
		return fmt.Errorf("GUESTBOOK_RATE_LIMIT must be >= 1, got %d", c.GuestbookRateLimit)
	}
	if c.HistoryDepth < 1 {
		return fmt.Errorf("HISTORY_DEPTH must be >= 1, got %d", c.HistoryDepth)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with CORKBOARD_, e.g. CORKBOARD_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CORKBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("auth_secret_present", cfg.AuthSecret != "").
		Bool("redis_present", cfg.RedisAddr != "").
		Int("guestbook_rate_limit", cfg.GuestbookRateLimit).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config for tests: sqlite in a temp-style path,
// permissive limits, no external services.
func NewForTesting() *Config {
	return &Config{
		Environment:         EnvTesting,
		HTTPPort:            8080,
		DBDriver:            "sqlite",
		SQLitePath:          "./data/corkboard-test.db",
		GuestbookRateLimit:  5,
		GuestbookRateWindow: time.Hour,
		AudioAllowedHosts:   []string{"soundcloud.com", "bandcamp.com", "archive.org", "youtube.com"},
		HistoryDepth:        40,
	}
}
