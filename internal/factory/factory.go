// Package factory constructs the service's pluggable dependencies from
// configuration: store driver, authorizer and rate limiter backend.
package factory

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/corkboard/corkboard/internal/auth"
	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/internal/ratelimit"
	storepkg "github.com/corkboard/corkboard/internal/store"
	storepg "github.com/corkboard/corkboard/internal/store/postgres"
	storesqlite "github.com/corkboard/corkboard/internal/store/sqlite"
)

// NewStore returns a store.Store for the configured driver.
func NewStore(cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		st, err := storesqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("store opened")
		return st, nil
	case "postgres":
		st, err := storepg.New(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "postgres").Msg("store opened")
		return st, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

// NewAuthorizer returns the HMAC authorizer when a secret is configured
// and the development authorizer otherwise.
func NewAuthorizer(cfg *config.Config, log zerolog.Logger) auth.Authorizer {
	if cfg.AuthSecret != "" {
		return auth.NewHMACAuthorizer([]byte(cfg.AuthSecret))
	}
	if cfg.Environment == config.EnvProduction {
		log.Warn().Msg("no AUTH_SECRET configured in production; development credentials are active")
	}
	return auth.NewMockAuthorizer()
}

// NewTokenSigner mints owner edit tokens when a signing secret is
// configured; nil otherwise.
func NewTokenSigner(cfg *config.Config) func(actorID string, role auth.Role) string {
	if cfg.AuthSecret == "" {
		return nil
	}
	secret := []byte(cfg.AuthSecret)
	return func(actorID string, role auth.Role) string {
		return auth.SignToken(secret, actorID, role)
	}
}

// NewRateLimiter returns the guestbook limiter: Redis-backed when a Redis
// address is configured, in-process otherwise.
func NewRateLimiter(cfg *config.Config, log zerolog.Logger) ratelimit.Limiter {
	rlCfg := ratelimit.Config{Limit: cfg.GuestbookRateLimit, Window: cfg.GuestbookRateWindow}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Info().Str("addr", cfg.RedisAddr).Msg("rate limiter backed by redis")
		return ratelimit.NewRedis(client, "corkboard:guestbook", rlCfg)
	}
	return ratelimit.NewMemory(rlCfg)
}
