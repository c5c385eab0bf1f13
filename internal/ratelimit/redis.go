package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis INCR counters,
// suitable when several instances serve the same canvases.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
	prefix string
}

// NewRedis creates a Redis-backed limiter. All keys are namespaced under
// prefix to keep counters separate from other tenants of the instance.
func NewRedis(client *redis.Client, prefix string, cfg Config) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, cfg: cfg, prefix: prefix}
}

// Allow implements Limiter. The counter and its expiry are set in one
// pipeline so a crash between the two cannot leave an immortal key.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	full := r.prefix + ":" + key

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, full)
		pipe.ExpireNX(ctx, full, r.cfg.Window)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	if incr.Val() <= int64(r.cfg.Limit) {
		return true, 0, nil
	}

	ttl, err := r.client.TTL(ctx, full).Result()
	if err != nil || ttl < 0 {
		ttl = r.cfg.Window
	}
	return false, ttl, nil
}
