// Package ratelimit provides fixed-window per-actor rate limiting with
// two backends:
//   - memory: in-process counters for development and single-node runs
//   - redis: shared counters for multi-instance deployments
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter answers whether an actor may perform one more action on a
// resource within the current window.
type Limiter interface {
	// Allow consumes one slot for key if the window has capacity. It
	// returns allowed=false and the seconds until the window resets when
	// the limit is exhausted.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// Config describes a fixed window.
type Config struct {
	// Limit is the maximum number of actions per window.
	Limit int
	// Window is the window length.
	Window time.Duration
}

type memWindow struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process fixed-window limiter.
type MemoryLimiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]*memWindow
}

// NewMemory creates an in-process limiter.
func NewMemory(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{cfg: cfg, now: time.Now, windows: make(map[string]*memWindow)}
}

// Allow implements Limiter.
func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memWindow{resetAt: now.Add(m.cfg.Window)}
		m.windows[key] = w
	}
	if w.count >= m.cfg.Limit {
		return false, w.resetAt.Sub(now), nil
	}
	w.count++
	return true, 0, nil
}

// Cleanup drops expired windows. Callers may run it periodically; the
// limiter is correct without it, expired entries just linger.
func (m *MemoryLimiter) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
