// Package health aggregates component health into one service flag.
package health

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is implemented by component-level checkers (store, rate
// limiter backend).
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker polls component checkers and caches both the
// aggregate flag and the per-component results for the health endpoint.
type ServiceHealthChecker struct {
	mu         sync.RWMutex
	healthy    bool
	components map[string]bool
	deps       []HealthChecker
	log        zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{
		components: make(map[string]bool, len(deps)),
		deps:       deps,
		log:        log,
	}
}

// IsHealthy returns the cached aggregate flag.
func (h *ServiceHealthChecker) IsHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.healthy
}

// Components returns a copy of the latest per-component results.
func (h *ServiceHealthChecker) Components() map[string]bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]bool, len(h.components))
	for name, ok := range h.components {
		out[name] = ok
	}
	return out
}

// Start evaluates dependency health once immediately and then on every
// tick, logging transitions with the names of the failing components.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := false
	first := true
	for {
		all, failing := h.evaluate()
		if first || all != prev {
			if all {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Str("failing", strings.Join(failing, ",")).Msg("service health: DOWN")
			}
			prev = all
			first = false
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *ServiceHealthChecker) evaluate() (bool, []string) {
	all := true
	var failing []string
	results := make(map[string]bool, len(h.deps))
	for _, c := range h.deps {
		ok := c.IsHealthy()
		results[c.Name()] = ok
		if !ok {
			all = false
			failing = append(failing, c.Name())
		}
	}

	h.mu.Lock()
	h.healthy = all
	h.components = results
	h.mu.Unlock()
	return all, failing
}
