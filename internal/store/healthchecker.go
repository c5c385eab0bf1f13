package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/corkboard/corkboard/internal/model"
)

const defaultProbeTimeout = 2 * time.Second

// StoreHealthChecker monitors store health via periodic probes.
type StoreHealthChecker struct {
	store        Store
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewStoreHealthChecker creates a checker that starts unhealthy until the
// first successful probe.
func NewStoreHealthChecker(store Store, log zerolog.Logger, probeTimeout time.Duration) *StoreHealthChecker {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &StoreHealthChecker{store: store, log: log, probeTimeout: probeTimeout}
}

// Name returns the checker name.
func (hc *StoreHealthChecker) Name() string { return "store" }

// IsHealthy returns the cached health status (non-blocking).
func (hc *StoreHealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start probes once immediately, then on every tick, and blocks until ctx
// is done. Recovery after a failed probe is logged.
func (hc *StoreHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		wasHealthy := hc.IsHealthy()
		probeCtx, cancel := context.WithTimeout(ctx, hc.probeTimeout)
		ok := hc.probe(probeCtx)
		cancel()

		if ok {
			hc.healthy.Store(1)
			if !wasHealthy {
				hc.log.Info().Str("checker", hc.Name()).Msg("store reachable")
			}
		} else {
			hc.healthy.Store(0)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (hc *StoreHealthChecker) probe(ctx context.Context) bool {
	if p, ok := hc.store.(HealthPinger); ok {
		if err := p.HealthPing(ctx); err != nil {
			hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("store health check failed")
			return false
		}
		return true
	}

	// Fallback: a read of a nonexistent canvas proves the backend answers.
	_, err := hc.store.Canvases().Get(ctx, "__health_check__")
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("store health check failed")
		return false
	}
	return true
}
