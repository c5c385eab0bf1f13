// Package canvasservice boots the corkboard HTTP service: configuration,
// store, sanitize engine, services, router and graceful shutdown.
package canvasservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/corkboard/corkboard/internal/api"
	"github.com/corkboard/corkboard/internal/config"
	"github.com/corkboard/corkboard/internal/factory"
	"github.com/corkboard/corkboard/internal/geometry"
	"github.com/corkboard/corkboard/internal/health"
	"github.com/corkboard/corkboard/internal/logger"
	"github.com/corkboard/corkboard/internal/registry"
	"github.com/corkboard/corkboard/internal/sanitize"
	"github.com/corkboard/corkboard/internal/services"
	"github.com/corkboard/corkboard/internal/store"
)

const (
	healthInterval     = 15 * time.Second
	healthProbeTimeout = 2 * time.Second
)

// Run starts the canvas service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("corkboard")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Msg("Canvas service starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := factory.NewStore(cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Store adapter unavailable")
		return err
	}
	defer func() { _ = st.Close() }()

	router := buildRouter(ctx, cfg, st, log)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter wires services, health checkers and handlers.
func buildRouter(ctx context.Context, cfg *config.Config, st store.Store, log zerolog.Logger) http.Handler {
	engine := sanitize.New(registry.NewWithBuiltins(), geometry.DefaultLimits(), cfg.AudioAllowedHosts)

	canvasSvc := services.NewCanvasService(st, engine, log)
	guestbookSvc := services.NewGuestbookService(st, factory.NewRateLimiter(cfg, log), log,
		services.WithAutoApprove(cfg.GuestbookAutoApprove))

	svcHealth := startHealthCheckers(ctx, log, st)

	return api.NewRouter(api.RouterDeps{
		Canvas:     canvasSvc,
		Guestbook:  guestbookSvc,
		Authorizer: factory.NewAuthorizer(cfg, log),
		Signer:     factory.NewTokenSigner(cfg),
		IsHealthy:  svcHealth.IsHealthy,
		Components: svcHealth.Components,
	})
}

// startHealthCheckers starts component checkers and the service aggregator.
func startHealthCheckers(ctx context.Context, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	storeChecker := store.NewStoreHealthChecker(st, log, healthProbeTimeout)
	go storeChecker.Start(ctx, healthInterval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, healthInterval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
