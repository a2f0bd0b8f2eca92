// Package server wires the HTTP surface of the verification service.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mgirardot/pna-zonage/internal/config"
	"github.com/mgirardot/pna-zonage/internal/health"
	"github.com/mgirardot/pna-zonage/internal/middleware"
	"github.com/mgirardot/pna-zonage/internal/observability"
	"github.com/mgirardot/pna-zonage/internal/router"
)

// Deps is everything Run needs besides the config.
type Deps struct {
	Verifier router.Verifier
	Reports  router.ReportSource
	Ready    health.ReadinessReporter
}

// Run sets up http and starts serving until ctx is canceled.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, deps Deps) error {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(deps.Ready))
	r.Get("/metrics", observability.Handler().ServeHTTP)
	r.Get("/verify", router.HandleVerify(deps.Verifier))
	r.Get("/datasets", router.HandleDatasets(deps.Reports))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
