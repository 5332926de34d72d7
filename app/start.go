package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Run works queued jobs and serves the ops router until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	srv := &http.Server{
		Addr:              app.Config.Observability.MetricsAddress,
		Handler:           NewOpsRouter(app.DB.GetDB(), app.Observability.Metrics.Registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := app.Queue.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	g.Go(func() error {
		logger.InfoContext(gctx, "Starting ops server", attr.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down ops server", attr.Error(err))
		}
		app.Close(shutdownCtx)
		return nil
	})

	return g.Wait()
}
