package app

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	"github.com/Black-And-White-Club/tournament-results/app/modules/results"
	"github.com/Black-And-White-Club/tournament-results/app/modules/tournament"
	"github.com/Black-And-White-Club/tournament-results/app/observability"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/queue"
	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/Black-And-White-Club/tournament-results/db/bundb"
)

// App holds the long-lived dependencies of the service process.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bundb.DBService
	EventBus      *eventbus.EventBus
	Queue         *queue.Service

	TournamentModule *tournament.Module
	ResultsModule    *results.Module
}

// Initialize builds every module from cfg. Callers must Close the returned App.
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	obs := observability.Init(ctx, cfg.Observability)
	logger := obs.Logger

	app := &App{Config: cfg, Observability: obs}

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}
	app.DB = dbService

	eventBus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	app.EventBus = eventBus

	sink := audit.NewSink(dbService.AuditDB, logger, obs.Metrics)
	db := dbService.GetDB()

	app.TournamentModule = tournament.NewTournamentModule(ctx, cfg.Scheduler, obs, dbService.TournamentDB, sink, eventBus, db)

	app.ResultsModule, err = results.NewResultsModule(ctx, cfg, obs, dbService.TournamentDB, dbService.ResultsDB, sink, eventBus, db)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize results module: %w", err)
	}

	app.Queue, err = queue.NewService(ctx, cfg.Postgres.DSN, logger, obs.Metrics,
		app.TournamentModule.Jobs(),
		app.ResultsModule.Jobs(),
	)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to initialize job queue: %w", err)
	}

	logger.InfoContext(ctx, "Application initialized")
	return app, nil
}

// Close releases everything Initialize opened. It is safe on a partially built App.
func (app *App) Close(ctx context.Context) {
	logger := app.Observability.Logger

	if app.Queue != nil {
		if err := app.Queue.Stop(ctx); err != nil {
			logger.ErrorContext(ctx, "Error stopping job queue", attr.Error(err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.ErrorContext(ctx, "Error closing event bus", attr.Error(err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.ErrorContext(ctx, "Error closing database", attr.Error(err))
		}
	}
}
