package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	"github.com/Black-And-White-Club/tournament-results/app/modules/results"
	"github.com/Black-And-White-Club/tournament-results/app/modules/tournament"
	"github.com/Black-And-White-Club/tournament-results/app/observability"
	"github.com/Black-And-White-Club/tournament-results/app/queue"
	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/Black-And-White-Club/tournament-results/db/bundb"
	"github.com/urfave/cli/v2"
)

// env is what a single CLI invocation needs. The River client is opened only for --enqueue.
type env struct {
	cfg        *config.Config
	obs        *observability.Observability
	db         *bundb.DBService
	bus        *eventbus.EventBus
	tournament *tournament.Module
	results    *results.Module
}

func openEnv(c *cli.Context) (*env, error) {
	ctx := c.Context

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !c.Bool("verbose") {
		cfg.Observability.LogLevel = "warn"
	}

	obs := observability.InitTo(ctx, os.Stderr, cfg.Observability)
	e := &env{cfg: cfg, obs: obs}

	e.db, err = bundb.NewBunDBService(ctx, cfg.Postgres, obs.Logger)
	if err != nil {
		return nil, err
	}

	e.bus, err = eventbus.NewEventBus(ctx, cfg.NATS.URL, obs.Logger)
	if err != nil {
		e.close()
		return nil, err
	}

	sink := audit.NewSink(e.db.AuditDB, obs.Logger, obs.Metrics)
	db := e.db.GetDB()

	e.tournament = tournament.NewTournamentModule(ctx, cfg.Scheduler, obs, e.db.TournamentDB, sink, e.bus, db)
	e.results, err = results.NewResultsModule(ctx, cfg, obs, e.db.TournamentDB, e.db.ResultsDB, sink, e.bus, db)
	if err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

// inserter opens an insert-only River client. Callers stop it when done.
func (e *env) inserter(ctx context.Context) (*queue.Service, error) {
	return queue.NewInsertOnly(ctx, e.cfg.Postgres.DSN, e.obs.Logger, e.obs.Metrics)
}

func (e *env) close() {
	if e.bus != nil {
		_ = e.bus.Close()
	}
	if e.db != nil {
		_ = e.db.Close()
	}
}

// withEnv opens the environment for one command and closes it afterwards.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(c, e)
	}
}
