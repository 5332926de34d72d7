package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	resultsservice "github.com/Black-And-White-Club/tournament-results/app/modules/results/application"
	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentservice "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/application"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/Black-And-White-Club/tournament-results/db/bundb"
	"github.com/Black-And-White-Club/tournament-results/integration_tests/containers"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel/trace/noop"
)

// appTables are truncated between tests. Migration bookkeeping is kept.
var appTables = []string{
	"tournaments", "teams", "registrations", "payments",
	"matches", "tournament_stats", "player_rankings", "audit_logs",
	"river_job",
}

// TestEnvironment holds a migrated Postgres and the repositories built on it.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	DB          *bun.DB
	DBService   *bundb.DBService
	Config      *config.Config
	Logger      *slog.Logger
}

// NewTestEnvironment starts Postgres and applies every module's migrations.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, connStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	db := bundb.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr))))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := bundb.MigrateAll(ctx, db, logger); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if _, err := bundb.MigrateRiver(ctx, connStr, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &TestEnvironment{
		Ctx:         ctx,
		PgContainer: pgContainer,
		DB:          db,
		DBService:   bundb.NewDBServiceFromDB(db),
		Config:      &config.Config{Postgres: config.PostgresConfig{DSN: connStr}},
		Logger:      logger,
	}, nil
}

// Reset truncates every application table.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(appTables, ", "))
	if _, err := env.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// Cleanup closes the pool and stops the container.
func (env *TestEnvironment) Cleanup() {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(context.Background())
	}
}

// Services are the two application services wired to the real database.
type Services struct {
	Tournament *tournamentservice.TournamentService
	Results    *resultsservice.ResultsService
	Events     *eventbus.EventBus
}

// NewServices builds both services with clock pinned and events kept in process.
func (env *TestEnvironment) NewServices(clock shared.Clock, policy resultsdomain.MultiplierPolicy, season resultsdomain.SeasonBasis) Services {
	return env.NewServicesWith(clock, policy, season, env.DBService.TournamentDB, env.DBService.ResultsDB)
}

// NewServicesWith is NewServices over the given repositories, so a test can wrap the
// bun-backed ones to inject failures while writes still hit Postgres.
func (env *TestEnvironment) NewServicesWith(
	clock shared.Clock,
	policy resultsdomain.MultiplierPolicy,
	season resultsdomain.SeasonBasis,
	tournaments tournamentdb.Repository,
	results resultsdb.Repository,
) Services {
	bus := eventbus.NewInProcess(env.Logger)
	sink := audit.NewSink(env.DBService.AuditDB, env.Logger, nil)
	tracer := noop.NewTracerProvider().Tracer("test")

	return Services{
		Tournament: tournamentservice.NewTournamentService(
			tournaments, sink, bus, env.Logger, nil, tracer, env.DB, clock,
		),
		Results: resultsservice.NewResultsService(
			tournaments, results,
			resultsdomain.NewPointsCalculator(policy), season,
			sink, bus, env.Logger, nil, tracer, env.DB, clock,
		),
		Events: bus,
	}
}
