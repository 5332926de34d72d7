package bundb

import (
	"context"
	"fmt"
	"log/slog"

	auditmigrations "github.com/Black-And-White-Club/tournament-results/app/modules/audit/infrastructure/repositories/migrations"
	resultsmigrations "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories/migrations"
	tournamentmigrations "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations is one module's migration set.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// OrderedMigrations lists every module's migrations in dependency order:
// results references tournaments, so tournament runs first.
func OrderedMigrations() []ModuleMigrations {
	return []ModuleMigrations{
		{"tournament", tournamentmigrations.Migrations},
		{"results", resultsmigrations.Migrations},
		{"audit", auditmigrations.Migrations},
	}
}

// MigrateAll initializes the migration tables and applies every module's pending migrations.
func MigrateAll(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	modules := OrderedMigrations()
	if err := migrate.NewMigrator(db, modules[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	for _, mod := range modules {
		group, err := migrate.NewMigrator(db, mod.Migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", "module", mod.Name)
		} else {
			logger.InfoContext(ctx, "Migrated module", "module", mod.Name, "group", group.String())
		}
	}
	return nil
}

// MigrateRiver applies River's own schema migrations.
func MigrateRiver(ctx context.Context, dsn string, direction rivermigrate.Direction, opts *rivermigrate.MigrateOpts) (*rivermigrate.MigrateResult, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create River migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, direction, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to run River migrations: %w", err)
	}
	return res, nil
}
