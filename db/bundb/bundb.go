// db/bundb/bundb.go
package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	auditdb "github.com/Black-And-White-Club/tournament-results/app/modules/audit/infrastructure/repositories"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// DBService owns the connection pool and the module repositories built on it.
type DBService struct {
	TournamentDB tournamentdb.Repository
	ResultsDB    resultsdb.Repository
	AuditDB      auditdb.Repository
	db           *bun.DB
}

// GetDB returns the underlying database connection pool.
func (dbService *DBService) GetDB() *bun.DB {
	return dbService.db
}

// Close closes the connection pool.
func (dbService *DBService) Close() error {
	return dbService.db.Close()
}

// NewBunDBService initializes a new DBService with the provided Postgres configuration.
func NewBunDBService(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (*DBService, error) {
	logger.InfoContext(ctx, "Initializing database connection")

	sqldb, err := pgConn(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewDBServiceFromDB(NewDB(sqldb)), nil
}

// NewDBServiceFromDB builds the repositories on an existing connection pool.
func NewDBServiceFromDB(db *bun.DB) *DBService {
	return &DBService{
		TournamentDB: tournamentdb.NewRepository(db),
		ResultsDB:    resultsdb.NewRepository(db),
		AuditDB:      auditdb.NewRepository(db),
		db:           db,
	}
}

// NewDB wraps a sql.DB with the postgres dialect and registers the join models.
func NewDB(sqldb *sql.DB) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	RegisterModels(db)
	return db
}

// RegisterModels registers models that bun needs to know about before use.
func RegisterModels(db *bun.DB) {
	db.RegisterModel(
		(*tournamentdb.Tournament)(nil),
		(*tournamentdb.Team)(nil),
		(*tournamentdb.Registration)(nil),
		(*tournamentdb.Payment)(nil),
		(*resultsdb.Match)(nil),
		(*resultsdb.TournamentStats)(nil),
		(*resultsdb.PlayerRanking)(nil),
		(*auditdb.AuditLog)(nil),
	)
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(10*time.Second),
	))

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
