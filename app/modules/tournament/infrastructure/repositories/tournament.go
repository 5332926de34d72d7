package tournamentdb

import (
	"context"
	"fmt"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new tournament repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetTournament retrieves a tournament by ID.
func (r *Impl) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error) {
	db = r.resolveDB(db)
	t := new(Tournament)
	err := db.NewSelect().
		Model(t).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.GetTournament: %w", shared.StoreError(err))
	}
	return t, nil
}

// ListTournamentsByStatus returns tournaments in any of the given statuses.
func (r *Impl) ListTournamentsByStatus(ctx context.Context, db bun.IDB, statuses []tournamentdomain.Status) ([]Tournament, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var tournaments []Tournament
	err := db.NewSelect().
		Model(&tournaments).
		Where("t.status IN (?)", bun.In(statuses)).
		OrderExpr("t.tournament_start ASC, t.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListTournamentsByStatus: %w", shared.StoreError(err))
	}
	return tournaments, nil
}

// UpdateStatusIfCurrent performs a conditional status write filtered by the current status.
func (r *Impl) UpdateStatusIfCurrent(ctx context.Context, db bun.IDB, id uuid.UUID, from, to tournamentdomain.Status, at time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Tournament)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("tournamentdb.UpdateStatusIfCurrent: %w", shared.StoreError(err))
	}
	return affected(res, "tournamentdb.UpdateStatusIfCurrent")
}

// CountActiveTeams counts non-cancelled teams.
func (r *Impl) CountActiveTeams(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	count, err := db.NewSelect().
		Model((*Team)(nil)).
		Where("tm.tournament_id = ?", tournamentID).
		Where("tm.status <> ?", tournamentdomain.TeamCancelled).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("tournamentdb.CountActiveTeams: %w", shared.StoreError(err))
	}
	return count, nil
}
