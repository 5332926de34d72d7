package resultsdb

import (
	"context"
	"fmt"

	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new results repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

var decidedMatchStatuses = []resultsdomain.MatchStatus{
	resultsdomain.MatchCompleted,
	resultsdomain.MatchWalkover,
}

// ListDecidedMatches returns decided matches with a recorded winner.
func (r *Impl) ListDecidedMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Match, error) {
	db = r.resolveDB(db)
	var matches []Match
	err := db.NewSelect().
		Model(&matches).
		Where("m.tournament_id = ?", tournamentID).
		Where("m.status IN (?)", bun.In(decidedMatchStatuses)).
		Where("m.winner_team_id IS NOT NULL").
		OrderExpr("m.round_number ASC, m.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("resultsdb.ListDecidedMatches: %w", shared.StoreError(err))
	}
	return matches, nil
}

// ListTeamRosters resolves every team of the tournament to its two players.
func (r *Impl) ListTeamRosters(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]TeamRoster, error) {
	db = r.resolveDB(db)
	var rosters []TeamRoster
	err := db.NewSelect().
		TableExpr("teams AS tm").
		ColumnExpr("tm.id AS team_id").
		ColumnExpr("tm.category_id").
		ColumnExpr("tm.status").
		ColumnExpr("r1.player_id AS player1_id").
		ColumnExpr("r2.player_id AS player2_id").
		Join("JOIN registrations AS r1 ON r1.id = tm.registration1_id").
		Join("JOIN registrations AS r2 ON r2.id = tm.registration2_id").
		Where("tm.tournament_id = ?", tournamentID).
		Order("tm.id").
		Scan(ctx, &rosters)
	if err != nil {
		return nil, fmt.Errorf("resultsdb.ListTeamRosters: %w", shared.StoreError(err))
	}
	return rosters, nil
}
