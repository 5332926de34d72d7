package resultsdb

import (
	"context"
	"fmt"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SeasonPoints recomputes a player's season total in a category from scratch.
func (r *Impl) SeasonPoints(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonStart, seasonEnd time.Time) (int, error) {
	db = r.resolveDB(db)

	membership := db.NewSelect().
		TableExpr("teams AS tm").
		ColumnExpr("1").
		Join("JOIN registrations AS r ON r.id IN (tm.registration1_id, tm.registration2_id)").
		Where("tm.tournament_id = ts.tournament_id").
		Where("tm.category_id = ?", categoryID).
		Where("tm.status <> ?", tournamentdomain.TeamCancelled).
		Where("r.player_id = ts.player_id")

	var total int
	err := db.NewSelect().
		TableExpr("tournament_stats AS ts").
		ColumnExpr("COALESCE(SUM(ts.points_earned), 0)").
		Join("JOIN tournaments AS t ON t.id = ts.tournament_id").
		Where("ts.player_id = ?", playerID).
		Where("t.status = ?", tournamentdomain.StatusCompleted).
		Where("t.tournament_end >= ?", seasonStart).
		Where("t.tournament_end < ?", seasonEnd).
		Where("EXISTS (?)", membership).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("resultsdb.SeasonPoints: %w", shared.StoreError(err))
	}
	return total, nil
}

// UpsertRanking inserts the ranking or overwrites its total. Totals are never incremented.
func (r *Impl) UpsertRanking(ctx context.Context, db bun.IDB, ranking *PlayerRanking) error {
	db = r.resolveDB(db)
	if ranking.ID == uuid.Nil {
		ranking.ID = uuid.New()
	}
	_, err := db.NewInsert().
		Model(ranking).
		On("CONFLICT (player_id, category_id, season_year) DO UPDATE").
		Set("current_points = EXCLUDED.current_points").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("resultsdb.UpsertRanking: %w", shared.StoreError(err))
	}
	return nil
}

// GetRanking retrieves one ranking row.
func (r *Impl) GetRanking(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonYear int) (*PlayerRanking, error) {
	db = r.resolveDB(db)
	ranking := new(PlayerRanking)
	err := db.NewSelect().
		Model(ranking).
		Where("pr.player_id = ?", playerID).
		Where("pr.category_id = ?", categoryID).
		Where("pr.season_year = ?", seasonYear).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("resultsdb.GetRanking: %w", shared.StoreError(err))
	}
	return ranking, nil
}

// ListRankings returns the standings of a category for a season.
func (r *Impl) ListRankings(ctx context.Context, db bun.IDB, categoryID uuid.UUID, seasonYear int) ([]PlayerRanking, error) {
	db = r.resolveDB(db)
	var rankings []PlayerRanking
	err := db.NewSelect().
		Model(&rankings).
		Where("pr.category_id = ?", categoryID).
		Where("pr.season_year = ?", seasonYear).
		OrderExpr("pr.current_points DESC, pr.player_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("resultsdb.ListRankings: %w", shared.StoreError(err))
	}
	return rankings, nil
}
