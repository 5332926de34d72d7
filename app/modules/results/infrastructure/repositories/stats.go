package resultsdb

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListStats returns every stats row of a tournament ordered by player.
func (r *Impl) ListStats(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]TournamentStats, error) {
	db = r.resolveDB(db)
	var stats []TournamentStats
	err := db.NewSelect().
		Model(&stats).
		Where("ts.tournament_id = ?", tournamentID).
		Order("ts.player_id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("resultsdb.ListStats: %w", shared.StoreError(err))
	}
	return stats, nil
}

// GetStats retrieves one player's row for a tournament.
func (r *Impl) GetStats(ctx context.Context, db bun.IDB, tournamentID, playerID uuid.UUID) (*TournamentStats, error) {
	db = r.resolveDB(db)
	stats := new(TournamentStats)
	err := db.NewSelect().
		Model(stats).
		Where("ts.tournament_id = ?", tournamentID).
		Where("ts.player_id = ?", playerID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("resultsdb.GetStats: %w", shared.StoreError(err))
	}
	return stats, nil
}

// UpdateStatsResult overwrites the derived fields of one stats row.
func (r *Impl) UpdateStatsResult(ctx context.Context, db bun.IDB, id uuid.UUID, finalPosition *int, points int, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*TournamentStats)(nil)).
		Set("final_position = ?", finalPosition).
		Set("points_earned = ?", points).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("resultsdb.UpdateStatsResult: %w", shared.StoreError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resultsdb.UpdateStatsResult: %w", shared.StoreError(err))
	}
	if n == 0 {
		return fmt.Errorf("resultsdb.UpdateStatsResult: stats %s: %w", id, ErrNotFound)
	}
	return nil
}

// ResetStats clears the derived fields of every row of the tournament.
func (r *Impl) ResetStats(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, at time.Time) (int, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*TournamentStats)(nil)).
		Set("final_position = NULL").
		Set("points_earned = 0").
		Set("updated_at = ?", at).
		Where("tournament_id = ?", tournamentID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("resultsdb.ResetStats: %w", shared.StoreError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("resultsdb.ResetStats: %w", shared.StoreError(err))
	}
	return int(n), nil
}
