package testutils

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StatsRow is the comparable part of a tournament_stats row.
type StatsRow struct {
	PlayerID      uuid.UUID
	FinalPosition *int
	PointsEarned  int
}

// RankingRow is the comparable part of a player_rankings row.
type RankingRow struct {
	PlayerID      uuid.UUID
	CategoryID    uuid.UUID
	SeasonYear    int
	CurrentPoints int
}

// Snapshot is the state the results pipeline writes, without timestamps.
type Snapshot struct {
	Stats    []StatsRow
	Rankings []RankingRow
}

// TakeSnapshot reads one tournament's stats and every ranking row, in a stable order.
func TakeSnapshot(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (Snapshot, error) {
	var snap Snapshot
	err := db.NewSelect().
		TableExpr("tournament_stats").
		Column("player_id", "final_position", "points_earned").
		Where("tournament_id = ?", tournamentID).
		OrderExpr("player_id").
		Scan(ctx, &snap.Stats)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read stats: %w", err)
	}

	err = db.NewSelect().
		TableExpr("player_rankings").
		Column("player_id", "category_id", "season_year", "current_points").
		OrderExpr("player_id, category_id, season_year").
		Scan(ctx, &snap.Rankings)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read rankings: %w", err)
	}
	return snap, nil
}

// RankingPoints returns the current points of one ranking row, or -1 when it does not exist.
func RankingPoints(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonYear int) (int, error) {
	var points []int
	err := db.NewSelect().
		TableExpr("player_rankings").
		Column("current_points").
		Where("player_id = ?", playerID).
		Where("category_id = ?", categoryID).
		Where("season_year = ?", seasonYear).
		Scan(ctx, &points)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return -1, nil
	}
	return points[0], nil
}
