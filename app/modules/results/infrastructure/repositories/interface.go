package resultsdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for results persistence.
// As with the tournament repository, a nil db runs on the repository's own connection.
type Repository interface {
	// --- Matches and teams ---

	// ListDecidedMatches returns COMPLETED and WALKOVER matches of the tournament that have a winner.
	ListDecidedMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Match, error)
	// ListTeamRosters returns every team of the tournament, cancelled or not, with both players.
	ListTeamRosters(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]TeamRoster, error)

	// --- Tournament stats ---

	ListStats(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]TournamentStats, error)
	GetStats(ctx context.Context, db bun.IDB, tournamentID, playerID uuid.UUID) (*TournamentStats, error)
	// UpdateStatsResult overwrites final_position and points_earned of one row.
	UpdateStatsResult(ctx context.Context, db bun.IDB, id uuid.UUID, finalPosition *int, points int, at time.Time) error
	// ResetStats zeroes points_earned and clears final_position for every row of the tournament.
	ResetStats(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, at time.Time) (int, error)

	// --- Rankings ---

	// SeasonPoints sums points_earned for the player over COMPLETED tournaments ending in
	// [seasonStart, seasonEnd) in which the player had a non-cancelled team in the category.
	SeasonPoints(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonStart, seasonEnd time.Time) (int, error)
	// UpsertRanking writes the ranking's current_points, creating the row on first use.
	UpsertRanking(ctx context.Context, db bun.IDB, ranking *PlayerRanking) error
	GetRanking(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonYear int) (*PlayerRanking, error)
	// ListRankings returns a category's season standings, highest first.
	ListRankings(ctx context.Context, db bun.IDB, categoryID uuid.UUID, seasonYear int) ([]PlayerRanking, error)
}
