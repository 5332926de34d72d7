package resultsservice

import (
	"context"

	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	"github.com/google/uuid"
)

// Service turns a completed tournament's matches into positions, points and season rankings,
// and removes them again when the tournament is reopened.
type Service interface {
	// ProcessCompletedTournament infers positions, scores every player and refreshes rankings.
	ProcessCompletedTournament(ctx context.Context, tournamentID uuid.UUID) (ProcessResult, error)
	// UpdatePlayerRankings recomputes the season rankings touched by a completed tournament.
	UpdatePlayerRankings(ctx context.Context, tournamentID uuid.UUID) error
	// RecalculatePlayerRankingsAfterTournamentReversion zeroes a reopened tournament's stats
	// and recomputes the rankings it contributed to.
	RecalculatePlayerRankingsAfterTournamentReversion(ctx context.Context, tournamentID uuid.UUID) error

	// CompleteTournament moves IN_PROGRESS to COMPLETED and processes results atomically.
	CompleteTournament(ctx context.Context, tournamentID uuid.UUID, actorID string) (ProcessResult, error)
	// RevertTournament moves COMPLETED back to IN_PROGRESS and reverses results atomically.
	RevertTournament(ctx context.Context, tournamentID uuid.UUID, actorID string) (ReversionResult, error)

	// PointsBreakdown recomputes one player's points from the stored stats without writing.
	PointsBreakdown(ctx context.Context, tournamentID, playerID uuid.UUID) (resultsdomain.PointsBreakdown, error)
}
