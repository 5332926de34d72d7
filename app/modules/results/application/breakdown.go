package resultsservice

import (
	"context"
	"fmt"

	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	"github.com/google/uuid"
)

// PointsBreakdown recomputes a player's points from the position and counters currently stored.
func (s *ResultsService) PointsBreakdown(ctx context.Context, tournamentID, playerID uuid.UUID) (resultsdomain.PointsBreakdown, error) {
	return withTelemetry(s, ctx, "PointsBreakdown", tournamentID.String(), func(ctx context.Context) (resultsdomain.PointsBreakdown, error) {
		t, err := s.tournaments.GetTournament(ctx, nil, tournamentID)
		if err != nil {
			return resultsdomain.PointsBreakdown{}, err
		}
		row, err := s.repo.GetStats(ctx, nil, tournamentID, playerID)
		if err != nil {
			return resultsdomain.PointsBreakdown{}, fmt.Errorf("player %s: %w", playerID, err)
		}
		rosters, err := s.repo.ListTeamRosters(ctx, nil, tournamentID)
		if err != nil {
			return resultsdomain.PointsBreakdown{}, err
		}

		return s.calculator.Calculate(resultsdomain.PointsInput{
			FinalPosition:    row.FinalPosition,
			MatchesWon:       row.MatchesWon,
			SetsWon:          row.SetsWon,
			RankingPoints:    t.RankingPoints,
			TournamentType:   t.Type,
			ParticipantCount: activeTeamCount(rosters),
		}), nil
	})
}
