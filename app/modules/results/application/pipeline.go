package resultsservice

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProcessCompletedTournament runs position inference, scoring and ranking aggregation for a
// COMPLETED tournament in one transaction. Re-running it yields the same rows.
func (s *ResultsService) ProcessCompletedTournament(ctx context.Context, tournamentID uuid.UUID) (ProcessResult, error) {
	return withTelemetry(s, ctx, "ProcessCompletedTournament", tournamentID.String(), func(ctx context.Context) (ProcessResult, error) {
		now := s.clock.Now()
		var (
			result ProcessResult
			fx     effects
		)

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			fx = effects{}
			t, err := s.lockTournament(ctx, db, tournamentID)
			if err != nil {
				return err
			}
			if t.Status != tournamentdomain.StatusCompleted {
				return invalidState(t, tournamentdomain.StatusCompleted)
			}
			result, err = s.process(ctx, db, t, now, &fx)
			return err
		})
		if err != nil {
			return ProcessResult{}, err
		}

		s.flush(ctx, &fx)
		s.recordProcessed(ctx, result)
		return result, nil
	})
}

// lockTournament takes the per-tournament lock and reads the tournament under it.
func (s *ResultsService) lockTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (*tournamentdb.Tournament, error) {
	if err := shared.AcquireTournamentLock(ctx, db, tournamentID); err != nil {
		return nil, err
	}
	return s.tournaments.GetTournament(ctx, db, tournamentID)
}

func invalidState(t *tournamentdb.Tournament, expected tournamentdomain.Status) error {
	return &shared.InvalidStateError{
		Entity:   "tournament",
		ID:       t.ID.String(),
		Actual:   t.Status.String(),
		Expected: expected.String(),
	}
}

// process is the pipeline body: positions, then points, then rankings.
// Each step reads what the previous one wrote.
func (s *ResultsService) process(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament, now time.Time, fx *effects) (ProcessResult, error) {
	rosters, err := s.repo.ListTeamRosters(ctx, db, t.ID)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("failed to load teams: %w", err)
	}

	positions, err := s.inferPositions(ctx, db, t.ID, rosters)
	if err != nil {
		return ProcessResult{}, err
	}

	stats, breakdowns, err := s.scorePlayers(ctx, db, t, positions, activeTeamCount(rosters), now)
	if err != nil {
		return ProcessResult{}, err
	}

	year := s.season.SeasonYear(now, t.TournamentEnd)
	pairs := s.statsRankingPairs(ctx, t.ID, stats, rosters)
	updated, err := s.refreshRankings(ctx, db, pairs, year, now)
	if err != nil {
		return ProcessResult{}, err
	}

	result := ProcessResult{
		SeasonYear:      year,
		PlayersScored:   len(breakdowns),
		RankingsUpdated: updated,
		Breakdowns:      breakdowns,
	}
	for _, b := range breakdowns {
		if b.FinalPosition != nil {
			result.PositionsAssigned++
		}
	}

	fx.audit(audit.Entry{
		ActorID:     shared.SystemActorID,
		Action:      audit.ActionResultsProcessed,
		EntityType:  audit.EntityTournament,
		EntityID:    t.ID,
		Description: fmt.Sprintf("Results processed for tournament %s: %d players scored, %d rankings updated", t.ID, result.PlayersScored, result.RankingsUpdated),
		NewData:     result.summary(),
	})
	fx.publish(eventbus.TopicResultsProcessed, eventbus.ResultsProcessed{
		TournamentID:      t.ID,
		SeasonYear:        year,
		PositionsAssigned: result.PositionsAssigned,
		PlayersScored:     result.PlayersScored,
		RankingsUpdated:   result.RankingsUpdated,
		OccurredAt:        now,
	})
	return result, nil
}

// inferPositions loads the decided matches and resolves them to player positions.
func (s *ResultsService) inferPositions(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, rosters []resultsdb.TeamRoster) (map[uuid.UUID]int, error) {
	matches, err := s.repo.ListDecidedMatches(ctx, db, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}
	decided, unknownPhases := decidedMatches(matches, rosters)
	if len(unknownPhases) > 0 {
		s.logger.WarnContext(ctx, "Placing matches with an unrecognised phase as OTHER",
			attr.TournamentID(tournamentID),
			attr.Any("phase_types", unknownPhases),
		)
	}
	if len(decided) < len(matches) {
		s.logger.WarnContext(ctx, "Ignoring matches with an unknown team or winner",
			attr.TournamentID(tournamentID),
			attr.Int("ignored", len(matches)-len(decided)),
		)
	}
	return resultsdomain.InferFinalPositions(decided), nil
}

// scorePlayers writes final_position and points_earned for every stats row. Rows without an
// inferred position get NULL so a stale position from an earlier run never survives.
func (s *ResultsService) scorePlayers(
	ctx context.Context,
	db bun.IDB,
	t *tournamentdb.Tournament,
	positions map[uuid.UUID]int,
	participants int,
	now time.Time,
) ([]resultsdb.TournamentStats, map[uuid.UUID]resultsdomain.PointsBreakdown, error) {
	stats, err := s.repo.ListStats(ctx, db, t.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tournament stats: %w", err)
	}

	breakdowns := make(map[uuid.UUID]resultsdomain.PointsBreakdown, len(stats))
	for i := range stats {
		row := &stats[i]
		var position *int
		if p, ok := positions[row.PlayerID]; ok {
			position = &p
		}

		b := s.calculator.Calculate(resultsdomain.PointsInput{
			FinalPosition:    position,
			MatchesWon:       row.MatchesWon,
			SetsWon:          row.SetsWon,
			RankingPoints:    t.RankingPoints,
			TournamentType:   t.Type,
			ParticipantCount: participants,
		})
		if err := s.repo.UpdateStatsResult(ctx, db, row.ID, position, b.FinalTotal, now); err != nil {
			return nil, nil, fmt.Errorf("failed to write points for player %s: %w", row.PlayerID, err)
		}
		row.FinalPosition = position
		row.PointsEarned = b.FinalTotal
		breakdowns[row.PlayerID] = b
	}
	return stats, breakdowns, nil
}

func (s *ResultsService) recordProcessed(ctx context.Context, result ProcessResult) {
	if s.metrics == nil {
		return
	}
	for _, b := range result.Breakdowns {
		s.metrics.RecordPlayerScored(ctx, b.FinalTotal)
	}
	s.metrics.RecordRankingsUpdated(ctx, result.RankingsUpdated)
}

// summary is the audit payload for a processing run.
func (r ProcessResult) summary() map[string]int {
	return map[string]int{
		"season_year":        r.SeasonYear,
		"positions_assigned": r.PositionsAssigned,
		"players_scored":     r.PlayersScored,
		"rankings_updated":   r.RankingsUpdated,
	}
}

// decidedMatches converts stored matches to the inference input. A match whose winner is
// neither of its teams, or whose teams are unknown, is dropped. A phase outside the enum is
// placed as OTHER and reported in unknownPhases.
func decidedMatches(matches []resultsdb.Match, rosters []resultsdb.TeamRoster) (decided []resultsdomain.DecidedMatch, unknownPhases []string) {
	byTeam := make(map[uuid.UUID]resultsdb.TeamRoster, len(rosters))
	for _, r := range rosters {
		byTeam[r.TeamID] = r
	}

	decided = make([]resultsdomain.DecidedMatch, 0, len(matches))
	for _, m := range matches {
		if m.WinnerTeamID == nil {
			continue
		}
		var winner resultsdomain.Side
		switch *m.WinnerTeamID {
		case m.Team1ID:
			winner = resultsdomain.SideTeam1
		case m.Team2ID:
			winner = resultsdomain.SideTeam2
		default:
			continue
		}
		team1, ok1 := byTeam[m.Team1ID]
		team2, ok2 := byTeam[m.Team2ID]
		if !ok1 || !ok2 {
			continue
		}
		phase, known := resultsdomain.PhaseTypeOrOther(string(m.PhaseType))
		if !known {
			unknownPhases = append(unknownPhases, string(m.PhaseType))
		}
		decided = append(decided, resultsdomain.DecidedMatch{
			ID:     m.ID,
			Phase:  phase,
			Status: m.Status,
			Team1:  team1.Players(),
			Team2:  team2.Players(),
			Winner: winner,
		})
	}
	return decided, unknownPhases
}

func activeTeamCount(rosters []resultsdb.TeamRoster) int {
	n := 0
	for _, r := range rosters {
		if r.Active() {
			n++
		}
	}
	return n
}
