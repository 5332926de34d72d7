package resultsservice

import (
	"cmp"
	"context"
	"fmt"
	"slices"
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

// rankingPair is one (player, category) whose season total must be recomputed.
type rankingPair struct {
	PlayerID   uuid.UUID
	CategoryID uuid.UUID
}

// UpdatePlayerRankings recomputes every season ranking the tournament's stats rows feed.
func (s *ResultsService) UpdatePlayerRankings(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := withTelemetry(s, ctx, "UpdatePlayerRankings", tournamentID.String(), func(ctx context.Context) (int, error) {
		now := s.clock.Now()
		var updated int

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			t, err := s.lockTournament(ctx, db, tournamentID)
			if err != nil {
				return err
			}
			if t.Status != tournamentdomain.StatusCompleted {
				return invalidState(t, tournamentdomain.StatusCompleted)
			}
			stats, err := s.repo.ListStats(ctx, db, t.ID)
			if err != nil {
				return fmt.Errorf("failed to load tournament stats: %w", err)
			}
			rosters, err := s.repo.ListTeamRosters(ctx, db, t.ID)
			if err != nil {
				return fmt.Errorf("failed to load teams: %w", err)
			}
			pairs := s.statsRankingPairs(ctx, t.ID, stats, rosters)
			updated, err = s.refreshRankings(ctx, db, pairs, s.season.SeasonYear(now, t.TournamentEnd), now)
			return err
		})
		if err != nil {
			return 0, err
		}
		if s.metrics != nil {
			s.metrics.RecordRankingsUpdated(ctx, updated)
		}
		return updated, nil
	})
	return err
}

// RecalculatePlayerRankingsAfterTournamentReversion removes a reopened tournament from every
// ranking it fed. The tournament must already have left COMPLETED.
func (s *ResultsService) RecalculatePlayerRankingsAfterTournamentReversion(ctx context.Context, tournamentID uuid.UUID) error {
	_, err := withTelemetry(s, ctx, "RecalculatePlayerRankingsAfterTournamentReversion", tournamentID.String(), func(ctx context.Context) (ReversionResult, error) {
		now := s.clock.Now()
		var (
			result ReversionResult
			fx     effects
		)

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			fx = effects{}
			t, err := s.lockTournament(ctx, db, tournamentID)
			if err != nil {
				return err
			}
			if t.Status == tournamentdomain.StatusCompleted {
				return &shared.InvalidStateError{
					Entity:   "tournament",
					ID:       t.ID.String(),
					Actual:   t.Status.String(),
					Expected: "any status other than COMPLETED",
				}
			}
			result, err = s.revert(ctx, db, t, shared.SystemActorID, now, &fx)
			return err
		})
		if err != nil {
			return ReversionResult{}, err
		}

		s.flush(ctx, &fx)
		if s.metrics != nil {
			s.metrics.RecordRankingsUpdated(ctx, result.RankingsUpdated)
		}
		return result, nil
	})
	return err
}

// revert zeroes the tournament's stats and recomputes the rankings of every player who had a team in it.
// The tournament is no longer COMPLETED, so the recomputed sums exclude it.
func (s *ResultsService) revert(ctx context.Context, db bun.IDB, t *tournamentdb.Tournament, actorID string, now time.Time, fx *effects) (ReversionResult, error) {
	reset, err := s.repo.ResetStats(ctx, db, t.ID, now)
	if err != nil {
		return ReversionResult{}, fmt.Errorf("failed to reset tournament stats: %w", err)
	}
	rosters, err := s.repo.ListTeamRosters(ctx, db, t.ID)
	if err != nil {
		return ReversionResult{}, fmt.Errorf("failed to load teams: %w", err)
	}

	year := s.season.SeasonYear(now, t.TournamentEnd)
	updated, err := s.refreshRankings(ctx, db, rosterRankingPairs(rosters), year, now)
	if err != nil {
		return ReversionResult{}, err
	}

	result := ReversionResult{SeasonYear: year, StatsReset: reset, RankingsUpdated: updated}
	fx.audit(audit.Entry{
		ActorID:     actorID,
		Action:      audit.ActionResultsReverted,
		EntityType:  audit.EntityTournament,
		EntityID:    t.ID,
		Description: fmt.Sprintf("Results reverted for tournament %s: %d stats reset, %d rankings updated", t.ID, reset, updated),
		NewData:     result,
	})
	fx.publish(eventbus.TopicResultsReverted, eventbus.ResultsReverted{
		TournamentID:    t.ID,
		SeasonYear:      year,
		RankingsUpdated: updated,
		OccurredAt:      now,
	})
	return result, nil
}

// refreshRankings recomputes each pair's season total from scratch and upserts it.
// Ranking partitions are locked first, in a fixed order.
func (s *ResultsService) refreshRankings(ctx context.Context, db bun.IDB, pairs []rankingPair, year int, now time.Time) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}

	keys := make([]shared.RankingLockKey, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, shared.RankingLockKey{CategoryID: p.CategoryID, SeasonYear: year})
	}
	if err := shared.AcquireRankingLocks(ctx, db, keys); err != nil {
		return 0, err
	}

	start, end := resultsdomain.SeasonBounds(year)
	for _, p := range pairs {
		total, err := s.repo.SeasonPoints(ctx, db, p.PlayerID, p.CategoryID, start, end)
		if err != nil {
			return 0, fmt.Errorf("failed to sum season points for player %s: %w", p.PlayerID, err)
		}
		err = s.repo.UpsertRanking(ctx, db, &resultsdb.PlayerRanking{
			PlayerID:      p.PlayerID,
			CategoryID:    p.CategoryID,
			SeasonYear:    year,
			CurrentPoints: total,
			LastUpdated:   now,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to upsert ranking for player %s: %w", p.PlayerID, err)
		}
	}
	return len(pairs), nil
}

// statsRankingPairs maps each stats row to the categories its player had an active team in.
// Rows with no team are skipped.
func (s *ResultsService) statsRankingPairs(ctx context.Context, tournamentID uuid.UUID, stats []resultsdb.TournamentStats, rosters []resultsdb.TeamRoster) []rankingPair {
	categories := playerCategories(rosters)

	var pairs []rankingPair
	for _, row := range stats {
		cats, ok := categories[row.PlayerID]
		if !ok {
			s.logger.WarnContext(ctx, "Stats row has no team in tournament, skipping ranking",
				attr.TournamentID(tournamentID),
				attr.UUID("player_id", row.PlayerID),
			)
			continue
		}
		for _, c := range cats {
			pairs = append(pairs, rankingPair{PlayerID: row.PlayerID, CategoryID: c})
		}
	}
	return sortPairs(pairs)
}

// rosterRankingPairs lists every (player, category) with an active team.
func rosterRankingPairs(rosters []resultsdb.TeamRoster) []rankingPair {
	var pairs []rankingPair
	for player, cats := range playerCategories(rosters) {
		for _, c := range cats {
			pairs = append(pairs, rankingPair{PlayerID: player, CategoryID: c})
		}
	}
	return sortPairs(pairs)
}

func playerCategories(rosters []resultsdb.TeamRoster) map[uuid.UUID][]uuid.UUID {
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, r := range rosters {
		if !r.Active() {
			continue
		}
		for _, p := range r.Players() {
			if p == uuid.Nil || slices.Contains(out[p], r.CategoryID) {
				continue
			}
			out[p] = append(out[p], r.CategoryID)
		}
	}
	return out
}

func sortPairs(pairs []rankingPair) []rankingPair {
	slices.SortFunc(pairs, func(a, b rankingPair) int {
		if c := cmp.Compare(a.CategoryID.String(), b.CategoryID.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID.String(), b.PlayerID.String())
	})
	return slices.Compact(pairs)
}
