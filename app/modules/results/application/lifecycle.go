package resultsservice

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CompleteTournament marks an IN_PROGRESS tournament COMPLETED and processes its results.
// Either both happen or neither does.
func (s *ResultsService) CompleteTournament(ctx context.Context, tournamentID uuid.UUID, actorID string) (ProcessResult, error) {
	return withTelemetry(s, ctx, "CompleteTournament", tournamentID.String(), func(ctx context.Context) (ProcessResult, error) {
		now := s.clock.Now()
		var (
			result ProcessResult
			fx     effects
		)

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			fx = effects{}
			t, err := s.transition(ctx, db, tournamentID, tournamentdomain.StatusInProgress, tournamentdomain.StatusCompleted, actorID, now, &fx)
			if err != nil {
				return err
			}
			result, err = s.process(ctx, db, t, now, &fx)
			return err
		})
		if err != nil {
			return ProcessResult{}, err
		}

		s.flush(ctx, &fx)
		s.recordTransition(ctx, tournamentdomain.StatusInProgress, tournamentdomain.StatusCompleted)
		s.recordProcessed(ctx, result)
		s.logger.InfoContext(ctx, "Tournament completed",
			attr.TournamentID(tournamentID),
			attr.String("actor_id", actorID),
			attr.Int("players_scored", result.PlayersScored),
			attr.Int("rankings_updated", result.RankingsUpdated),
		)
		return result, nil
	})
}

// RevertTournament reopens a COMPLETED tournament and removes its ranking contributions.
func (s *ResultsService) RevertTournament(ctx context.Context, tournamentID uuid.UUID, actorID string) (ReversionResult, error) {
	return withTelemetry(s, ctx, "RevertTournament", tournamentID.String(), func(ctx context.Context) (ReversionResult, error) {
		now := s.clock.Now()
		var (
			result ReversionResult
			fx     effects
		)

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			fx = effects{}
			t, err := s.transition(ctx, db, tournamentID, tournamentdomain.StatusCompleted, tournamentdomain.StatusInProgress, actorID, now, &fx)
			if err != nil {
				return err
			}
			result, err = s.revert(ctx, db, t, actorID, now, &fx)
			return err
		})
		if err != nil {
			return ReversionResult{}, err
		}

		s.flush(ctx, &fx)
		s.recordTransition(ctx, tournamentdomain.StatusCompleted, tournamentdomain.StatusInProgress)
		if s.metrics != nil {
			s.metrics.RecordRankingsUpdated(ctx, result.RankingsUpdated)
		}
		s.logger.InfoContext(ctx, "Tournament reverted",
			attr.TournamentID(tournamentID),
			attr.String("actor_id", actorID),
			attr.Int("stats_reset", result.StatsReset),
			attr.Int("rankings_updated", result.RankingsUpdated),
		)
		return result, nil
	})
}

// transition locks the tournament and applies an administrative status change.
// It returns the tournament as it is after the change.
func (s *ResultsService) transition(
	ctx context.Context,
	db bun.IDB,
	tournamentID uuid.UUID,
	from, to tournamentdomain.Status,
	actorID string,
	now time.Time,
	fx *effects,
) (*tournamentdb.Tournament, error) {
	t, err := s.lockTournament(ctx, db, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != from {
		return nil, invalidState(t, from)
	}
	ok, err := s.tournaments.UpdateStatusIfCurrent(ctx, db, tournamentID, from, to, now)
	if err != nil {
		return nil, fmt.Errorf("failed to move %s to %s: %w", from, to, err)
	}
	if !ok {
		// Unreachable while the lock is held, unless a writer bypasses it.
		return nil, invalidState(t, from)
	}
	t.Status = to
	t.UpdatedAt = now

	fx.audit(audit.StatusEntry(actorID, audit.ActionTournamentStatusChanged, audit.EntityTournament,
		tournamentID, from.String(), to.String()))
	fx.publish(eventbus.TopicTournamentStatusChanged, eventbus.TournamentStatusChanged{
		TournamentID: tournamentID,
		From:         from.String(),
		To:           to.String(),
		ActorID:      actorID,
		OccurredAt:   now,
	})
	return t, nil
}

func (s *ResultsService) recordTransition(ctx context.Context, from, to tournamentdomain.Status) {
	if s.metrics != nil {
		s.metrics.RecordStatusTransition(ctx, from.String(), to.String())
	}
}
