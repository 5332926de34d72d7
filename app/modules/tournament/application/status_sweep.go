package tournamentservice

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateTournamentStatusesAutomatically advances tournaments based on the current time.
func (s *TournamentService) UpdateTournamentStatusesAutomatically(ctx context.Context) (SweepResult, error) {
	return s.SweepAt(ctx, s.clock.Now())
}

// SweepAt evaluates the date rules for every candidate tournament at now.
// A failure on one tournament is recorded in the result and does not stop the others.
// The returned error is only set when the candidates could not be listed at all.
func (s *TournamentService) SweepAt(ctx context.Context, now time.Time) (SweepResult, error) {
	now = now.UTC()
	return withTelemetry(s, ctx, "UpdateTournamentStatusesAutomatically", now.Format(time.RFC3339), func(ctx context.Context) (SweepResult, error) {
		candidates, err := s.repo.ListTournamentsByStatus(ctx, nil, tournamentdomain.AutomaticStatuses)
		if err != nil {
			return SweepResult{}, fmt.Errorf("failed to list candidate tournaments: %w", err)
		}

		var result SweepResult
		for i := range candidates {
			t := &candidates[i]

			// Cheap pre-check: if nothing is due even assuming the tournament has teams,
			// skip the transaction entirely.
			if len(tournamentdomain.PlanTransitions(t.Status, t.Schedule(), 1, now)) == 0 {
				continue
			}

			applied, err := s.advanceTournament(ctx, t.ID, now)
			if err != nil {
				s.logger.WarnContext(ctx, "Failed to advance tournament status",
					attr.TournamentID(t.ID),
					attr.String("status", t.Status.String()),
					attr.Error(err),
				)
				result.Errors = append(result.Errors, fmt.Errorf("tournament %s: %w", t.ID, err))
				continue
			}
			result.UpdatedCount += len(applied)
			result.Transitions = append(result.Transitions, applied...)
		}

		s.logger.InfoContext(ctx, "Status sweep finished",
			attr.Int("candidates", len(candidates)),
			attr.Int("updated", result.UpdatedCount),
			attr.Int("errors", result.ErrorCount()),
		)
		return result, nil
	})
}

// advanceTournament applies every due transition of one tournament in a single transaction.
// Starting the tournament runs the cancellation cascade in the same transaction.
func (s *TournamentService) advanceTournament(ctx context.Context, tournamentID uuid.UUID, now time.Time) ([]AppliedTransition, error) {
	var (
		applied []AppliedTransition
		fx      effects
	)

	err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
		applied, fx = nil, effects{}

		if err := shared.AcquireTournamentLock(ctx, db, tournamentID); err != nil {
			return err
		}

		// Re-read under the lock; the listed status may be stale.
		t, err := s.repo.GetTournament(ctx, db, tournamentID)
		if err != nil {
			return err
		}
		teamCount, err := s.repo.CountActiveTeams(ctx, db, tournamentID)
		if err != nil {
			return err
		}

		for _, tr := range tournamentdomain.PlanTransitions(t.Status, t.Schedule(), teamCount, now) {
			ok, err := s.repo.UpdateStatusIfCurrent(ctx, db, tournamentID, tr.From, tr.To, now)
			if err != nil {
				return fmt.Errorf("failed to move %s to %s: %w", tr.From, tr.To, err)
			}
			if !ok {
				// Another writer moved it first; nothing else in the plan applies.
				break
			}

			step := AppliedTransition{TournamentID: tournamentID, Transition: tr}
			fx.audit(audit.StatusEntry(shared.SystemActorID, audit.ActionTournamentStatusChanged,
				audit.EntityTournament, tournamentID, tr.From.String(), tr.To.String()))
			event := eventbus.TournamentStatusChanged{
				TournamentID: tournamentID,
				From:         tr.From.String(),
				To:           tr.To.String(),
				ActorID:      shared.SystemActorID,
				OccurredAt:   now,
			}

			if tr.StartsTournament() {
				cascade, err := s.cancelUnconfirmed(ctx, db, tournamentID, shared.SystemActorID, now, &fx)
				if err != nil {
					return fmt.Errorf("cancellation cascade failed: %w", err)
				}
				step.Cascade = &cascade
				event.CancelledRegistrations = cascade.CancelledRegistrations
				event.CancelledTeams = cascade.CancelledTeams
			}

			fx.publish(eventbus.TopicTournamentStatusChanged, event)
			applied = append(applied, step)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.flush(ctx, &fx)
	for _, step := range applied {
		s.logger.InfoContext(ctx, "Tournament status advanced",
			attr.TournamentID(tournamentID),
			attr.String("from", step.From.String()),
			attr.String("to", step.To.String()),
		)
		if s.metrics != nil {
			s.metrics.RecordStatusTransition(ctx, step.From.String(), step.To.String())
			if step.Cascade != nil {
				s.metrics.RecordCascade(ctx, step.Cascade.CancelledRegistrations, step.Cascade.CancelledTeams)
			}
		}
	}
	return applied, nil
}
