package tournamentservice

import (
	"context"
	"fmt"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CancelUnconfirmedRegistrations cancels registrations that never reached CONFIRMED or PAID,
// unless a payment against them cleared, and then cancels the teams that depended on them.
// Running it twice is a no-op the second time.
func (s *TournamentService) CancelUnconfirmedRegistrations(ctx context.Context, tournamentID uuid.UUID, actorID string) (CascadeResult, error) {
	return withTelemetry(s, ctx, "CancelUnconfirmedRegistrations", tournamentID.String(), func(ctx context.Context) (CascadeResult, error) {
		now := s.clock.Now()
		var (
			result CascadeResult
			fx     effects
		)

		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			fx = effects{}
			if err := shared.AcquireTournamentLock(ctx, db, tournamentID); err != nil {
				return err
			}
			if _, err := s.repo.GetTournament(ctx, db, tournamentID); err != nil {
				return err
			}
			var err error
			result, err = s.cancelUnconfirmed(ctx, db, tournamentID, actorID, now, &fx)
			return err
		})
		if err != nil {
			return CascadeResult{}, err
		}

		s.flush(ctx, &fx)
		if s.metrics != nil {
			s.metrics.RecordCascade(ctx, result.CancelledRegistrations, result.CancelledTeams)
		}
		return result, nil
	})
}

// cancelUnconfirmed is the cascade body. It runs on the caller's transaction and
// queues audit entries on fx instead of writing them.
func (s *TournamentService) cancelUnconfirmed(
	ctx context.Context,
	db bun.IDB,
	tournamentID uuid.UUID,
	actorID string,
	now time.Time,
	fx *effects,
) (CascadeResult, error) {
	var result CascadeResult

	regs, err := s.repo.ListCancellableRegistrations(ctx, db, tournamentID)
	if err != nil {
		return result, fmt.Errorf("failed to list unconfirmed registrations: %w", err)
	}

	cancelled := make([]uuid.UUID, 0, len(regs))
	for i := range regs {
		reg := &regs[i]
		if !tournamentdomain.IsCancellationCandidate(reg.Status) {
			continue
		}
		if tournamentdomain.IsProtected(reg.PaymentStatuses()) {
			result.ProtectedRegistrations++
			s.logger.DebugContext(ctx, "Registration protected by payment",
				attr.TournamentID(tournamentID),
				attr.UUID("registration_id", reg.ID),
			)
			continue
		}

		ok, err := s.repo.CancelRegistration(ctx, db, reg.ID, reg.Status, now)
		if err != nil {
			return result, fmt.Errorf("failed to cancel registration %s: %w", reg.ID, err)
		}
		if !ok {
			continue
		}
		cancelled = append(cancelled, reg.ID)
		fx.audit(audit.StatusEntry(actorID, audit.ActionRegistrationCancelled, audit.EntityRegistration,
			reg.ID, string(reg.Status), string(tournamentdomain.RegistrationCancelled)))
	}
	result.CancelledRegistrations = len(cancelled)

	teams, err := s.repo.ListActiveTeamsForRegistrations(ctx, db, tournamentID, cancelled)
	if err != nil {
		return result, fmt.Errorf("failed to list dependent teams: %w", err)
	}
	for i := range teams {
		team := &teams[i]
		ok, err := s.repo.CancelTeam(ctx, db, team.ID, now)
		if err != nil {
			return result, fmt.Errorf("failed to cancel team %s: %w", team.ID, err)
		}
		if !ok {
			continue
		}
		result.CancelledTeams++
		fx.audit(audit.StatusEntry(actorID, audit.ActionTeamCancelled, audit.EntityTeam,
			team.ID, string(team.Status), string(tournamentdomain.TeamCancelled)))
	}

	s.logger.InfoContext(ctx, "Cancellation cascade finished",
		attr.TournamentID(tournamentID),
		attr.String("actor_id", actorID),
		attr.Int("cancelled_registrations", result.CancelledRegistrations),
		attr.Int("cancelled_teams", result.CancelledTeams),
		attr.Int("protected_registrations", result.ProtectedRegistrations),
	)
	return result, nil
}
