package tournamentdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var settledRegistrationStatuses = []tournamentdomain.RegistrationStatus{
	tournamentdomain.RegistrationConfirmed,
	tournamentdomain.RegistrationPaid,
	tournamentdomain.RegistrationCancelled,
}

// ListCancellableRegistrations returns unsettled registrations with their payments.
func (r *Impl) ListCancellableRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Registration, error) {
	db = r.resolveDB(db)
	var regs []Registration
	err := db.NewSelect().
		Model(&regs).
		Relation("Payments").
		Where("r.tournament_id = ?", tournamentID).
		Where("r.registration_status NOT IN (?)", bun.In(settledRegistrationStatuses)).
		Order("r.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListCancellableRegistrations: %w", shared.StoreError(err))
	}
	return regs, nil
}

// CancelRegistration cancels a registration still in from.
func (r *Impl) CancelRegistration(ctx context.Context, db bun.IDB, id uuid.UUID, from tournamentdomain.RegistrationStatus, at time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Registration)(nil)).
		Set("registration_status = ?", tournamentdomain.RegistrationCancelled).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("registration_status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("tournamentdb.CancelRegistration: %w", shared.StoreError(err))
	}
	return affected(res, "tournamentdb.CancelRegistration")
}

// ListActiveTeamsForRegistrations returns non-cancelled teams referencing any of the registrations.
func (r *Impl) ListActiveTeamsForRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, registrationIDs []uuid.UUID) ([]Team, error) {
	if len(registrationIDs) == 0 {
		return nil, nil
	}
	db = r.resolveDB(db)
	var teams []Team
	err := db.NewSelect().
		Model(&teams).
		Where("tm.tournament_id = ?", tournamentID).
		Where("tm.status <> ?", tournamentdomain.TeamCancelled).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("tm.registration1_id IN (?)", bun.In(registrationIDs)).
				WhereOr("tm.registration2_id IN (?)", bun.In(registrationIDs))
		}).
		Order("tm.id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("tournamentdb.ListActiveTeamsForRegistrations: %w", shared.StoreError(err))
	}
	return teams, nil
}

// CancelTeam cancels a team that is not cancelled yet.
func (r *Impl) CancelTeam(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("status = ?", tournamentdomain.TeamCancelled).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status <> ?", tournamentdomain.TeamCancelled).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("tournamentdb.CancelTeam: %w", shared.StoreError(err))
	}
	return affected(res, "tournamentdb.CancelTeam")
}

func affected(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, shared.StoreError(err))
	}
	return n > 0, nil
}
