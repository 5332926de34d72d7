package tournamentdb

import (
	"context"
	"time"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for tournament persistence.
// Every method takes the bun.IDB to run on so callers can pass a transaction;
// nil falls back to the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: record does not exist
//   - ErrTransientStore: infrastructure failure, safe to retry
type Repository interface {
	// GetTournament retrieves a tournament by ID.
	GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*Tournament, error)

	// ListTournamentsByStatus returns tournaments in any of the given statuses, oldest start first.
	ListTournamentsByStatus(ctx context.Context, db bun.IDB, statuses []tournamentdomain.Status) ([]Tournament, error)

	// UpdateStatusIfCurrent moves a tournament from one status to another.
	// It reports false, with no error, when the tournament is no longer in from.
	UpdateStatusIfCurrent(ctx context.Context, db bun.IDB, id uuid.UUID, from, to tournamentdomain.Status, at time.Time) (bool, error)

	// CountActiveTeams counts teams of the tournament that are not cancelled.
	CountActiveTeams(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error)

	// ListCancellableRegistrations returns registrations that are not CONFIRMED, PAID or CANCELLED,
	// with their payments loaded.
	ListCancellableRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]Registration, error)

	// CancelRegistration cancels a registration if it is still in from.
	CancelRegistration(ctx context.Context, db bun.IDB, id uuid.UUID, from tournamentdomain.RegistrationStatus, at time.Time) (bool, error)

	// ListActiveTeamsForRegistrations returns non-cancelled teams of the tournament that
	// reference any of the registrations in either slot.
	ListActiveTeamsForRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, registrationIDs []uuid.UUID) ([]Team, error)

	// CancelTeam cancels a team if it is not cancelled yet.
	CancelTeam(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error)
}
