package tournamentservice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service defines the tournament lifecycle operations.
type Service interface {
	// UpdateTournamentStatusesAutomatically advances every tournament whose dates say it is due.
	UpdateTournamentStatusesAutomatically(ctx context.Context) (SweepResult, error)

	// SweepAt is UpdateTournamentStatusesAutomatically evaluated at an explicit instant.
	SweepAt(ctx context.Context, now time.Time) (SweepResult, error)

	// CancelUnconfirmedRegistrations runs the start-of-tournament cancellation cascade.
	CancelUnconfirmedRegistrations(ctx context.Context, tournamentID uuid.UUID, actorID string) (CascadeResult, error)
}
