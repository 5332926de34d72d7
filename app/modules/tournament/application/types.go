package tournamentservice

import (
	"errors"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/google/uuid"
)

// SweepResult summarizes one pass of the status engine.
type SweepResult struct {
	// UpdatedCount is the number of status writes applied across all tournaments.
	UpdatedCount int
	// Transitions lists what was applied, in order.
	Transitions []AppliedTransition
	// Errors holds one entry per tournament that could not be processed.
	Errors []error
}

// ErrorCount is the number of tournaments that failed.
func (r SweepResult) ErrorCount() int { return len(r.Errors) }

// Err joins the per-tournament errors, or returns nil.
func (r SweepResult) Err() error { return errors.Join(r.Errors...) }

// AppliedTransition is one committed status change.
type AppliedTransition struct {
	TournamentID uuid.UUID
	tournamentdomain.Transition
	Cascade *CascadeResult
}

// CascadeResult counts what the cancellation cascade removed.
type CascadeResult struct {
	CancelledRegistrations int `yaml:"cancelled_registrations"`
	CancelledTeams         int `yaml:"cancelled_teams"`
	// ProtectedRegistrations were unconfirmed but kept because a payment cleared.
	ProtectedRegistrations int `yaml:"protected_registrations"`
}
