// Package audit records human-readable entries for status changes.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions written by this service.
const (
	ActionTournamentStatusChanged = "TOURNAMENT_STATUS_CHANGED"
	ActionRegistrationCancelled   = "REGISTRATION_CANCELLED"
	ActionTeamCancelled           = "TEAM_CANCELLED"
	ActionResultsProcessed        = "TOURNAMENT_RESULTS_PROCESSED"
	ActionResultsReverted         = "TOURNAMENT_RESULTS_REVERTED"
)

// Entity types referenced by entries.
const (
	EntityTournament   = "TOURNAMENT"
	EntityRegistration = "REGISTRATION"
	EntityTeam         = "TEAM"
)

// Entry is one audit record. OldData and NewData are marshalled to JSON.
type Entry struct {
	ActorID     string
	Action      string
	EntityType  string
	EntityID    uuid.UUID
	Description string
	OldData     any
	NewData     any
	CreatedAt   time.Time
}

// StatusChange is the payload stored in OldData/NewData for status transitions.
type StatusChange struct {
	Status string `json:"status"`
}

// Logger persists audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}
