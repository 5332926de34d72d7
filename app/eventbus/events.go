package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// Topics published by this service.
const (
	TopicTournamentStatusChanged = "tournament.status.changed"
	TopicResultsProcessed        = "tournament.results.processed"
	TopicResultsReverted         = "tournament.results.reverted"
)

// TournamentStatusChanged is published after an automatic or administrative status change commits.
type TournamentStatusChanged struct {
	TournamentID           uuid.UUID `json:"tournament_id"`
	From                   string    `json:"from"`
	To                     string    `json:"to"`
	ActorID                string    `json:"actor_id"`
	CancelledRegistrations int       `json:"cancelled_registrations,omitempty"`
	CancelledTeams         int       `json:"cancelled_teams,omitempty"`
	OccurredAt             time.Time `json:"occurred_at"`
}

// ResultsProcessed is published after a tournament's positions, points and rankings commit.
type ResultsProcessed struct {
	TournamentID      uuid.UUID `json:"tournament_id"`
	SeasonYear        int       `json:"season_year"`
	PositionsAssigned int       `json:"positions_assigned"`
	PlayersScored     int       `json:"players_scored"`
	RankingsUpdated   int       `json:"rankings_updated"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ResultsReverted is published after a tournament's contributions are removed from rankings.
type ResultsReverted struct {
	TournamentID    uuid.UUID `json:"tournament_id"`
	SeasonYear      int       `json:"season_year"`
	RankingsUpdated int       `json:"rankings_updated"`
	OccurredAt      time.Time `json:"occurred_at"`
}
