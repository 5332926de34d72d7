package resultsservice

import (
	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	"github.com/google/uuid"
)

// ProcessResult summarizes one pipeline run.
type ProcessResult struct {
	SeasonYear        int `json:"season_year" yaml:"season_year"`
	PositionsAssigned int `json:"positions_assigned" yaml:"positions_assigned"`
	PlayersScored     int `json:"players_scored" yaml:"players_scored"`
	RankingsUpdated   int `json:"rankings_updated" yaml:"rankings_updated"`
	// Breakdowns is keyed by player id.
	Breakdowns map[uuid.UUID]resultsdomain.PointsBreakdown `json:"breakdowns" yaml:"breakdowns"`
}

// ReversionResult summarizes one reversal.
type ReversionResult struct {
	SeasonYear      int `json:"season_year" yaml:"season_year"`
	StatsReset      int `json:"stats_reset" yaml:"stats_reset"`
	RankingsUpdated int `json:"rankings_updated" yaml:"rankings_updated"`
}
