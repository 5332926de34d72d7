package resultsdomain

import (
	"math"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
)

const (
	// ParticipationPoints is awarded to every scored player.
	ParticipationPoints = 50

	victoryBonusPerThousand = 25
	setBonusPerThousand     = 5
)

// PositionPercentage is the share of the tournament's ranking points earned by a final position.
// Unplaced players and positions past 17 earn nothing.
func PositionPercentage(position *int) int {
	if position == nil {
		return 0
	}
	switch p := *position; {
	case p == 1:
		return 100
	case p == 2:
		return 70
	case p == 3:
		return 50
	case p == 4:
		return 40
	case p >= 5 && p <= 8:
		return 30
	case p >= 9 && p <= 16:
		return 20
	case p == 17:
		return 10
	default:
		return 0
	}
}

// PointsInput is everything the calculator reads. Negative counts are treated as zero.
type PointsInput struct {
	FinalPosition    *int
	MatchesWon       int
	SetsWon          int
	RankingPoints    int
	TournamentType   tournamentdomain.Type
	ParticipantCount int
}

// PointsBreakdown exposes every intermediate value of a calculation.
type PointsBreakdown struct {
	ParticipationPoints int `json:"participation_points" yaml:"participation_points"`

	FinalPosition      *int `json:"final_position" yaml:"final_position"`
	PositionPercentage int  `json:"position_percentage" yaml:"position_percentage"`
	PositionPoints     int  `json:"position_points" yaml:"position_points"`

	VictoryCount       int `json:"victory_count" yaml:"victory_count"`
	VictoryBonusPerWin int `json:"victory_bonus_per_win" yaml:"victory_bonus_per_win"`
	VictoryBonus       int `json:"victory_bonus" yaml:"victory_bonus"`

	SetCount       int `json:"set_count" yaml:"set_count"`
	SetBonusPerSet int `json:"set_bonus_per_set" yaml:"set_bonus_per_set"`
	SetBonus       int `json:"set_bonus" yaml:"set_bonus"`

	Subtotal int `json:"subtotal" yaml:"subtotal"`

	TournamentMultiplier       float64 `json:"tournament_multiplier" yaml:"tournament_multiplier"`
	AfterTournamentMultiplier  float64 `json:"after_tournament_multiplier" yaml:"after_tournament_multiplier"`
	ParticipantMultiplier      float64 `json:"participant_multiplier" yaml:"participant_multiplier"`
	AfterParticipantMultiplier float64 `json:"after_participant_multiplier" yaml:"after_participant_multiplier"`

	FinalTotal int `json:"final_total" yaml:"final_total"`
}

// PointsCalculator turns a player's tournament stats into points. It has no side effects.
type PointsCalculator struct {
	policy MultiplierPolicy
}

// NewPointsCalculator returns a calculator using policy, or NeutralMultipliers when nil.
func NewPointsCalculator(policy MultiplierPolicy) PointsCalculator {
	if policy == nil {
		policy = NeutralMultipliers{}
	}
	return PointsCalculator{policy: policy}
}

// Calculate computes the breakdown for one player.
func (c PointsCalculator) Calculate(in PointsInput) PointsBreakdown {
	policy := c.policy
	if policy == nil {
		policy = NeutralMultipliers{}
	}

	rp := max(in.RankingPoints, 0)
	wins := max(in.MatchesWon, 0)
	sets := max(in.SetsWon, 0)

	b := PointsBreakdown{
		ParticipationPoints: ParticipationPoints,
		FinalPosition:       in.FinalPosition,
		PositionPercentage:  PositionPercentage(in.FinalPosition),
		VictoryCount:        wins,
		SetCount:            sets,
	}

	b.PositionPoints = round(float64(rp*b.PositionPercentage) / 100)
	b.VictoryBonusPerWin = round(float64(rp*victoryBonusPerThousand) / 1000)
	b.VictoryBonus = wins * b.VictoryBonusPerWin
	b.SetBonusPerSet = round(float64(rp*setBonusPerThousand) / 1000)
	b.SetBonus = sets * b.SetBonusPerSet

	b.Subtotal = b.ParticipationPoints + b.PositionPoints + b.VictoryBonus + b.SetBonus

	b.TournamentMultiplier = policy.TournamentMultiplier(in.TournamentType)
	b.AfterTournamentMultiplier = float64(b.Subtotal) * b.TournamentMultiplier
	b.ParticipantMultiplier = policy.ParticipantMultiplier(in.ParticipantCount)
	b.AfterParticipantMultiplier = b.AfterTournamentMultiplier * b.ParticipantMultiplier

	b.FinalTotal = round(b.AfterParticipantMultiplier)
	return b
}

// round rounds half away from zero; inputs here are never negative.
func round(x float64) int {
	return int(math.Round(x))
}
