package resultsdomain

import (
	"fmt"

	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
)

// MultiplierPolicy supplies the two multiplicative factors applied to a points subtotal.
type MultiplierPolicy interface {
	TournamentMultiplier(t tournamentdomain.Type) float64
	ParticipantMultiplier(participants int) float64
}

// NeutralMultipliers pins both multipliers to 1.0. It is the default policy.
type NeutralMultipliers struct{}

func (NeutralMultipliers) TournamentMultiplier(tournamentdomain.Type) float64 { return 1.0 }

func (NeutralMultipliers) ParticipantMultiplier(int) float64 { return 1.0 }

// LegacyMultipliers weights points by format and field size.
type LegacyMultipliers struct{}

func (LegacyMultipliers) TournamentMultiplier(t tournamentdomain.Type) float64 {
	switch t {
	case tournamentdomain.TypeSingleElimination:
		return 1.2
	case tournamentdomain.TypeDoubleElimination:
		return 1.3
	case tournamentdomain.TypeGroupStageElimination:
		return 1.25
	case tournamentdomain.TypeSwiss:
		return 1.15
	case tournamentdomain.TypeRoundRobin:
		return 1.1
	case tournamentdomain.TypeAmericano:
		return 1.0
	case tournamentdomain.TypeAmericanoSocial:
		return 0.8
	}
	return 1.0
}

func (LegacyMultipliers) ParticipantMultiplier(participants int) float64 {
	switch {
	case participants >= 32:
		return 1.5
	case participants >= 16:
		return 1.3
	case participants >= 8:
		return 1.1
	default:
		return 1.0
	}
}

// PolicyByName resolves the configured policy name.
func PolicyByName(name string) (MultiplierPolicy, error) {
	switch name {
	case "", "neutral":
		return NeutralMultipliers{}, nil
	case "legacy":
		return LegacyMultipliers{}, nil
	}
	return nil, fmt.Errorf("unknown multiplier policy %q", name)
}
