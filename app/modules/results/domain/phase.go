package resultsdomain

import "fmt"

// PhaseType labels the bracket depth (or non-bracket stage) of a match.
type PhaseType string

const (
	PhaseRoundOf32     PhaseType = "ROUND_OF_32"
	PhaseRoundOf16     PhaseType = "ROUND_OF_16"
	PhaseQuarterfinals PhaseType = "QUARTERFINALS"
	PhaseSemifinals    PhaseType = "SEMIFINALS"
	PhaseThirdPlace    PhaseType = "THIRD_PLACE"
	PhaseFinal         PhaseType = "FINAL"
	// PhaseOther covers knockout rounds outside the main bracket (plate, consolation).
	PhaseOther PhaseType = "OTHER"

	PhaseGroupStage     PhaseType = "GROUP_STAGE"
	PhaseRoundRobin     PhaseType = "ROUND_ROBIN"
	PhaseSwissRound     PhaseType = "SWISS_ROUND"
	PhaseAmericanoRound PhaseType = "AMERICANO_ROUND"
)

// AllPhaseTypes lists every phase in bracket-depth order, deepest first, then non-bracket stages.
var AllPhaseTypes = []PhaseType{
	PhaseRoundOf32,
	PhaseRoundOf16,
	PhaseQuarterfinals,
	PhaseSemifinals,
	PhaseThirdPlace,
	PhaseFinal,
	PhaseOther,
	PhaseGroupStage,
	PhaseRoundRobin,
	PhaseSwissRound,
	PhaseAmericanoRound,
}

// ParsePhaseType converts a stored value into a PhaseType.
func ParsePhaseType(s string) (PhaseType, error) {
	p := PhaseType(s)
	if _, ok := p.Placement(); !ok {
		return "", fmt.Errorf("unknown phase type %q", s)
	}
	return p, nil
}

// PhaseTypeOrOther maps a stored value onto the enum. Values outside it are knockout rounds
// this service has no name for and count as PhaseOther; known is false for them.
func PhaseTypeOrOther(s string) (PhaseType, bool) {
	p, err := ParsePhaseType(s)
	if err != nil {
		return PhaseOther, false
	}
	return p, true
}

func (p PhaseType) String() string { return string(p) }

// Placement says which final positions a decided match in a phase hands out.
// Zero means the phase assigns nothing to that side.
type Placement struct {
	Winner int
	Loser  int
	// Decisive placements come from matches that settle an exact rank and
	// override anything inferred from earlier rounds.
	Decisive bool
}

// Assigns reports whether the placement gives anyone a position.
func (pl Placement) Assigns() bool { return pl.Winner > 0 || pl.Loser > 0 }

// Placement is the position table. Every PhaseType has a case; the boolean is
// false only for values that are not PhaseTypes at all.
// THIRD_PLACE results take priority over the semifinal result, so its loser ends 4th.
func (p PhaseType) Placement() (Placement, bool) {
	switch p {
	case PhaseFinal:
		return Placement{Winner: 1, Loser: 2, Decisive: true}, true
	case PhaseThirdPlace:
		return Placement{Winner: 3, Loser: 4, Decisive: true}, true
	case PhaseSemifinals:
		return Placement{Loser: 3}, true
	case PhaseQuarterfinals:
		return Placement{Loser: 5}, true
	case PhaseRoundOf16:
		return Placement{Loser: 9}, true
	case PhaseRoundOf32:
		return Placement{Loser: 17}, true
	case PhaseOther:
		return Placement{Loser: 10}, true
	case PhaseGroupStage, PhaseRoundRobin, PhaseSwissRound, PhaseAmericanoRound:
		return Placement{}, true
	}
	return Placement{}, false
}

// Depth orders phases by how far into the bracket they are. Non-bracket phases are 0.
func (p PhaseType) Depth() int {
	switch p {
	case PhaseRoundOf32:
		return 1
	case PhaseRoundOf16:
		return 2
	case PhaseQuarterfinals:
		return 3
	case PhaseSemifinals:
		return 4
	case PhaseThirdPlace:
		return 5
	case PhaseFinal:
		return 6
	}
	return 0
}

// MatchStatus is the state of a match.
type MatchStatus string

const (
	MatchScheduled  MatchStatus = "SCHEDULED"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchCompleted  MatchStatus = "COMPLETED"
	MatchWalkover   MatchStatus = "WALKOVER"
	MatchCancelled  MatchStatus = "CANCELLED"
)

// IsDecided reports whether the match has a valid winner.
func (s MatchStatus) IsDecided() bool {
	return s == MatchCompleted || s == MatchWalkover
}
