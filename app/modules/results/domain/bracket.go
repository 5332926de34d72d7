package resultsdomain

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Side identifies one of the two teams in a match.
type Side int

const (
	SideTeam1 Side = iota + 1
	SideTeam2
)

// DecidedMatch is a finished match reduced to what position inference needs.
type DecidedMatch struct {
	ID     uuid.UUID
	Phase  PhaseType
	Status MatchStatus
	Team1  [2]uuid.UUID
	Team2  [2]uuid.UUID
	Winner Side
}

func (m DecidedMatch) sides() (winners, losers [2]uuid.UUID, ok bool) {
	switch m.Winner {
	case SideTeam1:
		return m.Team1, m.Team2, true
	case SideTeam2:
		return m.Team2, m.Team1, true
	}
	return winners, losers, false
}

// InferFinalPositions derives each player's final standing from a tournament's decided matches.
//
// Losers are placed by the phase they were knocked out in. The FINAL decides 1st and 2nd and
// the THIRD_PLACE match decides 3rd and 4th; those results override anything inferred from
// earlier rounds. Otherwise a player keeps the best (smallest) position seen. Players who only
// appear in non-bracket phases get no position. A phase outside the enum places like PhaseOther.
func InferFinalPositions(matches []DecidedMatch) map[uuid.UUID]int {
	ordered := slices.Clone(matches)
	slices.SortStableFunc(ordered, func(a, b DecidedMatch) int {
		if c := cmp.Compare(b.Phase.Depth(), a.Phase.Depth()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	decisive := make(map[uuid.UUID]int)
	inferred := make(map[uuid.UUID]int)

	for _, m := range ordered {
		if !m.Status.IsDecided() {
			continue
		}
		placement, ok := m.Phase.Placement()
		if !ok {
			placement, _ = PhaseOther.Placement()
		}
		if !placement.Assigns() {
			continue
		}
		winners, losers, ok := m.sides()
		if !ok {
			continue
		}

		target := inferred
		if placement.Decisive {
			target = decisive
		}
		if placement.Winner > 0 {
			assignBest(target, winners, placement.Winner)
		}
		if placement.Loser > 0 {
			assignBest(target, losers, placement.Loser)
		}
	}

	positions := inferred
	for player, pos := range decisive {
		positions[player] = pos
	}
	return positions
}

func assignBest(positions map[uuid.UUID]int, players [2]uuid.UUID, position int) {
	for _, p := range players {
		if p == uuid.Nil {
			continue
		}
		if current, ok := positions[p]; ok && current <= position {
			continue
		}
		positions[p] = position
	}
}
