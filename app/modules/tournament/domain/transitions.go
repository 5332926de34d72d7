package tournamentdomain

import "time"

// Schedule holds the dates that drive automatic status changes.
type Schedule struct {
	RegistrationStart time.Time
	RegistrationEnd   time.Time
	TournamentStart   time.Time
	TournamentEnd     time.Time
}

// Transition is a single status change.
type Transition struct {
	From Status
	To   Status
}

// StartsTournament reports whether applying t begins play, which triggers the cancellation cascade.
func (t Transition) StartsTournament() bool {
	return t.From == StatusRegistrationClosed && t.To == StatusInProgress
}

// NextTransition evaluates the date rules once against now.
//
//	PUBLISHED           -> REGISTRATION_OPEN   when registrationStart <= now <= registrationEnd
//	REGISTRATION_OPEN   -> REGISTRATION_CLOSED when now > registrationEnd
//	REGISTRATION_CLOSED -> IN_PROGRESS         when now >= tournamentStart and teamCount >= 1
//
// Every other status is administrator-driven and never moves here.
func NextTransition(status Status, s Schedule, teamCount int, now time.Time) (Transition, bool) {
	switch status {
	case StatusPublished:
		if !now.Before(s.RegistrationStart) && !now.After(s.RegistrationEnd) {
			return Transition{From: status, To: StatusRegistrationOpen}, true
		}
	case StatusRegistrationOpen:
		if now.After(s.RegistrationEnd) {
			return Transition{From: status, To: StatusRegistrationClosed}, true
		}
	case StatusRegistrationClosed:
		if !now.Before(s.TournamentStart) && teamCount >= 1 {
			return Transition{From: status, To: StatusInProgress}, true
		}
	}
	return Transition{}, false
}

// PlanTransitions applies NextTransition repeatedly, so a tournament whose registration
// window and start date have both passed moves through every step in one sweep.
// The result is empty when nothing is due.
func PlanTransitions(status Status, s Schedule, teamCount int, now time.Time) []Transition {
	var plan []Transition
	current := status
	// The forward chain has at most three automatic steps.
	for range 3 {
		t, ok := NextTransition(current, s, teamCount, now)
		if !ok {
			break
		}
		plan = append(plan, t)
		current = t.To
	}
	return plan
}
