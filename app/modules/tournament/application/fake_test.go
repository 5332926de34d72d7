package tournamentservice

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Tournament Repo
// ------------------------

// FakeTournamentRepo keeps rows in memory and applies the same conditional
// semantics as the bun repository. Func fields override individual methods.
type FakeTournamentRepo struct {
	mu    sync.Mutex
	trace []string

	Tournaments   map[uuid.UUID]*tournamentdb.Tournament
	Registrations map[uuid.UUID]*tournamentdb.Registration
	Teams         map[uuid.UUID]*tournamentdb.Team

	GetTournamentFunc         func(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error)
	UpdateStatusIfCurrentFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, from, to tournamentdomain.Status, at time.Time) (bool, error)
	CancelTeamFunc            func(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error)
}

var _ tournamentdb.Repository = (*FakeTournamentRepo)(nil)

func NewFakeTournamentRepo() *FakeTournamentRepo {
	return &FakeTournamentRepo{
		trace:         []string{},
		Tournaments:   map[uuid.UUID]*tournamentdb.Tournament{},
		Registrations: map[uuid.UUID]*tournamentdb.Registration{},
		Teams:         map[uuid.UUID]*tournamentdb.Team{},
	}
}

func (f *FakeTournamentRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeTournamentRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

// --- Fixture helpers ---

func (f *FakeTournamentRepo) AddTournament(t tournamentdb.Tournament) *tournamentdb.Tournament {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.Tournaments[t.ID] = &t
	return &t
}

func (f *FakeTournamentRepo) AddRegistration(tournamentID uuid.UUID, status tournamentdomain.RegistrationStatus, payments ...tournamentdomain.PaymentStatus) *tournamentdb.Registration {
	reg := &tournamentdb.Registration{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		CategoryID:   uuid.New(),
		PlayerID:     uuid.New(),
		Status:       status,
	}
	for _, p := range payments {
		reg.Payments = append(reg.Payments, &tournamentdb.Payment{ID: uuid.New(), RegistrationID: reg.ID, Amount: 2500, Status: p})
	}
	f.Registrations[reg.ID] = reg
	return reg
}

func (f *FakeTournamentRepo) AddTeam(tournamentID uuid.UUID, reg1, reg2 *tournamentdb.Registration) *tournamentdb.Team {
	team := &tournamentdb.Team{
		ID:              uuid.New(),
		TournamentID:    tournamentID,
		CategoryID:      reg1.CategoryID,
		Registration1ID: reg1.ID,
		Registration2ID: reg2.ID,
		Status:          tournamentdomain.TeamActive,
	}
	f.Teams[team.ID] = team
	return team
}

// --- Repository Interface Implementation ---

func (f *FakeTournamentRepo) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.mu.Lock()
	f.record("GetTournament")
	fn := f.GetTournamentFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tournaments[id]
	if !ok {
		return nil, tournamentdb.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *FakeTournamentRepo) ListTournamentsByStatus(ctx context.Context, db bun.IDB, statuses []tournamentdomain.Status) ([]tournamentdb.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTournamentsByStatus")
	var out []tournamentdb.Tournament
	for _, t := range f.Tournaments {
		if slices.Contains(statuses, t.Status) {
			out = append(out, *t)
		}
	}
	slices.SortFunc(out, func(a, b tournamentdb.Tournament) int { return a.TournamentStart.Compare(b.TournamentStart) })
	return out, nil
}

func (f *FakeTournamentRepo) UpdateStatusIfCurrent(ctx context.Context, db bun.IDB, id uuid.UUID, from, to tournamentdomain.Status, at time.Time) (bool, error) {
	f.mu.Lock()
	f.record("UpdateStatusIfCurrent:" + string(to))
	fn := f.UpdateStatusIfCurrentFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, id, from, to, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tournaments[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = at
	return true, nil
}

func (f *FakeTournamentRepo) CountActiveTeams(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountActiveTeams")
	n := 0
	for _, team := range f.Teams {
		if team.TournamentID == tournamentID && team.Status != tournamentdomain.TeamCancelled {
			n++
		}
	}
	return n, nil
}

func (f *FakeTournamentRepo) ListCancellableRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamentdb.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListCancellableRegistrations")
	var out []tournamentdb.Registration
	for _, reg := range f.Registrations {
		if reg.TournamentID == tournamentID && tournamentdomain.IsCancellationCandidate(reg.Status) {
			out = append(out, *reg)
		}
	}
	slices.SortFunc(out, func(a, b tournamentdb.Registration) int { return compareUUID(a.ID, b.ID) })
	return out, nil
}

func (f *FakeTournamentRepo) CancelRegistration(ctx context.Context, db bun.IDB, id uuid.UUID, from tournamentdomain.RegistrationStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CancelRegistration")
	reg, ok := f.Registrations[id]
	if !ok || reg.Status != from {
		return false, nil
	}
	reg.Status = tournamentdomain.RegistrationCancelled
	reg.UpdatedAt = at
	return true, nil
}

func (f *FakeTournamentRepo) ListActiveTeamsForRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, registrationIDs []uuid.UUID) ([]tournamentdb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListActiveTeamsForRegistrations")
	var out []tournamentdb.Team
	for _, team := range f.Teams {
		if team.TournamentID != tournamentID || team.Status == tournamentdomain.TeamCancelled {
			continue
		}
		if slices.Contains(registrationIDs, team.Registration1ID) || slices.Contains(registrationIDs, team.Registration2ID) {
			out = append(out, *team)
		}
	}
	slices.SortFunc(out, func(a, b tournamentdb.Team) int { return compareUUID(a.ID, b.ID) })
	return out, nil
}

func (f *FakeTournamentRepo) CancelTeam(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	f.record("CancelTeam")
	fn := f.CancelTeamFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, id, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.Teams[id]
	if !ok || team.Status == tournamentdomain.TeamCancelled {
		return false, nil
	}
	team.Status = tournamentdomain.TeamCancelled
	team.UpdatedAt = at
	return true, nil
}

func compareUUID(a, b uuid.UUID) int {
	return slices.Compare(a[:], b[:])
}

// ------------------------
// Fake Audit Logger
// ------------------------

type FakeAuditLogger struct {
	mu      sync.Mutex
	Entries []audit.Entry
	LogFunc func(ctx context.Context, entry audit.Entry) error
}

func (f *FakeAuditLogger) Log(ctx context.Context, entry audit.Entry) error {
	f.mu.Lock()
	f.Entries = append(f.Entries, entry)
	f.mu.Unlock()
	if f.LogFunc != nil {
		return f.LogFunc(ctx, entry)
	}
	return nil
}

func (f *FakeAuditLogger) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Entries))
	for _, e := range f.Entries {
		out = append(out, e.Action)
	}
	return out
}

// ------------------------
// Fake Event Publisher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu          sync.Mutex
	Events      []publishedEvent
	PublishFunc func(ctx context.Context, topic string, payload any) error
}

func (f *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.mu.Lock()
	f.Events = append(f.Events, publishedEvent{Topic: topic, Payload: payload})
	f.mu.Unlock()
	if f.PublishFunc != nil {
		return f.PublishFunc(ctx, topic, payload)
	}
	return nil
}
