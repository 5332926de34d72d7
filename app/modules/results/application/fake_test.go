package resultsservice

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Store
// ------------------------

// FakeStore is an in-memory stand-in for both the tournament and the results repositories.
// It has no transactions: tests that exercise failures assert on effects, not on rollback.
type FakeStore struct {
	mu    sync.Mutex
	trace []string

	Tournaments map[uuid.UUID]*tournamentdb.Tournament
	Teams       map[uuid.UUID]*fakeTeam
	Matches     []resultsdb.Match
	Stats       map[uuid.UUID]*resultsdb.TournamentStats
	Rankings    map[resultsdomain.RankingKey]*resultsdb.PlayerRanking

	UpsertRankingFunc     func(ctx context.Context, db bun.IDB, ranking *resultsdb.PlayerRanking) error
	UpdateStatsResultFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, finalPosition *int, points int, at time.Time) error
}

type fakeTeam struct {
	ID           uuid.UUID
	TournamentID uuid.UUID
	CategoryID   uuid.UUID
	Players      [2]uuid.UUID
	Status       tournamentdomain.TeamStatus
}

var (
	_ tournamentdb.Repository = (*FakeStore)(nil)
	_ resultsdb.Repository    = (*FakeStore)(nil)
)

func NewFakeStore() *FakeStore {
	return &FakeStore{
		trace:       []string{},
		Tournaments: map[uuid.UUID]*tournamentdb.Tournament{},
		Teams:       map[uuid.UUID]*fakeTeam{},
		Stats:       map[uuid.UUID]*resultsdb.TournamentStats{},
		Rankings:    map[resultsdomain.RankingKey]*resultsdb.PlayerRanking{},
	}
}

func (f *FakeStore) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

// --- Fixture helpers ---

func (f *FakeStore) AddTournament(t tournamentdb.Tournament) *tournamentdb.Tournament {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.Tournaments[t.ID] = &t
	return f.Tournaments[t.ID]
}

func (f *FakeStore) AddTeam(tournamentID, categoryID uuid.UUID, players ...uuid.UUID) *fakeTeam {
	team := &fakeTeam{ID: uuid.New(), TournamentID: tournamentID, CategoryID: categoryID, Status: tournamentdomain.TeamActive}
	copy(team.Players[:], players)
	f.Teams[team.ID] = team
	return team
}

func (f *FakeStore) AddMatch(tournamentID uuid.UUID, phase resultsdomain.PhaseType, team1, team2, winner *fakeTeam) {
	m := resultsdb.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		PhaseType:    phase,
		Team1ID:      team1.ID,
		Team2ID:      team2.ID,
		Status:       resultsdomain.MatchCompleted,
	}
	if winner != nil {
		id := winner.ID
		m.WinnerTeamID = &id
	}
	f.Matches = append(f.Matches, m)
}

func (f *FakeStore) AddStats(tournamentID, playerID uuid.UUID, matchesWon, setsWon int) *resultsdb.TournamentStats {
	s := &resultsdb.TournamentStats{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		PlayerID:     playerID,
		MatchesWon:   matchesWon,
		SetsWon:      setsWon,
	}
	f.Stats[s.ID] = s
	return s
}

func (f *FakeStore) StatsFor(tournamentID, playerID uuid.UUID) *resultsdb.TournamentStats {
	for _, s := range f.Stats {
		if s.TournamentID == tournamentID && s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// RankingTotals snapshots current_points by key.
func (f *FakeStore) RankingTotals() map[resultsdomain.RankingKey]int {
	out := make(map[resultsdomain.RankingKey]int, len(f.Rankings))
	for k, r := range f.Rankings {
		out[k] = r.CurrentPoints
	}
	return out
}

// --- tournamentdb.Repository ---

func (f *FakeStore) GetTournament(ctx context.Context, db bun.IDB, id uuid.UUID) (*tournamentdb.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTournament")
	t, ok := f.Tournaments[id]
	if !ok {
		return nil, tournamentdb.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *FakeStore) ListTournamentsByStatus(ctx context.Context, db bun.IDB, statuses []tournamentdomain.Status) ([]tournamentdb.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTournamentsByStatus")
	var out []tournamentdb.Tournament
	for _, t := range f.Tournaments {
		if slices.Contains(statuses, t.Status) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *FakeStore) UpdateStatusIfCurrent(ctx context.Context, db bun.IDB, id uuid.UUID, from, to tournamentdomain.Status, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateStatusIfCurrent:" + to.String())
	t, ok := f.Tournaments[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = at
	return true, nil
}

func (f *FakeStore) CountActiveTeams(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.Teams {
		if t.TournamentID == tournamentID && t.Status != tournamentdomain.TeamCancelled {
			n++
		}
	}
	return n, nil
}

func (f *FakeStore) ListCancellableRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]tournamentdb.Registration, error) {
	return nil, nil
}

func (f *FakeStore) CancelRegistration(ctx context.Context, db bun.IDB, id uuid.UUID, from tournamentdomain.RegistrationStatus, at time.Time) (bool, error) {
	return false, nil
}

func (f *FakeStore) ListActiveTeamsForRegistrations(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, registrationIDs []uuid.UUID) ([]tournamentdb.Team, error) {
	return nil, nil
}

func (f *FakeStore) CancelTeam(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error) {
	return false, nil
}

// --- resultsdb.Repository ---

func (f *FakeStore) ListDecidedMatches(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]resultsdb.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListDecidedMatches")
	var out []resultsdb.Match
	for _, m := range f.Matches {
		if m.TournamentID == tournamentID && m.Status.IsDecided() && m.WinnerTeamID != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeStore) ListTeamRosters(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]resultsdb.TeamRoster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeamRosters")
	var out []resultsdb.TeamRoster
	for _, t := range f.Teams {
		if t.TournamentID != tournamentID {
			continue
		}
		out = append(out, resultsdb.TeamRoster{
			TeamID:     t.ID,
			CategoryID: t.CategoryID,
			Status:     t.Status,
			Player1ID:  t.Players[0],
			Player2ID:  t.Players[1],
		})
	}
	return out, nil
}

func (f *FakeStore) ListStats(ctx context.Context, db bun.IDB, tournamentID uuid.UUID) ([]resultsdb.TournamentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListStats")
	var out []resultsdb.TournamentStats
	for _, s := range f.Stats {
		if s.TournamentID == tournamentID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *FakeStore) GetStats(ctx context.Context, db bun.IDB, tournamentID, playerID uuid.UUID) (*resultsdb.TournamentStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetStats")
	if s := f.StatsFor(tournamentID, playerID); s != nil {
		cp := *s
		return &cp, nil
	}
	return nil, resultsdb.ErrNotFound
}

func (f *FakeStore) UpdateStatsResult(ctx context.Context, db bun.IDB, id uuid.UUID, finalPosition *int, points int, at time.Time) error {
	f.mu.Lock()
	f.record("UpdateStatsResult")
	fn := f.UpdateStatsResultFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, id, finalPosition, points, at)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.Stats[id]
	if !ok {
		return resultsdb.ErrNotFound
	}
	if finalPosition != nil {
		p := *finalPosition
		s.FinalPosition = &p
	} else {
		s.FinalPosition = nil
	}
	s.PointsEarned = points
	s.UpdatedAt = at
	return nil
}

func (f *FakeStore) ResetStats(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, at time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResetStats")
	n := 0
	for _, s := range f.Stats {
		if s.TournamentID == tournamentID {
			s.FinalPosition = nil
			s.PointsEarned = 0
			s.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (f *FakeStore) SeasonPoints(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonStart, seasonEnd time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SeasonPoints")
	total := 0
	for _, s := range f.Stats {
		if s.PlayerID != playerID {
			continue
		}
		t, ok := f.Tournaments[s.TournamentID]
		if !ok || t.Status != tournamentdomain.StatusCompleted {
			continue
		}
		if t.TournamentEnd.Before(seasonStart) || !t.TournamentEnd.Before(seasonEnd) {
			continue
		}
		if !f.memberOf(s.TournamentID, categoryID, playerID) {
			continue
		}
		total += s.PointsEarned
	}
	return total, nil
}

func (f *FakeStore) memberOf(tournamentID, categoryID, playerID uuid.UUID) bool {
	for _, team := range f.Teams {
		if team.TournamentID == tournamentID && team.CategoryID == categoryID &&
			team.Status != tournamentdomain.TeamCancelled && slices.Contains(team.Players[:], playerID) {
			return true
		}
	}
	return false
}

func (f *FakeStore) UpsertRanking(ctx context.Context, db bun.IDB, ranking *resultsdb.PlayerRanking) error {
	f.mu.Lock()
	f.record("UpsertRanking")
	fn := f.UpsertRankingFunc
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, db, ranking)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ranking.Key()
	if existing, ok := f.Rankings[key]; ok {
		existing.CurrentPoints = ranking.CurrentPoints
		existing.LastUpdated = ranking.LastUpdated
		return nil
	}
	cp := *ranking
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	f.Rankings[key] = &cp
	return nil
}

func (f *FakeStore) GetRanking(ctx context.Context, db bun.IDB, playerID, categoryID uuid.UUID, seasonYear int) (*resultsdb.PlayerRanking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.Rankings[resultsdomain.RankingKey{PlayerID: playerID, CategoryID: categoryID, SeasonYear: seasonYear}]
	if !ok {
		return nil, resultsdb.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *FakeStore) ListRankings(ctx context.Context, db bun.IDB, categoryID uuid.UUID, seasonYear int) ([]resultsdb.PlayerRanking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []resultsdb.PlayerRanking
	for _, r := range f.Rankings {
		if r.CategoryID == categoryID && r.SeasonYear == seasonYear {
			out = append(out, *r)
		}
	}
	return out, nil
}

// ------------------------
// Fake collaborators
// ------------------------

type FakeAuditLogger struct {
	mu      sync.Mutex
	Entries []audit.Entry
}

func (f *FakeAuditLogger) Log(ctx context.Context, entry audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Entries = append(f.Entries, entry)
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

type FakePublisher struct {
	mu     sync.Mutex
	Topics []string
	Events []any
}

func (f *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Topics = append(f.Topics, topic)
	f.Events = append(f.Events, payload)
	return nil
}
