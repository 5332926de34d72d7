package testutils

import (
	"context"
	"fmt"
	"time"

	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TestDataGenerator inserts fixture rows with fake names and random ids.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	db    bun.IDB
}

// NewTestDataGenerator seeds the faker so failures are reproducible.
func NewTestDataGenerator(db bun.IDB, seed uint64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed), db: db}
}

// TournamentSpec overrides fixture defaults. Zero values keep the default.
type TournamentSpec struct {
	Type          tournamentdomain.Type
	Status        tournamentdomain.Status
	RankingPoints int
	// Schedule times; when all zero the tournament ran for two days ending at End.
	RegistrationStart, RegistrationEnd, Start, End time.Time
}

// Tournament inserts one tournament.
func (g *TestDataGenerator) Tournament(ctx context.Context, spec TournamentSpec) (*tournamentdb.Tournament, error) {
	t := &tournamentdb.Tournament{
		ID:                uuid.New(),
		Name:              fmt.Sprintf("%s %s Open", g.faker.City(), g.faker.Color()),
		Type:              spec.Type,
		Status:            spec.Status,
		RegistrationStart: spec.RegistrationStart,
		RegistrationEnd:   spec.RegistrationEnd,
		TournamentStart:   spec.Start,
		TournamentEnd:     spec.End,
		RankingPoints:     spec.RankingPoints,
	}
	if t.Type == "" {
		t.Type = tournamentdomain.TypeSingleElimination
	}
	if t.Status == "" {
		t.Status = tournamentdomain.StatusDraft
	}
	if t.TournamentEnd.IsZero() {
		t.TournamentEnd = time.Now().UTC()
	}
	if t.TournamentStart.IsZero() {
		t.TournamentStart = t.TournamentEnd.Add(-48 * time.Hour)
	}
	if t.RegistrationEnd.IsZero() {
		t.RegistrationEnd = t.TournamentStart.Add(-24 * time.Hour)
	}
	if t.RegistrationStart.IsZero() {
		t.RegistrationStart = t.RegistrationEnd.Add(-14 * 24 * time.Hour)
	}

	if _, err := g.db.NewInsert().Model(t).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert tournament: %w", err)
	}
	return t, nil
}

// Registration inserts a registration and one payment per given status.
func (g *TestDataGenerator) Registration(
	ctx context.Context,
	tournamentID, categoryID, playerID uuid.UUID,
	status tournamentdomain.RegistrationStatus,
	payments ...tournamentdomain.PaymentStatus,
) (*tournamentdb.Registration, error) {
	r := &tournamentdb.Registration{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		CategoryID:   categoryID,
		PlayerID:     playerID,
		Status:       status,
	}
	if _, err := g.db.NewInsert().Model(r).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	for _, ps := range payments {
		p := &tournamentdb.Payment{
			ID:             uuid.New(),
			RegistrationID: r.ID,
			Amount:         int64(g.faker.IntRange(1000, 5000)),
			Status:         ps,
		}
		if _, err := g.db.NewInsert().Model(p).Exec(ctx); err != nil {
			return nil, fmt.Errorf("insert payment: %w", err)
		}
	}
	return r, nil
}

// Team inserts a team over two existing registrations.
func (g *TestDataGenerator) Team(ctx context.Context, r1, r2 *tournamentdb.Registration) (*tournamentdb.Team, error) {
	tm := &tournamentdb.Team{
		ID:              uuid.New(),
		TournamentID:    r1.TournamentID,
		CategoryID:      r1.CategoryID,
		Registration1ID: r1.ID,
		Registration2ID: r2.ID,
		Status:          tournamentdomain.TeamActive,
	}
	if _, err := g.db.NewInsert().Model(tm).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert team: %w", err)
	}
	return tm, nil
}

// BracketTeam is one fixture team with its two players.
type BracketTeam struct {
	Team    *tournamentdb.Team
	Players [2]uuid.UUID
}

// Bracket is an eight-team single-elimination fixture.
type Bracket struct {
	Tournament *tournamentdb.Tournament
	CategoryID uuid.UUID
	Teams      []BracketTeam
}

// EightTeamBracket inserts a finished bracket in which team i finishes in seed order:
// quarterfinals 0-7, 1-6, 2-5, 3-4; semifinals 0-3, 1-2; third place 2 beats 3; final 0 beats 1.
// Players reuse the given ids when supplied, so the same pairs can play several tournaments.
func (g *TestDataGenerator) EightTeamBracket(ctx context.Context, spec TournamentSpec, categoryID uuid.UUID, players ...[2]uuid.UUID) (*Bracket, error) {
	if spec.RankingPoints == 0 {
		spec.RankingPoints = 1000
	}
	t, err := g.Tournament(ctx, spec)
	if err != nil {
		return nil, err
	}

	b := &Bracket{Tournament: t, CategoryID: categoryID}
	for i := range 8 {
		pair := [2]uuid.UUID{uuid.New(), uuid.New()}
		if i < len(players) {
			pair = players[i]
		}
		r1, err := g.Registration(ctx, t.ID, categoryID, pair[0], tournamentdomain.RegistrationPaid, tournamentdomain.PaymentPaid)
		if err != nil {
			return nil, err
		}
		r2, err := g.Registration(ctx, t.ID, categoryID, pair[1], tournamentdomain.RegistrationPaid, tournamentdomain.PaymentPaid)
		if err != nil {
			return nil, err
		}
		tm, err := g.Team(ctx, r1, r2)
		if err != nil {
			return nil, err
		}
		b.Teams = append(b.Teams, BracketTeam{Team: tm, Players: pair})
	}

	tm := b.Teams
	for i := range 4 {
		if err := g.Match(ctx, t.ID, resultsdomain.PhaseQuarterfinals, tm[i], tm[7-i]); err != nil {
			return nil, err
		}
	}
	for _, m := range []struct {
		phase         resultsdomain.PhaseType
		winner, loser BracketTeam
	}{
		{resultsdomain.PhaseSemifinals, tm[0], tm[3]},
		{resultsdomain.PhaseSemifinals, tm[1], tm[2]},
		{resultsdomain.PhaseThirdPlace, tm[2], tm[3]},
		{resultsdomain.PhaseFinal, tm[0], tm[1]},
	} {
		if err := g.Match(ctx, t.ID, m.phase, m.winner, m.loser); err != nil {
			return nil, err
		}
	}

	won := []int{3, 2, 2, 1, 0, 0, 0, 0}
	for i, team := range tm {
		for _, p := range team.Players {
			if err := g.stats(ctx, t.ID, p, won[i], won[i]*2+1); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// Match inserts a COMPLETED match won by winner.
func (g *TestDataGenerator) Match(ctx context.Context, tournamentID uuid.UUID, phase resultsdomain.PhaseType, winner, loser BracketTeam) error {
	winnerID := winner.Team.ID
	m := &resultsdb.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		PhaseType:    phase,
		RoundNumber:  1,
		Team1ID:      winner.Team.ID,
		Team2ID:      loser.Team.ID,
		WinnerTeamID: &winnerID,
		Status:       resultsdomain.MatchCompleted,
	}
	if _, err := g.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (g *TestDataGenerator) stats(ctx context.Context, tournamentID, playerID uuid.UUID, won, setsWon int) error {
	played := won + 1
	if won == 3 {
		played = 3
	}
	s := &resultsdb.TournamentStats{
		ID:            uuid.New(),
		TournamentID:  tournamentID,
		PlayerID:      playerID,
		MatchesPlayed: played,
		MatchesWon:    won,
		SetsWon:       setsWon,
		SetsLost:      g.faker.IntRange(0, 6),
		GamesWon:      g.faker.IntRange(10, 60),
		GamesLost:     g.faker.IntRange(10, 60),
	}
	if _, err := g.db.NewInsert().Model(s).Exec(ctx); err != nil {
		return fmt.Errorf("insert stats: %w", err)
	}
	return nil
}
