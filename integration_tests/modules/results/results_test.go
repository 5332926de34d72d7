package resultsintegrationtests

import (
	"sync"
	"testing"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/Black-And-White-Club/tournament-results/integration_tests/testutils"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var (
	wantPositions = []int{1, 2, 3, 4, 5, 5, 5, 5}
	wantPoints    = []int{1160, 825, 625, 490, 355, 355, 355, 355}
)

func completedBracket(t *testing.T, deps TestDeps, category uuid.UUID, players ...[2]uuid.UUID) *testutils.Bracket {
	t.Helper()
	b, err := deps.Data.EightTeamBracket(deps.Ctx, testutils.TournamentSpec{
		Status: tournamentdomain.StatusCompleted,
		End:    now.AddDate(0, -1, 0),
	}, category, players...)
	require.NoError(t, err)
	return b
}

func TestProcessCompletedTournament_PersistsPositionsAndRankings(t *testing.T) {
	deps := SetupTestDeps(t)
	b := completedBracket(t, deps, uuid.New())

	res, err := deps.Services.Results.ProcessCompletedTournament(deps.Ctx, b.Tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, res.PlayersScored)
	assert.Equal(t, 16, res.RankingsUpdated)

	for i, team := range b.Teams {
		for _, p := range team.Players {
			stats, err := deps.Env.DBService.ResultsDB.GetStats(deps.Ctx, nil, b.Tournament.ID, p)
			require.NoError(t, err)
			require.NotNil(t, stats.FinalPosition, "team %d", i)
			assert.Equal(t, wantPositions[i], *stats.FinalPosition, "team %d", i)
			assert.Equal(t, wantPoints[i], stats.PointsEarned, "team %d", i)

			points, err := testutils.RankingPoints(deps.Ctx, deps.Env.DB, p, b.CategoryID, 2026)
			require.NoError(t, err)
			assert.Equal(t, wantPoints[i], points, "team %d ranking", i)
		}
	}
}

func TestProcessCompletedTournament_Idempotent(t *testing.T) {
	deps := SetupTestDeps(t)
	b := completedBracket(t, deps, uuid.New())

	_, err := deps.Services.Results.ProcessCompletedTournament(deps.Ctx, b.Tournament.ID)
	require.NoError(t, err)
	first, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, b.Tournament.ID)
	require.NoError(t, err)

	_, err = deps.Services.Results.ProcessCompletedTournament(deps.Ctx, b.Tournament.ID)
	require.NoError(t, err)
	second, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, b.Tournament.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run changed state (-first +second):\n%s", diff)
	}
}

func TestProcessCompletedTournament_RejectsOpenTournament(t *testing.T) {
	deps := SetupTestDeps(t)
	tour, err := deps.Data.Tournament(deps.Ctx, testutils.TournamentSpec{Status: tournamentdomain.StatusInProgress, End: now})
	require.NoError(t, err)

	_, err = deps.Services.Results.ProcessCompletedTournament(deps.Ctx, tour.ID)
	require.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = deps.Services.Results.ProcessCompletedTournament(deps.Ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompleteRevertComplete_RoundTrip(t *testing.T) {
	deps := SetupTestDeps(t)
	category := uuid.New()

	// An earlier tournament gives the same players a non-zero baseline.
	earlier := completedBracket(t, deps, category)
	_, err := deps.Services.Results.ProcessCompletedTournament(deps.Ctx, earlier.Tournament.ID)
	require.NoError(t, err)

	players := make([][2]uuid.UUID, len(earlier.Teams))
	for i, team := range earlier.Teams {
		players[i] = team.Players
	}
	b, err := deps.Data.EightTeamBracket(deps.Ctx, testutils.TournamentSpec{
		Status: tournamentdomain.StatusInProgress,
		End:    now.AddDate(0, 0, -1),
	}, category, players...)
	require.NoError(t, err)

	baseline, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, earlier.Tournament.ID)
	require.NoError(t, err)

	_, err = deps.Services.Results.CompleteTournament(deps.Ctx, b.Tournament.ID, "admin-1")
	require.NoError(t, err)
	completed, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, b.Tournament.ID)
	require.NoError(t, err)

	champion := b.Teams[0].Players[0]
	points, err := testutils.RankingPoints(deps.Ctx, deps.Env.DB, champion, category, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2*1160, points)

	rev, err := deps.Services.Results.RevertTournament(deps.Ctx, b.Tournament.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 16, rev.StatsReset)

	reverted, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, earlier.Tournament.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(baseline.Rankings, reverted.Rankings); diff != "" {
		t.Errorf("reversion did not restore rankings (-want +got):\n%s", diff)
	}

	tour, err := deps.Env.DBService.TournamentDB.GetTournament(deps.Ctx, nil, b.Tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournamentdomain.StatusInProgress, tour.Status)

	_, err = deps.Services.Results.CompleteTournament(deps.Ctx, b.Tournament.ID, "admin-1")
	require.NoError(t, err)
	again, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, b.Tournament.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(completed, again); diff != "" {
		t.Errorf("re-completion differs from first completion (-first +again):\n%s", diff)
	}

	logs, err := deps.Env.DBService.AuditDB.ListForEntity(deps.Ctx, audit.EntityTournament, b.Tournament.ID, 20)
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Contains(t, actions, audit.ActionResultsProcessed)
	assert.Contains(t, actions, audit.ActionResultsReverted)
	assert.Contains(t, actions, audit.ActionTournamentStatusChanged)
}

func TestProcessCompletedTournament_ConcurrentRunsOnOneTournament(t *testing.T) {
	deps := SetupTestDeps(t)
	b := completedBracket(t, deps, uuid.New())

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			_, err := deps.Services.Results.ProcessCompletedTournament(deps.Ctx, b.Tournament.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	concurrent, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, b.Tournament.ID)
	require.NoError(t, err)

	_, err = deps.Services.Results.ProcessCompletedTournament(deps.Ctx, b.Tournament.ID)
	require.NoError(t, err)
	serial, err := testutils.TakeSnapshot(deps.Ctx, deps.Env.DB, b.Tournament.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(serial, concurrent); diff != "" {
		t.Errorf("concurrent runs diverged from a serial run (-serial +concurrent):\n%s", diff)
	}
}

func TestProcessCompletedTournament_ConcurrentTournamentsShareRankings(t *testing.T) {
	deps := SetupTestDeps(t)
	category := uuid.New()

	first := completedBracket(t, deps, category)
	players := make([][2]uuid.UUID, len(first.Teams))
	for i, team := range first.Teams {
		players[i] = team.Players
	}
	second := completedBracket(t, deps, category, players...)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{first.Tournament.ID, second.Tournament.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = deps.Services.Results.ProcessCompletedTournament(deps.Ctx, id)
		}()
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	for i, team := range first.Teams {
		for _, p := range team.Players {
			points, err := testutils.RankingPoints(deps.Ctx, deps.Env.DB, p, category, 2026)
			require.NoError(t, err)
			assert.Equal(t, 2*wantPoints[i], points, "team %d", i)
		}
	}
}
