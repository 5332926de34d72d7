package tournamentintegrationtests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/Black-And-White-Club/tournament-results/integration_tests/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// failingTeams is the bun-backed tournament repository with CancelTeam failing.
// Registration cancellations before it still reach Postgres.
type failingTeams struct {
	tournamentdb.Repository
}

func (failingTeams) CancelTeam(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error) {
	return false, shared.StoreError(errors.New("deadlock detected"))
}

type cascadeFixture struct {
	tournament *tournamentdb.Tournament
	unpaid     *tournamentdb.Registration
	partner    *tournamentdb.Registration
	team       *tournamentdb.Team
}

func seedCascade(t *testing.T, deps TestDeps, status tournamentdomain.Status) cascadeFixture {
	t.Helper()
	tour, err := deps.Data.Tournament(deps.Ctx, testutils.TournamentSpec{
		Status:            status,
		RegistrationStart: hours(-72),
		RegistrationEnd:   hours(-24),
		Start:             hours(-1),
		End:               hours(48),
	})
	require.NoError(t, err)

	category := uuid.New()
	unpaid, err := deps.Data.Registration(deps.Ctx, tour.ID, category, uuid.New(), tournamentdomain.RegistrationPending, tournamentdomain.PaymentPending)
	require.NoError(t, err)
	partner, err := deps.Data.Registration(deps.Ctx, tour.ID, category, uuid.New(), tournamentdomain.RegistrationConfirmed)
	require.NoError(t, err)
	team, err := deps.Data.Team(deps.Ctx, unpaid, partner)
	require.NoError(t, err)

	// A paid team keeps the tournament startable.
	a, err := deps.Data.Registration(deps.Ctx, tour.ID, category, uuid.New(), tournamentdomain.RegistrationPaid, tournamentdomain.PaymentPaid)
	require.NoError(t, err)
	b, err := deps.Data.Registration(deps.Ctx, tour.ID, category, uuid.New(), tournamentdomain.RegistrationPaid, tournamentdomain.PaymentPaid)
	require.NoError(t, err)
	_, err = deps.Data.Team(deps.Ctx, a, b)
	require.NoError(t, err)

	return cascadeFixture{tournament: tour, unpaid: unpaid, partner: partner, team: team}
}

func failingTournamentServices(deps TestDeps) testutils.Services {
	return deps.Env.NewServicesWith(
		shared.FixedClock(sweepNow), nil, "",
		failingTeams{Repository: deps.Env.DBService.TournamentDB}, deps.Env.DBService.ResultsDB,
	)
}

func TestCancelUnconfirmedRegistrations_TeamFailureRollsBackRegistrations(t *testing.T) {
	deps := SetupTestDeps(t)
	fx := seedCascade(t, deps, tournamentdomain.StatusInProgress)

	svc := failingTournamentServices(deps)
	_, err := svc.Tournament.CancelUnconfirmedRegistrations(deps.Ctx, fx.tournament.ID, "admin-1")
	require.ErrorIs(t, err, shared.ErrTransientStore)

	assert.Equal(t, tournamentdomain.RegistrationPending, registrationStatus(t, deps, fx.unpaid.ID))
	assert.Equal(t, tournamentdomain.RegistrationConfirmed, registrationStatus(t, deps, fx.partner.ID))
	assert.Equal(t, tournamentdomain.TeamActive, teamStatus(t, deps, fx.team.ID))

	logs, err := deps.Env.DBService.AuditDB.ListForEntity(deps.Ctx, audit.EntityRegistration, fx.unpaid.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	// Retrying on a healthy store applies the whole cascade.
	res, err := deps.Services.Tournament.CancelUnconfirmedRegistrations(deps.Ctx, fx.tournament.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.CancelledRegistrations)
	assert.Equal(t, 1, res.CancelledTeams)
	assert.Equal(t, tournamentdomain.TeamCancelled, teamStatus(t, deps, fx.team.ID))
}

func TestSweepAt_CascadeFailureKeepsTournamentClosed(t *testing.T) {
	deps := SetupTestDeps(t)
	fx := seedCascade(t, deps, tournamentdomain.StatusRegistrationClosed)

	svc := failingTournamentServices(deps)
	res, err := svc.Tournament.SweepAt(deps.Ctx, sweepNow)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], shared.ErrTransientStore)
	assert.Zero(t, res.UpdatedCount)

	assert.Equal(t, tournamentdomain.StatusRegistrationClosed, tournamentStatus(t, deps, fx.tournament.ID))
	assert.Equal(t, tournamentdomain.RegistrationPending, registrationStatus(t, deps, fx.unpaid.ID))
	assert.Equal(t, tournamentdomain.TeamActive, teamStatus(t, deps, fx.team.ID))
}
