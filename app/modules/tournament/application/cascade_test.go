package tournamentservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdomain "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/domain"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestTournamentService_CancelUnconfirmedRegistrations(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *serviceFixture, id uuid.UUID)
		want       CascadeResult
		wantAudits []string
		verify     func(t *testing.T, f *serviceFixture, id uuid.UUID)
	}{
		{
			name: "pending registration without payment is cancelled with its team",
			setup: func(f *serviceFixture, id uuid.UUID) {
				pending := f.repo.AddRegistration(id, tournamentdomain.RegistrationPending)
				partner := f.repo.AddRegistration(id, tournamentdomain.RegistrationConfirmed)
				f.repo.AddTeam(id, partner, pending)
			},
			want: CascadeResult{CancelledRegistrations: 1, CancelledTeams: 1},
			wantAudits: []string{
				audit.ActionRegistrationCancelled,
				audit.ActionTeamCancelled,
			},
			verify: func(t *testing.T, f *serviceFixture, id uuid.UUID) {
				for _, team := range f.repo.Teams {
					assert.Equal(t, tournamentdomain.TeamCancelled, team.Status)
				}
			},
		},
		{
			name: "cleared payment protects a pending registration",
			setup: func(f *serviceFixture, id uuid.UUID) {
				pending := f.repo.AddRegistration(id, tournamentdomain.RegistrationPending,
					tournamentdomain.PaymentFailed, tournamentdomain.PaymentPaid)
				partner := f.repo.AddRegistration(id, tournamentdomain.RegistrationConfirmed)
				f.repo.AddTeam(id, pending, partner)
			},
			want: CascadeResult{ProtectedRegistrations: 1},
			verify: func(t *testing.T, f *serviceFixture, id uuid.UUID) {
				for _, reg := range f.repo.Registrations {
					assert.NotEqual(t, tournamentdomain.RegistrationCancelled, reg.Status)
				}
			},
		},
		{
			name: "pending or refunded payments do not protect",
			setup: func(f *serviceFixture, id uuid.UUID) {
				f.repo.AddRegistration(id, tournamentdomain.RegistrationWaitlist,
					tournamentdomain.PaymentPending, tournamentdomain.PaymentRefunded)
			},
			want:       CascadeResult{CancelledRegistrations: 1},
			wantAudits: []string{audit.ActionRegistrationCancelled},
		},
		{
			name: "confirmed and paid registrations are left alone",
			setup: func(f *serviceFixture, id uuid.UUID) {
				addActiveTeam(f.repo, id)
			},
			want: CascadeResult{},
		},
		{
			name: "team whose both registrations are cancelled is cancelled once",
			setup: func(f *serviceFixture, id uuid.UUID) {
				r1 := f.repo.AddRegistration(id, tournamentdomain.RegistrationPending)
				r2 := f.repo.AddRegistration(id, tournamentdomain.RegistrationWaitlist)
				f.repo.AddTeam(id, r1, r2)
			},
			want: CascadeResult{CancelledRegistrations: 2, CancelledTeams: 1},
			wantAudits: []string{
				audit.ActionRegistrationCancelled,
				audit.ActionRegistrationCancelled,
				audit.ActionTeamCancelled,
			},
		},
		{
			name: "other tournaments are not touched",
			setup: func(f *serviceFixture, id uuid.UUID) {
				other := f.repo.AddTournament(withStatus(schedule(-72, -48, -1, 24), tournamentdomain.StatusInProgress)).ID
				f.repo.AddRegistration(other, tournamentdomain.RegistrationPending)
			},
			want: CascadeResult{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture()
			id := f.repo.AddTournament(withStatus(schedule(-72, -48, -1, 24), tournamentdomain.StatusInProgress)).ID
			tt.setup(f, id)

			got, err := f.svc.CancelUnconfirmedRegistrations(context.Background(), id, "admin-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantAudits, emptyAsNil(f.auditLog.Actions()))
			for _, e := range f.auditLog.Entries {
				assert.Equal(t, "admin-1", e.ActorID)
			}
			if tt.verify != nil {
				tt.verify(t, f, id)
			}
		})
	}
}

func TestTournamentService_CancelUnconfirmedRegistrations_Idempotent(t *testing.T) {
	f := newServiceFixture()
	id := f.repo.AddTournament(withStatus(schedule(-72, -48, -1, 24), tournamentdomain.StatusInProgress)).ID
	pending := f.repo.AddRegistration(id, tournamentdomain.RegistrationPending)
	partner := f.repo.AddRegistration(id, tournamentdomain.RegistrationConfirmed)
	f.repo.AddTeam(id, pending, partner)

	first, err := f.svc.CancelUnconfirmedRegistrations(context.Background(), id, shared.SystemActorID)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{CancelledRegistrations: 1, CancelledTeams: 1}, first)

	second, err := f.svc.CancelUnconfirmedRegistrations(context.Background(), id, shared.SystemActorID)
	require.NoError(t, err)
	assert.Equal(t, CascadeResult{}, second)
	assert.Len(t, f.auditLog.Entries, 2)
}

func TestTournamentService_CancelUnconfirmedRegistrations_UnknownTournament(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.CancelUnconfirmedRegistrations(context.Background(), uuid.New(), "admin-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NotContains(t, f.repo.Trace(), "ListCancellableRegistrations")
}

func TestTournamentService_CancelUnconfirmedRegistrations_AuditFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture()
	f.auditLog.LogFunc = func(ctx context.Context, entry audit.Entry) error {
		return errors.New("audit table missing")
	}
	id := f.repo.AddTournament(withStatus(schedule(-72, -48, -1, 24), tournamentdomain.StatusInProgress)).ID
	f.repo.AddRegistration(id, tournamentdomain.RegistrationPending)

	got, err := f.svc.CancelUnconfirmedRegistrations(context.Background(), id, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.CancelledRegistrations)
}

func TestTournamentService_CancelUnconfirmedRegistrations_TeamFailureWritesNoAudit(t *testing.T) {
	f := newServiceFixture()
	f.repo.CancelTeamFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID, at time.Time) (bool, error) {
		return false, shared.StoreError(errors.New("deadlock detected"))
	}
	id := f.repo.AddTournament(withStatus(schedule(-72, -48, -1, 24), tournamentdomain.StatusInProgress)).ID
	pending := f.repo.AddRegistration(id, tournamentdomain.RegistrationPending)
	partner := f.repo.AddRegistration(id, tournamentdomain.RegistrationConfirmed)
	f.repo.AddTeam(id, pending, partner)

	_, err := f.svc.CancelUnconfirmedRegistrations(context.Background(), id, "admin-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrTransientStore)
	assert.True(t, shared.IsRetryable(err))
	// Effects are only flushed after commit.
	assert.Empty(t, f.auditLog.Entries)
}
