package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics()

	m.RecordOperationAttempt(ctx, "ProcessCompletedTournament", "ResultsService")
	m.RecordOperationSuccess(ctx, "ProcessCompletedTournament", "ResultsService")
	m.RecordOperationDuration(ctx, "ProcessCompletedTournament", "ResultsService", 20*time.Millisecond)
	m.RecordStatusTransition(ctx, "REGISTRATION_CLOSED", "IN_PROGRESS")
	m.RecordCascade(ctx, 3, 2)
	m.RecordPlayerScored(ctx, 1160)
	m.RecordPlayerScored(ctx, 825)
	m.RecordRankingsUpdated(ctx, 16)
	m.RecordAuditFailure(ctx)
	m.RecordEventPublishFailure(ctx, "tournament.results.processed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationAttempts.WithLabelValues("ProcessCompletedTournament", "ResultsService")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.operationFailures.WithLabelValues("ProcessCompletedTournament", "ResultsService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("REGISTRATION_CLOSED", "IN_PROGRESS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.cancelledRegistrations))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cancelledTeams))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.playersScored))
	assert.Equal(t, 16.0, testutil.ToFloat64(m.rankingsUpdated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventPublishFailures.WithLabelValues("tournament.results.processed")))

	n, err := testutil.GatherAndCount(m.Registry, "tournament_results_points_awarded")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
}
