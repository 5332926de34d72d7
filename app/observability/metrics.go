package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "tournament_results"

// Metrics is the prometheus-backed implementation of every module's metrics interface.
type Metrics struct {
	Registry *prometheus.Registry

	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec

	statusTransitions      *prometheus.CounterVec
	cancelledRegistrations prometheus.Counter
	cancelledTeams         prometheus.Counter
	playersScored          prometheus.Counter
	pointsAwarded          prometheus.Histogram
	rankingsUpdated        prometheus.Counter
	auditFailures          prometheus.Counter
	eventPublishFailures   *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_successes_total",
			Help:      "Service operations that succeeded.",
		}, []string{"operation", "service"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Service operations that failed.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Automatic tournament status transitions applied.",
		}, []string{"from", "to"}),
		cancelledRegistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_cancelled_registrations_total",
			Help:      "Registrations cancelled by the start-of-tournament cascade.",
		}),
		cancelledTeams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_cancelled_teams_total",
			Help:      "Teams cancelled by the start-of-tournament cascade.",
		}),
		playersScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_scored_total",
			Help:      "TournamentStats rows scored by the results pipeline.",
		}),
		pointsAwarded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "points_awarded",
			Help:      "Distribution of final points per player per tournament.",
			Buckets:   []float64{50, 100, 250, 500, 750, 1000, 1500, 2500, 5000},
		}),
		rankingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rankings_upserted_total",
			Help:      "PlayerRanking rows recomputed and upserted.",
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Audit log writes that failed and were swallowed.",
		}),
		eventPublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Domain events that could not be published.",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.statusTransitions,
		m.cancelledRegistrations,
		m.cancelledTeams,
		m.playersScored,
		m.pointsAwarded,
		m.rankingsUpdated,
		m.auditFailures,
		m.eventPublishFailures,
	)
	return m
}

func (m *Metrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *Metrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccesses.WithLabelValues(operation, service).Inc()
}

func (m *Metrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(operation, service).Inc()
}

func (m *Metrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *Metrics) RecordStatusTransition(_ context.Context, from, to string) {
	m.statusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordCascade(_ context.Context, registrations, teams int) {
	m.cancelledRegistrations.Add(float64(registrations))
	m.cancelledTeams.Add(float64(teams))
}

func (m *Metrics) RecordPlayerScored(_ context.Context, points int) {
	m.playersScored.Inc()
	m.pointsAwarded.Observe(float64(points))
}

func (m *Metrics) RecordRankingsUpdated(_ context.Context, n int) {
	m.rankingsUpdated.Add(float64(n))
}

func (m *Metrics) RecordAuditFailure(_ context.Context) {
	m.auditFailures.Inc()
}

func (m *Metrics) RecordEventPublishFailure(_ context.Context, topic string) {
	m.eventPublishFailures.WithLabelValues(topic).Inc()
}
