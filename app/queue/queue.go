// Package queue owns the River client shared by every module's background jobs.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
)

const component = "river"

// Queue names.
const (
	QueueMaintenance = "maintenance"
	QueueResults     = "results"
)

// Metrics records queue lifecycle operations.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// Inserter enqueues jobs. *river.Client satisfies it.
type Inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Registration lets a module add its workers and periodic jobs before the client is built.
type Registration func(workers *river.Workers) []*river.PeriodicJob

var _ Inserter = (*Service)(nil)

// Service runs the River client on its own pgx pool.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics Metrics
	working bool
}

// NewService builds a River client that works jobs from every registered module.
func NewService(ctx context.Context, dsn string, logger *slog.Logger, metrics Metrics, registrations ...Registration) (*Service, error) {
	workers := river.NewWorkers()
	var periodic []*river.PeriodicJob
	for _, register := range registrations {
		periodic = append(periodic, register(workers)...)
	}

	return newService(ctx, dsn, logger, metrics, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueMaintenance:   {MaxWorkers: 1},
			QueueResults:       {MaxWorkers: 4},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       logger,
	}, true)
}

// NewInsertOnly builds a client that can enqueue jobs but never works them.
func NewInsertOnly(ctx context.Context, dsn string, logger *slog.Logger, metrics Metrics) (*Service, error) {
	return newService(ctx, dsn, logger, metrics, &river.Config{Logger: logger}, false)
}

func newService(ctx context.Context, dsn string, logger *slog.Logger, metrics Metrics, cfg *river.Config, working bool) (*Service, error) {
	logger = logger.With(attr.String("component", "river_queue"))

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", component)

	// River needs pgx, not database/sql.
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), cfg)
	if err != nil {
		pool.Close()
		logger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", component)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", component)
	metrics.RecordOperationDuration(ctx, "initialize_service", component, time.Since(start))
	logger.Info("Queue service initialized", attr.Bool("working", working))

	return &Service{client: client, pool: pool, logger: logger, metrics: metrics, working: working}, nil
}

// Start begins working jobs. It is a no-op for insert-only services.
func (s *Service) Start(ctx context.Context) error {
	if !s.working {
		return nil
	}
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", component)

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", component)
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", component)
	s.metrics.RecordOperationDuration(ctx, "start_service", component, time.Since(start))
	s.logger.Info("Queue service started")
	return nil
}

// Stop waits for running jobs to finish and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if !s.working {
		return nil
	}
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", component)

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", component)
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", component)
	s.metrics.RecordOperationDuration(ctx, "stop_service", component, time.Since(start))
	s.logger.Info("Queue service stopped")
	return nil
}

// Insert enqueues a job.
func (s *Service) Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	return s.client.Insert(ctx, args, opts)
}

// HealthCheck verifies the pool can reach the database.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

// Client returns the underlying River client.
func (s *Service) Client() *river.Client[pgx.Tx] {
	return s.client
}
