package tournamentservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "TournamentService"

// Metrics is the subset of observability the tournament service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordStatusTransition(ctx context.Context, from, to string)
	RecordCascade(ctx context.Context, registrations, teams int)
	RecordEventPublishFailure(ctx context.Context, topic string)
}

// TournamentService implements the Service interface.
type TournamentService struct {
	repo    tournamentdb.Repository
	audit   *audit.Sink
	events  eventbus.Publisher
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
	db      *bun.DB
	clock   shared.Clock
}

var _ Service = (*TournamentService)(nil)

// NewTournamentService creates a new TournamentService.
func NewTournamentService(
	repo tournamentdb.Repository,
	sink *audit.Sink,
	events eventbus.Publisher,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	clock shared.Clock,
) *TournamentService {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &TournamentService{
		repo:    repo,
		audit:   sink,
		events:  events,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		clock:   clock,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *TournamentService,
	ctx context.Context,
	operationName string,
	identifier string,
	op func(ctx context.Context) (T, error),
) (result T, err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, serviceName+"."+operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("operation", operationName),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		span.SetStatus(codes.Error, wrappedErr.Error())
		return result, wrappedErr
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)
	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func (s *TournamentService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// effects collects audit entries and events produced inside a transaction.
// They are only emitted once the transaction has committed.
type effects struct {
	audits []audit.Entry
	events []pendingEvent
}

type pendingEvent struct {
	topic   string
	payload any
}

func (fx *effects) audit(e audit.Entry) { fx.audits = append(fx.audits, e) }

func (fx *effects) publish(topic string, payload any) {
	fx.events = append(fx.events, pendingEvent{topic: topic, payload: payload})
}

// flush writes audit entries and publishes events. Neither can fail the caller.
func (s *TournamentService) flush(ctx context.Context, fx *effects) {
	if failed := s.audit.Record(ctx, fx.audits...); failed > 0 {
		s.logger.WarnContext(ctx, "Some audit entries were not written",
			attr.Int("failed", failed),
			attr.Int("total", len(fx.audits)),
		)
	}
	if s.events == nil {
		return
	}
	for _, ev := range fx.events {
		if err := s.events.Publish(ctx, ev.topic, ev.payload); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish event",
				attr.String("topic", ev.topic),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordEventPublishFailure(ctx, ev.topic)
			}
		}
	}
}
