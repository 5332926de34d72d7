package resultsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ResultsService"

// Metrics is the subset of observability the results service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordStatusTransition(ctx context.Context, from, to string)
	RecordPlayerScored(ctx context.Context, points int)
	RecordRankingsUpdated(ctx context.Context, n int)
	RecordEventPublishFailure(ctx context.Context, topic string)
}

// ResultsService implements the Service interface.
type ResultsService struct {
	tournaments tournamentdb.Repository
	repo        resultsdb.Repository
	calculator  resultsdomain.PointsCalculator
	season      resultsdomain.SeasonBasis
	audit       *audit.Sink
	events      eventbus.Publisher
	logger      *slog.Logger
	metrics     Metrics
	tracer      trace.Tracer
	db          *bun.DB
	clock       shared.Clock
}

var _ Service = (*ResultsService)(nil)

// NewResultsService creates a new ResultsService.
func NewResultsService(
	tournaments tournamentdb.Repository,
	repo resultsdb.Repository,
	calculator resultsdomain.PointsCalculator,
	season resultsdomain.SeasonBasis,
	sink *audit.Sink,
	events eventbus.Publisher,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	clock shared.Clock,
) *ResultsService {
	if logger == nil {
		logger = slog.Default()
	}
	if season == "" {
		season = resultsdomain.SeasonCalendar
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ResultsService{
		tournaments: tournaments,
		repo:        repo,
		calculator:  calculator,
		season:      season,
		audit:       sink,
		events:      events,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		clock:       clock,
	}
}

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ResultsService,
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

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func (s *ResultsService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// effects holds what a transaction wants to announce once it has committed.
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

func (s *ResultsService) flush(ctx context.Context, fx *effects) {
	s.audit.Record(ctx, fx.audits...)
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
