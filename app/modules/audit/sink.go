package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Metrics records swallowed audit failures.
type Metrics interface {
	RecordAuditFailure(ctx context.Context)
}

// Sink writes audit entries without ever failing the caller.
// A nil *Sink is valid and drops everything.
type Sink struct {
	logger  Logger
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
	warn    rate.Sometimes
}

// NewSink wraps logger. Failure warnings are throttled to one per second after the first few.
func NewSink(logger Logger, log *slog.Logger, metrics Metrics) *Sink {
	if log == nil {
		log = slog.Default()
	}
	return &Sink{
		logger:  logger,
		log:     log,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
		warn:    rate.Sometimes{First: 5, Interval: time.Second},
	}
}

// Record writes every entry and returns how many failed. Failures are logged
// locally and counted but never returned.
func (s *Sink) Record(ctx context.Context, entries ...Entry) (failed int) {
	if s == nil || s.logger == nil {
		return 0
	}
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = s.now()
		}
		if err := s.write(ctx, e); err != nil {
			failed++
			if s.metrics != nil {
				s.metrics.RecordAuditFailure(ctx)
			}
			s.warn.Do(func() {
				s.log.WarnContext(ctx, "Audit log write failed",
					attr.String("action", e.Action),
					attr.String("entity_type", e.EntityType),
					attr.UUID("entity_id", e.EntityID),
					attr.Error(err),
				)
			})
		}
	}
	return failed
}

func (s *Sink) write(ctx context.Context, e Entry) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", shared.ErrLoggingFailure, r)
		}
	}()
	if err := s.logger.Log(ctx, e); err != nil {
		if errors.Is(err, shared.ErrLoggingFailure) {
			return err
		}
		return fmt.Errorf("%w: %w", shared.ErrLoggingFailure, err)
	}
	return nil
}

// StatusEntry builds an entry describing a status transition.
func StatusEntry(actorID, action, entityType string, id uuid.UUID, from, to string) Entry {
	return Entry{
		ActorID:     actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    id,
		Description: fmt.Sprintf("%s %s status changed from %s to %s", entityType, id, from, to),
		OldData:     StatusChange{Status: from},
		NewData:     StatusChange{Status: to},
	}
}
