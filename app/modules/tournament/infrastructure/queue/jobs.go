package tournamentqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tournamentservice "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/application"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/queue"
	"github.com/riverqueue/river"
)

// StatusSweepArgs triggers one pass of the date-driven status engine.
type StatusSweepArgs struct{}

// Kind returns the job type identifier for River
func (StatusSweepArgs) Kind() string { return "tournament_status_sweep" }

// InsertOpts routes sweeps to the maintenance queue. A failed sweep is not retried;
// the next tick covers it.
func (StatusSweepArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       queue.QueueMaintenance,
		MaxAttempts: 1,
	}
}

// Sweeper is the part of the tournament service the worker drives.
type Sweeper interface {
	UpdateTournamentStatusesAutomatically(ctx context.Context) (tournamentservice.SweepResult, error)
}

// StatusSweepWorker runs the status sweep.
type StatusSweepWorker struct {
	river.WorkerDefaults[StatusSweepArgs]
	sweeper Sweeper
	logger  *slog.Logger
}

func NewStatusSweepWorker(sweeper Sweeper, logger *slog.Logger) *StatusSweepWorker {
	return &StatusSweepWorker{sweeper: sweeper, logger: logger}
}

// Work runs one sweep. Per-tournament failures are logged and left for the next tick;
// only a failure to list candidates fails the job.
func (w *StatusSweepWorker) Work(ctx context.Context, job *river.Job[StatusSweepArgs]) error {
	res, err := w.sweeper.UpdateTournamentStatusesAutomatically(ctx)
	if err != nil {
		return fmt.Errorf("status sweep failed: %w", err)
	}
	if res.ErrorCount() > 0 {
		w.logger.WarnContext(ctx, "Status sweep finished with errors",
			attr.Int64("job_id", job.ID),
			attr.Int("updated", res.UpdatedCount),
			attr.Int("errors", res.ErrorCount()),
			attr.Error(res.Err()),
		)
	}
	return nil
}

// Timeout bounds a single sweep.
func (w *StatusSweepWorker) Timeout(*river.Job[StatusSweepArgs]) time.Duration {
	return 5 * time.Minute
}

// Register adds the sweep worker and, unless disabled, schedules it every interval.
func Register(sweeper Sweeper, logger *slog.Logger, interval time.Duration, disabled bool) queue.Registration {
	return func(workers *river.Workers) []*river.PeriodicJob {
		river.AddWorker(workers, NewStatusSweepWorker(sweeper, logger))
		if disabled {
			return nil
		}
		return []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(interval),
				func() (river.JobArgs, *river.InsertOpts) {
					return StatusSweepArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		}
	}
}
