package resultsqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	resultsservice "github.com/Black-And-White-Club/tournament-results/app/modules/results/application"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/app/queue"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// Action selects what a results job does.
type Action string

const (
	// ActionProcess runs the results pipeline for a COMPLETED tournament.
	ActionProcess Action = "process"
	// ActionRevert removes a reopened tournament's ranking contributions.
	ActionRevert Action = "revert"
	// ActionRankings recomputes rankings without rescoring.
	ActionRankings Action = "rankings"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionProcess, ActionRevert, ActionRankings:
		return a, nil
	}
	return "", fmt.Errorf("unknown results action %q", s)
}

// TournamentResultsArgs is a queued request to process or revert one tournament.
type TournamentResultsArgs struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Action       Action    `json:"action"`
}

// Kind returns the job type identifier for River
func (TournamentResultsArgs) Kind() string { return "tournament_results" }

// InsertOpts collapses duplicate requests while one is still pending or running.
func (TournamentResultsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       queue.QueueResults,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRetryable,
				rivertype.JobStateRunning,
				rivertype.JobStateScheduled,
			},
		},
	}
}

// Processor is the part of the results service the worker drives.
type Processor interface {
	ProcessCompletedTournament(ctx context.Context, tournamentID uuid.UUID) (resultsservice.ProcessResult, error)
	UpdatePlayerRankings(ctx context.Context, tournamentID uuid.UUID) error
	RecalculatePlayerRankingsAfterTournamentReversion(ctx context.Context, tournamentID uuid.UUID) error
}

// TournamentResultsWorker executes results jobs.
type TournamentResultsWorker struct {
	river.WorkerDefaults[TournamentResultsArgs]
	processor Processor
	logger    *slog.Logger
}

func NewTournamentResultsWorker(processor Processor, logger *slog.Logger) *TournamentResultsWorker {
	return &TournamentResultsWorker{processor: processor, logger: logger}
}

// Work runs the requested action. NotFound and InvalidState cancel the job, since
// retrying cannot help; anything else is returned for River to retry.
func (w *TournamentResultsWorker) Work(ctx context.Context, job *river.Job[TournamentResultsArgs]) error {
	args := job.Args
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.TournamentID(args.TournamentID),
		attr.String("action", string(args.Action)),
	)

	var err error
	switch args.Action {
	case ActionProcess:
		_, err = w.processor.ProcessCompletedTournament(ctx, args.TournamentID)
	case ActionRevert:
		err = w.processor.RecalculatePlayerRankingsAfterTournamentReversion(ctx, args.TournamentID)
	case ActionRankings:
		err = w.processor.UpdatePlayerRankings(ctx, args.TournamentID)
	default:
		logger.ErrorContext(ctx, "Unknown results action")
		return river.JobCancel(fmt.Errorf("unknown results action %q", args.Action))
	}

	if err == nil {
		logger.InfoContext(ctx, "Results job finished")
		return nil
	}
	if !shared.IsRetryable(err) {
		logger.WarnContext(ctx, "Results job cancelled", attr.Error(err))
		return river.JobCancel(err)
	}
	logger.WarnContext(ctx, "Results job failed, will retry",
		attr.Int("attempt", job.Attempt),
		attr.Error(err),
	)
	return err
}

// NextRetry backs off transient store failures linearly.
func (w *TournamentResultsWorker) NextRetry(job *river.Job[TournamentResultsArgs]) time.Time {
	return time.Now().Add(time.Duration(job.Attempt) * 10 * time.Second)
}

// Register adds the results worker.
func Register(processor Processor, logger *slog.Logger) queue.Registration {
	return func(workers *river.Workers) []*river.PeriodicJob {
		river.AddWorker(workers, NewTournamentResultsWorker(processor, logger))
		return nil
	}
}

// Enqueue inserts a results job. Inserted is false when an identical job was already pending.
func Enqueue(ctx context.Context, inserter queue.Inserter, tournamentID uuid.UUID, action Action) (jobID int64, inserted bool, err error) {
	if tournamentID == uuid.Nil {
		return 0, false, errors.New("tournament id is required")
	}
	res, err := inserter.Insert(ctx, TournamentResultsArgs{TournamentID: tournamentID, Action: action}, nil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to enqueue %s job: %w", action, err)
	}
	return res.Job.ID, !res.UniqueSkippedAsDuplicate, nil
}
