package tournament

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	tournamentservice "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/application"
	tournamentqueue "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/queue"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/observability"
	"github.com/Black-And-White-Club/tournament-results/app/queue"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/uptrace/bun"
)

// Module represents the tournament module.
type Module struct {
	TournamentService *tournamentservice.TournamentService
	sweepInterval     time.Duration
	sweepDisabled     bool
	observability     *observability.Observability
}

// NewTournamentModule creates and initializes a new tournament module.
func NewTournamentModule(
	ctx context.Context,
	cfg config.SchedulerConfig,
	obs *observability.Observability,
	repo tournamentdb.Repository,
	sink *audit.Sink,
	events eventbus.Publisher,
	db *bun.DB,
) *Module {
	obs.Logger.InfoContext(ctx, "tournament.NewTournamentModule initializing")

	service := tournamentservice.NewTournamentService(
		repo,
		sink,
		events,
		obs.Logger,
		obs.Metrics,
		obs.Tracer,
		db,
		shared.SystemClock{},
	)

	return &Module{
		TournamentService: service,
		sweepInterval:     cfg.SweepInterval,
		sweepDisabled:     cfg.Disabled,
		observability:     obs,
	}
}

// Jobs registers the periodic status sweep with the queue.
func (m *Module) Jobs() queue.Registration {
	return tournamentqueue.Register(m.TournamentService, m.observability.Logger, m.sweepInterval, m.sweepDisabled)
}
