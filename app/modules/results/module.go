package results

import (
	"context"
	"fmt"

	"github.com/Black-And-White-Club/tournament-results/app/eventbus"
	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	resultsservice "github.com/Black-And-White-Club/tournament-results/app/modules/results/application"
	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	resultsqueue "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/queue"
	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/Black-And-White-Club/tournament-results/app/observability"
	"github.com/Black-And-White-Club/tournament-results/app/queue"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/Black-And-White-Club/tournament-results/config"
	"github.com/uptrace/bun"
)

// Module represents the results module.
type Module struct {
	ResultsService *resultsservice.ResultsService
	observability  *observability.Observability
}

// NewResultsModule creates and initializes a new results module.
func NewResultsModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	tournaments tournamentdb.Repository,
	repo resultsdb.Repository,
	sink *audit.Sink,
	events eventbus.Publisher,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "results.NewResultsModule initializing")

	policy, err := resultsdomain.PolicyByName(cfg.Scoring.MultiplierPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to configure scoring: %w", err)
	}
	season, err := resultsdomain.ParseSeasonBasis(cfg.Ranking.SeasonBasis)
	if err != nil {
		return nil, fmt.Errorf("failed to configure rankings: %w", err)
	}

	service := resultsservice.NewResultsService(
		tournaments,
		repo,
		resultsdomain.NewPointsCalculator(policy),
		season,
		sink,
		events,
		logger,
		obs.Metrics,
		obs.Tracer,
		db,
		shared.SystemClock{},
	)

	return &Module{
		ResultsService: service,
		observability:  obs,
	}, nil
}

// Jobs registers the results worker with the queue.
func (m *Module) Jobs() queue.Registration {
	return resultsqueue.Register(m.ResultsService, m.observability.Logger)
}
