package resultsmigrations

import (
	"context"
	"fmt"

	resultsdb "github.com/Black-And-White-Club/tournament-results/app/modules/results/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating matches, tournament_stats and player_rankings tables...")

		models := []any{
			(*resultsdb.Match)(nil),
			(*resultsdb.TournamentStats)(nil),
			(*resultsdb.PlayerRanking)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_matches_tournament_status ON matches (tournament_id, status)",
			"CREATE INDEX IF NOT EXISTS idx_tournament_stats_player ON tournament_stats (player_id)",
			"CREATE INDEX IF NOT EXISTS idx_player_rankings_category_season ON player_rankings (category_id, season_year, current_points DESC)",
		}
		for _, stmt := range indexes {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Results tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping results tables...")

		models := []any{
			(*resultsdb.PlayerRanking)(nil),
			(*resultsdb.TournamentStats)(nil),
			(*resultsdb.Match)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Results tables dropped successfully!")
		return nil
	})
}
