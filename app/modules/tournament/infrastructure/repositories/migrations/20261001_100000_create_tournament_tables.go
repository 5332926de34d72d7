package tournamentmigrations

import (
	"context"
	"fmt"

	tournamentdb "github.com/Black-And-White-Club/tournament-results/app/modules/tournament/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournaments, registrations, payments and teams tables...")

		models := []any{
			(*tournamentdb.Tournament)(nil),
			(*tournamentdb.Registration)(nil),
			(*tournamentdb.Payment)(nil),
			(*tournamentdb.Team)(nil),
		}
		for _, model := range models {
			if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return err
			}
		}

		indexes := []string{
			"CREATE INDEX IF NOT EXISTS idx_tournaments_status ON tournaments (status)",
			"CREATE INDEX IF NOT EXISTS idx_tournaments_status_end ON tournaments (status, tournament_end)",
			"CREATE INDEX IF NOT EXISTS idx_registrations_tournament ON registrations (tournament_id, registration_status)",
			"CREATE INDEX IF NOT EXISTS idx_registrations_player ON registrations (player_id)",
			"CREATE INDEX IF NOT EXISTS idx_payments_registration ON payments (registration_id)",
			"CREATE INDEX IF NOT EXISTS idx_teams_tournament ON teams (tournament_id, status)",
			"CREATE INDEX IF NOT EXISTS idx_teams_registration1 ON teams (registration1_id)",
			"CREATE INDEX IF NOT EXISTS idx_teams_registration2 ON teams (registration2_id)",
		}
		for _, stmt := range indexes {
			if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Tournament tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping tournament tables...")

		models := []any{
			(*tournamentdb.Team)(nil),
			(*tournamentdb.Payment)(nil),
			(*tournamentdb.Registration)(nil),
			(*tournamentdb.Tournament)(nil),
		}
		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Tournament tables dropped successfully!")
		return nil
	})
}
