package resultsmigrations

import (
	"context"
	"fmt"
	"strings"

	resultsdomain "github.com/Black-And-White-Club/tournament-results/app/modules/results/domain"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding phase_type check to matches...")

		values := make([]string, len(resultsdomain.AllPhaseTypes))
		for i, p := range resultsdomain.AllPhaseTypes {
			values[i] = "'" + string(p) + "'"
		}
		stmt := fmt.Sprintf(
			"ALTER TABLE matches ADD CONSTRAINT matches_phase_type_check CHECK (phase_type IN (%s))",
			strings.Join(values, ", "),
		)
		if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Phase type check added successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping phase_type check from matches...")

		if _, err := db.NewRaw("ALTER TABLE matches DROP CONSTRAINT IF EXISTS matches_phase_type_check").Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}
