package auditmigrations

import (
	"context"
	"fmt"

	auditdb "github.com/Black-And-White-Club/tournament-results/app/modules/audit/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating audit_logs table...")

		if _, err := db.NewCreateTable().Model((*auditdb.AuditLog)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewRaw("CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id, created_at DESC)").Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Audit table created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping audit_logs table...")
		_, err := db.NewDropTable().Model((*auditdb.AuditLog)(nil)).IfExists().Exec(ctx)
		return err
	})
}
