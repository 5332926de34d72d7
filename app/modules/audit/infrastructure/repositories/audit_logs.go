package auditdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Black-And-White-Club/tournament-results/app/modules/audit"
	"github.com/Black-And-White-Club/tournament-results/app/shared"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists and reads audit entries.
type Repository interface {
	audit.Logger
	// ListForEntity returns an entity's entries, newest first.
	ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]AuditLog, error)
}

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

var _ Repository = (*Impl)(nil)

// NewRepository creates a new audit repository.
func NewRepository(db bun.IDB) *Impl {
	return &Impl{db: db}
}

// Log inserts one entry. It uses its own connection so a rolled-back caller
// transaction does not take the audit trail with it.
func (r *Impl) Log(ctx context.Context, entry audit.Entry) error {
	row, err := toRow(entry)
	if err != nil {
		return fmt.Errorf("auditdb.Log: %w", err)
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("auditdb.Log: %w", shared.StoreError(err))
	}
	return nil
}

// ListForEntity returns an entity's entries, newest first.
func (r *Impl) ListForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]AuditLog, error) {
	var rows []AuditLog
	q := r.db.NewSelect().
		Model(&rows).
		Where("al.entity_type = ?", entityType).
		Where("al.entity_id = ?", entityID).
		OrderExpr("al.created_at DESC, al.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("auditdb.ListForEntity: %w", shared.StoreError(err))
	}
	return rows, nil
}

func toRow(e audit.Entry) (*AuditLog, error) {
	oldData, err := marshalData(e.OldData)
	if err != nil {
		return nil, fmt.Errorf("marshal old data: %w", err)
	}
	newData, err := marshalData(e.NewData)
	if err != nil {
		return nil, fmt.Errorf("marshal new data: %w", err)
	}
	return &AuditLog{
		ActorID:     e.ActorID,
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Description: e.Description,
		OldData:     oldData,
		NewData:     newData,
		CreatedAt:   e.CreatedAt,
	}, nil
}

func marshalData(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
