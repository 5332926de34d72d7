package auditdb

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditLog is a persisted audit entry.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID          int64           `bun:"id,pk,autoincrement"`
	ActorID     string          `bun:"actor_id,notnull"`
	Action      string          `bun:"action,notnull"`
	EntityType  string          `bun:"entity_type,notnull"`
	EntityID    uuid.UUID       `bun:"entity_id,type:uuid,notnull"`
	Description string          `bun:"description,notnull"`
	OldData     json.RawMessage `bun:"old_data,type:jsonb"`
	NewData     json.RawMessage `bun:"new_data,type:jsonb"`
	CreatedAt   time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
