package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of change being recorded
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is a single audit trail record
type Entry struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	EntityType string     `gorm:"type:varchar(50);not null;index"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Action     Action     `gorm:"type:varchar(20);not null"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index"`
	Detail     string     `gorm:"type:jsonb"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "audit_logs"
}

// NewEntry creates a new audit entry
func NewEntry(tenantID uuid.UUID, entityType string, entityID uuid.UUID, action Action, actorID *uuid.UUID, detail string) *Entry {
	return &Entry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		Detail:     detail,
		CreatedAt:  time.Now(),
	}
}

// Logger records audit entries. Implementations may fail; callers treat a
// failed write as a warning, never as a reason to roll back the change
// being audited.
type Logger interface {
	Record(ctx context.Context, entry *Entry) error
}
