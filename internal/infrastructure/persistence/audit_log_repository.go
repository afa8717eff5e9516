package persistence

import (
	"context"

	"github.com/erp/catalog/internal/domain/audit"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository persists audit entries using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Record writes a single audit entry
func (r *GormAuditLogRepository) Record(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByEntity returns the audit trail of an entity, newest first
func (r *GormAuditLogRepository) FindByEntity(ctx context.Context, tenantID uuid.UUID, entityType string, entityID uuid.UUID) ([]audit.Entry, error) {
	var entries []audit.Entry
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", tenantID, entityType, entityID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormAuditLogRepository implements audit.Logger
var _ audit.Logger = (*GormAuditLogRepository)(nil)
