package persistence

import (
	"context"
	"errors"

	"github.com/erp/catalog/internal/domain/catalog"
	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByIDForTenant finds an item by ID within a tenant
func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByCategory finds all items directly attached to a category
func (r *GormItemRepository) FindByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountByCategory counts items directly attached to a category
func (r *GormItemRepository) CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByCategory counts active items directly attached to a category
func (r *GormItemRepository) CountActiveByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND category_id = ? AND status = ?", tenantID, categoryID, catalog.ItemStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategories counts items attached to any of the given categories
func (r *GormItemRepository) CountByCategories(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND category_id IN ?", tenantID, categoryIDs).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveByCategories counts active items attached to any of the given categories
func (r *GormItemRepository) CountActiveByCategories(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND category_id IN ? AND status = ?", tenantID, categoryIDs, catalog.ItemStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClearCategoryReferences detaches every item pointing directly at the
// category and returns the number of rows affected
func (r *GormItemRepository) ClearCategoryReferences(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.Item{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Update("category_id", nil)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return translateSaveError(r.db.WithContext(ctx).Save(item).Error)
}

// Ensure GormItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormItemRepository)(nil)
