package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/catalog/internal/domain/catalog"
	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForTenant finds a category by ID within a tenant
func (r *GormCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindByCode finds a category by its code within a tenant
func (r *GormCategoryRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindAllForTenant finds all categories for a tenant
func (r *GormCategoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if !includeInactive {
		query = query.Where("status = ?", catalog.CategoryStatusActive)
	}
	if err := query.Order("depth ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindChildren finds all direct children of a category ordered by name
func (r *GormCategoryRepository) FindChildren(ctx context.Context, tenantID, parentID uuid.UUID, includeInactive bool) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND parent_id = ?", tenantID, parentID)
	if !includeInactive {
		query = query.Where("status = ?", catalog.CategoryStatusActive)
	}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindRoots finds all root categories for a tenant ordered by name
func (r *GormCategoryRepository) FindRoots(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]catalog.Category, error) {
	var categories []catalog.Category
	query := r.db.WithContext(ctx).Where("tenant_id = ? AND parent_id IS NULL", tenantID)
	if !includeInactive {
		query = query.Where("status = ?", catalog.CategoryStatusActive)
	}
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindDescendants finds all descendants of a category via the materialized
// path, regardless of status. Direct children carry the subtree path
// exactly; deeper descendants extend it with further segments.
func (r *GormCategoryRepository) FindDescendants(ctx context.Context, tenantID uuid.UUID, category *catalog.Category) ([]catalog.Category, error) {
	prefix := category.SubtreePath()

	var categories []catalog.Category
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND (path = ? OR path LIKE ?)", tenantID, prefix, prefix+"/%").
		Order("depth ASC, name ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ExistsByCode checks if a category with the given code exists in the
// tenant, regardless of status
func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return translateSaveError(r.db.WithContext(ctx).Save(category).Error)
}

// SaveAll persists a batch of categories in a single transaction. A move
// cascade relies on this for atomicity: either the whole subtree gets its
// new paths or none of it does.
func (r *GormCategoryRepository) SaveAll(ctx context.Context, categories []*catalog.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, category := range categories {
			if err := tx.Save(category).Error; err != nil {
				return translateSaveError(err)
			}
		}
		return nil
	})
}

// CountForTenant counts all categories for a tenant
func (r *GormCategoryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// translateSaveError maps unique constraint violations onto the domain
// duplicate error so the tenant+code index remains the final authority.
func translateSaveError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	msg := err.Error()
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed") {
		return shared.ErrAlreadyExists
	}
	return err
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
