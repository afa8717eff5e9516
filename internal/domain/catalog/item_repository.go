package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository defines the persistence interface for items.
// The category engine only consumes the category-scoped queries; item CRUD
// beyond Save exists for fixtures and future item management.
type ItemRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	FindByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) ([]Item, error)
	CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error)
	CountActiveByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error)
	CountByCategories(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID) (int64, error)
	CountActiveByCategories(ctx context.Context, tenantID uuid.UUID, categoryIDs []uuid.UUID) (int64, error)
	ClearCategoryReferences(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error)
	Save(ctx context.Context, item *Item) error
}
