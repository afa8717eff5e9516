package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the persistence interface for categories
type CategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Category, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]Category, error)
	FindChildren(ctx context.Context, tenantID, parentID uuid.UUID, includeInactive bool) ([]Category, error)
	FindRoots(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]Category, error)
	FindDescendants(ctx context.Context, tenantID uuid.UUID, category *Category) ([]Category, error)
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
	Save(ctx context.Context, category *Category) error
	SaveAll(ctx context.Context, categories []*Category) error
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
