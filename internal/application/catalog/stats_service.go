package catalog

import (
	"context"

	"github.com/erp/catalog/internal/domain/catalog"
	"github.com/google/uuid"
)

// StatsService computes item-count aggregates over category subtrees.
type StatsService struct {
	categories catalog.CategoryRepository
	items      catalog.ItemRepository
}

// NewStatsService creates a new stats service
func NewStatsService(categories catalog.CategoryRepository, items catalog.ItemRepository) *StatsService {
	return &StatsService{categories: categories, items: items}
}

// DescendantIDs returns the IDs of every descendant of the category,
// regardless of status, discovered breadth first. The walk is bounded by
// the maximum hierarchy depth.
func (s *StatsService) DescendantIDs(ctx context.Context, tenantID, categoryID uuid.UUID) ([]uuid.UUID, error) {
	visited := map[uuid.UUID]bool{categoryID: true}
	out := make([]uuid.UUID, 0)
	frontier := []uuid.UUID{categoryID}

	for level := 0; level < catalog.MaxCategoryDepth && len(frontier) > 0; level++ {
		var next []uuid.UUID
		for _, id := range frontier {
			children, err := s.categories.FindChildren(ctx, tenantID, id, true)
			if err != nil {
				return nil, err
			}
			for i := range children {
				childID := children[i].ID
				if visited[childID] {
					continue
				}
				visited[childID] = true
				out = append(out, childID)
				next = append(next, childID)
			}
		}
		frontier = next
	}

	return out, nil
}

// Stats returns item counts for a category: items directly attached, items
// attached anywhere in the subtree, and active items in the subtree.
func (s *StatsService) Stats(ctx context.Context, tenantID, categoryID uuid.UUID) (*CategoryStats, error) {
	if _, err := s.categories.FindByIDForTenant(ctx, tenantID, categoryID); err != nil {
		return nil, err
	}

	direct, err := s.items.CountByCategory(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	descendants, err := s.DescendantIDs(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}
	subtree := append(descendants, categoryID)

	total, err := s.items.CountByCategories(ctx, tenantID, subtree)
	if err != nil {
		return nil, err
	}
	active, err := s.items.CountActiveByCategories(ctx, tenantID, subtree)
	if err != nil {
		return nil, err
	}

	return &CategoryStats{
		CategoryID:      categoryID,
		ItemCount:       direct,
		TotalItemCount:  total,
		ActiveItemCount: active,
	}, nil
}

// ActiveItemCount returns the number of active items directly attached to
// the category.
func (s *StatsService) ActiveItemCount(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	if _, err := s.categories.FindByIDForTenant(ctx, tenantID, categoryID); err != nil {
		return 0, err
	}
	return s.items.CountActiveByCategory(ctx, tenantID, categoryID)
}
