package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
)

// DepthCheck is the result of a placement depth validation. Reason is set
// only when Valid is false.
type DepthCheck struct {
	Valid  bool   `json:"valid"`
	Depth  int    `json:"depth"`
	Reason string `json:"reason,omitempty"`
}

// HierarchyValidator performs structural checks on the category tree:
// depth bounds, cycle detection, path derivation and ancestor walks.
type HierarchyValidator struct {
	categories CategoryRepository
}

// NewHierarchyValidator creates a new hierarchy validator
func NewHierarchyValidator(categories CategoryRepository) *HierarchyValidator {
	return &HierarchyValidator{categories: categories}
}

// ValidateMaxDepth checks whether a category may be placed under parentID.
// A nil parentID is a root placement and always valid at depth 0. An
// unknown parent yields an invalid check, not an error; the error return
// carries storage failures only.
func (v *HierarchyValidator) ValidateMaxDepth(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID) (DepthCheck, error) {
	if parentID == nil {
		return DepthCheck{Valid: true, Depth: 0}, nil
	}

	parent, err := v.categories.FindByIDForTenant(ctx, tenantID, *parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return DepthCheck{Valid: false, Depth: 0, Reason: "parent category not found"}, nil
		}
		return DepthCheck{}, err
	}

	depth := parent.Depth + 1
	if depth >= MaxCategoryDepth {
		return DepthCheck{
			Valid:  false,
			Depth:  depth,
			Reason: fmt.Sprintf("maximum hierarchy depth of %d levels exceeded", MaxCategoryDepth),
		}, nil
	}

	return DepthCheck{Valid: true, Depth: depth}, nil
}

// DetectCircularReference reports whether moving categoryID under
// newParentID would create a cycle. The ancestor walk is bounded by
// MaxCategoryDepth hops; a chain longer than that is already corrupt and
// is treated as cyclic.
func (v *HierarchyValidator) DetectCircularReference(ctx context.Context, tenantID, categoryID, newParentID uuid.UUID) (bool, error) {
	if categoryID == newParentID {
		return true, nil
	}

	current := newParentID
	for hops := 0; hops < MaxCategoryDepth; hops++ {
		node, err := v.categories.FindByIDForTenant(ctx, tenantID, current)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Broken chain, nothing left to cycle through.
				return false, nil
			}
			return false, err
		}
		if node.ParentID == nil {
			return false, nil
		}
		if *node.ParentID == categoryID {
			return true, nil
		}
		current = *node.ParentID
	}

	return true, nil
}

// CalculatePath derives the materialized path and depth for a category
// placed under parentID. A nil or missing parent yields the root placement.
func (v *HierarchyValidator) CalculatePath(ctx context.Context, tenantID uuid.UUID, parentID *uuid.UUID) (string, int, error) {
	if parentID == nil {
		return RootPath, 0, nil
	}

	parent, err := v.categories.FindByIDForTenant(ctx, tenantID, *parentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return RootPath, 0, nil
		}
		return "", 0, err
	}

	return parent.SubtreePath(), parent.Depth + 1, nil
}

// Ancestors returns the ancestor chain of a category, closest ancestor
// first. Roots yield an empty slice.
func (v *HierarchyValidator) Ancestors(ctx context.Context, tenantID, categoryID uuid.UUID) ([]Category, error) {
	node, err := v.categories.FindByIDForTenant(ctx, tenantID, categoryID)
	if err != nil {
		return nil, err
	}

	ancestors := make([]Category, 0, node.Depth)
	current := node.ParentID
	for hops := 0; current != nil && hops < MaxCategoryDepth; hops++ {
		parent, err := v.categories.FindByIDForTenant(ctx, tenantID, *current)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				break
			}
			return nil, err
		}
		ancestors = append(ancestors, *parent)
		current = parent.ParentID
	}

	return ancestors, nil
}
