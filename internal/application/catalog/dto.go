package catalog

import (
	"time"

	"github.com/erp/catalog/internal/domain/catalog"
	"github.com/google/uuid"
)

// CreateCategoryRequest is the input for creating a category
type CreateCategoryRequest struct {
	Code        string     `json:"code" binding:"required,max=50"`
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// UpdateCategoryRequest is the input for updating a category's basic
// information. Nil fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=active inactive"`
}

// MoveCategoryRequest is the input for reparenting a category. A nil
// NewParentID moves the category to the root level.
type MoveCategoryRequest struct {
	NewParentID *uuid.UUID `json:"new_parent_id"`
}

// TreeFilter narrows a category tree query
type TreeFilter struct {
	Search          string
	ParentID        *uuid.UUID
	RootOnly        bool
	IncludeInactive bool
	MaxDepth        *int
}

// CategoryResponse is the API representation of a category
type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Path        string     `json:"path"`
	Depth       int        `json:"depth"`
	Status      string     `json:"status"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// CategoryTreeNode is a category with its eagerly loaded children
type CategoryTreeNode struct {
	CategoryResponse
	Children []*CategoryTreeNode `json:"children"`
}

// CategoryStats aggregates item counts over a category subtree
type CategoryStats struct {
	CategoryID      uuid.UUID `json:"category_id"`
	ItemCount       int64     `json:"item_count"`
	TotalItemCount  int64     `json:"total_item_count"`
	ActiveItemCount int64     `json:"active_item_count"`
}

// ToCategoryResponse converts a domain category to its API representation
func ToCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Description: c.Description,
		ParentID:    c.ParentID,
		Path:        c.Path,
		Depth:       c.Depth,
		Status:      string(c.Status),
		Version:     c.Version,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCategoryTreeNode converts a domain category to a tree node without children
func ToCategoryTreeNode(c *catalog.Category) *CategoryTreeNode {
	return &CategoryTreeNode{
		CategoryResponse: *ToCategoryResponse(c),
		Children:         make([]*CategoryTreeNode, 0),
	}
}
