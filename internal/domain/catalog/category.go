package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxCategoryDepth is the maximum number of levels in the category hierarchy.
// Depths range from 0 (root) to MaxCategoryDepth-1.
const MaxCategoryDepth = 5

// RootPath is the materialized path of every root category.
const RootPath = "/"

// CategoryStatus represents the status of a category
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

// Category is a node in the tenant's category tree.
// Path is the materialized path built from ancestor codes, closest ancestor
// last; it never contains the category's own code. Roots carry RootPath.
type Category struct {
	shared.TenantAggregateRoot
	Code        string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_category_tenant_code,priority:2"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text"`
	ParentID    *uuid.UUID     `gorm:"type:uuid;index"`
	Path        string         `gorm:"type:varchar(500);not null;index"`
	Depth       int            `gorm:"not null;default:0"`
	Status      CategoryStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category under the given parent; a nil parent
// creates a root.
func NewCategory(tenantID uuid.UUID, code, name string, parent *Category) (*Category, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)

	if err := validateCategoryCode(code); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              CategoryStatusActive,
		Path:                RootPath,
		Depth:               0,
	}

	if parent != nil {
		if parent.Depth+1 >= MaxCategoryDepth {
			return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
		}
		category.ParentID = &parent.ID
		category.Path = parent.SubtreePath()
		category.Depth = parent.Depth + 1
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// SubtreePath returns the materialized path carried by direct children of
// this category. Deeper descendants extend it with further "/" segments.
func (c *Category) SubtreePath() string {
	if c.Path == RootPath {
		return RootPath + c.Code
	}
	return c.Path + "/" + c.Code
}

// Update updates the category's basic information
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// MoveTo relocates the category under a new parent; a nil parent moves it
// to the root level. Cycle detection is the caller's responsibility.
func (c *Category) MoveTo(parent *Category) error {
	oldParentID := c.ParentID

	if parent == nil {
		c.ParentID = nil
		c.Path = RootPath
		c.Depth = 0
	} else {
		if parent.Depth+1 >= MaxCategoryDepth {
			return shared.NewDomainError("MAX_DEPTH_EXCEEDED", fmt.Sprintf("Category depth cannot exceed %d levels", MaxCategoryDepth))
		}
		c.ParentID = &parent.ID
		c.Path = parent.SubtreePath()
		c.Depth = parent.Depth + 1
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryMovedEvent(c, oldParentID))

	return nil
}

// RefreshPathFrom recomputes the path and depth of this category from its
// (already relocated) parent. Used when cascading a move through a subtree.
func (c *Category) RefreshPathFrom(parent *Category) {
	c.Path = parent.SubtreePath()
	c.Depth = parent.Depth + 1
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Deactivate soft-deletes the category. Deactivation is terminal.
func (c *Category) Deactivate() error {
	if c.Status == CategoryStatusInactive {
		return shared.NewDomainError("ALREADY_DELETED", "Category is already deleted")
	}

	c.Status = CategoryStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCategoryStatusChangedEvent(c, CategoryStatusActive, CategoryStatusInactive))

	return nil
}

// IsActive returns true if the category is active
func (c *Category) IsActive() bool {
	return c.Status == CategoryStatusActive
}

// IsRoot returns true if this is a root category
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsAncestorOf returns true if this category is an ancestor of the given category
func (c *Category) IsAncestorOf(other *Category) bool {
	if other == nil || other.ID == c.ID {
		return false
	}
	prefix := c.SubtreePath()
	return other.Path == prefix || strings.HasPrefix(other.Path, prefix+"/")
}

// IsDescendantOf returns true if this category is a descendant of the given category
func (c *Category) IsDescendantOf(other *Category) bool {
	if other == nil {
		return false
	}
	return other.IsAncestorOf(c)
}

// validateCategoryCode validates the category code
func validateCategoryCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Category code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// validateCategoryName validates the category name
func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 255 characters")
	}
	return nil
}
