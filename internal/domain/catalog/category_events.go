package catalog

import (
	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
)

// Category event types
const (
	EventCategoryCreated       = "catalog.category.created"
	EventCategoryUpdated       = "catalog.category.updated"
	EventCategoryMoved         = "catalog.category.moved"
	EventCategoryStatusChanged = "catalog.category.status_changed"
)

// CategoryCreatedEvent is raised when a new category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Path     string     `json:"path"`
	Depth    int        `json:"depth"`
}

// NewCategoryCreatedEvent creates a new category created event
func NewCategoryCreatedEvent(c *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCategoryCreated, "Category", c.ID, c.TenantID),
		Code:            c.Code,
		Name:            c.Name,
		ParentID:        c.ParentID,
		Path:            c.Path,
		Depth:           c.Depth,
	}
}

// CategoryUpdatedEvent is raised when a category's basic info changes
type CategoryUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCategoryUpdatedEvent creates a new category updated event
func NewCategoryUpdatedEvent(c *Category) *CategoryUpdatedEvent {
	return &CategoryUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCategoryUpdated, "Category", c.ID, c.TenantID),
		Code:            c.Code,
		Name:            c.Name,
	}
}

// CategoryMovedEvent is raised when a category is reparented
type CategoryMovedEvent struct {
	shared.BaseDomainEvent
	OldParentID *uuid.UUID `json:"old_parent_id,omitempty"`
	NewParentID *uuid.UUID `json:"new_parent_id,omitempty"`
	Path        string     `json:"path"`
	Depth       int        `json:"depth"`
}

// NewCategoryMovedEvent creates a new category moved event
func NewCategoryMovedEvent(c *Category, oldParentID *uuid.UUID) *CategoryMovedEvent {
	return &CategoryMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCategoryMoved, "Category", c.ID, c.TenantID),
		OldParentID:     oldParentID,
		NewParentID:     c.ParentID,
		Path:            c.Path,
		Depth:           c.Depth,
	}
}

// CategoryStatusChangedEvent is raised when a category's status changes
type CategoryStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus CategoryStatus `json:"old_status"`
	NewStatus CategoryStatus `json:"new_status"`
}

// NewCategoryStatusChangedEvent creates a new category status changed event
func NewCategoryStatusChangedEvent(c *Category, oldStatus, newStatus CategoryStatus) *CategoryStatusChangedEvent {
	return &CategoryStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCategoryStatusChanged, "Category", c.ID, c.TenantID),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
