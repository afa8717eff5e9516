package handler

import (
	"strconv"

	catalogapp "github.com/erp/catalog/internal/application/catalog"
	"github.com/erp/catalog/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CategoryHandler handles category hierarchy API endpoints
type CategoryHandler struct {
	BaseHandler
	categories *catalogapp.CategoryService
	stats      *catalogapp.StatsService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories *catalogapp.CategoryService, stats *catalogapp.StatsService) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		stats:      stats,
	}
}

// RegisterRoutes registers all category routes under the given group
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/catalog/categories")

	categories.POST("", h.Create)
	categories.GET("/tree", h.GetTree)
	categories.GET("/:id", h.GetByID)
	categories.GET("/:id/children", h.GetChildren)
	categories.GET("/:id/ancestors", h.GetAncestors)
	categories.GET("/:id/stats", h.GetStats)
	categories.GET("/:id/active-item-count", h.GetActiveItemCount)
	categories.PUT("/:id", h.Update)
	categories.POST("/:id/move", h.Move)
	categories.DELETE("/:id", h.Delete)
}

// Create creates a new category, optionally under a parent
func (h *CategoryHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID := actorOrNil(c)
	category, err := h.categories.Create(c.Request.Context(), tenantID, req, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, category)
}

// GetByID returns a single category
func (h *CategoryHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	category, err := h.categories.GetByID(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, category)
}

// GetTree returns the category hierarchy as nested nodes. Supports
// filtering by parent, search term, root-only and maximum depth.
func (h *CategoryHandler) GetTree(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := catalogapp.TreeFilter{
		Search:          c.Query("search"),
		RootOnly:        c.Query("root_only") == "true",
		IncludeInactive: c.Query("include_inactive") == "true",
	}
	if parentStr := c.Query("parent_id"); parentStr != "" {
		parentID, err := uuid.Parse(parentStr)
		if err != nil {
			h.BadRequest(c, "Invalid parent ID format")
			return
		}
		filter.ParentID = &parentID
	}
	if depthStr := c.Query("max_depth"); depthStr != "" {
		maxDepth, err := strconv.Atoi(depthStr)
		if err != nil || maxDepth < 0 {
			h.BadRequest(c, "Invalid max depth")
			return
		}
		filter.MaxDepth = &maxDepth
	}

	tree, err := h.categories.GetTree(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tree)
}

// GetChildren returns the direct children of a category
func (h *CategoryHandler) GetChildren(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	children, err := h.categories.GetChildren(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, children)
}

// GetAncestors returns the chain of ancestors of a category, closest first
func (h *CategoryHandler) GetAncestors(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	ancestors, err := h.categories.GetAncestors(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ancestors)
}

// GetStats returns item counts over the category's subtree
func (h *CategoryHandler) GetStats(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	stats, err := h.stats.Stats(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// GetActiveItemCount returns the number of active items in the
// category's subtree
func (h *CategoryHandler) GetActiveItemCount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	count, err := h.stats.ActiveItemCount(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"category_id": categoryID, "active_item_count": count})
}

// Update changes a category's name, description or status
func (h *CategoryHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	var req catalogapp.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	actorID := actorOrNil(c)
	category, err := h.categories.Update(c.Request.Context(), tenantID, categoryID, req, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, category)
}

// Move reparents a category, cascading the new path through its subtree
func (h *CategoryHandler) Move(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	var req catalogapp.MoveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorID := actorOrNil(c)
	category, err := h.categories.Move(c.Request.Context(), tenantID, categoryID, req.NewParentID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, category)
}

// Delete soft-deletes a category and detaches its items
func (h *CategoryHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID format")
		return
	}

	actorID := actorOrNil(c)
	category, err := h.categories.Delete(c.Request.Context(), tenantID, categoryID, actorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, category)
}

// actorOrNil resolves the acting user if the request carries one
func actorOrNil(c *gin.Context) *uuid.UUID {
	if userID, err := getUserID(c); err == nil {
		return &userID
	}
	return nil
}
