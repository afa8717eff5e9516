package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/erp/catalog/internal/domain/audit"
	"github.com/erp/catalog/internal/domain/catalog"
	"github.com/erp/catalog/internal/domain/shared"
	"github.com/erp/catalog/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CategoryService orchestrates category hierarchy operations: creation,
// updates, reparenting with subtree cascade, soft deletion and tree queries.
type CategoryService struct {
	categories catalog.CategoryRepository
	items      catalog.ItemRepository
	validator  *catalog.HierarchyValidator
	auditor    audit.Logger
	cache      TreeCache
	logger     *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categories catalog.CategoryRepository,
	items catalog.ItemRepository,
	auditor audit.Logger,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		items:      items,
		validator:  catalog.NewHierarchyValidator(categories),
		auditor:    auditor,
		logger:     logger,
	}
}

// SetTreeCache attaches an optional tree cache
func (s *CategoryService) SetTreeCache(cache TreeCache) {
	s.cache = cache
}

// Validator exposes the hierarchy validator for read-only structural queries
func (s *CategoryService) Validator() *catalog.HierarchyValidator {
	return s.validator
}

// Create creates a new category under the optional parent in the request.
// The category code is unique per tenant across active and deleted
// categories alike.
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest, actorID *uuid.UUID) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "create",
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("category_code", req.Code))
	defer span.End()

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	exists, err := s.categories.ExistsByCode(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Category with code %s already exists", code))
	}

	var parent *catalog.Category
	if req.ParentID != nil {
		parent, err = s.categories.FindByIDForTenant(ctx, tenantID, *req.ParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PARENT_NOT_FOUND", "Parent category not found")
			}
			return nil, err
		}

		check, err := s.validator.ValidateMaxDepth(ctx, tenantID, req.ParentID)
		if err != nil {
			return nil, err
		}
		if !check.Valid {
			return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", check.Reason)
		}
	}

	category, err := catalog.NewCategory(tenantID, req.Code, req.Name, parent)
	if err != nil {
		return nil, err
	}
	category.Description = strings.TrimSpace(req.Description)
	if actorID != nil {
		category.SetCreatedBy(*actorID)
	}

	if err := s.categories.Save(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateTree(ctx, tenantID)

	resp := ToCategoryResponse(category)
	resp.Warnings = s.recordAudit(ctx, category, audit.ActionCreate, actorID)
	return resp, nil
}

// GetByID returns a single category
func (s *CategoryService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return ToCategoryResponse(category), nil
}

// Update changes a category's name, description or status. Reactivating a
// deleted category is not allowed; deletion is terminal.
func (s *CategoryService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCategoryRequest, actorID *uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categories.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		switch catalog.CategoryStatus(*req.Status) {
		case catalog.CategoryStatusActive:
			if !category.IsActive() {
				return nil, shared.NewDomainError("INVALID_STATE", "Deleted categories cannot be reactivated")
			}
		case catalog.CategoryStatusInactive:
			if category.IsActive() {
				if err := category.Deactivate(); err != nil {
					return nil, err
				}
			}
		}
	}

	if req.Name != nil || req.Description != nil {
		name := category.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := category.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := category.Update(name, description); err != nil {
			return nil, err
		}
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	s.invalidateTree(ctx, tenantID)

	resp := ToCategoryResponse(category)
	resp.Warnings = s.recordAudit(ctx, category, audit.ActionUpdate, actorID)
	return resp, nil
}

// Move reparents a category and cascades the new path and depth through
// its entire subtree in one transaction. A nil newParentID moves the
// category to the root level.
func (s *CategoryService) Move(ctx context.Context, tenantID, id uuid.UUID, newParentID *uuid.UUID, actorID *uuid.UUID) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "move",
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("category_id", id.String()))
	defer span.End()

	category, err := s.categories.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if sameParent(category.ParentID, newParentID) {
		return ToCategoryResponse(category), nil
	}

	var parent *catalog.Category
	if newParentID != nil {
		cyclic, err := s.validator.DetectCircularReference(ctx, tenantID, id, *newParentID)
		if err != nil {
			return nil, err
		}
		if cyclic {
			return nil, shared.NewDomainError("CIRCULAR_REFERENCE", "Cannot move a category under itself or its descendants")
		}

		parent, err = s.categories.FindByIDForTenant(ctx, tenantID, *newParentID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("PARENT_NOT_FOUND", "Parent category not found")
			}
			return nil, err
		}
	}

	// Descendants must be captured before the move mutates the path the
	// prefix query depends on.
	descendants, err := s.categories.FindDescendants(ctx, tenantID, category)
	if err != nil {
		return nil, err
	}

	if parent != nil {
		subtreeHeight := 0
		for i := range descendants {
			if rel := descendants[i].Depth - category.Depth; rel > subtreeHeight {
				subtreeHeight = rel
			}
		}
		if parent.Depth+1+subtreeHeight >= catalog.MaxCategoryDepth {
			return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED",
				fmt.Sprintf("Moving this subtree would exceed the maximum depth of %d levels", catalog.MaxCategoryDepth))
		}
	}

	if err := category.MoveTo(parent); err != nil {
		return nil, err
	}

	batch := cascadePaths(category, descendants)
	telemetry.SetAttributes(span, attribute.Int("cascade_size", len(batch)))
	if err := s.categories.SaveAll(ctx, batch); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateTree(ctx, tenantID)

	resp := ToCategoryResponse(category)
	resp.Warnings = s.recordAudit(ctx, category, audit.ActionUpdate, actorID)
	return resp, nil
}

// Delete soft-deletes a category. Items referencing the category directly
// have their reference cleared; a failure there degrades to a warning and
// the deletion still goes through.
func (s *CategoryService) Delete(ctx context.Context, tenantID, id uuid.UUID, actorID *uuid.UUID) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "category", "delete",
		attribute.String("tenant_id", tenantID.String()),
		attribute.String("category_id", id.String()))
	defer span.End()

	category, err := s.categories.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !category.IsActive() {
		return nil, shared.NewDomainError("ALREADY_DELETED", "Category is already deleted")
	}

	var warnings []string
	if _, err := s.items.ClearCategoryReferences(ctx, tenantID, id); err != nil {
		s.logger.Warn("failed to clear item references",
			zap.String("category_id", id.String()),
			zap.Error(err))
		warnings = append(warnings, "item references could not be cleared")
	}

	if err := category.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateTree(ctx, tenantID)

	resp := ToCategoryResponse(category)
	resp.Warnings = append(warnings, s.recordAudit(ctx, category, audit.ActionDelete, actorID)...)
	return resp, nil
}

// GetTree returns the category forest matching the filter, children
// attached and every level ordered by name.
func (s *CategoryService) GetTree(ctx context.Context, tenantID uuid.UUID, filter TreeFilter) ([]*CategoryTreeNode, error) {
	key := treeCacheKey(filter)
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, tenantID, key); ok {
			var cached []*CategoryTreeNode
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		}
	}

	categories, err := s.categories.FindAllForTenant(ctx, tenantID, filter.IncludeInactive)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CategoryTreeNode, len(categories))
	byParent := make(map[uuid.UUID][]*CategoryTreeNode)
	for i := range categories {
		c := &categories[i]
		node := ToCategoryTreeNode(c)
		nodes[c.ID] = node
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], node)
		}
	}

	var top []*CategoryTreeNode
	switch {
	case filter.ParentID != nil:
		for _, node := range byParent[*filter.ParentID] {
			if matchesSearch(node, filter.Search) {
				top = append(top, node)
			}
		}
	case filter.Search != "":
		for i := range categories {
			node := nodes[categories[i].ID]
			if filter.RootOnly && node.ParentID != nil {
				continue
			}
			if matchesSearch(node, filter.Search) {
				top = append(top, node)
			}
		}
	default:
		for i := range categories {
			if categories[i].ParentID == nil {
				top = append(top, nodes[categories[i].ID])
			}
		}
	}
	sortByName(top)

	remaining := catalog.MaxCategoryDepth
	if filter.MaxDepth != nil {
		remaining = *filter.MaxDepth
	}
	// With a search filter a node can surface both top-level and as a
	// child of another match; the visited set keeps its children from
	// being attached twice.
	visited := make(map[uuid.UUID]bool)
	for _, node := range top {
		attachChildren(node, byParent, remaining, visited)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(top); err == nil {
			s.cache.Set(ctx, tenantID, key, payload)
		}
	}
	if top == nil {
		top = make([]*CategoryTreeNode, 0)
	}
	return top, nil
}

// GetChildren returns the direct active children of a category ordered by name
func (s *CategoryService) GetChildren(ctx context.Context, tenantID, id uuid.UUID) ([]*CategoryResponse, error) {
	if _, err := s.categories.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return nil, err
	}

	children, err := s.categories.FindChildren(ctx, tenantID, id, false)
	if err != nil {
		return nil, err
	}

	out := make([]*CategoryResponse, 0, len(children))
	for i := range children {
		out = append(out, ToCategoryResponse(&children[i]))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetAncestors returns a category's ancestor chain, closest ancestor first
func (s *CategoryService) GetAncestors(ctx context.Context, tenantID, id uuid.UUID) ([]*CategoryResponse, error) {
	ancestors, err := s.validator.Ancestors(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	out := make([]*CategoryResponse, 0, len(ancestors))
	for i := range ancestors {
		out = append(out, ToCategoryResponse(&ancestors[i]))
	}
	return out, nil
}

func (s *CategoryService) invalidateTree(ctx context.Context, tenantID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateTenant(ctx, tenantID)
	}
}

func (s *CategoryService) recordAudit(ctx context.Context, category *catalog.Category, action audit.Action, actorID *uuid.UUID) []string {
	if s.auditor == nil {
		return nil
	}

	detail, _ := json.Marshal(map[string]interface{}{
		"code":   category.Code,
		"name":   category.Name,
		"path":   category.Path,
		"depth":  category.Depth,
		"status": category.Status,
	})
	entry := audit.NewEntry(category.TenantID, "category", category.ID, action, actorID, string(detail))

	if err := s.auditor.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("category_id", category.ID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
		return []string{"audit entry could not be recorded"}
	}
	return nil
}

// cascadePaths recomputes paths and depths breadth first so every node is
// refreshed from an already updated parent. The returned batch starts with
// the moved category itself.
func cascadePaths(category *catalog.Category, descendants []catalog.Category) []*catalog.Category {
	byParent := make(map[uuid.UUID][]*catalog.Category)
	for i := range descendants {
		d := &descendants[i]
		if d.ParentID != nil {
			byParent[*d.ParentID] = append(byParent[*d.ParentID], d)
		}
	}

	batch := []*catalog.Category{category}
	queue := []*catalog.Category{category}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range byParent[parent.ID] {
			child.RefreshPathFrom(parent)
			batch = append(batch, child)
			queue = append(queue, child)
		}
	}
	return batch
}

func attachChildren(node *CategoryTreeNode, byParent map[uuid.UUID][]*CategoryTreeNode, remaining int, visited map[uuid.UUID]bool) {
	if remaining <= 0 || visited[node.ID] {
		return
	}
	visited[node.ID] = true
	children := byParent[node.ID]
	sortByName(children)
	for _, child := range children {
		node.Children = append(node.Children, child)
		attachChildren(child, byParent, remaining-1, visited)
	}
}

func sortByName(nodes []*CategoryTreeNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
}

func matchesSearch(node *CategoryTreeNode, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(node.Code), needle) ||
		strings.Contains(strings.ToLower(node.Name), needle)
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func treeCacheKey(filter TreeFilter) string {
	parent := ""
	if filter.ParentID != nil {
		parent = filter.ParentID.String()
	}
	depth := ""
	if filter.MaxDepth != nil {
		depth = fmt.Sprintf("%d", *filter.MaxDepth)
	}
	return fmt.Sprintf("tree:%s:%s:%t:%t:%s",
		strings.ToLower(filter.Search), parent, filter.RootOnly, filter.IncludeInactive, depth)
}
