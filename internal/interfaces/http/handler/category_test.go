package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/erp/catalog/internal/application/catalog"
	"github.com/erp/catalog/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type responseEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type categoryPayload struct {
	ID       uuid.UUID  `json:"id"`
	Code     string     `json:"code"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
	Path     string     `json:"path"`
	Depth    int        `json:"depth"`
	Status   string     `json:"status"`
}

type treeNodePayload struct {
	categoryPayload
	Children []treeNodePayload `json:"children"`
}

// setupCategoryAPI wires the full category stack over an in-memory
// SQLite database and returns a router ready for httptest.
func setupCategoryAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			parent_id TEXT,
			path TEXT NOT NULL,
			depth INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			version INTEGER NOT NULL DEFAULT 1,
			created_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(tenant_id, code)
		)`,
		`CREATE TABLE items (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			barcode TEXT,
			category_id TEXT,
			unit TEXT NOT NULL DEFAULT 'pcs',
			purchase_price TEXT NOT NULL DEFAULT '0',
			selling_price TEXT NOT NULL DEFAULT '0',
			status TEXT NOT NULL DEFAULT 'active',
			version INTEGER NOT NULL DEFAULT 1,
			created_by TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(tenant_id, code)
		)`,
		`CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			actor_id TEXT,
			detail TEXT,
			created_at DATETIME NOT NULL
		)`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	categoryRepo := persistence.NewGormCategoryRepository(db)
	itemRepo := persistence.NewGormItemRepository(db)
	auditRepo := persistence.NewGormAuditLogRepository(db)

	categoryService := catalogapp.NewCategoryService(categoryRepo, itemRepo, auditRepo, zap.NewNop())
	statsService := catalogapp.NewStatsService(categoryRepo, itemRepo)

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewCategoryHandler(categoryService, statsService).RegisterRoutes(api)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, responseEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var envelope responseEnvelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func createCategory(t *testing.T, engine *gin.Engine, code, name string, parentID *uuid.UUID) categoryPayload {
	t.Helper()

	body := map[string]any{"code": code, "name": name}
	if parentID != nil {
		body["parent_id"] = parentID.String()
	}
	w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories", body)
	require.Equal(t, http.StatusCreated, w.Code, "create %s: %s", code, w.Body.String())

	var category categoryPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &category))
	return category
}

func TestCategoryHandler_Create(t *testing.T) {
	engine := setupCategoryAPI(t)

	t.Run("creates a root category", func(t *testing.T) {
		category := createCategory(t, engine, "electronics", "Electronics", nil)
		assert.Equal(t, "ELECTRONICS", category.Code)
		assert.Equal(t, "/", category.Path)
		assert.Equal(t, 0, category.Depth)
		assert.Equal(t, "active", category.Status)
	})

	t.Run("creates a child with derived path", func(t *testing.T) {
		parent := createCategory(t, engine, "TOOLS", "Tools", nil)
		child := createCategory(t, engine, "DRILLS", "Drills", &parent.ID)
		assert.Equal(t, "/TOOLS", child.Path)
		assert.Equal(t, 1, child.Depth)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, parent.ID, *child.ParentID)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		createCategory(t, engine, "DUP", "First", nil)
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories",
			map[string]any{"code": "dup", "name": "Second"})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "ALREADY_EXISTS", envelope.Error.Code)
	})

	t.Run("rejects missing parent", func(t *testing.T) {
		missing := uuid.New()
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories",
			map[string]any{"code": "ORPHAN", "name": "Orphan", "parent_id": missing.String()})
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "PARENT_NOT_FOUND", envelope.Error.Code)
	})

	t.Run("rejects invalid code characters", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories",
			map[string]any{"code": "BAD CODE!", "name": "Bad"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "INVALID_CODE", envelope.Error.Code)
	})

	t.Run("enforces the depth bound", func(t *testing.T) {
		parent := createCategory(t, engine, "L0", "Level 0", nil)
		for i := 1; i < 5; i++ {
			parent = createCategory(t, engine, fmt.Sprintf("L%d", i), fmt.Sprintf("Level %d", i), &parent.ID)
		}
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories",
			map[string]any{"code": "L5", "name": "Level 5", "parent_id": parent.ID.String()})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "MAX_DEPTH_EXCEEDED", envelope.Error.Code)
	})
}

func TestCategoryHandler_GetByID(t *testing.T) {
	engine := setupCategoryAPI(t)
	category := createCategory(t, engine, "BOOKS", "Books", nil)

	t.Run("returns the category", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/"+category.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got categoryPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &got))
		assert.Equal(t, "BOOKS", got.Code)
	})

	t.Run("404 for unknown id", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
	})

	t.Run("400 for malformed id", func(t *testing.T) {
		w, _ := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCategoryHandler_GetTree(t *testing.T) {
	engine := setupCategoryAPI(t)
	root := createCategory(t, engine, "ROOT", "Root", nil)
	createCategory(t, engine, "ZETA", "Zeta", &root.ID)
	createCategory(t, engine, "ALPHA", "Alpha", &root.ID)

	w, envelope := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tree []treeNodePayload
	require.NoError(t, json.Unmarshal(envelope.Data, &tree))
	require.Len(t, tree, 1)
	assert.Equal(t, "ROOT", tree[0].Code)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "Alpha", tree[0].Children[0].Name)
	assert.Equal(t, "Zeta", tree[0].Children[1].Name)
}

func TestCategoryHandler_Update(t *testing.T) {
	engine := setupCategoryAPI(t)
	category := createCategory(t, engine, "STALE", "Old Name", nil)

	w, envelope := doJSON(t, engine, http.MethodPut, "/api/v1/catalog/categories/"+category.ID.String(),
		map[string]any{"name": "New Name"})
	require.Equal(t, http.StatusOK, w.Code)

	var got categoryPayload
	require.NoError(t, json.Unmarshal(envelope.Data, &got))
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "STALE", got.Code)
}

func TestCategoryHandler_Move(t *testing.T) {
	engine := setupCategoryAPI(t)
	a := createCategory(t, engine, "A", "A", nil)
	b := createCategory(t, engine, "B", "B", &a.ID)
	c := createCategory(t, engine, "C", "C", &b.ID)
	d := createCategory(t, engine, "D", "D", nil)

	t.Run("moves a subtree", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories/"+b.ID.String()+"/move",
			map[string]any{"new_parent_id": d.ID.String()})
		require.Equal(t, http.StatusOK, w.Code)

		var moved categoryPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &moved))
		assert.Equal(t, "/D", moved.Path)
		assert.Equal(t, 1, moved.Depth)

		// The descendant follows.
		_, childEnvelope := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/"+c.ID.String(), nil)
		var child categoryPayload
		require.NoError(t, json.Unmarshal(childEnvelope.Data, &child))
		assert.Equal(t, "/D/B", child.Path)
		assert.Equal(t, 2, child.Depth)
	})

	t.Run("rejects a move under a descendant", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories/"+b.ID.String()+"/move",
			map[string]any{"new_parent_id": c.ID.String()})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "CIRCULAR_REFERENCE", envelope.Error.Code)
	})

	t.Run("moves to root with null parent", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodPost, "/api/v1/catalog/categories/"+b.ID.String()+"/move",
			map[string]any{"new_parent_id": nil})
		require.Equal(t, http.StatusOK, w.Code)

		var moved categoryPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &moved))
		assert.Equal(t, "/", moved.Path)
		assert.Equal(t, 0, moved.Depth)
	})
}

func TestCategoryHandler_Delete(t *testing.T) {
	engine := setupCategoryAPI(t)
	category := createCategory(t, engine, "TEMP", "Temporary", nil)

	t.Run("soft-deletes the category", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodDelete, "/api/v1/catalog/categories/"+category.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got categoryPayload
		require.NoError(t, json.Unmarshal(envelope.Data, &got))
		assert.Equal(t, "inactive", got.Status)
	})

	t.Run("re-deleting conflicts", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodDelete, "/api/v1/catalog/categories/"+category.ID.String(), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "ALREADY_DELETED", envelope.Error.Code)
	})

	t.Run("reactivation via update conflicts", func(t *testing.T) {
		w, envelope := doJSON(t, engine, http.MethodPut, "/api/v1/catalog/categories/"+category.ID.String(),
			map[string]any{"status": "active"})
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, "INVALID_STATE", envelope.Error.Code)
	})
}

func TestCategoryHandler_Stats(t *testing.T) {
	engine := setupCategoryAPI(t)
	root := createCategory(t, engine, "STATS", "Stats Root", nil)
	createCategory(t, engine, "STATS-CHILD", "Stats Child", &root.ID)

	w, envelope := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/"+root.ID.String()+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		CategoryID      uuid.UUID `json:"category_id"`
		ItemCount       int64     `json:"item_count"`
		TotalItemCount  int64     `json:"total_item_count"`
		ActiveItemCount int64     `json:"active_item_count"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &stats))
	assert.Equal(t, root.ID, stats.CategoryID)
	assert.Equal(t, int64(0), stats.ItemCount)

	countW, countEnvelope := doJSON(t, engine, http.MethodGet, "/api/v1/catalog/categories/"+root.ID.String()+"/active-item-count", nil)
	require.Equal(t, http.StatusOK, countW.Code)

	var count struct {
		ActiveItemCount int64 `json:"active_item_count"`
	}
	require.NoError(t, json.Unmarshal(countEnvelope.Data, &count))
	assert.Equal(t, int64(0), count.ActiveItemCount)
}
