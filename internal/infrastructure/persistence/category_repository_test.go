package persistence

import (
	"context"
	"testing"

	"github.com/erp/catalog/internal/domain/catalog"
	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCategoryTestDB creates an in-memory SQLite database for testing
func setupCategoryTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE categories (
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
		)
	`).Error
	require.NoError(t, err)

	return db
}

func mustCreateCategory(t *testing.T, repo *GormCategoryRepository, tenantID uuid.UUID, code, name string, parent *catalog.Category) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(tenantID, code, name, parent)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), category))
	return category
}

func TestGormCategoryRepository_SaveAndFind(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("round-trips a category", func(t *testing.T) {
		category := mustCreateCategory(t, repo, tenantID, "ELECTRONICS", "Electronics", nil)

		found, err := repo.FindByIDForTenant(ctx, tenantID, category.ID)
		require.NoError(t, err)
		assert.Equal(t, "ELECTRONICS", found.Code)
		assert.Equal(t, catalog.RootPath, found.Path)
		assert.Equal(t, 0, found.Depth)
	})

	t.Run("does not leak across tenants", func(t *testing.T) {
		category := mustCreateCategory(t, repo, tenantID, "PRIVATE", "Private", nil)

		_, err := repo.FindByIDForTenant(ctx, uuid.New(), category.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("finds by code case-insensitively", func(t *testing.T) {
		mustCreateCategory(t, repo, tenantID, "TOOLS", "Tools", nil)

		found, err := repo.FindByCode(ctx, tenantID, "tools")
		require.NoError(t, err)
		assert.Equal(t, "TOOLS", found.Code)
	})

	t.Run("rejects duplicate code at the storage level", func(t *testing.T) {
		mustCreateCategory(t, repo, tenantID, "DUP", "First", nil)

		duplicate, err := catalog.NewCategory(tenantID, "DUP", "Second", nil)
		require.NoError(t, err)
		err = repo.Save(ctx, duplicate)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestGormCategoryRepository_ExistsByCode(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	category := mustCreateCategory(t, repo, tenantID, "DRILLS", "Drills", nil)

	exists, err := repo.ExistsByCode(ctx, tenantID, "drills")
	require.NoError(t, err)
	assert.True(t, exists)

	// Soft-deleted categories still hold their code.
	require.NoError(t, category.Deactivate())
	require.NoError(t, repo.Save(ctx, category))

	exists, err = repo.ExistsByCode(ctx, tenantID, "DRILLS")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, uuid.New(), "DRILLS")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormCategoryRepository_FindChildren(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	root := mustCreateCategory(t, repo, tenantID, "ROOT", "Root", nil)
	mustCreateCategory(t, repo, tenantID, "ZETA", "Zeta", root)
	mustCreateCategory(t, repo, tenantID, "ALPHA", "Alpha", root)
	inactive := mustCreateCategory(t, repo, tenantID, "GONE", "Gone", root)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Save(ctx, inactive))

	t.Run("orders active children by name", func(t *testing.T) {
		children, err := repo.FindChildren(ctx, tenantID, root.ID, false)
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.Equal(t, "Alpha", children[0].Name)
		assert.Equal(t, "Zeta", children[1].Name)
	})

	t.Run("includes inactive children on request", func(t *testing.T) {
		children, err := repo.FindChildren(ctx, tenantID, root.ID, true)
		require.NoError(t, err)
		assert.Len(t, children, 3)
	})
}

func TestGormCategoryRepository_FindDescendants(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	a := mustCreateCategory(t, repo, tenantID, "A", "A", nil)
	b := mustCreateCategory(t, repo, tenantID, "B", "B", a)
	c := mustCreateCategory(t, repo, tenantID, "C", "C", b)
	// Code prefix trap: /AB must not match the subtree of /A.
	ab := mustCreateCategory(t, repo, tenantID, "AB", "AB", nil)
	mustCreateCategory(t, repo, tenantID, "ABX", "ABX", ab)

	descendants, err := repo.FindDescendants(ctx, tenantID, a)
	require.NoError(t, err)
	require.Len(t, descendants, 2)
	assert.Equal(t, b.ID, descendants[0].ID)
	assert.Equal(t, c.ID, descendants[1].ID)
}

func TestGormCategoryRepository_SaveAll(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	a := mustCreateCategory(t, repo, tenantID, "A", "A", nil)
	d := mustCreateCategory(t, repo, tenantID, "D", "D", nil)
	b := mustCreateCategory(t, repo, tenantID, "B", "B", a)
	c := mustCreateCategory(t, repo, tenantID, "C", "C", b)

	require.NoError(t, b.MoveTo(d))
	c.RefreshPathFrom(b)

	require.NoError(t, repo.SaveAll(ctx, []*catalog.Category{b, c}))

	foundB, err := repo.FindByIDForTenant(ctx, tenantID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "/D", foundB.Path)
	assert.Equal(t, 1, foundB.Depth)

	foundC, err := repo.FindByIDForTenant(ctx, tenantID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "/D/B", foundC.Path)
	assert.Equal(t, 2, foundC.Depth)
}

func TestGormCategoryRepository_FindAllForTenant(t *testing.T) {
	db := setupCategoryTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	active := mustCreateCategory(t, repo, tenantID, "ACT", "Active", nil)
	inactive := mustCreateCategory(t, repo, tenantID, "INA", "Inactive", nil)
	require.NoError(t, inactive.Deactivate())
	require.NoError(t, repo.Save(ctx, inactive))

	all, err := repo.FindAllForTenant(ctx, tenantID, false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, active.ID, all[0].ID)

	all, err = repo.FindAllForTenant(ctx, tenantID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	count, err := repo.CountForTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
