package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/catalog/internal/domain/audit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE audit_logs (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL,
			actor_id TEXT,
			detail TEXT,
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormAuditLogRepository(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	entityID := uuid.New()
	actorID := uuid.New()

	created := audit.NewEntry(tenantID, "category", entityID, audit.ActionCreate, &actorID, `{"code":"TOOLS"}`)
	created.CreatedAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Record(ctx, created))

	updated := audit.NewEntry(tenantID, "category", entityID, audit.ActionUpdate, &actorID, `{"name":"Tools"}`)
	require.NoError(t, repo.Record(ctx, updated))

	other := audit.NewEntry(tenantID, "category", uuid.New(), audit.ActionDelete, nil, "")
	require.NoError(t, repo.Record(ctx, other))

	t.Run("returns entries for the entity newest first", func(t *testing.T) {
		entries, err := repo.FindByEntity(ctx, tenantID, "category", entityID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, audit.ActionUpdate, entries[0].Action)
		assert.Equal(t, audit.ActionCreate, entries[1].Action)
	})

	t.Run("scopes by tenant", func(t *testing.T) {
		entries, err := repo.FindByEntity(ctx, uuid.New(), "category", entityID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
