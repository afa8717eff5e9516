package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/catalog/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockItemRepository creates a GormItemRepository with a mocked SQL connection
func newMockItemRepository(t *testing.T) (*GormItemRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormItemRepository(gormDB), mock, mockDB
}

func TestGormItemRepository_FindByIDForTenant_SQL(t *testing.T) {
	t.Run("maps record-not-found to domain error", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		itemID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "items" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, itemID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		item, err := repo.FindByIDForTenant(context.Background(), tenantID, itemID)

		assert.Nil(t, item)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates driver errors unchanged", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		itemID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "items"`).
			WithArgs(tenantID, itemID, 1).
			WillReturnError(sql.ErrConnDone)

		item, err := repo.FindByIDForTenant(context.Background(), tenantID, itemID)

		assert.Nil(t, item)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormItemRepository_CountByCategory_SQL(t *testing.T) {
	t.Run("scopes count by tenant and category", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		categoryID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "items" WHERE tenant_id = \$1 AND category_id = \$2`).
			WithArgs(tenantID, categoryID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountByCategory(context.Background(), tenantID, categoryID)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero with error on query failure", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		categoryID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "items"`).
			WithArgs(tenantID, categoryID).
			WillReturnError(sql.ErrConnDone)

		count, err := repo.CountByCategory(context.Background(), tenantID, categoryID)

		assert.Error(t, err)
		assert.Zero(t, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormItemRepository_ClearCategoryReferences_SQL(t *testing.T) {
	t.Run("issues single update and reports rows affected", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		categoryID := uuid.New()

		mock.ExpectExec(`UPDATE "items" SET "category_id"=\$1,"updated_at"=\$2 WHERE tenant_id = \$3 AND category_id = \$4`).
			WithArgs(nil, sqlmock.AnyArg(), tenantID, categoryID).
			WillReturnResult(sqlmock.NewResult(0, 3))

		affected, err := repo.ClearCategoryReferences(context.Background(), tenantID, categoryID)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces update failures", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		categoryID := uuid.New()

		mock.ExpectExec(`UPDATE "items"`).
			WithArgs(nil, sqlmock.AnyArg(), tenantID, categoryID).
			WillReturnResult(sqlmock.NewErrorResult(sql.ErrTxDone))

		affected, err := repo.ClearCategoryReferences(context.Background(), tenantID, categoryID)

		assert.Error(t, err)
		assert.Zero(t, affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
