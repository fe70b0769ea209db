package tenant

import (
	"testing"

	"github.com/google/uuid"
	"github.com/microfinance/backend/tests/testutil"
	"github.com/stretchr/testify/require"
)

type scopedModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"type:uuid;not null"`
}

func (scopedModel) TableName() string {
	return "scoped_models"
}

func TestScope(t *testing.T) {
	t.Run("filters by tenant", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mockDB.Mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(mockDB.Mock.NewRows([]string{"id", "tenant_id"}))

		var rows []scopedModel
		require.NoError(t, mockDB.DB.Scopes(Scope(tenantID)).Find(&rows).Error)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("nil tenant matches nothing", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.Mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE 1 = 0`).
			WillReturnRows(mockDB.Mock.NewRows([]string{"id", "tenant_id"}))

		var rows []scopedModel
		require.NoError(t, mockDB.DB.Scopes(Scope(uuid.Nil)).Find(&rows).Error)
		mockDB.ExpectationsWereMet(t)
	})

	t.Run("isolates tenants on sqlite", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t, &scopedModel{})
		mine, other := uuid.New(), uuid.New()
		require.NoError(t, db.Create(&[]scopedModel{
			{ID: uuid.New(), TenantID: mine},
			{ID: uuid.New(), TenantID: other},
		}).Error)

		var rows []scopedModel
		require.NoError(t, db.Scopes(Scope(mine)).Find(&rows).Error)
		require.Len(t, rows, 1)
		require.Equal(t, mine, rows[0].TenantID)
	})
}
