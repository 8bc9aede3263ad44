package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/services"
)

var errDiskGone = errors.New("disk I/O error")

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "sqlite"), mock
}

var mockBuyer = access.Identity{UserID: 7, Role: domain.RoleBuyer, Authenticated: true}

func TestStoreFailuresAreInternal(t *testing.T) {
	t.Run("basket creation", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`INSERT INTO orders`).WillReturnError(errDiskGone)
		svc := services.NewBasketService(repos.NewOrderRepo(db), repos.NewCatalogRepo(db))

		_, err := svc.AddItems(context.Background(), mockBuyer, []domain.LineItem{{ProductInfo: 1, Quantity: 1}})
		require.ErrorIs(t, err, errDiskGone)
		assert.Zero(t, domain.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("listing lookup", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`INSERT INTO orders`).WillReturnResult(sqlmock.NewResult(3, 1))
		mock.ExpectQuery(`SELECT id FROM orders`).WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectQuery(`FROM product_infos pi`).WillReturnError(errDiskGone)
		svc := services.NewBasketService(repos.NewOrderRepo(db), repos.NewCatalogRepo(db))

		_, err := svc.AddItems(context.Background(), mockBuyer, []domain.LineItem{{ProductInfo: 1, Quantity: 1}})
		require.ErrorIs(t, err, errDiskGone)
		assert.Zero(t, domain.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("place order", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectExec(`UPDATE orders`).WithArgs(int64(3), int64(7)).WillReturnError(errDiskGone)
		svc := services.NewOrderService(repos.NewOrderRepo(db))

		err := svc.PlaceOrder(context.Background(), mockBuyer, 3)
		require.ErrorIs(t, err, errDiskGone)
		assert.Zero(t, domain.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("import rolls back", func(t *testing.T) {
		db, mock := mockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT user_id FROM shops`).WillReturnError(errDiskGone)
		mock.ExpectRollback()
		repo := repos.NewImportRepo(db)

		feed, err := services.DecodeFeed([]byte("shop: A\ncategories: [{id: 1, name: B}]\n"))
		require.NoError(t, err)
		_, err = repo.ReplaceShopCatalog(context.Background(), 9, "", feed)
		require.ErrorIs(t, err, errDiskGone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
