package services_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/services"
)

type fixture struct {
	db      *sqlx.DB
	users   *repos.UserRepo
	catalog *repos.CatalogRepo
	orders  *repos.OrderRepo
	imports *repos.ImportRepo

	basket   *services.BasketService
	order    *services.OrderService
	partner  *services.PartnerService
	importer *services.ImportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return openFixture(t, ":memory:")
}

// newDiskFixture backs the services with a database file so concurrent
// calls run on separate connections.
func newDiskFixture(t *testing.T) *fixture {
	t.Helper()
	return openFixture(t, filepath.Join(t.TempDir(), "market.db"))
}

func openFixture(t *testing.T, dsn string) *fixture {
	t.Helper()
	db, err := repos.OpenDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:      db,
		users:   repos.NewUserRepo(db),
		catalog: repos.NewCatalogRepo(db),
		orders:  repos.NewOrderRepo(db),
		imports: repos.NewImportRepo(db),
	}
	f.basket = services.NewBasketService(f.orders, f.catalog)
	f.order = services.NewOrderService(f.orders)
	f.partner = services.NewPartnerService(f.orders, f.catalog)
	f.importer = services.NewImportService(f.imports, 5*time.Second, 1<<20)
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) access.Identity {
	t.Helper()
	u := &domain.User{Email: email, Name: email, Hash: "x", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return access.User(u)
}

// listing imports a one-good catalog for owner and returns the listing id.
func (f *fixture) listing(t *testing.T, owner access.Identity, shop string, ext int64, price int64) int64 {
	t.Helper()
	feed := &domain.Feed{
		Shop:       shop,
		Categories: []domain.FeedCategory{{ID: 1, Name: "Phones"}},
		Goods: []domain.FeedGood{{
			ID: ext, Category: 1, Name: "X1", Model: "x1",
			Price: decimal.NewNullDecimal(decimal.NewFromInt(price)), PriceRRC: decimal.NewNullDecimal(decimal.NewFromInt(price)), Quantity: ptr(5),
		}},
	}
	res, err := f.imports.ReplaceShopCatalog(context.Background(), owner.UserID, "", feed)
	require.NoError(t, err)
	var id int64
	require.NoError(t, f.db.Get(&id, `SELECT id FROM product_infos WHERE shop_id=? AND external_id=?`, res.ShopID, ext))
	return id
}

func (f *fixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, query, args...))
	return n
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) state(t *testing.T, orderID int64) domain.OrderState {
	t.Helper()
	var st domain.OrderState
	require.NoError(t, f.db.Get(&st, `SELECT state FROM orders WHERE id=?`, orderID))
	return st
}
