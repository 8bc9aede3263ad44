package repos

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newFileDB opens a WAL database on disk so concurrent callers get their own
// connections.
func newFileDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "market.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mkUser(t *testing.T, db *sqlx.DB, email string, role domain.Role) int64 {
	t.Helper()
	u := &domain.User{Email: email, Name: email, Hash: "x", Role: role}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	return u.ID
}

func orderState(t *testing.T, db *sqlx.DB, orderID int64) domain.OrderState {
	t.Helper()
	var st domain.OrderState
	require.NoError(t, db.Get(&st, `SELECT state FROM orders WHERE id=?`, orderID))
	return st
}

// phonesFeed is the single-good feed used across the store tests.
func phonesFeed(shop string, qty int) *domain.Feed {
	return &domain.Feed{
		Shop:       shop,
		Categories: []domain.FeedCategory{{ID: 1, Name: "Phones"}},
		Goods: []domain.FeedGood{{
			ID: 100, Category: 1, Name: "X1", Model: "x1",
			Price: decimal.NewNullDecimal(decimal.NewFromInt(100)), PriceRRC: decimal.NewNullDecimal(decimal.NewFromInt(150)), Quantity: ptr(qty),
			Parameters: map[string]domain.ParamValue{"color": "black"},
		}},
	}
}

func importFeed(t *testing.T, db *sqlx.DB, owner int64, feed *domain.Feed) domain.ImportResult {
	t.Helper()
	res, err := NewImportRepo(db).ReplaceShopCatalog(context.Background(), owner, "http://feeds.test/"+feed.Shop, feed)
	require.NoError(t, err)
	return res
}

func count(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

func ptr[T any](v T) *T { return &v }
