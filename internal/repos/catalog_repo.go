package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"marketplace/internal/domain"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

type CatalogRepo struct{ db *sqlx.DB }

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo { return &CatalogRepo{db: db} }

func (r *CatalogRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT p.id, p.name, p.category_id, c.name AS category
  FROM products p
  JOIN categories c ON c.id = p.category_id
  ORDER BY p.id
`)
	return out, err
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `SELECT id, name FROM categories ORDER BY id`)
	return out, err
}

func (r *CatalogRepo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	out := []domain.Shop{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT id, name, user_id, COALESCE(url,'') AS url, is_open
  FROM shops
  ORDER BY name, id
`)
	return out, err
}

// ShopByOwner returns the shop owned by userID.
func (r *CatalogRepo) ShopByOwner(ctx context.Context, userID int64) (*domain.Shop, error) {
	var s domain.Shop
	err := r.db.GetContext(ctx, &s, `
  SELECT id, name, user_id, COALESCE(url,'') AS url, is_open
  FROM shops WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetShopOpen toggles whether the owner's listings are visible to buyers.
func (r *CatalogRepo) SetShopOpen(ctx context.Context, userID int64, open bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE shops SET is_open = ? WHERE user_id = ?`, open, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type ListingFilter struct {
	ShopID     int64
	CategoryID int64
}

// QueryListings returns the listings of open shops matching f, in id order.
func (r *CatalogRepo) QueryListings(ctx context.Context, f ListingFilter) ([]domain.ListingView, error) {
	where := `s.is_open = 1`
	args := []any{}
	if f.ShopID != 0 {
		where += ` AND pi.shop_id = ?`
		args = append(args, f.ShopID)
	}
	if f.CategoryID != 0 {
		where += ` AND p.category_id = ?`
		args = append(args, f.CategoryID)
	}

	var rows []listingRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, listingSelect+` WHERE `+where+` ORDER BY pi.id`, args...); err != nil {
		return nil, err
	}
	return withParameters(ctx, r.db, rows)
}

// Listing resolves one listing regardless of its shop state.
func (r *CatalogRepo) Listing(ctx context.Context, id int64) (*domain.ListingView, error) {
	var rows []listingRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, listingSelect+` WHERE pi.id = ?`, id); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	out, err := withParameters(ctx, r.db, rows)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListingsByShop returns every listing of a shop keyed by external id,
// open or not. Backs the owner's own catalog view.
func (r *CatalogRepo) ListingsByShop(ctx context.Context, shopID int64) ([]domain.ListingView, error) {
	var rows []listingRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, listingSelect+` WHERE pi.shop_id = ? ORDER BY pi.external_id`, shopID); err != nil {
		return nil, err
	}
	return withParameters(ctx, r.db, rows)
}

const listingSelect = `
  SELECT
    pi.id, pi.external_id, pi.model, pi.quantity, pi.price, pi.price_rrc,
    p.id AS product_id, p.name AS product_name,
    c.id AS category_id, c.name AS category_name,
    s.id AS shop_id, s.name AS shop_name
  FROM product_infos pi
  JOIN products p   ON p.id = pi.product_id
  JOIN categories c ON c.id = p.category_id
  JOIN shops s      ON s.id = pi.shop_id`

type listingRow struct {
	ID           int64           `db:"id"`
	ExternalID   int64           `db:"external_id"`
	Model        string          `db:"model"`
	Quantity     int             `db:"quantity"`
	Price        decimal.Decimal `db:"price"`
	PriceRRC     decimal.Decimal `db:"price_rrc"`
	ProductID    int64           `db:"product_id"`
	ProductName  string          `db:"product_name"`
	CategoryID   int64           `db:"category_id"`
	CategoryName string          `db:"category_name"`
	ShopID       int64           `db:"shop_id"`
	ShopName     string          `db:"shop_name"`
}

func (l listingRow) view() domain.ListingView {
	return domain.ListingView{
		ID:         l.ID,
		ExternalID: l.ExternalID,
		Model:      l.Model,
		Product: domain.Product{
			ID:         l.ProductID,
			Name:       l.ProductName,
			CategoryID: l.CategoryID,
			Category:   l.CategoryName,
		},
		ShopID:     l.ShopID,
		ShopName:   l.ShopName,
		Quantity:   l.Quantity,
		Price:      l.Price,
		PriceRRC:   l.PriceRRC,
		Parameters: []domain.ParameterValue{},
	}
}

// withParameters turns rows into views and attaches their parameter values
// with a single IN query.
func withParameters(ctx context.Context, q sqlx.QueryerContext, rows []listingRow) ([]domain.ListingView, error) {
	out := make([]domain.ListingView, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	idx := make(map[int64]int, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if _, seen := idx[row.ID]; seen {
			continue
		}
		idx[row.ID] = len(out)
		ids = append(ids, row.ID)
		out = append(out, row.view())
	}

	query, args, err := sqlx.In(`
  SELECT pp.product_info_id, pr.name AS parameter, pp.value
  FROM product_parameters pp
  JOIN parameters pr ON pr.id = pp.parameter_id
  WHERE pp.product_info_id IN (?)
  ORDER BY pp.product_info_id, pr.name`, ids)
	if err != nil {
		return nil, err
	}
	var params []struct {
		ProductInfoID int64 `db:"product_info_id"`
		domain.ParameterValue
	}
	if err := sqlx.SelectContext(ctx, q, &params, query, args...); err != nil {
		return nil, fmt.Errorf("listing parameters: %w", err)
	}
	for _, p := range params {
		i := idx[p.ProductInfoID]
		out[i].Parameters = append(out[i].Parameters, p.ParameterValue)
	}
	return out, nil
}
