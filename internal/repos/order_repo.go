package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketplace/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// EnsureBasket returns the id of the user's basket order, creating it when
// missing. The partial unique index on orders(user_id) WHERE state='basket'
// makes concurrent calls converge on one row.
func (r *OrderRepo) EnsureBasket(ctx context.Context, userID int64) (int64, error) {
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO orders(user_id, state) VALUES(?, 'basket')
		ON CONFLICT DO NOTHING`, userID); err != nil {
		return 0, fmt.Errorf("create basket: %w", err)
	}
	return r.BasketID(ctx, userID)
}

// BasketID looks the basket up without creating it.
func (r *OrderRepo) BasketID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM orders WHERE user_id = ? AND state = 'basket'`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

// AddItem inserts a line into a basket order. It reports false when the
// basket already holds the listing, and domain.ErrListingNotFound when the
// listing is gone, e.g. replaced by an import that committed after the
// caller looked it up.
func (r *OrderRepo) AddItem(ctx context.Context, orderID, productInfoID int64, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO order_items(order_id, product_info_id, quantity)
		SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM orders WHERE id = ? AND state = 'basket')
		ON CONFLICT(order_id, product_info_id) DO NOTHING`,
		orderID, productInfoID, qty, orderID)
	if isForeignKeyViolation(err) {
		return false, domain.ErrListingNotFound
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}

	var open bool
	if err := r.db.GetContext(ctx, &open, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = ? AND state = 'basket')`, orderID); err != nil {
		return false, err
	}
	if !open {
		return false, domain.ErrBasketNotFound
	}
	return false, nil
}

// DeleteItems removes every listed listing from a basket order in one statement.
func (r *OrderRepo) DeleteItems(ctx context.Context, orderID int64, productInfoIDs []int64) (int64, error) {
	if len(productInfoIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		DELETE FROM order_items
		WHERE order_id = ? AND product_info_id IN (?)
		  AND order_id IN (SELECT id FROM orders WHERE state = 'basket')`, orderID, productInfoIDs)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateItemQty sets the quantity of a basket line. Missing lines update
// nothing.
func (r *OrderRepo) UpdateItemQty(ctx context.Context, orderID, productInfoID int64, qty int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE order_items SET quantity = ?
		WHERE order_id = ? AND product_info_id = ?
		  AND order_id IN (SELECT id FROM orders WHERE state = 'basket')`,
		qty, orderID, productInfoID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PlaceBasket moves the user's basket orderID to state new. Orders of other
// users, orders past the basket state and empty baskets are left untouched.
func (r *OrderRepo) PlaceBasket(ctx context.Context, userID, orderID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET state = 'new', updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
		WHERE id = ? AND user_id = ? AND state = 'basket'
		  AND EXISTS (SELECT 1 FROM order_items WHERE order_id = orders.id)`,
		orderID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE id = ? AND user_id = ? AND state = 'basket')`,
		orderID, userID); err != nil {
		return err
	}
	if exists {
		return domain.ErrBasketEmpty
	}
	return domain.ErrBasketNotFound
}

// BasketView resolves the user's basket with its items.
func (r *OrderRepo) BasketView(ctx context.Context, userID int64) (*domain.OrderView, error) {
	views, err := r.views(ctx, `WHERE o.user_id = ? AND o.state = 'basket'`, userID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

// ListByUser returns the user's placed orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.OrderView, error) {
	return r.views(ctx, `WHERE o.user_id = ? AND o.state <> 'basket'`, userID)
}

// PartnerOrders returns every placed order, from any buyer, holding at least
// one listing of a shop owned by ownerID. Orders carry all of their items.
func (r *OrderRepo) PartnerOrders(ctx context.Context, ownerID int64) ([]domain.OrderView, error) {
	return r.views(ctx, `
  WHERE o.state <> 'basket' AND o.id IN (
    SELECT oi.order_id
    FROM order_items oi
    JOIN product_infos pi ON pi.id = oi.product_info_id
    JOIN shops s ON s.id = pi.shop_id
    WHERE s.user_id = ?)`, ownerID)
}

// views loads order headers matching where, then their items and listings
// in two IN queries.
func (r *OrderRepo) views(ctx context.Context, where string, args ...any) ([]domain.OrderView, error) {
	var orders []domain.Order
	if err := r.db.SelectContext(ctx, &orders, `
  SELECT o.id, o.user_id, o.state, o.created_at, o.updated_at
  FROM orders o `+where+`
  ORDER BY o.created_at DESC, o.id DESC`, args...); err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	out := make([]domain.OrderView, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	pos := make(map[int64]int, len(orders))
	ids := make([]int64, len(orders))
	for i, o := range orders {
		pos[o.ID] = i
		ids[i] = o.ID
		out[i] = domain.OrderView{
			ID: o.ID, UserID: o.UserID, State: o.State, CreatedAt: o.CreatedAt,
			Items: []domain.OrderItemView{},
		}
	}

	query, qargs, err := sqlx.In(`
  SELECT id, order_id, product_info_id, quantity
  FROM order_items WHERE order_id IN (?) ORDER BY order_id, id`, ids)
	if err != nil {
		return nil, err
	}
	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, query, qargs...); err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}

	listings, err := r.listings(ctx, items)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		i := pos[it.OrderID]
		out[i].Items = append(out[i].Items, domain.OrderItemView{
			ID: it.ID, ProductInfo: listings[it.ProductInfoID], Quantity: it.Quantity,
		})
	}
	for i := range out {
		out[i].Total = out[i].Sum()
	}
	return out, nil
}

func (r *OrderRepo) listings(ctx context.Context, items []domain.OrderItem) (map[int64]domain.ListingView, error) {
	out := map[int64]domain.ListingView{}
	if len(items) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductInfoID)
	}
	query, args, err := sqlx.In(listingSelect+` WHERE pi.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []listingRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("order listings: %w", err)
	}
	views, err := withParameters(ctx, r.db, rows)
	if err != nil {
		return nil, err
	}
	for _, v := range views {
		out[v.ID] = v
	}
	return out, nil
}
