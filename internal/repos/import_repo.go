package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"marketplace/internal/domain"
)

type ImportRepo struct{ db *sqlx.DB }

func NewImportRepo(db *sqlx.DB) *ImportRepo { return &ImportRepo{db: db} }

// ReplaceShopCatalog writes feed as the complete catalog of the shop owned by
// ownerID. Shop, categories, products and parameters are reused when they
// already exist; the shop's listings are deleted and recreated. Everything
// happens in one transaction.
func (r *ImportRepo) ReplaceShopCatalog(ctx context.Context, ownerID int64, url string, feed *domain.Feed) (domain.ImportResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.ImportResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	shopID, err := upsertShop(ctx, tx, ownerID, feed.Shop, url)
	if err != nil {
		return domain.ImportResult{}, err
	}

	for _, c := range feed.Categories {
		if err := ensureCategory(ctx, tx, c); err != nil {
			return domain.ImportResult{}, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shop_categories(shop_id, category_id) VALUES(?, ?)
			ON CONFLICT(shop_id, category_id) DO NOTHING`, shopID, c.ID); err != nil {
			return domain.ImportResult{}, fmt.Errorf("link category %d: %w", c.ID, err)
		}
	}

	// product_parameters rows go with their listings (ON DELETE CASCADE)
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_infos WHERE shop_id = ?`, shopID); err != nil {
		return domain.ImportResult{}, fmt.Errorf("clear listings: %w", err)
	}

	paramIDs := map[string]int64{}
	for _, g := range feed.Goods {
		productID, err := getOrCreate(ctx, tx,
			`SELECT id FROM products WHERE name = ? AND category_id = ?`,
			`INSERT INTO products(name, category_id) VALUES(?, ?)`,
			g.Name, g.Category)
		if err != nil {
			return domain.ImportResult{}, fmt.Errorf("product %q: %w", g.Name, err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO product_infos(product_id, shop_id, external_id, model, price, price_rrc, quantity)
			VALUES(?, ?, ?, ?, ?, ?, ?)`,
			productID, shopID, g.ID, g.Model, g.Price.Decimal.String(), g.PriceRRC.Decimal.String(), g.Stock())
		if err != nil {
			return domain.ImportResult{}, fmt.Errorf("listing %d: %w", g.ID, err)
		}
		infoID, err := res.LastInsertId()
		if err != nil {
			return domain.ImportResult{}, err
		}

		for name, val := range g.Parameters {
			pid, ok := paramIDs[name]
			if !ok {
				pid, err = getOrCreate(ctx, tx,
					`SELECT id FROM parameters WHERE name = ?`,
					`INSERT INTO parameters(name) VALUES(?)`,
					name)
				if err != nil {
					return domain.ImportResult{}, fmt.Errorf("parameter %q: %w", name, err)
				}
				paramIDs[name] = pid
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO product_parameters(product_info_id, parameter_id, value)
				VALUES(?, ?, ?)`, infoID, pid, string(val)); err != nil {
				return domain.ImportResult{}, fmt.Errorf("listing %d parameter %q: %w", g.ID, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.ImportResult{}, err
	}
	return domain.ImportResult{ShopID: shopID, Categories: len(feed.Categories), Goods: len(feed.Goods)}, nil
}

// upsertShop resolves the shop owned by ownerID, creating it or renaming it
// to name. A name already used by another owner's shop is a conflict.
func upsertShop(ctx context.Context, tx *sqlx.Tx, ownerID int64, name, url string) (int64, error) {
	var holder int64
	err := tx.GetContext(ctx, &holder, `SELECT user_id FROM shops WHERE name = ?`, name)
	switch {
	case err == nil && holder != ownerID:
		return 0, domain.ErrShopNameTaken
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("shop lookup: %w", err)
	}

	var id int64
	err = tx.GetContext(ctx, &id, `SELECT id FROM shops WHERE user_id = ?`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		res, err := tx.ExecContext(ctx, `INSERT INTO shops(name, user_id, url) VALUES(?, ?, ?)`, name, ownerID, url)
		if err != nil {
			return 0, fmt.Errorf("create shop: %w", err)
		}
		return res.LastInsertId()
	}
	if err != nil {
		return 0, fmt.Errorf("shop lookup: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE shops SET name = ?, url = ? WHERE id = ?`, name, url, id); err != nil {
		return 0, fmt.Errorf("update shop: %w", err)
	}
	return id, nil
}

func ensureCategory(ctx context.Context, tx *sqlx.Tx, c domain.FeedCategory) error {
	var name string
	err := tx.GetContext(ctx, &name, `SELECT name FROM categories WHERE id = ?`, c.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `INSERT INTO categories(id, name) VALUES(?, ?)`, c.ID, c.Name)
		if err != nil {
			return fmt.Errorf("create category %d: %w", c.ID, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("category lookup: %w", err)
	case name != c.Name:
		return domain.Conflict("category_conflict",
			fmt.Sprintf("category %d already exists as %q", c.ID, name))
	}
	return nil
}

// getOrCreate selects a dictionary row id by its natural key and inserts the
// row when it is missing. Both statements take the same arguments.
func getOrCreate(ctx context.Context, tx *sqlx.Tx, sel, ins string, args ...any) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, sel, args...)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, ins, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
