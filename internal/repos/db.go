package repos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	applog "marketplace/internal/log"
)

// OpenDB opens the sqlite store at dsn and makes sure the schema exists.
// ":memory:" databases are pinned to one connection so every caller sees the
// same database.
func OpenDB(dsn string) (*sqlx.DB, error) {
	memory := strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
	if !memory {
		dsn = withPragmas(dsn)
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}
	return db, nil
}

func isForeignKeyViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL COLLATE NOCASE UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('buyer','shop')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- opaque token handed to the client
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Catalog
CREATE TABLE IF NOT EXISTS shops(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
  url TEXT,
  is_open INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY,            -- supplied by partner feeds
  name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS shop_categories(
  shop_id INTEGER NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  PRIMARY KEY (shop_id, category_id)
);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  UNIQUE (name, category_id)
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);

CREATE TABLE IF NOT EXISTS product_infos(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  shop_id INTEGER NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
  external_id INTEGER NOT NULL,
  model TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,               -- decimal string
  price_rrc TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  UNIQUE (shop_id, external_id)
);
CREATE INDEX IF NOT EXISTS idx_product_infos_product ON product_infos(product_id);

CREATE TABLE IF NOT EXISTS parameters(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS product_parameters(
  product_info_id INTEGER NOT NULL REFERENCES product_infos(id) ON DELETE CASCADE,
  parameter_id INTEGER NOT NULL REFERENCES parameters(id) ON DELETE CASCADE,
  value TEXT NOT NULL,
  PRIMARY KEY (product_info_id, parameter_id)
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  state TEXT NOT NULL DEFAULT 'basket'
    CHECK (state IN ('basket','new','confirmed','assembled','sent','delivered','canceled')),
  created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
  updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_basket ON orders(user_id) WHERE state = 'basket';

CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_info_id INTEGER NOT NULL REFERENCES product_infos(id) ON DELETE CASCADE,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  UNIQUE (order_id, product_info_id)
);
CREATE INDEX IF NOT EXISTS idx_order_items_info ON order_items(product_info_id);
`
	_, err := db.Exec(schema)
	return err
}

// DemoPassword is the password of every account created by SeedDemo.
const DemoPassword = "Passw0rd!"

// SeedDemo ensures two buyers and two partner accounts exist (idempotent).
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	type u struct{ Email, Name, Role string }
	users := []u{
		{"alice@market.test", "Alice", "buyer"},
		{"bob@market.test", "Bob", "buyer"},
		{"svyaznoy@market.test", "Связной", "shop"},
		{"eldorado@market.test", "Эльдорадо", "shop"},
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var added int64
	for _, x := range users {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO users(email,name,password_hash,role)
			VALUES(?,?,?,?)
			ON CONFLICT DO NOTHING
		`, x.Email, x.Name, string(hash), x.Role)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		added += n
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if added > 0 {
		applog.L().Info("seed", zap.String("action", "seed.users"), zap.Int64("added", added))
	}
	return nil
}
