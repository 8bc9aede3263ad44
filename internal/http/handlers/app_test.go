package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/http/handlers"
	applog "marketplace/internal/log"
	"marketplace/internal/repos"
)

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	logs *observer.ObservedLogs
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := applog.L()
	applog.Set(zap.New(core))
	t.Cleanup(func() { applog.Set(prev) })

	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedDemo(context.Background(), db))

	cfg := config.Config{ImportTimeout: 5 * time.Second, ImportMaxBytes: 1 << 20}
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler, BodyLimit: 1 << 20})
	app.Use(requestid.New())
	app.Use(applog.Access())
	handlers.Register(app, handlers.NewDeps(db, cfg))
	app.Use(handlers.NotFound)

	return &testApp{app: app, db: db, logs: logs}
}

// call sends a JSON request and returns the status with the raw body.
func (a *testApp) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// callJSON is call with the body decoded into a generic map.
func (a *testApp) callJSON(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := a.call(t, method, path, token, body)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return status, out
}

func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	status, out := a.callJSON(t, "POST", "/api/v1/user/login", "", map[string]string{
		"email": email, "password": repos.DemoPassword,
	})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, out["Status"], out)
	tok, _ := out["Token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

// seedListing imports a one-good catalog for the demo partner with email
// owner and returns the listing id.
func (a *testApp) seedListing(t *testing.T, owner, shop string, ext int64) int64 {
	t.Helper()
	ctx := context.Background()
	u, err := repos.NewUserRepo(a.db).ByEmail(ctx, owner)
	require.NoError(t, err)
	feed := &domain.Feed{
		Shop:       shop,
		Categories: []domain.FeedCategory{{ID: 1, Name: "Phones"}},
		Goods: []domain.FeedGood{{
			ID: ext, Category: 1, Name: "X1", Model: "x1",
			Price: decimal.NewNullDecimal(decimal.NewFromInt(100)), PriceRRC: decimal.NewNullDecimal(decimal.NewFromInt(150)), Quantity: ptr(5),
			Parameters: map[string]domain.ParamValue{"color": "black"},
		}},
	}
	res, err := repos.NewImportRepo(a.db).ReplaceShopCatalog(ctx, u.ID, "", feed)
	require.NoError(t, err)
	var id int64
	require.NoError(t, a.db.Get(&id, `SELECT id FROM product_infos WHERE shop_id=? AND external_id=?`, res.ShopID, ext))
	return id
}

func ptr[T any](v T) *T { return &v }
