package handlers_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"marketplace/internal/repos"
)

func TestAPI_StoreFailureIsOpaque500(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.db.Close())

	status, raw := a.call(t, "GET", "/api/v1/products", "", nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"Status":false,"Error":"internal error"}`, string(raw))
	assert.NotContains(t, string(raw), "sql")

	logged := a.logs.FilterField(zap.String("action", "server.error")).All()
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0].ContextMap()["error"], "closed")
}

func TestAPI_UnknownRouteAndBodyLimit(t *testing.T) {
	a := newTestApp(t)

	status, raw := a.call(t, "GET", "/api/v1/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.JSONEq(t, `{"Status":false,"Error":"not found"}`, string(raw))

	big := `{"ordered_items": "` + strings.Repeat("x", 2<<20) + `"}`
	status, _ = a.call(t, "POST", "/api/v1/basket", "", big)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, status)
}

func TestAPI_LoginLogout(t *testing.T) {
	a := newTestApp(t)

	_, out := a.callJSON(t, "POST", "/api/v1/user/login", "", map[string]any{"email": "alice@market.test", "password": "nope"})
	assert.Equal(t, map[string]any{"Status": false, "Errors": "invalid email or password"}, out)

	_, out = a.callJSON(t, "POST", "/api/v1/user/login", "", map[string]any{"email": "not-an-email", "password": "x"})
	assert.Equal(t, map[string]any{"Status": false, "Errors": "email: must be a valid email"}, out)
	assert.Len(t, a.logs.FilterField(zap.String("action", "auth.login.fail")).All(), 2)

	tok := a.login(t, "alice@market.test")
	status, _ := a.call(t, "GET", "/api/v1/basket", tok, nil)
	assert.Equal(t, fiber.StatusOK, status)

	_, out = a.callJSON(t, "POST", "/api/v1/user/logout", tok, nil)
	assert.Equal(t, map[string]any{"Status": true}, out)

	status, _ = a.call(t, "GET", "/api/v1/basket", tok, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAPI_RegisterAndDetails(t *testing.T) {
	a := newTestApp(t)
	reg := map[string]any{"email": "carol@market.test", "name": "Carol", "password": repos.DemoPassword, "password2": repos.DemoPassword}

	_, out := a.callJSON(t, "POST", "/api/v1/user/register", "", reg)
	require.Equal(t, true, out["Status"], out)
	user, _ := out["User"].(map[string]any)
	assert.Equal(t, "buyer", user["type"])
	assert.NotContains(t, user, "Hash")
	require.Len(t, a.logs.FilterField(zap.String("action", "auth.register")).All(), 1)

	_, out = a.callJSON(t, "POST", "/api/v1/user/register", "", reg)
	assert.Equal(t, map[string]any{"Status": false, "Errors": "email is already registered"}, out)

	tok := a.login(t, "carol@market.test")
	status, raw := a.call(t, "GET", "/api/v1/user/details", tok, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%v,"email":"carol@market.test","name":"Carol","type":"buyer"}`, user["id"]), string(raw))

	status, _ = a.call(t, "GET", "/api/v1/user/details", "", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestAPI_CatalogLists(t *testing.T) {
	a := newTestApp(t)
	a.seedListing(t, "svyaznoy@market.test", "Связной", 100)
	a.seedListing(t, "eldorado@market.test", "Эльдорадо", 200)

	_, raw := a.call(t, "GET", "/api/v1/categories", "", nil)
	assert.JSONEq(t, `[{"id":1,"name":"Phones"}]`, string(raw))

	_, raw = a.call(t, "GET", "/api/v1/products", "", nil)
	assert.JSONEq(t, `[{"id":1,"name":"X1","category_id":1,"category":"Phones"}]`, string(raw))

	_, raw = a.call(t, "GET", "/api/v1/shops", "", nil)
	assert.Contains(t, string(raw), `"name":"Связной"`)
	assert.NotContains(t, string(raw), "user_id")

	_, out := a.callJSON(t, "GET", "/api/v1/products/info?shop_id=abc", "", nil)
	assert.Equal(t, map[string]any{"Status": false, "Errors": "shop_id: must be a positive integer"}, out)
}
