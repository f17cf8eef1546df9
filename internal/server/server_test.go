package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository"
	"tobaku-pos/internal/repository/memory"
	"tobaku-pos/internal/seed"
	"tobaku-pos/internal/service"
	"tobaku-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app   *fiber.App
	store *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	require.NoError(t, seed.Run(context.Background(), store, seed.Options{
		AdminPassword: "admin123",
		StaffPassword: "kasir123",
		DemoProducts:  true,
	}))

	tokens := jwt.NewManager("test-secret", time.Hour)
	app := New(Deps{
		Auth:     service.NewAuthService(store.Users(), tokens),
		Users:    service.NewUserService(store.Users()),
		Catalog:  service.NewCatalogService(store, nil),
		Stock:    service.NewStockService(store, nil),
		Checkout: service.NewCheckoutService(store, nil),
		Reports:  service.NewReportService(store, time.UTC),
		Location: time.UTC,
	})
	return &testEnv{app: app, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (e *testEnv) product(t *testing.T, sku string) model.Product {
	t.Helper()
	all, err := e.store.Products().FindAll(context.Background(), repository.ProductFilter{Query: sku})
	require.NoError(t, err)
	require.NotEmpty(t, all)
	return all[0]
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/products", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "salah"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestStaffCannotManageCatalog(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "kasir", "kasir123")

	status, _ := env.do(t, http.MethodGet, "/api/v1/products", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/products", token, map[string]any{
		"name": "Teh Botol", "category": "Minuman", "sku": "TEH001", "sell_price": 5000,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/stock/movements", token, map[string]any{
		"product_id": env.product(t, "AQU001").ID, "quantity": 1, "type": "IN", "source": "x",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCheckoutOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "kasir", "kasir123")
	marlboro := env.product(t, "MRL001")

	cart := map[string]any{
		"items":            []map[string]any{{"product_id": marlboro.ID, "quantity": 2}},
		"payment_method":   "cash",
		"discount_percent": 10,
	}

	status, quote := env.do(t, http.MethodPost, "/api/v1/checkout/quote", token, cart)
	require.Equal(t, http.StatusOK, status, quote)
	assert.Equal(t, float64(45000), quote["totals"].(map[string]any)["total"])

	status, body := env.do(t, http.MethodPost, "/api/v1/transactions", token, cart)
	require.Equal(t, http.StatusCreated, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(45000), data["total"])
	assert.Equal(t, "Diskon: 10%", data["note"])

	got, err := env.store.Products().FindByID(context.Background(), marlboro.ID)
	require.NoError(t, err)
	assert.Equal(t, 48, got.Stock)

	status, body = env.do(t, http.MethodGet, "/api/v1/transactions/"+data["id"].(string), token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, data["id"], body["id"])
}

func TestErrorStatusMapping(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, "admin", "admin123")
	migelas := env.product(t, "MIG001")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"empty cart", http.MethodPost, "/api/v1/transactions", map[string]any{"payment_method": "cash"}, http.StatusBadRequest},
		{"oversell", http.MethodPost, "/api/v1/transactions", map[string]any{
			"items":          []map[string]any{{"product_id": migelas.ID, "quantity": migelas.Stock + 1}},
			"payment_method": "cash",
		}, http.StatusConflict},
		{"unknown product", http.MethodGet, "/api/v1/products/7d6f1c7e-1111-4222-8333-444455556666", nil, http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/v1/products/abc", nil, http.StatusBadRequest},
		{"bad range", http.MethodGet, "/api/v1/reports/summary?range=decade", nil, http.StatusBadRequest},
		{"strict out", http.MethodPost, "/api/v1/stock/movements", map[string]any{
			"product_id": migelas.ID, "quantity": migelas.Stock + 5, "type": "out", "source": "rusak",
		}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, tt.method, tt.path, admin, tt.body)
			assert.Equal(t, tt.want, status, body)
			assert.NotEmpty(t, body["error"])
		})
	}

	got, err := env.store.Products().FindByID(context.Background(), migelas.ID)
	require.NoError(t, err)
	assert.Equal(t, migelas.Stock, got.Stock)
}

func TestWebSocketDisabledWithoutHub(t *testing.T) {
	env := newTestEnv(t)
	status, _ := env.do(t, http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRolesListing(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/v1/roles", env.login(t, "kasir", "kasir123"), nil)
	assert.Equal(t, http.StatusForbidden, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles", nil)
	req.Header.Set("Authorization", "Bearer "+env.login(t, "admin", "admin123"))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var roles []struct {
		Code       string   `json:"code"`
		Privileges []string `json:"privileges"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roles))
	require.Len(t, roles, 2)
	assert.Equal(t, model.RoleAdmin, roles[0].Code)
	assert.Contains(t, roles[0].Privileges, model.PrivUserCreate)
}

func (e *testEnv) list(t *testing.T, path, token string) []map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestStaffSeesOnlyOwnSales(t *testing.T) {
	env := newTestEnv(t)
	staff := env.login(t, "kasir", "kasir123")
	admin := env.login(t, "admin", "admin123")
	aqua := env.product(t, "AQU001")
	cart := map[string]any{
		"items":          []map[string]any{{"product_id": aqua.ID, "quantity": 1}},
		"payment_method": "cash",
	}

	status, body := env.do(t, http.MethodPost, "/api/v1/transactions", admin, cart)
	require.Equal(t, http.StatusCreated, status, body)
	adminSale := body["data"].(map[string]any)
	status, body = env.do(t, http.MethodPost, "/api/v1/transactions", staff, cart)
	require.Equal(t, http.StatusCreated, status, body)
	staffSale := body["data"].(map[string]any)

	own := env.list(t, "/api/v1/transactions?cashier_id="+adminSale["cashier_id"].(string), staff)
	require.Len(t, own, 1)
	assert.Equal(t, staffSale["id"], own[0]["id"])

	status, _ = env.do(t, http.MethodGet, "/api/v1/transactions/"+adminSale["id"].(string), staff, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodGet, "/api/v1/transactions/"+staffSale["id"].(string), staff, nil)
	assert.Equal(t, http.StatusOK, status)

	assert.Len(t, env.list(t, "/api/v1/transactions", admin), 2)
	status, _ = env.do(t, http.MethodGet, "/api/v1/transactions/"+staffSale["id"].(string), admin, nil)
	assert.Equal(t, http.StatusOK, status)
}
