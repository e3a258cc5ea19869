package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/events"
	"github.com/Shashank-1177/SBFood/handlers"
	"github.com/Shashank-1177/SBFood/middleware"
	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/routes"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	engine http.Handler
	svc    *services.Services
	tokens *middleware.Tokens
	events *events.Recorder
}

func newAPI(t *testing.T, checks map[string]handlers.Check) *testAPI {
	t.Helper()
	db, err := config.OpenDB(config.DBConfig{Driver: "sqlite", DSN: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	rec := &events.Recorder{}
	svc := services.New(db, services.Options{
		Events:     rec,
		Logger:     zerolog.Nop(),
		PublicURL:  "https://sbfoods.test",
		BcryptCost: bcrypt.MinCost,
	})
	tokens := middleware.NewTokens("test-secret", time.Hour)
	h := handlers.New(svc, tokens, handlers.Options{Checks: checks})
	engine, err := routes.NewRouter(zerolog.Nop(), "http://localhost:3000", h, tokens)
	require.NoError(t, err)
	return &testAPI{t: t, engine: engine, svc: svc, tokens: tokens, events: rec}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func data(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := decode(t, w)["data"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return d
}

func (a *testAPI) register(name, email string, role models.UserRole) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode(a.t, w)["token"].(string)
}

func (a *testAPI) adminToken() string {
	a.t.Helper()
	u, err := a.svc.Auth.CreateAdmin(context.Background(), services.RegisterInput{
		Name: "Ada Admin", Email: "ada@example.com", Password: "secret123",
	})
	require.NoError(a.t, err)
	tok, err := a.tokens.Generate(u)
	require.NoError(a.t, err)
	return tok
}

func id(v any) string {
	return fmt.Sprintf("%.0f", v.(float64))
}

func TestAuthEndpoints(t *testing.T) {
	api := newAPI(t, nil)

	token := api.register("Cathy Customer", "cathy@example.com", models.RoleCustomer)
	assert.NotEmpty(t, token)

	w := api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Cathy Again", "email": "CATHY@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User already exists with this email", decode(t, w)["message"])

	w = api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Mallory", "email": "mallory@example.com", "password": "secret123", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "role", errs[0].(map[string]any)["field"])

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "cathy@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["message"])

	w = api.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "cathy@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode(t, w)
	assert.Equal(t, true, login["success"])
	assert.NotEmpty(t, login["token"])

	w = api.do(http.MethodGet, "/api/auth/me", login["token"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "cathy@example.com", me["email"])
	assert.NotContains(t, me, "passwordHash")

	w = api.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBindingRulesReportFields(t *testing.T) {
	api := newAPI(t, nil)
	owner := api.register("Oscar Owner", "oscar@example.com", models.RoleRestaurant)

	w := api.do(http.MethodPost, "/api/restaurants", owner, gin.H{
		"name":           "Burger Barn",
		"cuisine":        "Klingon",
		"operatingHours": gin.H{"monday": gin.H{"open": "25:00", "close": "22:00"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := map[string]string{}
	for _, e := range decode(t, w)["errors"].([]any) {
		fe := e.(map[string]any)
		fields[fe["field"].(string)] = fe["message"].(string)
	}
	assert.Equal(t, "Invalid cuisine type", fields["cuisine"])
	assert.Contains(t, fields, "operatingHours[monday].open")

	customer := api.register("Cathy Customer", "cathy@example.com", models.RoleCustomer)
	w = api.do(http.MethodPost, "/api/orders", customer, gin.H{
		"deliveryAddress": gin.H{"street": "1 Main St"},
		"contact":         gin.H{"phone": "5550100"},
		"payment":         gin.H{"method": "bitcoin"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields = map[string]string{}
	for _, e := range decode(t, w)["errors"].([]any) {
		fe := e.(map[string]any)
		fields[fe["field"].(string)] = fe["message"].(string)
	}
	assert.Equal(t, "Invalid payment method", fields["payment.method"])
	assert.Contains(t, fields, "deliveryAddress.city")
	assert.Contains(t, fields, "deliveryAddress.zipCode")

	w = api.do(http.MethodPost, "/api/cart/add", customer, gin.H{"productId": 1, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Lena Long",
		"email":    "lena@example.com",
		"password": strings.Repeat("a", 80),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode(t, w)["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "password", errs[0].(map[string]any)["field"])
}

func TestOrderFlow(t *testing.T) {
	api := newAPI(t, nil)
	admin := api.adminToken()
	owner := api.register("Oscar Owner", "oscar@example.com", models.RoleRestaurant)
	customer := api.register("Cathy Customer", "cathy@example.com", models.RoleCustomer)

	// Restaurants start pending and are hidden from the public.
	w := api.do(http.MethodPost, "/api/restaurants", owner, gin.H{
		"name":         "Burger Barn",
		"cuisine":      "American",
		"deliveryInfo": gin.H{"deliveryFee": 40, "minimumOrder": 0},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	restaurant := data(t, w)
	assert.Equal(t, "pending", restaurant["status"])
	rid := id(restaurant["id"])

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/restaurants/"+rid, "", nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/restaurants/"+rid, owner, nil).Code)
	w = api.do(http.MethodGet, "/api/restaurants/mine", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Burger Barn", data(t, w)["name"])

	w = api.do(http.MethodPost, "/api/restaurants", customer, gin.H{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, "/api/admin/restaurants/"+rid+"/status", admin, gin.H{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/restaurants", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode(t, w)
	assert.Len(t, listed["data"], 1)
	assert.Equal(t, map[string]any{"current": float64(1), "pages": float64(1), "total": float64(1)}, listed["pagination"])

	w = api.do(http.MethodPost, "/api/products", owner, gin.H{
		"restaurant": restaurant["id"],
		"name":       "Classic Burger",
		"price":      100,
		"category":   "Burgers",
		"variants": []gin.H{{"name": "Size", "options": []gin.H{
			{"name": "Regular", "priceModifier": 0},
			{"name": "Large", "priceModifier": 30},
		}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pid := data(t, w)["id"]

	w = api.do(http.MethodGet, "/api/restaurants/"+rid+"/menu", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	// Cart then checkout from the cart.
	w = api.do(http.MethodPost, "/api/cart/add", customer, gin.H{
		"productId": pid, "quantity": 2, "variants": []gin.H{{"name": "Size", "option": "Large"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := data(t, w)
	assert.Equal(t, float64(2), cart["itemCount"])
	assert.Equal(t, float64(260), cart["pricing"].(map[string]any)["subtotal"])

	w = api.do(http.MethodPost, "/api/orders", customer, gin.H{
		"deliveryAddress": gin.H{"street": "1 Main St", "city": "Springfield", "zipCode": "12345"},
		"contact":         gin.H{"phone": "5550100"},
		"payment":         gin.H{"method": "card"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := data(t, w)
	assert.Equal(t, "placed", order["status"])
	assert.Regexp(t, `^ORD-\d{6}-\d{3}$`, order["orderNumber"])
	oid := id(order["id"])
	assert.Equal(t, []events.Type{events.OrderPlaced}, api.events.Types())

	w = api.do(http.MethodGet, "/api/cart", customer, nil)
	assert.Empty(t, data(t, w)["items"])

	// Customers cannot drive the lifecycle, owners only move one step.
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, "/api/orders/"+oid+"/status", customer, gin.H{"status": "confirmed"}).Code)

	w = api.do(http.MethodPut, "/api/orders/"+oid+"/status", owner, gin.H{"status": "delivered"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "placed", body["currentStatus"])
	assert.Equal(t, []any{"confirmed", "cancelled"}, body["validNextStates"])

	w = api.do(http.MethodPut, "/api/orders/"+oid+"/status", owner, gin.H{"status": "confirmed", "note": "on it"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", data(t, w)["status"])

	w = api.do(http.MethodGet, "/api/orders/"+oid+"/qrcode", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	stranger := api.register("Sam Stranger", "sam@example.com", models.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/orders/"+oid, stranger, nil).Code)

	w = api.do(http.MethodPut, "/api/orders/"+oid+"/cancel", customer, gin.H{"reason": "changed my mind"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := data(t, w)
	assert.Equal(t, "cancelled", cancelled["status"])
	assert.Equal(t, "refunded", cancelled["payment"].(map[string]any)["status"])

	w = api.do(http.MethodPut, "/api/orders/"+oid+"/cancel", customer, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(http.MethodGet, "/api/orders/summary", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := data(t, w)
	assert.Equal(t, float64(1), summary["cancelled"])
	assert.Equal(t, float64(0), summary["placed"])

	w = api.do(http.MethodGet, "/api/orders", customer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
	w = api.do(http.MethodGet, "/api/orders", stranger, nil)
	assert.Empty(t, decode(t, w)["data"])
}

func TestAdminEndpoints(t *testing.T) {
	api := newAPI(t, nil)
	admin := api.adminToken()
	customer := api.register("Cathy Customer", "cathy@example.com", models.RoleCustomer)

	w := api.do(http.MethodGet, "/api/admin/stats", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w)["message"], "admin")

	w = api.do(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := data(t, w)["stats"].(map[string]any)
	assert.Equal(t, float64(1), stats["customers"])
	assert.Equal(t, float64(0), stats["monthRevenue"])

	w = api.do(http.MethodGet, "/api/admin/users?role=customer", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = api.do(http.MethodGet, "/api/admin/restaurants?status=closed", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPut, "/api/admin/restaurants/999/status", admin, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPut, "/api/admin/orders/999/status", admin, gin.H{"status": "delivered", "reason": "test"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicEndpoints(t *testing.T) {
	api := newAPI(t, map[string]handlers.Check{
		"database": func(context.Context) error { return nil },
	})

	w := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"database": "ok"}, decode(t, w)["dependencies"])

	w = api.do(http.MethodGet, "/api/state-machine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["state_machine"], 10)

	w = api.do(http.MethodGet, "/api/orders/abc", api.register("Cathy", "cathy@example.com", models.RoleCustomer), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decode(t, w)["message"])

	w = api.do(http.MethodGet, "/api/products/12345", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w)["message"])
}

func TestHealthReportsFailingDependency(t *testing.T) {
	api := newAPI(t, map[string]handlers.Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	w := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]any{"redis": "connection refused"}, decode(t, w)["dependencies"])
}
