package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"stone_sales/internal/models"
	"stone_sales/internal/redis"
	"stone_sales/internal/repository"
	"stone_sales/internal/services"
	"stone_sales/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  repository.Store
	admin  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	store := repository.NewStore(testutil.NewDB(t))

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	deps := services.Dependencies{Store: store}
	accounts := services.NewAccountService(deps, redis.NewClient(rdb), time.Hour)
	h := NewAPIHandler(Services{
		Orders:       services.NewOrderService(deps),
		CustomOrders: services.NewCustomOrderService(deps),
		Catalog:      services.NewCatalogService(deps),
		Employees:    services.NewEmployeeService(deps),
		Accounts:     accounts,
	}, nil)

	registry := prometheus.NewRegistry()
	router := NewRouter(h, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Accounts().Create(ctx, &models.Account{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}))

	s := &testServer{t: t, router: router, store: store}
	s.admin = s.login("admin", "admin-password")
	return s
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Token string `json:"token"`
	}
	decode(s.t, rec, &result)
	return result.Token
}

func (s *testServer) registerCustomer(username string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"password": "customer-password",
		"name":     username,
		"email":    username + "@example.com",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return s.login(username, "customer-password")
}

func (s *testServer) createStone(name string, stock int) uint {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/stones", s.admin, gin.H{
		"name": name, "type": "marble", "unit_price": "100.00", "stock_quantity": stock,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var stone models.Stone
	decode(s.t, rec, &stone)
	return stone.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type orderEnvelope struct {
	Order   services.OrderView `json:"order"`
	Changed bool               `json:"changed"`
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/orders", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "unauthorized", body.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	customer := s.registerCustomer("kadek")
	rec = s.do(http.MethodPost, "/api/stones", customer, gin.H{"name": "x", "unit_price": "1"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "forbidden", body.Code)

	rec = s.do(http.MethodPost, "/api/auth/logout", customer, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/orders", customer, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	stoneID := s.createStone("Marble-30x30", 5)
	customer := s.registerCustomer("made")

	rec := s.do(http.MethodPost, "/api/orders", customer, gin.H{
		"lines":                []gin.H{{"stone_id": stoneID, "quantity": 5}},
		"requires_fulfillment": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed services.OrderView
	decode(t, rec, &placed)
	assert.Equal(t, models.OrderPending, placed.Status)

	rec = s.do(http.MethodPost, "/api/orders", customer, gin.H{
		"lines": []gin.H{{"stone_id": stoneID, "quantity": 1}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "insufficient_stock", body.Code)

	rec = s.do(http.MethodPost, "/api/employees", s.admin, gin.H{"name": "Nine", "salary": "1000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var employee models.Employee
	decode(t, rec, &employee)

	orderPath := "/api/orders/" + uintString(placed.ID)
	rec = s.do(http.MethodPut, orderPath+"/employee", s.admin, gin.H{"employee_id": employee.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var assigned services.OrderView
	decode(t, rec, &assigned)
	assert.Equal(t, services.LabelAssigned, assigned.Label)

	rec = s.do(http.MethodPut, orderPath+"/status", s.admin, gin.H{"status": "Processing"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var envelope orderEnvelope
	decode(t, rec, &envelope)
	assert.True(t, envelope.Changed)

	rec = s.do(http.MethodPut, orderPath+"/status", s.admin, gin.H{"status": "processing"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &envelope)
	assert.False(t, envelope.Changed)

	rec = s.do(http.MethodPut, orderPath+"/status", s.admin, gin.H{"status": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPut, orderPath+"/status", s.admin, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, orderPath+"/status", s.admin, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, orderPath+"/employee", s.admin, gin.H{"employee_id": employee.ID})
	require.Equal(t, http.StatusLocked, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "order_read_only", body.Code)

	rec = s.do(http.MethodGet, "/api/orders?view=archived", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Orders []services.OrderView `json:"orders"`
		Count  int                  `json:"count"`
	}
	decode(t, rec, &listing)
	require.Equal(t, 1, listing.Count)
	assert.True(t, listing.Orders[0].ReadOnly)

	rec = s.do(http.MethodGet, "/api/orders?view=active", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &listing)
	assert.Equal(t, 0, listing.Count)

	rec = s.do(http.MethodGet, "/api/orders?view=sideways", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomersSeeOnlyTheirOrders(t *testing.T) {
	s := newTestServer(t)
	stoneID := s.createStone("Granite", 10)
	alice := s.registerCustomer("alice")
	bob := s.registerCustomer("bob")

	rec := s.do(http.MethodPost, "/api/orders", alice, gin.H{
		"lines": []gin.H{{"stone_id": stoneID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var placed services.OrderView
	decode(t, rec, &placed)
	assert.Equal(t, models.OrderCompleted, placed.Status)

	rec = s.do(http.MethodGet, "/api/orders/"+uintString(placed.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodGet, "/api/orders/"+uintString(placed.ID), alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/orders/999", s.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(http.MethodGet, "/api/orders/abc", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomOrderConversionOverHTTP(t *testing.T) {
	s := newTestServer(t)
	stoneID := s.createStone("Jade", 10)
	customer := s.registerCustomer("nyoman")

	rec := s.do(http.MethodPost, "/api/custom-orders", customer, gin.H{
		"stone_type": "jade", "description": "carved", "size": "40x40", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var request models.CustomOrder
	decode(t, rec, &request)

	path := "/api/custom-orders/" + uintString(request.ID)
	rec = s.do(http.MethodPost, path+"/convert", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, path+"/convert", s.admin, gin.H{"stone_id": stoneID, "unit_price": "80.00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var converted struct {
		OrderID uint `json:"order_id"`
	}
	decode(t, rec, &converted)
	assert.NotZero(t, converted.OrderID)

	rec = s.do(http.MethodPost, path+"/convert", s.admin, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "already_converted", body.Code)

	rec = s.do(http.MethodGet, "/api/orders/"+uintString(converted.OrderID), customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope orderEnvelope
	decode(t, rec, &envelope)
	assert.True(t, decimal.RequireFromString("160").Equal(envelope.Order.TotalAmount))

	rec = s.do(http.MethodGet, "/api/custom-orders?status=approved", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Count int `json:"count"`
	}
	decode(t, rec, &listing)
	assert.Equal(t, 1, listing.Count)

	rec = s.do(http.MethodPost, "/api/custom-orders", customer, gin.H{"stone_type": "onyx", "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	decode(t, rec, &request)
	rec = s.do(http.MethodPost, "/api/custom-orders/"+uintString(request.ID)+"/reject", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &request)
	assert.Equal(t, models.CustomOrderRejected, request.Status)
}

func TestStoneAndEmployeeManagement(t *testing.T) {
	s := newTestServer(t)
	stoneID := s.createStone("Slate", 0)
	path := "/api/stones/" + uintString(stoneID)

	rec := s.do(http.MethodPost, path+"/restock", s.admin, gin.H{"quantity": 7})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var stone models.Stone
	decode(t, rec, &stone)
	assert.Equal(t, 7, stone.StockQuantity)

	rec = s.do(http.MethodPut, path, s.admin, gin.H{"name": "Slate Grey", "type": "slate", "unit_price": "-5"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/stones", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, path, s.admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/employees", s.admin, gin.H{"name": "Eko", "salary": "2500000"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var employee models.Employee
	decode(t, rec, &employee)

	rec = s.do(http.MethodDelete, "/api/employees/"+uintString(employee.ID), s.admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/employees/"+uintString(employee.ID), s.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
