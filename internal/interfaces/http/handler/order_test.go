package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/application/apptest"
	orderapp "github.com/merchantry/backend/internal/application/order"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/interfaces/http/dto"
	"github.com/merchantry/backend/internal/interfaces/http/middleware"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

type orderHandlerEnv struct {
	engine    *gin.Engine
	tenantID  uuid.UUID
	productID uuid.UUID
}

// newOrderHandlerEnv mounts the order handler behind the tenant
// middleware over in-memory repositories seeded with one product and a
// 10-unit batch.
func newOrderHandlerEnv(t *testing.T) *orderHandlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	fixture := apptest.NewFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	product, err := catalog.NewProduct(tenantID, "TEA-001", "Green Tea", "box")
	require.NoError(t, err)
	product.SellingPrice = decimal.NewFromInt(500)
	product.CurrentQuantity = decimal.NewFromInt(10)
	require.NoError(t, fixture.ProductRepo.Save(ctx, product))

	batch, err := inventory.NewPurchaseBatch(tenantID, product.ID, nil, "INV-1/1",
		time.Now().Add(-24*time.Hour), decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, fixture.BatchRepo.Save(ctx, batch))

	engine := gin.New()
	engine.Use(middleware.Tenant())
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(NewOrderHandler(orderapp.NewService(fixture.Scope(), true))).
		Setup()

	return &orderHandlerEnv{engine: engine, tenantID: tenantID, productID: product.ID}
}

func (e *orderHandlerEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, e.tenantID.String())

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *orderHandlerEnv) submitOrder(t *testing.T) orderapp.OrderResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customer_name":    "Amina",
		"shipping_charges": "200",
		"items": []gin.H{
			{"product_id": e.productID, "quantity": "2", "unit_price": "500"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeOrder(t, w)
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) orderapp.OrderResponse {
	t.Helper()
	var resp struct {
		Success bool                   `json:"success"`
		Data    orderapp.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestOrderHandler_SubmitAndGet(t *testing.T) {
	env := newOrderHandlerEnv(t)

	created := env.submitOrder(t)
	assert.Equal(t, "PENDING", string(created.Status))
	assert.True(t, created.ProductsTotal.Equal(decimal.NewFromInt(1000)))
	assert.NotEmpty(t, created.OrderNumber)

	w := env.do(t, http.MethodGet, "/api/v1/orders/"+created.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	fetched := decodeOrder(t, w)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestOrderHandler_Submit_ValidationError(t *testing.T) {
	env := newOrderHandlerEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders", gin.H{
		"customer_name": "Amina",
		"items":         []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
	assert.Contains(t, w.Body.String(), "items")
}

func TestOrderHandler_ConfirmAndDispatch(t *testing.T) {
	env := newOrderHandlerEnv(t)
	created := env.submitOrder(t)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/confirm", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decodeOrder(t, w)
	assert.Equal(t, "CONFIRMED", string(confirmed.Status))
	// FIFO cost from the 100/unit batch
	require.Len(t, confirmed.Items, 1)
	assert.True(t, confirmed.Items[0].UnitCost.Equal(decimal.NewFromInt(100)))

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/dispatch", created.ID), gin.H{
		"actual_shipping_cost": "180",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dispatched := decodeOrder(t, w)
	assert.Equal(t, "DISPATCHED", string(dispatched.Status))
	assert.NotNil(t, dispatched.DispatchedAt)
}

func TestOrderHandler_Confirm_NotFound(t *testing.T) {
	env := newOrderHandlerEnv(t)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/confirm", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_Confirm_InvalidID(t *testing.T) {
	env := newOrderHandlerEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/orders/not-a-uuid/confirm", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_Cancel(t *testing.T) {
	env := newOrderHandlerEnv(t)
	created := env.submitOrder(t)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", created.ID), gin.H{
		"reason": "customer changed their mind",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decodeOrder(t, w)
	assert.Equal(t, "CANCELLED", string(cancelled.Status))
	assert.Equal(t, "customer changed their mind", cancelled.CancelReason)
}

func TestOrderHandler_List(t *testing.T) {
	env := newOrderHandlerEnv(t)
	env.submitOrder(t)

	w := env.do(t, http.MethodGet, "/api/v1/orders?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    []orderapp.OrderResponse `json:"data"`
		Meta    *dto.Meta                `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestOrderHandler_MissingTenant(t *testing.T) {
	env := newOrderHandlerEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
