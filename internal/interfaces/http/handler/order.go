package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/merchantry/backend/internal/application/order"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	g.POST("", h.Submit)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/confirm", h.Confirm)
	g.POST("/:id/dispatch", h.Dispatch)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/cancel", h.Cancel)
	g.PUT("/:id/shipping-cost", h.AdjustShippingCost)
}

// Submit creates a new order in PENDING status
func (h *OrderHandler) Submit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req orderapp.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.Submit(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID retrieves an order
func (h *OrderHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := h.orders.GetByID(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns orders filtered by status, paginated
func (h *OrderHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	status := order.OrderStatus(strings.ToUpper(c.DefaultQuery("status", string(order.OrderStatusPending))))
	if !status.IsValid() {
		h.BadRequest(c, "Invalid order status")
		return
	}

	page, pageSize := paginationParams(c)

	responses, total, err := h.orders.ListByStatus(c.Request.Context(), tenantID, status, pageSize, (page-1)*pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, responses, total, page, pageSize)
}

// Confirm transitions an order PENDING -> CONFIRMED, allocating stock and
// posting revenue
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, tenantID, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
		return h.orders.Confirm(ctx.Request.Context(), tenantID, orderID)
	})
}

// Dispatch transitions an order CONFIRMED -> DISPATCHED, fixing the COD
// fee and the shipping cost baseline
func (h *OrderHandler) Dispatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.DispatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.Dispatch(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Complete transitions an order DISPATCHED -> COMPLETED
func (h *OrderHandler) Complete(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, tenantID, orderID uuid.UUID) (*orderapp.OrderResponse, error) {
		return h.orders.Complete(ctx.Request.Context(), tenantID, orderID)
	})
}

// Cancel cancels a pending or confirmed order
func (h *OrderHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.Cancel(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AdjustShippingCost corrects the courier's actual cost after dispatch
func (h *OrderHandler) AdjustShippingCost(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderapp.AdjustShippingCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.orders.AdjustShippingCost(c.Request.Context(), tenantID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *OrderHandler) transition(c *gin.Context, fn func(*gin.Context, uuid.UUID, uuid.UUID) (*orderapp.OrderResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	resp, err := fn(c, tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func paginationParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

var _ router.RouteRegistrar = (*OrderHandler)(nil)
