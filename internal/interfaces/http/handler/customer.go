package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	customerapp "github.com/merchantry/backend/internal/application/customer"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// CustomerHandler handles customer API endpoints
type CustomerHandler struct {
	BaseHandler
	customers *customerapp.Service
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customers *customerapp.Service) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/customers")
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/advance", h.TopUpAdvance)
}

// Create registers a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req customerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.customers.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID retrieves a customer
func (h *CustomerHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	resp, err := h.customers.GetByID(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// TopUpAdvance records a prepaid advance deposit
func (h *CustomerHandler) TopUpAdvance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	var req customerapp.TopUpAdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.customers.TopUpAdvance(c.Request.Context(), tenantID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

var _ router.RouteRegistrar = (*CustomerHandler)(nil)
