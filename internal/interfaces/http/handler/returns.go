package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	returnsapp "github.com/merchantry/backend/internal/application/returns"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// ReturnHandler handles customer and supplier return API endpoints
type ReturnHandler struct {
	BaseHandler
	returns *returnsapp.Service
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns *returnsapp.Service) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// RegisterRoutes registers return routes
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/returns")
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
	g.POST("/:id/refund", h.ProcessRefund)

	rg.GET("/orders/:id/returns", h.ListByOrder)
}

// Create opens a return in PENDING status
func (h *ReturnHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req returnsapp.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.returns.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID retrieves a return
func (h *ReturnHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	resp, err := h.returns.GetByID(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Approve approves a pending return: stock flows back, the ledger
// reversal posts and the source document updates atomically
func (h *ReturnHandler) Approve(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	resp, err := h.returns.Approve(c.Request.Context(), tenantID, returnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Reject rejects a pending return without side effects
func (h *ReturnHandler) Reject(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.RejectReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.returns.Reject(c.Request.Context(), tenantID, returnID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ProcessRefund settles an approved return through cash, bank or the
// customer's advance balance
func (h *ReturnHandler) ProcessRefund(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	returnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid return ID format")
		return
	}

	var req returnsapp.ProcessRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.returns.ProcessRefund(c.Request.Context(), tenantID, returnID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListByOrder returns all returns raised against one order
func (h *ReturnHandler) ListByOrder(c *gin.Context) {
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

	responses, err := h.returns.ListByOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

var _ router.RouteRegistrar = (*ReturnHandler)(nil)
