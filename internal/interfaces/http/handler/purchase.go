package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	purchaseapp "github.com/merchantry/backend/internal/application/purchase"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// PurchaseHandler handles supplier invoice API endpoints
type PurchaseHandler struct {
	BaseHandler
	purchases *purchaseapp.Service
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases *purchaseapp.Service) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// RegisterRoutes registers purchase routes
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/purchases")
	g.POST("", h.Record)
	g.GET("/:id", h.GetByID)
	g.GET("/:id/payable-check", h.VerifyPayable)
}

// Record records a supplier invoice: FIFO batches are seeded, inventory
// stocked and the payable posted in one transaction
func (h *PurchaseHandler) Record(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req purchaseapp.RecordInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.purchases.RecordInvoice(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID retrieves a purchase invoice
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	resp, err := h.purchases.GetByID(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// VerifyPayable checks that the invoice's ledger payable matches its
// purchase total minus approved supplier returns
func (h *PurchaseHandler) VerifyPayable(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	if err := h.purchases.VerifyPayableBalance(c.Request.Context(), tenantID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"balanced": true})
}

var _ router.RouteRegistrar = (*PurchaseHandler)(nil)
