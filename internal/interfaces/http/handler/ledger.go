package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/merchantry/backend/internal/application/ledger"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// LedgerHandler handles chart-of-accounts and manual posting endpoints
type LedgerHandler struct {
	BaseHandler
	ledger *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *ledgerapp.Service) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ledger")
	g.POST("/transactions", h.PostTransaction)
	g.GET("/transactions/:id", h.GetTransaction)
	g.GET("/accounts", h.ListAccounts)
	g.GET("/accounts/:code", h.GetAccount)
}

// PostTransaction posts a manual balanced transaction
func (h *LedgerHandler) PostTransaction(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ledgerapp.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.ledger.PostTransaction(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetTransaction retrieves a posted transaction with its lines
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	resp, err := h.ledger.GetTransaction(c.Request.Context(), tenantID, txnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListAccounts returns the tenant's chart of accounts
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	responses, err := h.ledger.ListAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// GetAccount returns one account by code
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Account code is required")
		return
	}

	resp, err := h.ledger.GetAccount(c.Request.Context(), tenantID, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

var _ router.RouteRegistrar = (*LedgerHandler)(nil)
