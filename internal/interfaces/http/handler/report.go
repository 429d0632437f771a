package handler

import (
	"github.com/gin-gonic/gin"

	reportapp "github.com/merchantry/backend/internal/application/report"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// ReportHandler handles reporting endpoints
type ReportHandler struct {
	BaseHandler
	reports *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reports")
	g.GET("/profit", h.Profit)
}

// Profit returns the profit statement for orders dispatched in [from, to)
func (h *ReportHandler) Profit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req reportapp.ProfitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if !req.To.After(req.From) {
		h.BadRequest(c, "'to' must be after 'from'")
		return
	}

	resp, err := h.reports.Profit(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

var _ router.RouteRegistrar = (*ReportHandler)(nil)
