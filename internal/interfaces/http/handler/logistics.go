package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	logisticsapp "github.com/merchantry/backend/internal/application/logistics"
	"github.com/merchantry/backend/internal/interfaces/http/router"
)

// LogisticsHandler handles logistics company API endpoints
type LogisticsHandler struct {
	BaseHandler
	companies *logisticsapp.Service
}

// NewLogisticsHandler creates a new LogisticsHandler
func NewLogisticsHandler(companies *logisticsapp.Service) *LogisticsHandler {
	return &LogisticsHandler{companies: companies}
}

// RegisterRoutes registers logistics company routes
func (h *LogisticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/logistics-companies")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id/fees", h.ConfigureFees)
	g.POST("/:id/deactivate", h.Deactivate)
}

// Create registers a logistics company
func (h *LogisticsHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req logisticsapp.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.companies.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns the tenant's logistics companies
func (h *LogisticsHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	activeOnly := c.DefaultQuery("active_only", "true") != "false"

	responses, err := h.companies.List(c.Request.Context(), tenantID, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// GetByID retrieves a logistics company
func (h *LogisticsHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	resp, err := h.companies.GetByID(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ConfigureFees replaces a company's COD fee configuration
func (h *LogisticsHandler) ConfigureFees(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	var req logisticsapp.ConfigureFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.companies.ConfigureFees(c.Request.Context(), tenantID, companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deactivate stops a company from being selectable on new orders
func (h *LogisticsHandler) Deactivate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid company ID format")
		return
	}

	resp, err := h.companies.Deactivate(c.Request.Context(), tenantID, companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

var _ router.RouteRegistrar = (*LogisticsHandler)(nil)
