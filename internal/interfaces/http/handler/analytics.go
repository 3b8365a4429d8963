package handler

import (
	"github.com/gin-gonic/gin"
	analyticsapp "github.com/locallift/backend/internal/application/analytics"
)

// AnalyticsHandler handles vendor dashboard endpoints
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *analyticsapp.VendorAnalyticsService
}

func NewAnalyticsHandler(analyticsService *analyticsapp.VendorAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Dashboard handles GET /vendor/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	vendorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := h.analyticsService.Dashboard(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Stats handles GET /admin/stats
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.analyticsService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// VendorDashboard handles GET /admin/vendors/:id/dashboard
func (h *AnalyticsHandler) VendorDashboard(c *gin.Context) {
	vendorID, ok := parseIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}

	summary, err := h.analyticsService.Dashboard(c.Request.Context(), vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
