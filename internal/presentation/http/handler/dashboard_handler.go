package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/storefront-admin/internal/application/service"
	"github.com/sangkips/storefront-admin/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats handles getting dashboard statistics for a date range. Both
// bounds are optional and default to the last 30 days.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	from, err := parseDate(c.Query("from"), false)
	if err != nil {
		response.BadRequest(c, "Invalid from date")
		return
	}
	to, err := parseDate(c.Query("to"), true)
	if err != nil {
		response.BadRequest(c, "Invalid to date")
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), &service.DashboardInput{From: from, To: to})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}
