package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type DashboardHandler struct {
	dashboard services.DashboardService
}

func NewDashboardHandler(dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GET /api/dashboard/request-status
func (h *DashboardHandler) RequestStatus(c *gin.Context) {
	stats, err := h.dashboard.RequestStatus(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err, "dashboard_failed")
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/dashboard/supplies-overview
func (h *DashboardHandler) SuppliesOverview(c *gin.Context) {
	overview, err := h.dashboard.SuppliesOverview(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err, "dashboard_failed")
		return
	}
	response.RespondOK(c, overview)
}

// GET /api/dashboard/hospitals-overview
func (h *DashboardHandler) HospitalsOverview(c *gin.Context) {
	overview, err := h.dashboard.HospitalsOverview(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err, "dashboard_failed")
		return
	}
	response.RespondOK(c, overview)
}

// GET /api/dashboard/inventory-alerts
func (h *DashboardHandler) AlertsOverview(c *gin.Context) {
	overview, err := h.dashboard.AlertsOverview(requestDBC(c))
	if err != nil {
		response.RespondAPIError(c, err, "dashboard_failed")
		return
	}
	response.RespondOK(c, overview)
}
