package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medsupply-backend/internal/data/repos"
	"github.com/yungbote/medsupply-backend/internal/http/response"
	"github.com/yungbote/medsupply-backend/internal/services"
)

type AlertHandler struct {
	alerts    services.AlertService
	dashboard services.DashboardService
}

func NewAlertHandler(alerts services.AlertService, dashboard services.DashboardService) *AlertHandler {
	return &AlertHandler{alerts: alerts, dashboard: dashboard}
}

// GET /api/inventory-alerts
func (h *AlertHandler) List(c *gin.Context) {
	hospitalID, err := optionalUUIDQuery(c, "hospital_id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	resolved, err := optionalBoolQuery(c, "is_resolved")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_filter")
		return
	}
	alerts, err := h.alerts.List(requestDBC(c), repos.AlertFilter{
		AlertType:  strings.TrimSpace(c.Query("alert_type")),
		HospitalID: hospitalID,
		IsResolved: resolved,
		Limit:      limit,
	})
	if err != nil {
		response.RespondAPIError(c, err, "list_alerts_failed")
		return
	}
	response.RespondOK(c, gin.H{"alerts": alerts})
}

// POST /api/inventory-alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "invalid_alert_id")
		return
	}
	alert, err := h.alerts.Resolve(requestDBC(c), id)
	if err != nil {
		response.RespondAPIError(c, err, "resolve_alert_failed")
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate()
	}
	response.RespondOK(c, gin.H{"alert": alert})
}

// POST /api/inventory-alerts/check
func (h *AlertHandler) Check(c *gin.Context) {
	rep, err := h.alerts.Check(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "alert_check_failed")
		return
	}
	if h.dashboard != nil {
		h.dashboard.Invalidate()
	}
	response.RespondOK(c, gin.H{
		"low_stock": rep.LowStock,
		"expiring":  rep.Expiring,
		"capacity":  rep.Capacity,
		"existing":  rep.Existing,
		"created":   rep.Created(),
		"at":        rep.At,
	})
}
