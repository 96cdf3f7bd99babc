package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// AlertHandler exposes the inventory alert feed.
type AlertHandler struct {
	alertRepo *repository.AlertRepository
}

// NewAlertHandler constructs an AlertHandler.
func NewAlertHandler(alertRepo *repository.AlertRepository) *AlertHandler {
	return &AlertHandler{alertRepo: alertRepo}
}

// ListAlerts handles GET /v1/alerts.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.alertRepo.GetAll()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list alerts")
		return
	}
	utils.Success(c, http.StatusOK, "Alerts retrieved", alerts)
}

// MarkSeen handles PUT /v1/alerts/:id/seen.
func (h *AlertHandler) MarkSeen(c *gin.Context) {
	if err := h.alertRepo.MarkSeen(c.Param("id")); err != nil {
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update alert")
		return
	}
	utils.Success(c, http.StatusOK, "Alert acknowledged", nil)
}
