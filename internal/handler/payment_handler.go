package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/service"
	"github.com/kinthithe/pos-api/internal/utils"
)

// PaymentHandler exposes the charge initiation proxy and the poll-loop
// status surface.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiatePayment handles POST /api/initiate-payment. The response passes
// the gateway body through unchanged; the terminal reads the success flag
// the same way it would talking to the gateway directly.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req service.InitiateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	resp, err := h.paymentService.InitiateCharge(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrConfigMissing):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Configuration Error: API Key missing"})
		case errors.Is(err, utils.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be greater than zero"})
		default:
			log.Error().Err(err).Msg("Payment initiation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatus handles GET /v1/payments/:ref/status.
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	session, err := h.paymentService.Status(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			utils.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "No payment session for reference")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read payment session")
		return
	}
	utils.Success(c, http.StatusOK, "Payment session retrieved", session)
}

// CancelPayment handles POST /v1/payments/:ref/cancel. Cancellation loses
// to a settlement that already landed; the returned session state tells the
// terminal which way the race went.
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	session, err := h.paymentService.CancelCharge(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			utils.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "No payment session for reference")
			return
		}
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel payment")
		return
	}
	utils.Success(c, http.StatusOK, "Payment session updated", session)
}
