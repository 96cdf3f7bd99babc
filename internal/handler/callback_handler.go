package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CallbackHandler receives asynchronous payment-result notifications from
// the gateway.
type CallbackHandler struct {
	reconciler interface{ ProcessCallback(raw []byte) string }
}

// NewCallbackHandler constructs a CallbackHandler.
func NewCallbackHandler(reconciler interface{ ProcessCallback(raw []byte) string }) *CallbackHandler {
	return &CallbackHandler{reconciler: reconciler}
}

// HandleCallback handles POST /api/callback. The gateway must always get a
// 200 acknowledgement whatever happens internally; anything else triggers
// gateway-side retries that amplify duplicate-processing risk.
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read callback body")
		c.JSON(http.StatusOK, gin.H{"result": "received"})
		return
	}

	log.Info().Str("body", string(body)).Msg("Payment callback received")

	ack := h.reconciler.ProcessCallback(body)
	c.JSON(http.StatusOK, gin.H{"result": ack})
}
