package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/sse"
	"github.com/kinthithe/pos-api/internal/utils"
)

const ssePingEvery = 30 * time.Second

// SSEHandler streams live payment state changes to terminals so a cashier
// sees an STK confirmation the moment the callback lands, without waiting on
// the next status poll.
type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Stream handles GET /v1/events?token=<jwt>. The browser EventSource API
// cannot set headers, so the JWT arrives as a query parameter instead of the
// usual Authorization header.
func (h *SSEHandler) Stream(c *gin.Context) {
	claims, err := utils.ValidateJWT(c.Query("token"))
	if err != nil {
		utils.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Missing, invalid or expired token")
		return
	}

	// One user may have several terminals open; the nano suffix keeps their
	// hub registrations distinct.
	clientID := fmt.Sprintf("terminal-%s-%d", claims.UserID, time.Now().UnixNano())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{"clientId": clientID, "timestamp": time.Now().Format(time.RFC3339)})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("user_id", claims.UserID).Msg("terminal event stream opened")

	ping := time.NewTicker(ssePingEvery)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("payment", string(data))
		case t := <-ping.C:
			c.SSEvent("ping", gin.H{"timestamp": t.Format(time.RFC3339)})
		case <-c.Request.Context().Done():
			return false
		}
		return true
	})
}
