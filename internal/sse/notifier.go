package sse

import (
	"time"

	"github.com/kinthithe/pos-api/internal/cache"
)

// HubNotifier pushes payment session writes to the SSE hub. It plugs into
// the session cache, so every state transition the watcher or reconciler
// records reaches waiting terminals without polling.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

// NotifyPaymentState implements cache.SessionNotifier.
func (n *HubNotifier) NotifyPaymentState(session *cache.PaymentSession) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&PaymentEvent{
		Event:       EventPaymentStateChanged,
		PaymentRef:  session.PaymentRef,
		State:       string(session.State),
		Message:     session.Message,
		Amount:      session.Amount,
		CompletedAt: session.CompletedAt,
		Timestamp:   time.Now(),
	})
}
