package sse

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventPaymentStateChanged EventType = "payment.state_changed"
)

// PaymentEvent is the payload broadcast to connected terminals.
type PaymentEvent struct {
	Event       EventType  `json:"event"`
	PaymentRef  string     `json:"paymentRef"`
	State       string     `json:"state"`
	Message     string     `json:"message,omitempty"`
	Amount      float64    `json:"amount"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// A slow terminal must not stall everyone else, so sends are non-blocking
// against this buffer and drop when it fills. A terminal that misses an event
// still converges through the status-poll endpoint.
const clientBuffer = 64

// Client is one connected terminal stream.
type Client struct {
	ID     string
	Events chan []byte
}

// Hub fans payment events out to every connected terminal.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a terminal and returns its client for streaming.
func (h *Hub) Register(clientID string) *Client {
	c := &Client{ID: clientID, Events: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[clientID] = c
	n := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("client_id", clientID).Int("terminals", n).Msg("terminal connected")
	return c
}

// Unregister removes a terminal and closes its event channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	c, ok := h.clients[clientID]
	if ok {
		close(c.Events)
		delete(h.clients, clientID)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		log.Info().Str("client_id", clientID).Int("terminals", n).Msg("terminal disconnected")
	}
}

// Broadcast delivers the event to all terminals, dropping it for any whose
// buffer is full.
func (h *Hub) Broadcast(event *PaymentEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("payment_ref", event.PaymentRef).Msg("marshal payment event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Str("payment_ref", event.PaymentRef).Msg("terminal buffer full, event dropped")
		}
	}
}

// ClientCount reports connected terminals. The notifier skips serialization
// work entirely when this is zero.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
