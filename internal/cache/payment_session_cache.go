package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kinthithe/pos-api/internal/models"
)

// ErrSessionNotFound is returned when no session exists for a payment ref.
var ErrSessionNotFound = errors.New("payment session not found")

// PaymentSession is the shared view of one in-flight mobile-money charge,
// read by the status endpoint and written by the poll watcher and the
// initiate path. Terminal states are success, timed_out and canceled.
type PaymentSession struct {
	PaymentRef  string              `json:"paymentRef"`
	Phone       string              `json:"phone"`
	Amount      float64             `json:"amount"`
	State       models.PaymentState `json:"state"`
	Message     string              `json:"message,omitempty"`
	StartedAt   time.Time           `json:"startedAt"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
}

// Terminal reports whether the session can no longer change state.
func (s *PaymentSession) Terminal() bool {
	switch s.State {
	case models.PaymentStateSuccess, models.PaymentStateTimedOut, models.PaymentStateCanceled:
		return true
	}
	return false
}

// SessionNotifier receives every session write, used to push live state to
// connected terminals.
type SessionNotifier interface {
	NotifyPaymentState(session *PaymentSession)
}

// PaymentSessionCache stores poll-loop session state in Redis so multiple
// terminals and the watcher goroutines observe the same lifecycle.
type PaymentSessionCache struct {
	redis    *RedisClient
	ttl      time.Duration
	notifier SessionNotifier
}

// NewPaymentSessionCache creates a PaymentSessionCache. Sessions expire on
// their own after the TTL so abandoned charges do not accumulate.
func NewPaymentSessionCache(redis *RedisClient) *PaymentSessionCache {
	return &PaymentSessionCache{redis: redis, ttl: 24 * time.Hour}
}

// SetNotifier attaches a notifier invoked on every Put.
func (c *PaymentSessionCache) SetNotifier(n SessionNotifier) {
	c.notifier = n
}

func (c *PaymentSessionCache) key(paymentRef string) string {
	return fmt.Sprintf("payment:session:%s", paymentRef)
}

// Put stores or replaces the session for its payment ref.
func (c *PaymentSessionCache) Put(ctx context.Context, session *PaymentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal payment session: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(session.PaymentRef), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	if c.notifier != nil {
		c.notifier.NotifyPaymentState(session)
	}
	return nil
}

// Get returns the session for a payment ref, or ErrSessionNotFound.
func (c *PaymentSessionCache) Get(ctx context.Context, paymentRef string) (*PaymentSession, error) {
	raw, err := c.redis.Get(ctx, c.key(paymentRef))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read payment session: %w", err)
	}
	var session PaymentSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment session: %w", err)
	}
	return &session, nil
}

// Transition moves a session to a new state unless it is already terminal.
// It returns the stored session; callers use the returned state to detect a
// lost race (e.g. cancel arriving after success).
func (c *PaymentSessionCache) Transition(ctx context.Context, paymentRef string, state models.PaymentState, message string) (*PaymentSession, error) {
	session, err := c.Get(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	if session.Terminal() {
		return session, nil
	}
	session.State = state
	session.Message = message
	if session.Terminal() {
		now := time.Now()
		session.CompletedAt = &now
	}
	if err := c.Put(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes a session, used once a receipt has been handed off.
func (c *PaymentSessionCache) Delete(ctx context.Context, paymentRef string) error {
	return c.redis.Delete(ctx, c.key(paymentRef))
}
