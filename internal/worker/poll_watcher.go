package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/models"
)

// settlementReader reads the sale lines under one payment reference.
type settlementReader interface {
	GetByPaymentRef(paymentRef string) ([]models.Sale, error)
}

// sessionTransitioner moves a payment session between lifecycle states.
type sessionTransitioner interface {
	Transition(ctx context.Context, paymentRef string, state models.PaymentState, message string) (*cache.PaymentSession, error)
}

// PollWatcher runs one cancellable poll loop per in-flight charge. Each
// loop queries the ledger on a fixed cadence until it observes a line with
// amount_paid at or above the expected total, the user cancels, or the max
// wait elapses. The callback reconciler races these loops freely; the
// watcher only ever reads sales and writes session state, so the
// convergence point stays the conditional amount_paid update.
type PollWatcher struct {
	sales    settlementReader
	sessions sessionTransitioner
	interval time.Duration
	maxWait  time.Duration

	mu     sync.Mutex
	active map[string]context.CancelFunc
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPollWatcher constructs a PollWatcher.
func NewPollWatcher(sales settlementReader, sessions sessionTransitioner, interval, maxWait time.Duration) *PollWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollWatcher{
		sales:    sales,
		sessions: sessions,
		interval: interval,
		maxWait:  maxWait,
		active:   make(map[string]context.CancelFunc),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start blocks until the context is canceled, then stops every loop.
func (w *PollWatcher) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Dur("max_wait", w.maxWait).
		Msg("Starting settlement poll watcher")
	<-ctx.Done()
	w.cancel()
	log.Info().Msg("Settlement poll watcher stopped")
}

// Watch begins polling for one payment reference. Watching a reference
// already under watch restarts its loop.
func (w *PollWatcher) Watch(paymentRef string, expectedTotal float64) {
	w.mu.Lock()
	if cancel, ok := w.active[paymentRef]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(w.ctx)
	w.active[paymentRef] = cancel
	w.mu.Unlock()

	go w.run(ctx, paymentRef, expectedTotal)
}

// Cancel stops the loop for one payment reference, reporting whether a
// loop was running.
func (w *PollWatcher) Cancel(paymentRef string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cancel, ok := w.active[paymentRef]
	if ok {
		cancel()
		delete(w.active, paymentRef)
	}
	return ok
}

// Watching reports whether a loop is running for the reference.
func (w *PollWatcher) Watching(paymentRef string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.active[paymentRef]
	return ok
}

func (w *PollWatcher) remove(paymentRef string) {
	w.mu.Lock()
	delete(w.active, paymentRef)
	w.mu.Unlock()
}

func (w *PollWatcher) run(ctx context.Context, paymentRef string, expectedTotal float64) {
	defer w.remove(paymentRef)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(w.maxWait)
	defer deadline.Stop()

	log.Info().
		Str("payment_ref", paymentRef).
		Float64("expected_total", expectedTotal).
		Msg("Polling for settlement")

	for {
		select {
		case <-ticker.C:
			sales, err := w.sales.GetByPaymentRef(paymentRef)
			if err != nil {
				// A single failed poll is not fatal; the next tick retries.
				log.Warn().Err(err).Str("payment_ref", paymentRef).Msg("Poll query failed")
				continue
			}
			if settled(sales, expectedTotal) {
				if _, err := w.sessions.Transition(ctx, paymentRef, models.PaymentStateSuccess, "payment confirmed"); err != nil {
					log.Error().Err(err).Str("payment_ref", paymentRef).Msg("Failed to mark session success")
				}
				log.Info().Str("payment_ref", paymentRef).Msg("Settlement observed, poll loop done")
				return
			}
		case <-deadline.C:
			// Indefinite polling is a resource leak; surface a terminal
			// state the terminal can turn into a manual-retry affordance.
			if _, err := w.sessions.Transition(context.Background(), paymentRef, models.PaymentStateTimedOut, "no confirmation received"); err != nil {
				log.Error().Err(err).Str("payment_ref", paymentRef).Msg("Failed to mark session timed out")
			}
			log.Warn().Str("payment_ref", paymentRef).Dur("max_wait", w.maxWait).Msg("Settlement wait timed out")
			return
		case <-ctx.Done():
			log.Info().Str("payment_ref", paymentRef).Msg("Poll loop canceled")
			return
		}
	}
}

// settled reports whether any line under the reference has been raised to
// the expected basket total.
func settled(sales []models.Sale, expectedTotal float64) bool {
	for i := range sales {
		if sales[i].AmountPaid != nil && *sales[i].AmountPaid >= expectedTotal {
			return true
		}
	}
	return false
}
