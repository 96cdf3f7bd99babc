package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// expirySweeper scans stock batches and emits expiry alerts.
type expirySweeper interface {
	SweepExpiries(now time.Time) (int, error)
}

// ExpiryWorker sweeps stock batches for expired and near-expiry stock on a
// fixed interval.
type ExpiryWorker struct {
	stock    expirySweeper
	interval time.Duration
}

// NewExpiryWorker constructs an ExpiryWorker.
func NewExpiryWorker(stock expirySweeper, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{stock: stock, interval: interval}
}

// Start begins the sweep loop and listens for context cancellation.
func (w *ExpiryWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting batch expiry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Batch expiry worker stopped")
			return
		}
	}
}

func (w *ExpiryWorker) run() {
	written, err := w.stock.SweepExpiries(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Batch expiry sweep failed")
		return
	}
	if written > 0 {
		log.Info().Int("alerts", written).Msg("Expiry alerts written")
	}
}
