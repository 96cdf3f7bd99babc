package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/models"
)

type fakeSettlementReader struct {
	mu    sync.Mutex
	sales map[string][]models.Sale
}

func newFakeSettlementReader() *fakeSettlementReader {
	return &fakeSettlementReader{sales: make(map[string][]models.Sale)}
}

func (f *fakeSettlementReader) GetByPaymentRef(ref string) ([]models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sales[ref], nil
}

func (f *fakeSettlementReader) settle(ref string, amount float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sales[ref] = []models.Sale{{AmountPaid: &amount}}
}

type fakeTransitioner struct {
	mu     sync.Mutex
	states map[string]models.PaymentState
}

func newFakeTransitioner() *fakeTransitioner {
	return &fakeTransitioner{states: make(map[string]models.PaymentState)}
}

func (f *fakeTransitioner) Transition(ctx context.Context, ref string, state models.PaymentState, message string) (*cache.PaymentSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[ref] = state
	return &cache.PaymentSession{PaymentRef: ref, State: state, Message: message}, nil
}

func (f *fakeTransitioner) state(ref string) models.PaymentState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.states[ref]
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPollWatcherObservesSettlement(t *testing.T) {
	reader := newFakeSettlementReader()
	sessions := newFakeTransitioner()
	w := NewPollWatcher(reader, sessions, 5*time.Millisecond, time.Second)

	w.Watch("POS1", 206)
	if !w.Watching("POS1") {
		t.Fatal("loop should be registered")
	}

	reader.settle("POS1", 206)
	waitFor(t, time.Second, func() bool {
		return sessions.state("POS1") == models.PaymentStateSuccess
	})
	waitFor(t, time.Second, func() bool { return !w.Watching("POS1") })
}

func TestPollWatcherIgnoresPartialPayment(t *testing.T) {
	reader := newFakeSettlementReader()
	reader.settle("POS2", 100) // below the expected 206
	sessions := newFakeTransitioner()
	w := NewPollWatcher(reader, sessions, 5*time.Millisecond, time.Second)

	w.Watch("POS2", 206)
	time.Sleep(30 * time.Millisecond)
	if s := sessions.state("POS2"); s == models.PaymentStateSuccess {
		t.Error("partial payment must not flip the session to success")
	}
	w.Cancel("POS2")
}

func TestPollWatcherTimeout(t *testing.T) {
	reader := newFakeSettlementReader()
	sessions := newFakeTransitioner()
	w := NewPollWatcher(reader, sessions, 5*time.Millisecond, 30*time.Millisecond)

	w.Watch("POS3", 206)
	waitFor(t, time.Second, func() bool {
		return sessions.state("POS3") == models.PaymentStateTimedOut
	})
	waitFor(t, time.Second, func() bool { return !w.Watching("POS3") })
}

func TestPollWatcherCancel(t *testing.T) {
	reader := newFakeSettlementReader()
	sessions := newFakeTransitioner()
	w := NewPollWatcher(reader, sessions, 5*time.Millisecond, time.Second)

	w.Watch("POS4", 206)
	if !w.Cancel("POS4") {
		t.Fatal("Cancel should report a running loop")
	}
	if w.Cancel("POS4") {
		t.Error("second Cancel should report nothing running")
	}
	waitFor(t, time.Second, func() bool { return !w.Watching("POS4") })

	// A canceled loop must not later mark the session.
	reader.settle("POS4", 206)
	time.Sleep(30 * time.Millisecond)
	if s := sessions.state("POS4"); s == models.PaymentStateSuccess {
		t.Error("canceled loop still transitioned the session")
	}
}

func TestPollWatcherRewatchRestartsLoop(t *testing.T) {
	reader := newFakeSettlementReader()
	sessions := newFakeTransitioner()
	w := NewPollWatcher(reader, sessions, 5*time.Millisecond, time.Second)

	w.Watch("POS5", 206)
	w.Watch("POS5", 300)
	if !w.Watching("POS5") {
		t.Fatal("rewatch should leave one loop registered")
	}

	// Only the new expected total matters.
	reader.settle("POS5", 250)
	time.Sleep(30 * time.Millisecond)
	if s := sessions.state("POS5"); s == models.PaymentStateSuccess {
		t.Error("old threshold applied after rewatch")
	}
	reader.settle("POS5", 300)
	waitFor(t, time.Second, func() bool {
		return sessions.state("POS5") == models.PaymentStateSuccess
	})
}

func TestPollWatcherStartStopsAllLoops(t *testing.T) {
	reader := newFakeSettlementReader()
	sessions := newFakeTransitioner()
	w := NewPollWatcher(reader, sessions, 5*time.Millisecond, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	w.Watch("POS6", 206)
	w.Watch("POS7", 100)
	cancel()
	<-done

	waitFor(t, time.Second, func() bool {
		return !w.Watching("POS6") && !w.Watching("POS7")
	})
}
