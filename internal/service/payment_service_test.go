package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/config"
	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/utils"
	"github.com/kinthithe/pos-api/pkg/lipia"
)

type fakeGateway struct {
	req  *lipia.StkPushRequest
	resp *lipia.StkPushResponse
	err  error
}

func (f *fakeGateway) StkPush(ctx context.Context, req *lipia.StkPushRequest) (*lipia.StkPushResponse, error) {
	f.req = req
	return f.resp, f.err
}

type fakeChargeStore struct {
	charges []*models.PendingCharge
}

func (f *fakeChargeStore) Create(c *models.PendingCharge) error {
	f.charges = append(f.charges, c)
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*cache.PaymentSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*cache.PaymentSession)}
}

func (f *fakeSessionStore) Put(ctx context.Context, s *cache.PaymentSession) error {
	f.sessions[s.PaymentRef] = s
	return nil
}

func (f *fakeSessionStore) Get(ctx context.Context, ref string) (*cache.PaymentSession, error) {
	s, ok := f.sessions[ref]
	if !ok {
		return nil, cache.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) Transition(ctx context.Context, ref string, state models.PaymentState, message string) (*cache.PaymentSession, error) {
	s, err := f.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if s.Terminal() {
		return s, nil
	}
	s.State = state
	s.Message = message
	if s.Terminal() {
		now := time.Now()
		s.CompletedAt = &now
	}
	return s, nil
}

type fakeWatcher struct {
	watched  []string
	canceled []string
}

func (f *fakeWatcher) Watch(ref string, expectedTotal float64) { f.watched = append(f.watched, ref) }
func (f *fakeWatcher) Cancel(ref string) bool {
	f.canceled = append(f.canceled, ref)
	return true
}

func testLipiaConfig() config.LipiaConfig {
	return config.LipiaConfig{
		BaseURL:     "https://gateway.test",
		APIKey:      "key",
		CallbackURL: "https://pos.test/api/callback",
		Source:      "Kinthithe POS",
	}
}

func TestInitiateChargeMissingAPIKey(t *testing.T) {
	cfg := testLipiaConfig()
	cfg.APIKey = ""
	svc := NewPaymentService(&fakeGateway{}, &fakeChargeStore{}, newFakeSessionStore(), &fakeWatcher{}, cfg)

	_, err := svc.InitiateCharge(context.Background(), &InitiateChargeRequest{
		PhoneNumber: "0702322277",
		Amount:      100,
	})
	if !errors.Is(err, utils.ErrConfigMissing) {
		t.Errorf("err = %v, want ErrConfigMissing", err)
	}
}

func TestInitiateChargeInvalidAmount(t *testing.T) {
	svc := NewPaymentService(&fakeGateway{}, &fakeChargeStore{}, newFakeSessionStore(), &fakeWatcher{}, testLipiaConfig())

	for _, amount := range []float64{0, -5} {
		_, err := svc.InitiateCharge(context.Background(), &InitiateChargeRequest{
			PhoneNumber: "0702322277",
			Amount:      amount,
		})
		if !errors.Is(err, utils.ErrInvalidAmount) {
			t.Errorf("amount %v: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestInitiateChargeSuccessStartsWatcher(t *testing.T) {
	gw := &fakeGateway{resp: &lipia.StkPushResponse{Success: true, Message: "pushed"}}
	charges := &fakeChargeStore{}
	sessions := newFakeSessionStore()
	watcher := &fakeWatcher{}
	svc := NewPaymentService(gw, charges, sessions, watcher, testLipiaConfig())

	resp, err := svc.InitiateCharge(context.Background(), &InitiateChargeRequest{
		PhoneNumber:       "+254702322277",
		Amount:            206,
		ExternalReference: "POS000000042",
	})
	if err != nil {
		t.Fatalf("InitiateCharge: %v", err)
	}
	if !resp.Success {
		t.Error("gateway response must pass through")
	}

	if gw.req.PhoneNumber != "0702322277" {
		t.Errorf("gateway phone = %q, want local 0702322277", gw.req.PhoneNumber)
	}
	if gw.req.CallbackURL != "https://pos.test/api/callback" {
		t.Errorf("callback url = %q, want config default", gw.req.CallbackURL)
	}
	if gw.req.Metadata.Source != "Kinthithe POS" {
		t.Errorf("source = %q", gw.req.Metadata.Source)
	}

	if len(charges.charges) != 1 || charges.charges[0].CorrelationRef != "POS000000042" {
		t.Fatalf("pending charge not recorded: %+v", charges.charges)
	}
	if len(watcher.watched) != 1 || watcher.watched[0] != "POS000000042" {
		t.Errorf("watcher not started: %+v", watcher.watched)
	}

	session, err := sessions.Get(context.Background(), "POS000000042")
	if err != nil {
		t.Fatalf("session missing: %v", err)
	}
	if session.State != models.PaymentStateWaiting {
		t.Errorf("session state = %q, want waiting", session.State)
	}
}

func TestInitiateChargeGeneratesReference(t *testing.T) {
	gw := &fakeGateway{resp: &lipia.StkPushResponse{Success: true}}
	svc := NewPaymentService(gw, &fakeChargeStore{}, newFakeSessionStore(), &fakeWatcher{}, testLipiaConfig())

	if _, err := svc.InitiateCharge(context.Background(), &InitiateChargeRequest{
		PhoneNumber: "0702322277",
		Amount:      50,
	}); err != nil {
		t.Fatalf("InitiateCharge: %v", err)
	}
	if gw.req.ExternalReference == "" {
		t.Error("a reference must be generated when none is supplied")
	}
}

func TestInitiateChargeGatewayDown(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connect timeout")}
	sessions := newFakeSessionStore()
	watcher := &fakeWatcher{}
	svc := NewPaymentService(gw, &fakeChargeStore{}, sessions, watcher, testLipiaConfig())

	_, err := svc.InitiateCharge(context.Background(), &InitiateChargeRequest{
		PhoneNumber:       "0702322277",
		Amount:            100,
		ExternalReference: "POS000000001",
	})
	if !errors.Is(err, utils.ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	session, _ := sessions.Get(context.Background(), "POS000000001")
	if session.State != models.PaymentStateCanceled {
		t.Errorf("session state = %q, want canceled", session.State)
	}
	if len(watcher.watched) != 0 {
		t.Error("no watcher may start when the push fails")
	}
}

func TestInitiateChargeDeclined(t *testing.T) {
	gw := &fakeGateway{resp: &lipia.StkPushResponse{Success: false, Message: "insufficient funds"}}
	sessions := newFakeSessionStore()
	watcher := &fakeWatcher{}
	svc := NewPaymentService(gw, &fakeChargeStore{}, sessions, watcher, testLipiaConfig())

	resp, err := svc.InitiateCharge(context.Background(), &InitiateChargeRequest{
		PhoneNumber:       "0702322277",
		Amount:            100,
		ExternalReference: "POS000000002",
	})
	if err != nil {
		t.Fatalf("decline is not a transport error: %v", err)
	}
	if resp.Success {
		t.Error("declined response must pass through unaltered")
	}
	session, _ := sessions.Get(context.Background(), "POS000000002")
	if session.State != models.PaymentStateCanceled {
		t.Errorf("session state = %q, want canceled", session.State)
	}
	if len(watcher.watched) != 0 {
		t.Error("no watcher may start on a declined push")
	}
}

func TestCancelCharge(t *testing.T) {
	sessions := newFakeSessionStore()
	sessions.Put(context.Background(), &cache.PaymentSession{
		PaymentRef: "POS000000003",
		State:      models.PaymentStateWaiting,
	})
	watcher := &fakeWatcher{}
	svc := NewPaymentService(&fakeGateway{}, &fakeChargeStore{}, sessions, watcher, testLipiaConfig())

	session, err := svc.CancelCharge(context.Background(), "POS000000003")
	if err != nil {
		t.Fatalf("CancelCharge: %v", err)
	}
	if session.State != models.PaymentStateCanceled {
		t.Errorf("state = %q, want canceled", session.State)
	}
	if len(watcher.canceled) != 1 {
		t.Error("watcher loop must be stopped")
	}
}

func TestCancelChargeAfterSuccessIsNoOp(t *testing.T) {
	sessions := newFakeSessionStore()
	sessions.Put(context.Background(), &cache.PaymentSession{
		PaymentRef: "POS000000004",
		State:      models.PaymentStateSuccess,
	})
	svc := NewPaymentService(&fakeGateway{}, &fakeChargeStore{}, sessions, &fakeWatcher{}, testLipiaConfig())

	session, err := svc.CancelCharge(context.Background(), "POS000000004")
	if err != nil {
		t.Fatalf("CancelCharge: %v", err)
	}
	if session.State != models.PaymentStateSuccess {
		t.Errorf("terminal state must win the race, got %q", session.State)
	}
}
