package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/config"
	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/service"
	"github.com/kinthithe/pos-api/pkg/lipia"
)

type stubGateway struct {
	resp *lipia.StkPushResponse
	err  error
}

func (s *stubGateway) StkPush(ctx context.Context, req *lipia.StkPushRequest) (*lipia.StkPushResponse, error) {
	return s.resp, s.err
}

type stubChargeStore struct{}

func (stubChargeStore) Create(*models.PendingCharge) error { return nil }

type stubSessionStore struct {
	sessions map[string]*cache.PaymentSession
}

func (s *stubSessionStore) Put(ctx context.Context, session *cache.PaymentSession) error {
	s.sessions[session.PaymentRef] = session
	return nil
}

func (s *stubSessionStore) Get(ctx context.Context, ref string) (*cache.PaymentSession, error) {
	session, ok := s.sessions[ref]
	if !ok {
		return nil, cache.ErrSessionNotFound
	}
	return session, nil
}

func (s *stubSessionStore) Transition(ctx context.Context, ref string, state models.PaymentState, message string) (*cache.PaymentSession, error) {
	session, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	session.State = state
	session.Message = message
	return session, nil
}

type stubWatcher struct{}

func (stubWatcher) Watch(string, float64) {}
func (stubWatcher) Cancel(string) bool    { return false }

func newPaymentRouter(gateway *stubGateway, apiKey string) (*gin.Engine, *stubSessionStore) {
	gin.SetMode(gin.TestMode)
	sessions := &stubSessionStore{sessions: make(map[string]*cache.PaymentSession)}
	svc := service.NewPaymentService(gateway, stubChargeStore{}, sessions, stubWatcher{}, config.LipiaConfig{
		BaseURL: "https://gateway.test",
		APIKey:  apiKey,
		Source:  "Kinthithe POS",
	})
	h := NewPaymentHandler(svc)

	router := gin.New()
	router.POST("/api/initiate-payment", h.InitiatePayment)
	router.GET("/v1/payments/:ref/status", h.GetStatus)
	return router, sessions
}

func TestInitiatePaymentMissingAPIKey(t *testing.T) {
	router, _ := newPaymentRouter(&stubGateway{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/initiate-payment",
		strings.NewReader(`{"phone_number":"0702322277","amount":100}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false || body["message"] != "Server Configuration Error: API Key missing" {
		t.Errorf("body = %v", body)
	}
}

func TestInitiatePaymentPassesGatewayBodyThrough(t *testing.T) {
	gateway := &stubGateway{resp: &lipia.StkPushResponse{
		Success: true,
		Message: "STK push initiated",
		Data:    json.RawMessage(`{"reference":"abc"}`),
	}}
	router, _ := newPaymentRouter(gateway, "key")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/initiate-payment",
		strings.NewReader(`{"phone_number":"0702322277","amount":206,"external_reference":"POS1"}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp lipia.StkPushResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message != "STK push initiated" {
		t.Errorf("response = %+v", resp)
	}
	if string(resp.Data) != `{"reference":"abc"}` {
		t.Errorf("data = %s", resp.Data)
	}
}

func TestGetStatus(t *testing.T) {
	router, sessions := newPaymentRouter(&stubGateway{}, "key")
	sessions.Put(context.Background(), &cache.PaymentSession{
		PaymentRef: "POS9",
		State:      models.PaymentStateWaiting,
		StartedAt:  time.Now(),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/POS9/status", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/payments/missing/status", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("missing ref status = %d, want 404", w.Code)
	}
}
