package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/config"
	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/utils"
	"github.com/kinthithe/pos-api/pkg/lipia"
)

// gatewayClient is the outbound charge surface of the payment gateway.
type gatewayClient interface {
	StkPush(ctx context.Context, req *lipia.StkPushRequest) (*lipia.StkPushResponse, error)
}

// chargeStore persists initiated charges.
type chargeStore interface {
	Create(charge *models.PendingCharge) error
}

// settlementWatcher begins the poll-and-confirm loop for one charge.
type settlementWatcher interface {
	Watch(paymentRef string, expectedTotal float64)
	Cancel(paymentRef string) bool
}

// sessionStore is the shared payment session surface in the cache layer.
type sessionStore interface {
	Put(ctx context.Context, session *cache.PaymentSession) error
	Get(ctx context.Context, paymentRef string) (*cache.PaymentSession, error)
	Transition(ctx context.Context, paymentRef string, state models.PaymentState, message string) (*cache.PaymentSession, error)
}

// PaymentService relays charge requests to the gateway. It writes the
// PendingCharge record and starts the watcher, but never touches the sale
// ledger itself; settlement is reconciliation's job.
type PaymentService struct {
	gateway  gatewayClient
	charges  chargeStore
	sessions sessionStore
	watcher  settlementWatcher
	cfg      config.LipiaConfig
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(gateway gatewayClient, charges chargeStore, sessions sessionStore, watcher settlementWatcher, cfg config.LipiaConfig) *PaymentService {
	return &PaymentService{gateway: gateway, charges: charges, sessions: sessions, watcher: watcher, cfg: cfg}
}

// InitiateChargeRequest mirrors the wire body of the initiate endpoint.
type InitiateChargeRequest struct {
	PhoneNumber       string  `json:"phone_number"`
	Amount            float64 `json:"amount"`
	ExternalReference string  `json:"external_reference"`
	CallbackURL       string  `json:"callback_url"`
}

// InitiateCharge pushes one mobile-money charge. The gateway response body
// is passed through to the caller apart from the top-level success flag.
func (s *PaymentService) InitiateCharge(ctx context.Context, req *InitiateChargeRequest) (*lipia.StkPushResponse, error) {
	if s.cfg.APIKey == "" {
		log.Error().Msg("Lipia API key missing, refusing initiate")
		return nil, utils.ErrConfigMissing
	}
	if req.Amount <= 0 {
		return nil, utils.ErrInvalidAmount
	}
	if req.ExternalReference == "" {
		req.ExternalReference = utils.GeneratePaymentRef()
	}
	callbackURL := req.CallbackURL
	if callbackURL == "" {
		callbackURL = s.cfg.CallbackURL
	}

	// The gateway requires the local 07... format; display surfaces use the
	// international form. Final validation is the gateway's.
	localPhone := utils.LocalFormat(req.PhoneNumber)

	charge := &models.PendingCharge{
		CorrelationRef: req.ExternalReference,
		Phone:          localPhone,
		Amount:         req.Amount,
	}
	if err := s.charges.Create(charge); err != nil {
		log.Error().Err(err).Str("payment_ref", req.ExternalReference).Msg("Failed to record pending charge")
		return nil, err
	}

	if err := s.sessions.Put(ctx, &cache.PaymentSession{
		PaymentRef: req.ExternalReference,
		Phone:      utils.InternationalFormat(req.PhoneNumber),
		Amount:     req.Amount,
		State:      models.PaymentStateSending,
		StartedAt:  time.Now(),
	}); err != nil {
		log.Error().Err(err).Str("payment_ref", req.ExternalReference).Msg("Failed to store payment session")
	}

	log.Info().
		Str("payment_ref", req.ExternalReference).
		Str("phone", localPhone).
		Float64("amount", req.Amount).
		Msg("Initiating STK push")

	resp, err := s.gateway.StkPush(ctx, &lipia.StkPushRequest{
		PhoneNumber:       localPhone,
		Amount:            req.Amount,
		ExternalReference: req.ExternalReference,
		CallbackURL:       callbackURL,
		Metadata:          lipia.Metadata{Source: s.cfg.Source},
	})
	if err != nil {
		log.Error().Err(err).Str("payment_ref", req.ExternalReference).Msg("STK push failed")
		if _, terr := s.sessions.Transition(ctx, req.ExternalReference, models.PaymentStateCanceled, "gateway unreachable"); terr != nil {
			log.Error().Err(terr).Msg("Failed to mark session canceled")
		}
		return nil, utils.ErrGatewayUnavailable
	}

	if resp.Success {
		if _, err := s.sessions.Transition(ctx, req.ExternalReference, models.PaymentStateWaiting, "awaiting confirmation"); err != nil {
			log.Error().Err(err).Msg("Failed to mark session waiting")
		}
		s.watcher.Watch(req.ExternalReference, req.Amount)
	} else {
		log.Warn().
			Str("payment_ref", req.ExternalReference).
			Str("message", resp.Message).
			Msg("Gateway declined STK push")
		if _, err := s.sessions.Transition(ctx, req.ExternalReference, models.PaymentStateCanceled, resp.Message); err != nil {
			log.Error().Err(err).Msg("Failed to mark session canceled")
		}
	}
	return resp, nil
}

// Status returns the shared session view for one payment reference.
func (s *PaymentService) Status(ctx context.Context, paymentRef string) (*cache.PaymentSession, error) {
	return s.sessions.Get(ctx, paymentRef)
}

// CancelCharge stops the poll loop for a charge at the user's request and
// marks the session canceled unless it already reached a terminal state.
func (s *PaymentService) CancelCharge(ctx context.Context, paymentRef string) (*cache.PaymentSession, error) {
	s.watcher.Cancel(paymentRef)
	return s.sessions.Transition(ctx, paymentRef, models.PaymentStateCanceled, "canceled by user")
}
