package service

import (
	"encoding/json"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/models"
)

// The gateway delivers payment results in two shapes. The direct shape
// echoes our correlation reference; the generic STK shape carries only a
// result code and a metadata item list. Both are decoded into one envelope
// and classified structurally before any matching happens.

// CallbackEnvelope is the discriminated union of inbound callback bodies.
type CallbackEnvelope struct {
	Response *DirectResult `json:"response,omitempty"`
	Body     *StkBody      `json:"Body,omitempty"`
}

// DirectResult is the direct-reference callback variant.
type DirectResult struct {
	Status             string  `json:"Status"`
	MpesaReceiptNumber string  `json:"MpesaReceiptNumber"`
	Amount             float64 `json:"Amount"`
	ExternalReference  string  `json:"ExternalReference"`
}

// StkBody wraps the generic STK result variant.
type StkBody struct {
	StkCallback *StkCallback `json:"stkCallback"`
}

// StkCallback is the generic result payload. ResultCode zero means paid.
type StkCallback struct {
	ResultCode       int         `json:"ResultCode"`
	ResultDesc       string      `json:"ResultDesc"`
	CallbackMetadata StkMetadata `json:"CallbackMetadata"`
}

// StkMetadata holds the name/value item list of an STK result.
type StkMetadata struct {
	Item []StkItem `json:"Item"`
}

// StkItem is one metadata entry; Value arrives as number or string
// depending on the field.
type StkItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// CallbackKind tags the classified callback variant.
type CallbackKind int

const (
	KindUnknown CallbackKind = iota
	KindDirect
	KindStk
)

// Classify resolves the envelope to a variant by structural inspection.
func (e *CallbackEnvelope) Classify() CallbackKind {
	if e.Response != nil && e.Response.Status == "Success" {
		return KindDirect
	}
	if e.Body != nil && e.Body.StkCallback != nil {
		return KindStk
	}
	return KindUnknown
}

// floatValue coerces a metadata value to float64, tolerating both JSON
// numbers and quoted numerics.
func (i StkItem) floatValue() (float64, bool) {
	var f float64
	if err := json.Unmarshal(i.Value, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(i.Value, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (i StkItem) stringValue() string {
	var s string
	if err := json.Unmarshal(i.Value, &s); err == nil {
		return s
	}
	return string(i.Value)
}

// settlementStore applies the monotonic amount_paid raise. Both methods are
// conditional writes at the store level so replays and racing corrections
// collapse into no-ops.
type settlementStore interface {
	SettleByPaymentRef(paymentRef string, amount float64, receipt *string) (int64, error)
	SettleBySaleID(saleID string, amount float64, receipt *string) (int64, error)
}

// SettlementMatcher resolves a generic callback with no correlation
// reference to a candidate sale. Pluggable so the amount heuristic can be
// replaced once the gateway supports a correlation token in STK metadata.
type SettlementMatcher interface {
	Match(amount float64) (*models.Sale, error)
}

// AmountMatcher is the default fuzzy matcher: the most recent unpaid mpesa
// sale whose line total equals the callback amount. It cannot disambiguate
// two simultaneous unpaid sales of equal amount; the store under it orders
// by date and takes one.
type AmountMatcher struct {
	sales interface {
		FindUnpaidMpesaByAmount(amount float64) (*models.Sale, error)
	}
}

// NewAmountMatcher constructs the default matcher over a sale store.
func NewAmountMatcher(sales interface {
	FindUnpaidMpesaByAmount(amount float64) (*models.Sale, error)
}) *AmountMatcher {
	return &AmountMatcher{sales: sales}
}

// Match implements SettlementMatcher.
func (m *AmountMatcher) Match(amount float64) (*models.Sale, error) {
	return m.sales.FindUnpaidMpesaByAmount(amount)
}

// ReconcileService turns inbound payment-result notifications into at most
// one settlement each. Nothing here ever returns an error to the gateway;
// a failed or unmatched callback is logged and acknowledged so the gateway
// does not retry-storm us into duplicate processing.
type ReconcileService struct {
	store   settlementStore
	matcher SettlementMatcher
}

// NewReconcileService constructs a ReconcileService.
func NewReconcileService(store settlementStore, matcher SettlementMatcher) *ReconcileService {
	return &ReconcileService{store: store, matcher: matcher}
}

// Ack values returned to the gateway. Always paired with HTTP 200.
const (
	AckSuccess  = "success"
	AckReceived = "received"
)

// ProcessCallback applies one inbound notification and returns the
// acknowledgement token. Malformed bodies are acknowledged, never rejected.
func (s *ReconcileService) ProcessCallback(raw []byte) string {
	var env CallbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Msg("Malformed callback body, acknowledging anyway")
		return AckReceived
	}

	switch env.Classify() {
	case KindDirect:
		s.applyDirect(env.Response)
		return AckSuccess
	case KindStk:
		s.applyStk(env.Body.StkCallback)
		return AckReceived
	default:
		log.Warn().Msg("Callback matched neither known shape")
		return AckReceived
	}
}

// applyDirect settles by exact payment_ref lookup. The receipt number is
// kept for audit only; overwriting payment_ref would break the poll loop
// still keyed on the original reference.
func (s *ReconcileService) applyDirect(res *DirectResult) {
	receipt := res.MpesaReceiptNumber
	rows, err := s.store.SettleByPaymentRef(res.ExternalReference, res.Amount, &receipt)
	if err != nil {
		log.Error().Err(err).
			Str("payment_ref", res.ExternalReference).
			Msg("Failed to apply direct settlement")
		return
	}
	if rows == 0 {
		// Either a stale reference or a replayed callback on an already
		// settled payment. Both are no-ops; the gateway still gets its 200.
		log.Info().
			Str("payment_ref", res.ExternalReference).
			Float64("amount", res.Amount).
			Msg("Direct callback matched no unsettled rows")
		return
	}
	log.Info().
		Str("payment_ref", res.ExternalReference).
		Str("receipt", receipt).
		Float64("amount", res.Amount).
		Int64("rows", rows).
		Msg("Payment settled via direct callback")
}

// applyStk settles via the fuzzy matcher when the callback carries no
// correlation reference. A non-zero result code is a terminal failure:
// logged, no ledger mutation.
func (s *ReconcileService) applyStk(cb *StkCallback) {
	if cb.ResultCode != 0 {
		log.Info().
			Int("result_code", cb.ResultCode).
			Str("result_desc", cb.ResultDesc).
			Msg("Payment failed at gateway, no mutation")
		return
	}

	var amount float64
	var receipt, phone string
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if f, ok := item.floatValue(); ok {
				amount = f
			}
		case "MpesaReceiptNumber":
			receipt = item.stringValue()
		case "PhoneNumber":
			phone = item.stringValue()
		}
	}
	if amount == 0 {
		log.Warn().Msg("STK callback carried no usable amount")
		return
	}

	sale, err := s.matcher.Match(amount)
	if err != nil || sale == nil {
		log.Warn().
			Float64("amount", amount).
			Str("phone", phone).
			Msg("No matching pending sale for STK callback")
		return
	}

	var receiptPtr *string
	if receipt != "" {
		receiptPtr = &receipt
	}
	rows, err := s.store.SettleBySaleID(sale.SaleID, amount, receiptPtr)
	if err != nil {
		log.Error().Err(err).Str("sale_id", sale.SaleID).Msg("Failed to apply STK settlement")
		return
	}
	if rows == 0 {
		log.Info().Str("sale_id", sale.SaleID).Msg("STK callback replay, settlement unchanged")
		return
	}
	log.Info().
		Str("sale_id", sale.SaleID).
		Str("receipt", receipt).
		Float64("amount", amount).
		Msg("Payment settled via STK callback")
}
