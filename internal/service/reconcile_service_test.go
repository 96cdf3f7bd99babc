package service

import (
	"testing"

	"github.com/kinthithe/pos-api/internal/models"
)

type fakeSettlementStore struct {
	byRefCalls  []settleCall
	byIDCalls   []settleCall
	byRefRows   int64
	byIDRows    int64
	unpaidSale  *models.Sale
	matchAmount float64
}

type settleCall struct {
	key     string
	amount  float64
	receipt *string
}

func (f *fakeSettlementStore) SettleByPaymentRef(ref string, amount float64, receipt *string) (int64, error) {
	f.byRefCalls = append(f.byRefCalls, settleCall{ref, amount, receipt})
	return f.byRefRows, nil
}

func (f *fakeSettlementStore) SettleBySaleID(id string, amount float64, receipt *string) (int64, error) {
	f.byIDCalls = append(f.byIDCalls, settleCall{id, amount, receipt})
	return f.byIDRows, nil
}

func (f *fakeSettlementStore) FindUnpaidMpesaByAmount(amount float64) (*models.Sale, error) {
	f.matchAmount = amount
	return f.unpaidSale, nil
}

func newTestReconciler(store *fakeSettlementStore) *ReconcileService {
	return NewReconcileService(store, NewAmountMatcher(store))
}

func TestProcessCallbackDirect(t *testing.T) {
	store := &fakeSettlementStore{byRefRows: 1}
	svc := newTestReconciler(store)

	body := `{"response":{"Status":"Success","MpesaReceiptNumber":"QBC123","Amount":206,"ExternalReference":"POS123456789"}}`
	ack := svc.ProcessCallback([]byte(body))

	if ack != AckSuccess {
		t.Errorf("ack = %q, want %q", ack, AckSuccess)
	}
	if len(store.byRefCalls) != 1 {
		t.Fatalf("SettleByPaymentRef calls = %d, want 1", len(store.byRefCalls))
	}
	call := store.byRefCalls[0]
	if call.key != "POS123456789" || call.amount != 206 {
		t.Errorf("settled %q/%v, want POS123456789/206", call.key, call.amount)
	}
	if call.receipt == nil || *call.receipt != "QBC123" {
		t.Errorf("receipt not forwarded")
	}
}

func TestProcessCallbackDirectReplayIsAcked(t *testing.T) {
	// Zero rows affected means an already settled payment; the gateway must
	// still receive a success acknowledgement.
	store := &fakeSettlementStore{byRefRows: 0}
	svc := newTestReconciler(store)

	body := `{"response":{"Status":"Success","MpesaReceiptNumber":"QBC123","Amount":206,"ExternalReference":"POS123456789"}}`
	if ack := svc.ProcessCallback([]byte(body)); ack != AckSuccess {
		t.Errorf("ack = %q, want %q", ack, AckSuccess)
	}
}

func TestProcessCallbackStkSuccess(t *testing.T) {
	store := &fakeSettlementStore{
		byIDRows:   1,
		unpaidSale: &models.Sale{SaleID: "sale-1", TotalPrice: 515},
	}
	svc := newTestReconciler(store)

	body := `{"Body":{"stkCallback":{"ResultCode":0,"ResultDesc":"ok","CallbackMetadata":{"Item":[
		{"Name":"Amount","Value":515},
		{"Name":"MpesaReceiptNumber","Value":"QXY999"},
		{"Name":"PhoneNumber","Value":254702322277}
	]}}}}`
	ack := svc.ProcessCallback([]byte(body))

	if ack != AckReceived {
		t.Errorf("ack = %q, want %q", ack, AckReceived)
	}
	if store.matchAmount != 515 {
		t.Errorf("matched amount = %v, want 515", store.matchAmount)
	}
	if len(store.byIDCalls) != 1 || store.byIDCalls[0].key != "sale-1" {
		t.Fatalf("expected settlement on sale-1, got %+v", store.byIDCalls)
	}
	if r := store.byIDCalls[0].receipt; r == nil || *r != "QXY999" {
		t.Errorf("receipt not forwarded on stk settle")
	}
}

func TestProcessCallbackStkStringAmount(t *testing.T) {
	store := &fakeSettlementStore{
		byIDRows:   1,
		unpaidSale: &models.Sale{SaleID: "sale-2"},
	}
	svc := newTestReconciler(store)

	body := `{"Body":{"stkCallback":{"ResultCode":0,"CallbackMetadata":{"Item":[
		{"Name":"Amount","Value":"515.5"}
	]}}}}`
	svc.ProcessCallback([]byte(body))

	if store.matchAmount != 515.5 {
		t.Errorf("matched amount = %v, want 515.5", store.matchAmount)
	}
}

func TestProcessCallbackStkFailureCode(t *testing.T) {
	store := &fakeSettlementStore{}
	svc := newTestReconciler(store)

	body := `{"Body":{"stkCallback":{"ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`
	ack := svc.ProcessCallback([]byte(body))

	if ack != AckReceived {
		t.Errorf("ack = %q, want %q", ack, AckReceived)
	}
	if len(store.byRefCalls)+len(store.byIDCalls) != 0 {
		t.Error("failed callback must not mutate the ledger")
	}
}

func TestProcessCallbackStkNoMatch(t *testing.T) {
	store := &fakeSettlementStore{unpaidSale: nil}
	svc := newTestReconciler(store)

	body := `{"Body":{"stkCallback":{"ResultCode":0,"CallbackMetadata":{"Item":[
		{"Name":"Amount","Value":42}
	]}}}}`
	if ack := svc.ProcessCallback([]byte(body)); ack != AckReceived {
		t.Errorf("ack = %q, want %q", ack, AckReceived)
	}
	if len(store.byIDCalls) != 0 {
		t.Error("unmatched callback must not settle anything")
	}
}

func TestProcessCallbackUnknownShapes(t *testing.T) {
	store := &fakeSettlementStore{}
	svc := newTestReconciler(store)

	bodies := []string{
		`not json at all`,
		`{}`,
		`{"response":{"Status":"Failed","ExternalReference":"POS1"}}`,
		`{"Body":{}}`,
		`[]`,
	}
	for _, body := range bodies {
		if ack := svc.ProcessCallback([]byte(body)); ack != AckReceived {
			t.Errorf("body %q: ack = %q, want %q", body, ack, AckReceived)
		}
	}
	if len(store.byRefCalls)+len(store.byIDCalls) != 0 {
		t.Error("unknown shapes must not mutate the ledger")
	}
}
