package service

import (
	"errors"
	"testing"
	"time"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

type fakeStockLedger struct {
	committed []*models.StockIn
}

func (f *fakeStockLedger) RecordStockInUnit(si *models.StockIn) (*models.StockIn, error) {
	committed := *si
	committed.StockInID = "si-1"
	committed.TotalCost = si.UnitCost * float64(si.QtyReceived)
	committed.Date = time.Now()
	f.committed = append(f.committed, &committed)
	return &committed, nil
}

type fakeStockReader struct {
	expiring []repository.BatchWithProduct
}

func (f *fakeStockReader) GetStockIns() ([]models.StockIn, error)    { return nil, nil }
func (f *fakeStockReader) GetBatches() ([]models.StockBatch, error)  { return nil, nil }
func (f *fakeStockReader) GetExpiringBatches(cutoff time.Time) ([]repository.BatchWithProduct, error) {
	var out []repository.BatchWithProduct
	for _, b := range f.expiring {
		if b.ExpiryDate.Before(cutoff) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAlertWriter struct {
	written map[string]models.AlertType
}

func newFakeAlertWriter() *fakeAlertWriter {
	return &fakeAlertWriter{written: make(map[string]models.AlertType)}
}

func (f *fakeAlertWriter) CreateIfAbsent(alertType models.AlertType, refID, message string) (bool, error) {
	if _, ok := f.written[refID]; ok {
		return false, nil
	}
	f.written[refID] = alertType
	return true, nil
}

func TestRecordStockIn(t *testing.T) {
	ledger := &fakeStockLedger{}
	svc := NewStockService(ledger, &fakeStockReader{}, newFakeAlertWriter(), 7*24*time.Hour)

	committed, err := svc.RecordStockIn(&StockInRequest{
		DistributorID: "d-1",
		ProductID:     "p-1",
		QtyReceived:   100,
		QtyAccepted:   95,
		QtyRejected:   5,
		UnitCost:      40,
		MfgDate:       time.Now().AddDate(0, -1, 0),
		ExpiryDate:    time.Now().AddDate(1, 0, 0),
		ReceivedBy:    "u-1",
	})
	if err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}
	if len(committed.ReferenceNo) != 10 || committed.ReferenceNo[:4] != "REF-" {
		t.Errorf("reference %q has wrong shape", committed.ReferenceNo)
	}
	// Empty batch number falls back to the delivery reference.
	if committed.BatchNo != committed.ReferenceNo {
		t.Errorf("batch no = %q, want fallback to %q", committed.BatchNo, committed.ReferenceNo)
	}
	if committed.TotalCost != 4000 {
		t.Errorf("total cost = %v, want 4000", committed.TotalCost)
	}
}

func TestRecordStockInInvalidQuantities(t *testing.T) {
	svc := NewStockService(&fakeStockLedger{}, &fakeStockReader{}, newFakeAlertWriter(), 0)

	bad := []*StockInRequest{
		{QtyReceived: 0, QtyAccepted: 0},
		{QtyReceived: -1, QtyAccepted: 0},
		{QtyReceived: 10, QtyAccepted: -1},
		{QtyReceived: 10, QtyAccepted: 11},
	}
	for _, req := range bad {
		if _, err := svc.RecordStockIn(req); !errors.Is(err, utils.ErrInvalidQuantity) {
			t.Errorf("req %+v: err = %v, want ErrInvalidQuantity", req, err)
		}
	}
}

func TestSweepExpiries(t *testing.T) {
	now := time.Now()
	reader := &fakeStockReader{expiring: []repository.BatchWithProduct{
		{StockBatch: models.StockBatch{BatchID: "b-expired", BatchNo: "B1", ExpiryDate: now.AddDate(0, 0, -2)}, ProductName: "Milk"},
		{StockBatch: models.StockBatch{BatchID: "b-near", BatchNo: "B2", ExpiryDate: now.AddDate(0, 0, 3)}, ProductName: "Bread"},
		{StockBatch: models.StockBatch{BatchID: "b-far", BatchNo: "B3", ExpiryDate: now.AddDate(1, 0, 0)}, ProductName: "Salt"},
	}}
	alerts := newFakeAlertWriter()
	svc := NewStockService(&fakeStockLedger{}, reader, alerts, 7*24*time.Hour)

	written, err := svc.SweepExpiries(now)
	if err != nil {
		t.Fatalf("SweepExpiries: %v", err)
	}
	if written != 2 {
		t.Errorf("written = %d, want 2", written)
	}
	if alerts.written["b-expired"] != models.AlertExpiredProduct {
		t.Errorf("b-expired alert type = %q, want expired product", alerts.written["b-expired"])
	}
	if alerts.written["b-near"] != models.AlertNearExpiry {
		t.Errorf("b-near alert type = %q, want near expiry", alerts.written["b-near"])
	}
	if _, ok := alerts.written["b-far"]; ok {
		t.Error("batch outside the window must not alert")
	}

	// A second sweep is a no-op thanks to the dedup write.
	written, err = svc.SweepExpiries(now)
	if err != nil {
		t.Fatalf("second SweepExpiries: %v", err)
	}
	if written != 0 {
		t.Errorf("second sweep wrote %d alerts, want 0", written)
	}
}
