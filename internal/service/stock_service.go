package service

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/utils"
)

// stockLedger is the transactional commit unit for one delivery.
type stockLedger interface {
	RecordStockInUnit(si *models.StockIn) (*models.StockIn, error)
}

// stockReader serves delivery and batch lookups.
type stockReader interface {
	GetStockIns() ([]models.StockIn, error)
	GetBatches() ([]models.StockBatch, error)
	GetExpiringBatches(cutoff time.Time) ([]repository.BatchWithProduct, error)
}

// alertWriter emits deduplicated alerts.
type alertWriter interface {
	CreateIfAbsent(alertType models.AlertType, referenceID, message string) (bool, error)
}

// StockService handles distributor deliveries and batch expiry sweeps, the
// intake mirror of the sale engine.
type StockService struct {
	ledger          stockLedger
	stock           stockReader
	alerts          alertWriter
	nearExpiryAfter time.Duration
}

// NewStockService constructs a StockService.
func NewStockService(ledger stockLedger, stock stockReader, alerts alertWriter, nearExpiryAfter time.Duration) *StockService {
	return &StockService{ledger: ledger, stock: stock, alerts: alerts, nearExpiryAfter: nearExpiryAfter}
}

// StockInRequest carries one delivery from the intake form.
type StockInRequest struct {
	DistributorID   string    `json:"distributorId"`
	ProductID       string    `json:"productId"`
	QtyReceived     int       `json:"qtyReceived"`
	QtyAccepted     int       `json:"qtyAccepted"`
	QtyRejected     int       `json:"qtyRejected"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	UnitCost        float64   `json:"unitCost"`
	DeliveryNoteNo  *string   `json:"deliveryNoteNo,omitempty"`
	InvoiceNo       *string   `json:"invoiceNo,omitempty"`
	MfgDate         time.Time `json:"mfgDate"`
	ExpiryDate      time.Time `json:"expiryDate"`
	BatchNo         string    `json:"batchNo"`
	ReceivedBy      string    `json:"-"`
}

// RecordStockIn commits one delivery: stock increment, delivery record,
// batch row, distributor payable increase. The payable grows by the full
// received quantity at unit cost even when part of the delivery is
// rejected; rejections are settled commercially, not in the ledger.
func (s *StockService) RecordStockIn(req *StockInRequest) (*models.StockIn, error) {
	if req.QtyReceived <= 0 || req.QtyAccepted < 0 || req.QtyAccepted > req.QtyReceived {
		return nil, utils.ErrInvalidQuantity
	}
	refNo, err := utils.GenerateStockInRef()
	if err != nil {
		return nil, fmt.Errorf("generate delivery reference: %w", err)
	}

	batchNo := req.BatchNo
	if batchNo == "" {
		batchNo = refNo
	}

	si := &models.StockIn{
		ReferenceNo:     refNo,
		DistributorID:   req.DistributorID,
		ProductID:       req.ProductID,
		ReceivedBy:      req.ReceivedBy,
		QtyReceived:     req.QtyReceived,
		QtyAccepted:     req.QtyAccepted,
		QtyRejected:     req.QtyRejected,
		RejectionReason: req.RejectionReason,
		UnitCost:        req.UnitCost,
		DeliveryNoteNo:  req.DeliveryNoteNo,
		InvoiceNo:       req.InvoiceNo,
		MfgDate:         req.MfgDate,
		ExpiryDate:      req.ExpiryDate,
		BatchNo:         batchNo,
	}

	committed, err := s.ledger.RecordStockInUnit(si)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("reference_no", committed.ReferenceNo).
		Str("product_id", committed.ProductID).
		Int("qty_accepted", committed.QtyAccepted).
		Float64("total_cost", committed.TotalCost).
		Msg("Delivery committed")
	return committed, nil
}

// ListStockIns returns deliveries, most recent first.
func (s *StockService) ListStockIns() ([]models.StockIn, error) {
	return s.stock.GetStockIns()
}

// ListBatches returns all stock batches.
func (s *StockService) ListBatches() ([]models.StockBatch, error) {
	return s.stock.GetBatches()
}

// SweepExpiries emits deduplicated alerts for expired batches and batches
// inside the near-expiry window. Returns how many alerts were written.
func (s *StockService) SweepExpiries(now time.Time) (int, error) {
	batches, err := s.stock.GetExpiringBatches(now.Add(s.nearExpiryAfter))
	if err != nil {
		return 0, err
	}
	written := 0
	for _, b := range batches {
		alertType := models.AlertNearExpiry
		msg := fmt.Sprintf("Batch %s of %s expires on %s.", b.BatchNo, b.ProductName, b.ExpiryDate.Format("2006-01-02"))
		if b.ExpiryDate.Before(now) {
			alertType = models.AlertExpiredProduct
			msg = fmt.Sprintf("Batch %s of %s expired on %s.", b.BatchNo, b.ProductName, b.ExpiryDate.Format("2006-01-02"))
		}
		created, err := s.alerts.CreateIfAbsent(alertType, b.BatchID, msg)
		if err != nil {
			log.Error().Err(err).Str("batch_id", b.BatchID).Msg("Failed to write expiry alert")
			continue
		}
		if created {
			written++
		}
	}
	return written, nil
}
