package models

import "time"

// StockIn records one delivery from a distributor, with the stock level
// before and after acceptance.
type StockIn struct {
	StockInID       string    `db:"stock_in_id" json:"stockInId"`
	ReferenceNo     string    `db:"reference_no" json:"referenceNo"`
	DistributorID   string    `db:"distributor_id" json:"distributorId"`
	ProductID       string    `db:"product_id" json:"productId"`
	ReceivedBy      string    `db:"received_by" json:"receivedBy"`
	QtyReceived     int       `db:"qty_received" json:"qtyReceived"`
	QtyAccepted     int       `db:"qty_accepted" json:"qtyAccepted"`
	QtyRejected     int       `db:"qty_rejected" json:"qtyRejected"`
	RejectionReason *string   `db:"rejection_reason" json:"rejectionReason,omitempty"`
	UnitCost        float64   `db:"unit_cost" json:"unitCost"`
	TotalCost       float64   `db:"total_cost" json:"totalCost"`
	PrevStock       int       `db:"prev_stock" json:"prevStock"`
	NewStock        int       `db:"new_stock" json:"newStock"`
	DeliveryNoteNo  *string   `db:"delivery_note_no" json:"deliveryNoteNo,omitempty"`
	InvoiceNo       *string   `db:"invoice_no" json:"invoiceNo,omitempty"`
	MfgDate         time.Time `db:"mfg_date" json:"mfgDate"`
	ExpiryDate      time.Time `db:"expiry_date" json:"expiryDate"`
	BatchNo         string    `db:"batch_no" json:"batchNo"`
	Date            time.Time `db:"date" json:"date"`
}

// StockBatch tracks one received batch with its expiry window. Quantity only
// decreases as sales consume stock; FIFO by expiry is the intended
// consumption policy.
type StockBatch struct {
	BatchID    string    `db:"batch_id" json:"batchId"`
	ProductID  string    `db:"product_id" json:"productId"`
	Quantity   int       `db:"quantity" json:"quantity"`
	MfgDate    time.Time `db:"mfg_date" json:"mfgDate"`
	ExpiryDate time.Time `db:"expiry_date" json:"expiryDate"`
	BatchNo    string    `db:"batch_no" json:"batchNo"`
}
