package models

import "time"

// AlertType enumerates the operational alerts surfaced on the dashboard.
type AlertType string

const (
	AlertLowStock          AlertType = "low stock"
	AlertCreditOverdue     AlertType = "credit overdue"
	AlertUnpaidDistributor AlertType = "unpaid distributor"
	AlertExpiredProduct    AlertType = "expired product"
	AlertNearExpiry        AlertType = "near expiry"
)

// Alert is deduplicated at write time: at most one unseen alert may exist
// per (type, reference_id) pair.
type Alert struct {
	AlertID     string    `db:"alert_id" json:"alertId"`
	Type        AlertType `db:"type" json:"type"`
	ReferenceID string    `db:"reference_id" json:"referenceId"`
	Message     string    `db:"message" json:"message"`
	Seen        bool      `db:"seen" json:"seen"`
	Date        time.Time `db:"date" json:"date"`
}
