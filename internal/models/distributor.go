package models

// PaymentStatus reflects whether a distributor is still owed for deliveries.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// Distributor is a supplier. TotalOwed grows with stock intake and shrinks
// with settlement payments, never below zero.
type Distributor struct {
	DistributorID string        `db:"distributor_id" json:"distributorId"`
	Name          string        `db:"name" json:"name"`
	KraPin        string        `db:"kra_pin" json:"kraPin"`
	Phone         string        `db:"phone" json:"phone"`
	Address       string        `db:"address" json:"address"`
	MainProducts  *string       `db:"main_products" json:"mainProducts,omitempty"`
	TotalOwed     float64       `db:"total_owed" json:"totalOwed"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
}
