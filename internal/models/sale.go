package models

import "time"

// SaleType enumerates the supported payment methods at checkout.
type SaleType string

const (
	SaleTypeCash   SaleType = "cash"
	SaleTypeCredit SaleType = "credit"
	SaleTypeMpesa  SaleType = "mpesa"
)

// PaymentState tracks the reconciliation lifecycle of one payment reference.
type PaymentState string

const (
	PaymentStateSending  PaymentState = "sending"
	PaymentStateWaiting  PaymentState = "waiting"
	PaymentStateSuccess  PaymentState = "success"
	PaymentStateTimedOut PaymentState = "timed_out"
	PaymentStateCanceled PaymentState = "canceled"
)

// Sale is one product line of a basket. All lines of a basket share the same
// payment_ref. A line is settled once amount_paid meets or exceeds its
// VAT-inclusive total; amount_paid is only ever raised, never lowered.
type Sale struct {
	SaleID       string    `db:"sale_id" json:"saleId"`
	ProductID    string    `db:"product_id" json:"productId"`
	UserID       string    `db:"user_id" json:"userId"`
	Quantity     int       `db:"quantity" json:"quantity"`
	TotalPrice   float64   `db:"total_price" json:"totalPrice"`
	SaleType     SaleType  `db:"sale_type" json:"saleType"`
	CustomerID   *string   `db:"customer_id" json:"customerId,omitempty"`
	PaymentRef   *string   `db:"payment_ref" json:"paymentRef,omitempty"`
	AmountPaid   *float64  `db:"amount_paid" json:"amountPaid,omitempty"`
	ChangeAmount float64   `db:"change_amount" json:"changeAmount"`
	// MpesaReceipt stores the gateway receipt number for audit. It never
	// replaces PaymentRef, which the poll loop uses as its lookup key.
	MpesaReceipt  *string   `db:"mpesa_receipt" json:"mpesaReceipt,omitempty"`
	Date          time.Time `db:"date" json:"date"`
	LoyaltyPoints int       `db:"loyalty_points" json:"loyaltyPoints"`
}

// Settled reports whether the line has been paid in full.
func (s *Sale) Settled() bool {
	return s.AmountPaid != nil && *s.AmountPaid >= s.TotalPrice
}

// PendingCharge records an initiated mobile-money charge before settlement.
// Rows are immutable; a settled charge is superseded by its Sale rows.
type PendingCharge struct {
	CorrelationRef string    `db:"correlation_ref" json:"correlationRef"`
	Phone          string    `db:"phone" json:"phone"`
	Amount         float64   `db:"amount" json:"amount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
