package models

import "time"

// CreditStatus reflects whether a customer carries outstanding debt.
// Invariant: status is unpaid exactly when amount_owed > 0.
type CreditStatus string

const (
	CreditStatusPaid   CreditStatus = "paid"
	CreditStatusUnpaid CreditStatus = "unpaid"
)

// Customer is matched by phone, its natural key, when a sale carries
// customer details.
type Customer struct {
	CustomerID    string       `db:"customer_id" json:"customerId"`
	FullName      string       `db:"full_name" json:"fullName"`
	Phone         string       `db:"phone" json:"phone"`
	Address       string       `db:"address" json:"address"`
	DueDate       *time.Time   `db:"due_date" json:"dueDate,omitempty"`
	AmountOwed    float64      `db:"amount_owed" json:"amountOwed"`
	Status        CreditStatus `db:"status" json:"status"`
	LoyaltyPoints int          `db:"loyalty_points" json:"loyaltyPoints"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}
