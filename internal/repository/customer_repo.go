package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// CustomerRepository handles data access for the customer credit ledger.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetAll returns customers ordered by name.
func (r *CustomerRepository) GetAll() ([]models.Customer, error) {
	const q = `SELECT * FROM customers ORDER BY full_name`
	var list []models.Customer
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByPhone returns a customer by phone, the natural matching key.
func (r *CustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	const q = `SELECT * FROM customers WHERE phone = $1 LIMIT 1`
	var c models.Customer
	if err := r.db.Get(&c, q, phone); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

// GetByID returns a customer by ID.
func (r *CustomerRepository) GetByID(customerID string) (*models.Customer, error) {
	const q = `SELECT * FROM customers WHERE customer_id = $1 LIMIT 1`
	var c models.Customer
	if err := r.db.Get(&c, q, customerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new customer row.
func (r *CustomerRepository) Create(c *models.Customer) error {
	const q = `
        INSERT INTO customers (full_name, phone, address, due_date, amount_owed, status, loyalty_points)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING customer_id, created_at`
	return r.db.QueryRow(q,
		c.FullName, c.Phone, c.Address, c.DueDate, c.AmountOwed, c.Status, c.LoyaltyPoints,
	).Scan(&c.CustomerID, &c.CreatedAt)
}

// Delete removes a customer.
func (r *CustomerRepository) Delete(customerID string) error {
	const q = `DELETE FROM customers WHERE customer_id = $1`
	_, err := r.db.Exec(q, customerID)
	return err
}

// RecordPayment reduces a customer's debt by the paid amount, flooring at
// zero, and flips status to paid exactly when nothing remains owed. The
// whole adjustment happens in one conditional statement so concurrent
// corrections cannot drive the balance negative.
func (r *CustomerRepository) RecordPayment(customerID string, amount float64) (*models.Customer, error) {
	const q = `
        UPDATE customers SET
            amount_owed = GREATEST(amount_owed - $2, 0),
            status = CASE WHEN GREATEST(amount_owed - $2, 0) = 0 THEN 'paid' ELSE 'unpaid' END
        WHERE customer_id = $1
        RETURNING *`
	var c models.Customer
	if err := r.db.Get(&c, q, customerID, amount); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}
