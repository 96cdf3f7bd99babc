package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// ChargeRepository handles data access for initiated mobile-money charges.
// PendingCharge rows are write-once; a settled charge is superseded by its
// Sale rows and only consulted afterwards for audit.
type ChargeRepository struct {
	db *sqlx.DB
}

// NewChargeRepository creates a new ChargeRepository.
func NewChargeRepository(db *sqlx.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

// Create inserts a pending charge record.
func (r *ChargeRepository) Create(c *models.PendingCharge) error {
	const q = `
        INSERT INTO pending_charges (correlation_ref, phone, amount)
        VALUES ($1, $2, $3)
        RETURNING created_at`
	return r.db.QueryRow(q, c.CorrelationRef, c.Phone, c.Amount).Scan(&c.CreatedAt)
}

// GetByRef returns the charge for a correlation reference.
func (r *ChargeRepository) GetByRef(correlationRef string) (*models.PendingCharge, error) {
	const q = `SELECT * FROM pending_charges WHERE correlation_ref = $1 LIMIT 1`
	var c models.PendingCharge
	if err := r.db.Get(&c, q, correlationRef); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}
