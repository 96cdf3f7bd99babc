package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// SaleRepository handles data access for sale lines and their settlement.
type SaleRepository struct {
	db *sqlx.DB
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// GetAll returns all sales, most recent first.
func (r *SaleRepository) GetAll() ([]models.Sale, error) {
	const q = `SELECT * FROM sales ORDER BY date DESC`
	var list []models.Sale
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByPaymentRef returns all sale lines sharing one payment reference.
// A basket creates one line per product, all under the same ref.
func (r *SaleRepository) GetByPaymentRef(paymentRef string) ([]models.Sale, error) {
	const q = `SELECT * FROM sales WHERE payment_ref = $1 ORDER BY date ASC`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var list []models.Sale
	if err := stmt.Select(&list, paymentRef); err != nil {
		return nil, err
	}
	return list, nil
}

// SettleByPaymentRef raises amount_paid on every line under the reference.
// The update is conditional: amount_paid only ever goes up, so replaying the
// same callback is a no-op and a stale lower amount can never clobber a
// settlement. The receipt number is recorded for audit but payment_ref is
// left untouched; the initiating terminal is still polling on it.
// Returns the number of rows actually raised.
func (r *SaleRepository) SettleByPaymentRef(paymentRef string, amount float64, receipt *string) (int64, error) {
	const q = `
        UPDATE sales SET
            amount_paid = $2,
            mpesa_receipt = COALESCE($3, mpesa_receipt)
        WHERE payment_ref = $1
          AND (amount_paid IS NULL OR amount_paid < $2)`
	res, err := r.db.Exec(q, paymentRef, amount, receipt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SettleBySaleID raises amount_paid on a single line, same monotonic
// contract as SettleByPaymentRef.
func (r *SaleRepository) SettleBySaleID(saleID string, amount float64, receipt *string) (int64, error) {
	const q = `
        UPDATE sales SET
            amount_paid = $2,
            mpesa_receipt = COALESCE($3, mpesa_receipt)
        WHERE sale_id = $1
          AND (amount_paid IS NULL OR amount_paid < $2)`
	res, err := r.db.Exec(q, saleID, amount, receipt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindUnpaidMpesaByAmount returns the most recent unpaid mpesa sale whose
// line total equals the given amount exactly. This is the fuzzy fallback
// used when a callback carries no correlation reference; it assumes at most
// one outstanding unpaid mpesa sale per distinct amount at a time.
func (r *SaleRepository) FindUnpaidMpesaByAmount(amount float64) (*models.Sale, error) {
	const q = `
        SELECT * FROM sales
        WHERE sale_type = 'mpesa'
          AND (amount_paid IS NULL OR amount_paid = 0)
          AND total_price = $1
        ORDER BY date DESC
        LIMIT 1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	var s models.Sale
	if err := stmt.Get(&s, amount); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &s, nil
}
