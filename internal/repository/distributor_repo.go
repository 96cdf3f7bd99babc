package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// DistributorRepository handles data access for supplier payables.
type DistributorRepository struct {
	db *sqlx.DB
}

// NewDistributorRepository creates a new DistributorRepository.
func NewDistributorRepository(db *sqlx.DB) *DistributorRepository {
	return &DistributorRepository{db: db}
}

// GetAll returns distributors ordered by name.
func (r *DistributorRepository) GetAll() ([]models.Distributor, error) {
	const q = `SELECT * FROM distributors ORDER BY name`
	var list []models.Distributor
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns a distributor by ID.
func (r *DistributorRepository) GetByID(distributorID string) (*models.Distributor, error) {
	const q = `SELECT * FROM distributors WHERE distributor_id = $1 LIMIT 1`
	var d models.Distributor
	if err := r.db.Get(&d, q, distributorID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a new distributor with a clean payable ledger.
func (r *DistributorRepository) Create(d *models.Distributor) error {
	const q = `
        INSERT INTO distributors (name, kra_pin, phone, address, main_products, total_owed, payment_status)
        VALUES ($1,$2,$3,$4,$5,0,'paid')
        RETURNING distributor_id`
	return r.db.QueryRow(q, d.Name, d.KraPin, d.Phone, d.Address, d.MainProducts).Scan(&d.DistributorID)
}

// Update updates distributor contact details.
func (r *DistributorRepository) Update(d *models.Distributor) error {
	const q = `
        UPDATE distributors SET
            name = $2,
            kra_pin = $3,
            phone = $4,
            address = $5,
            main_products = $6
        WHERE distributor_id = $1`
	_, err := r.db.Exec(q, d.DistributorID, d.Name, d.KraPin, d.Phone, d.Address, d.MainProducts)
	return err
}

// Delete removes a distributor.
func (r *DistributorRepository) Delete(distributorID string) error {
	const q = `DELETE FROM distributors WHERE distributor_id = $1`
	_, err := r.db.Exec(q, distributorID)
	return err
}

// RecordPayment reduces what the store owes a distributor, flooring at zero.
// Status flips to paid exactly when the balance reaches zero.
func (r *DistributorRepository) RecordPayment(distributorID string, amount float64) (*models.Distributor, error) {
	const q = `
        UPDATE distributors SET
            total_owed = GREATEST(total_owed - $2, 0),
            payment_status = CASE WHEN GREATEST(total_owed - $2, 0) = 0 THEN 'paid' ELSE 'unpaid' END
        WHERE distributor_id = $1
        RETURNING *`
	var d models.Distributor
	if err := r.db.Get(&d, q, distributorID, amount); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &d, nil
}
