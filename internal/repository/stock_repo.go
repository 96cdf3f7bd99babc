package repository

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// StockRepository handles data access for deliveries and batches.
type StockRepository struct {
	db *sqlx.DB
}

// NewStockRepository creates a new StockRepository.
func NewStockRepository(db *sqlx.DB) *StockRepository {
	return &StockRepository{db: db}
}

// GetStockIns returns deliveries, most recent first.
func (r *StockRepository) GetStockIns() ([]models.StockIn, error) {
	const q = `SELECT * FROM stock_ins ORDER BY date DESC`
	var list []models.StockIn
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// GetBatches returns all stock batches.
func (r *StockRepository) GetBatches() ([]models.StockBatch, error) {
	const q = `SELECT * FROM stock_batches`
	var list []models.StockBatch
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// BatchWithProduct joins a batch with its product name for alert messages.
type BatchWithProduct struct {
	models.StockBatch
	ProductName string `db:"product_name"`
}

// GetExpiringBatches returns batches with remaining quantity whose expiry
// date falls before the given cutoff, soonest first.
func (r *StockRepository) GetExpiringBatches(cutoff time.Time) ([]BatchWithProduct, error) {
	const q = `
        SELECT b.*, p.name AS product_name
        FROM stock_batches b
        JOIN products p ON b.product_id = p.product_id
        WHERE b.quantity > 0 AND b.expiry_date < $1
        ORDER BY b.expiry_date ASC`
	var list []BatchWithProduct
	if err := r.db.Select(&list, q, cutoff); err != nil {
		return nil, err
	}
	return list, nil
}
