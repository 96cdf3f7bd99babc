package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// ProductRepository handles data access for the product catalog.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetAll returns the catalog ordered by name.
func (r *ProductRepository) GetAll() ([]models.Product, error) {
	const q = `SELECT * FROM products ORDER BY name`
	var list []models.Product
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByID returns a product by its ID.
func (r *ProductRepository) GetByID(productID string) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE product_id = $1 LIMIT 1`
	var p models.Product
	if err := r.db.Get(&p, q, productID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product row.
func (r *ProductRepository) Create(p *models.Product) error {
	const q = `
        INSERT INTO products (name, category, unit, manufacturer, price, buying_price, stock, low_stock_alert, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING product_id`
	return r.db.QueryRow(q,
		p.Name, p.Category, p.Unit, p.Manufacturer, p.Price, p.BuyingPrice, p.Stock, p.LowStockAlert, p.ImageURL,
	).Scan(&p.ProductID)
}

// Update updates an existing product identified by product_id.
func (r *ProductRepository) Update(p *models.Product) error {
	const q = `
        UPDATE products SET
            name = $2,
            category = $3,
            unit = $4,
            manufacturer = $5,
            price = $6,
            buying_price = $7,
            stock = $8,
            low_stock_alert = $9,
            image_url = $10
        WHERE product_id = $1`
	_, err := r.db.Exec(q,
		p.ProductID, p.Name, p.Category, p.Unit, p.Manufacturer, p.Price, p.BuyingPrice, p.Stock, p.LowStockAlert, p.ImageURL,
	)
	return err
}

// Delete removes a product.
func (r *ProductRepository) Delete(productID string) error {
	const q = `DELETE FROM products WHERE product_id = $1`
	_, err := r.db.Exec(q, productID)
	return err
}
