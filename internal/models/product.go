package models

// Product represents an item in the store catalog.
// Stock is never allowed below zero; decrements are conditional at the store
// level rather than checked only up front.
type Product struct {
	ProductID     string  `db:"product_id" json:"productId"`
	Name          string  `db:"name" json:"name"`
	Category      string  `db:"category" json:"category"`
	Unit          *string `db:"unit" json:"unit,omitempty"`
	Manufacturer  *string `db:"manufacturer" json:"manufacturer,omitempty"`
	Price         float64 `db:"price" json:"price"`
	BuyingPrice   float64 `db:"buying_price" json:"buyingPrice"`
	Stock         int     `db:"stock" json:"stock"`
	LowStockAlert int     `db:"low_stock_alert" json:"lowStockAlert"`
	ImageURL      *string `db:"image_url" json:"imageUrl,omitempty"`
}
