package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
	"github.com/kinthithe/pos-api/internal/utils"
)

// LedgerRepository applies the multi-step commit units of the sale engine.
// Each unit runs inside one database transaction so a failure partway never
// leaves a sale row without its stock decrement or a delivery without its
// payable entry. Stock checks happen at decrement time via conditional
// updates, not only as a pre-check, so concurrent checkouts cannot oversell.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CustomerUpsert describes the customer-ledger side effect of one sale line.
type CustomerUpsert struct {
	FullName  string
	Phone     string
	Address   string
	AddDebt   float64 // non-zero only for credit sales
	AddPoints int
	DueDate   *time.Time
}

// RecordSaleUnit commits one priced sale line: conditional stock decrement,
// optional customer upsert keyed by phone, the sale insert, and a
// deduplicated low-stock alert. The caller supplies the priced line; stock
// availability is re-verified here under the row lock.
func (r *LedgerRepository) RecordSaleUnit(sale *models.Sale, customer *CustomerUpsert) (*models.Sale, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin sale unit: %w", err)
	}
	defer tx.Rollback()

	// 1. Decrement stock, refusing to go negative. RETURNING gives us the
	// post-decrement level for the low-stock evaluation without a re-read.
	const decQ = `
        UPDATE products SET stock = stock - $2
        WHERE product_id = $1 AND stock >= $2
        RETURNING stock, low_stock_alert, name`
	var after struct {
		Stock         int    `db:"stock"`
		LowStockAlert int    `db:"low_stock_alert"`
		Name          string `db:"name"`
	}
	if err := tx.Get(&after, decQ, sale.ProductID, sale.Quantity); err != nil {
		if err == sql.ErrNoRows {
			var exists bool
			if err := tx.Get(&exists, `SELECT EXISTS(SELECT 1 FROM products WHERE product_id = $1)`, sale.ProductID); err != nil {
				return nil, err
			}
			if !exists {
				return nil, utils.ErrProductNotFound
			}
			return nil, utils.ErrInsufficientStock
		}
		return nil, err
	}

	// 2. Customer upsert by phone. Credit sales add debt and force unpaid;
	// every sale with customer details merges loyalty points.
	if customer != nil && customer.Phone != "" {
		customerID, err := r.upsertCustomer(tx, customer)
		if err != nil {
			return nil, err
		}
		sale.CustomerID = &customerID
	}

	// 3. Insert the sale line.
	const insQ = `
        INSERT INTO sales (product_id, user_id, quantity, total_price, sale_type,
                           customer_id, payment_ref, amount_paid, change_amount, loyalty_points)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING sale_id, date`
	if err := tx.QueryRow(insQ,
		sale.ProductID, sale.UserID, sale.Quantity, sale.TotalPrice, sale.SaleType,
		sale.CustomerID, sale.PaymentRef, sale.AmountPaid, sale.ChangeAmount, sale.LoyaltyPoints,
	).Scan(&sale.SaleID, &sale.Date); err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	// 4. Low-stock alert, deduplicated on (type, reference_id, unseen).
	if after.Stock <= after.LowStockAlert {
		msg := fmt.Sprintf("Low stock for %s: only %d units remaining.", after.Name, after.Stock)
		if err := createAlertIfAbsent(tx, models.AlertLowStock, sale.ProductID, msg); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sale unit: %w", err)
	}
	return sale, nil
}

func (r *LedgerRepository) upsertCustomer(tx *sqlx.Tx, cu *CustomerUpsert) (string, error) {
	const getQ = `SELECT * FROM customers WHERE phone = $1 LIMIT 1 FOR UPDATE`
	var existing models.Customer
	err := tx.Get(&existing, getQ, cu.Phone)
	switch {
	case err == nil:
		const updQ = `
            UPDATE customers SET
                loyalty_points = loyalty_points + $2,
                amount_owed = amount_owed + $3,
                status = CASE WHEN amount_owed + $3 > 0 THEN 'unpaid' ELSE status END
            WHERE customer_id = $1`
		if _, err := tx.Exec(updQ, existing.CustomerID, cu.AddPoints, cu.AddDebt); err != nil {
			return "", fmt.Errorf("update customer ledger: %w", err)
		}
		return existing.CustomerID, nil
	case err == sql.ErrNoRows:
		status := models.CreditStatusPaid
		if cu.AddDebt > 0 {
			status = models.CreditStatusUnpaid
		}
		const insQ = `
            INSERT INTO customers (full_name, phone, address, due_date, amount_owed, status, loyalty_points)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            RETURNING customer_id`
		var id string
		if err := tx.QueryRow(insQ,
			cu.FullName, cu.Phone, cu.Address, cu.DueDate, cu.AddDebt, status, cu.AddPoints,
		).Scan(&id); err != nil {
			return "", fmt.Errorf("insert customer: %w", err)
		}
		return id, nil
	default:
		return "", err
	}
}

// RecordStockInUnit commits one distributor delivery: stock increment,
// delivery record, batch row, and the distributor payable increase. The
// product row lock keeps prev_stock/new_stock consistent under concurrent
// intake and checkout.
func (r *LedgerRepository) RecordStockInUnit(si *models.StockIn) (*models.StockIn, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin stock-in unit: %w", err)
	}
	defer tx.Rollback()

	const lockQ = `SELECT stock FROM products WHERE product_id = $1 FOR UPDATE`
	var prevStock int
	if err := tx.Get(&prevStock, lockQ, si.ProductID); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	si.PrevStock = prevStock
	si.NewStock = prevStock + si.QtyAccepted
	si.TotalCost = float64(si.QtyReceived) * si.UnitCost

	const incQ = `UPDATE products SET stock = $2 WHERE product_id = $1`
	if _, err := tx.Exec(incQ, si.ProductID, si.NewStock); err != nil {
		return nil, fmt.Errorf("increment stock: %w", err)
	}

	const insQ = `
        INSERT INTO stock_ins (reference_no, distributor_id, product_id, received_by,
                               qty_received, qty_accepted, qty_rejected, rejection_reason,
                               unit_cost, total_cost, prev_stock, new_stock,
                               delivery_note_no, invoice_no, mfg_date, expiry_date, batch_no)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING stock_in_id, date`
	if err := tx.QueryRow(insQ,
		si.ReferenceNo, si.DistributorID, si.ProductID, si.ReceivedBy,
		si.QtyReceived, si.QtyAccepted, si.QtyRejected, si.RejectionReason,
		si.UnitCost, si.TotalCost, si.PrevStock, si.NewStock,
		si.DeliveryNoteNo, si.InvoiceNo, si.MfgDate, si.ExpiryDate, si.BatchNo,
	).Scan(&si.StockInID, &si.Date); err != nil {
		return nil, fmt.Errorf("insert stock-in: %w", err)
	}

	const batchQ = `
        INSERT INTO stock_batches (product_id, quantity, mfg_date, expiry_date, batch_no)
        VALUES ($1,$2,$3,$4,$5)`
	if _, err := tx.Exec(batchQ, si.ProductID, si.QtyAccepted, si.MfgDate, si.ExpiryDate, si.BatchNo); err != nil {
		return nil, fmt.Errorf("insert stock batch: %w", err)
	}

	const owedQ = `
        UPDATE distributors SET
            total_owed = total_owed + $2,
            payment_status = 'unpaid'
        WHERE distributor_id = $1`
	res, err := tx.Exec(owedQ, si.DistributorID, si.TotalCost)
	if err != nil {
		return nil, fmt.Errorf("update distributor payable: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, utils.ErrDistributorNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit stock-in unit: %w", err)
	}
	return si, nil
}

// createAlertIfAbsent mirrors AlertRepository.CreateIfAbsent inside an open
// transaction.
func createAlertIfAbsent(tx *sqlx.Tx, alertType models.AlertType, referenceID, message string) error {
	const q = `
        INSERT INTO alerts (type, reference_id, message, seen)
        SELECT $1, $2, $3, false
        WHERE NOT EXISTS (
            SELECT 1 FROM alerts
            WHERE type = $1 AND reference_id = $2 AND seen = false
        )`
	_, err := tx.Exec(q, alertType, referenceID, message)
	return err
}
