package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// AlertRepository handles data access for operational alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// GetAll returns alerts, most recent first.
func (r *AlertRepository) GetAll() ([]models.Alert, error) {
	const q = `SELECT * FROM alerts ORDER BY date DESC`
	var list []models.Alert
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateIfAbsent inserts an alert unless an unseen alert with the same type
// and reference already exists. The dedup check and the insert happen in one
// statement so repeated triggers cannot race each other into duplicates.
// Returns true when a new alert was written.
func (r *AlertRepository) CreateIfAbsent(alertType models.AlertType, referenceID, message string) (bool, error) {
	const q = `
        INSERT INTO alerts (type, reference_id, message, seen)
        SELECT $1, $2, $3, false
        WHERE NOT EXISTS (
            SELECT 1 FROM alerts
            WHERE type = $1 AND reference_id = $2 AND seen = false
        )`
	res, err := r.db.Exec(q, alertType, referenceID, message)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSeen marks a single alert as seen.
func (r *AlertRepository) MarkSeen(alertID string) error {
	const q = `UPDATE alerts SET seen = true WHERE alert_id = $1`
	_, err := r.db.Exec(q, alertID)
	return err
}
