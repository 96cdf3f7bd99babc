package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// AuditRepository appends and lists terminal audit entries.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log appends one audit entry.
func (r *AuditRepository) Log(userID, action string) error {
	const q = `INSERT INTO audit_logs (user_id, action) VALUES ($1, $2)`
	_, err := r.db.Exec(q, userID, action)
	return err
}

// GetAll returns audit entries, most recent first.
func (r *AuditRepository) GetAll() ([]models.AuditLog, error) {
	const q = `SELECT * FROM audit_logs ORDER BY timestamp DESC`
	var list []models.AuditLog
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}
