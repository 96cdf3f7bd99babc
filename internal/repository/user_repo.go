package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/kinthithe/pos-api/internal/models"
)

// UserRepository handles data access for terminal operator accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername returns an account by username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	const q = `SELECT * FROM users WHERE username = $1 LIMIT 1`
	var u models.User
	if err := r.db.Get(&u, q, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &u, nil
}

// GetAll returns accounts ordered by username.
func (r *UserRepository) GetAll() ([]models.User, error) {
	const q = `SELECT * FROM users ORDER BY username`
	var list []models.User
	if err := r.db.Select(&list, q); err != nil {
		return nil, err
	}
	return list, nil
}

// Create inserts a new account row.
func (r *UserRepository) Create(u *models.User) error {
	const q = `
        INSERT INTO users (username, full_name, password_hash, role, status, avatar_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING user_id, created_at`
	return r.db.QueryRow(q,
		u.Username, u.FullName, u.PasswordHash, u.Role, u.Status, u.AvatarURL,
	).Scan(&u.UserID, &u.CreatedAt)
}

// TouchLastLogin stamps the account's last successful login.
func (r *UserRepository) TouchLastLogin(userID string) error {
	const q = `UPDATE users SET last_login = NOW() WHERE user_id = $1`
	_, err := r.db.Exec(q, userID)
	return err
}

// Delete removes an account.
func (r *UserRepository) Delete(userID string) error {
	const q = `DELETE FROM users WHERE user_id = $1`
	_, err := r.db.Exec(q, userID)
	return err
}
