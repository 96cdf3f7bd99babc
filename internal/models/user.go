package models

import "time"

// UserRole enumerates terminal access levels.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
)

// UserStatus enumerates account states.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
)

// User is a terminal operator account.
type User struct {
	UserID       string     `db:"user_id" json:"userId"`
	Username     string     `db:"username" json:"username"`
	FullName     *string    `db:"full_name" json:"fullName,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	AvatarURL    *string    `db:"avatar_url" json:"avatarUrl,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
}

// AuditLog is an append-only record of terminal actions.
type AuditLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Action    string    `db:"action" json:"action"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}
