package model

import "time"

// RoleAdmin is the only role allowed into the back office.
const RoleAdmin = "ADMIN"

// User is a back office account (users table).
type User struct {
	ID           uint64    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"active" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// RefreshToken models an entry in the refresh_tokens table.  Only the
// SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
