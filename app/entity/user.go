package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	FirstName    sql.NullString
	LastName     sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PasswordResetToken is a single-use, time-bounded grant permitting one
// password change without re-authentication. It references its owner by id
// only; the user row is resolved with an explicit lookup when needed.
type PasswordResetToken struct {
	ID        string
	UserID    uint64
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsExpired reports whether the token's expiry is in the past.
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
