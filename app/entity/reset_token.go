package entity

import (
	"database/sql"
	"time"
)

type ResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    sql.NullTime
	CreatedAt time.Time
}

// IsValidAt reports whether the token can still be redeemed at now.
func (t *ResetToken) IsValidAt(now time.Time) bool {
	return !t.UsedAt.Valid && t.ExpiresAt.After(now)
}
