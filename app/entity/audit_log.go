package entity

import (
	"database/sql"
	"time"
)

const (
	AuditEventPasswordResetRequested = "password_reset_requested"
	AuditEventPasswordResetFailed    = "password_reset_failed"
	AuditEventPasswordResetCompleted = "password_reset_completed"
)

type AuditLog struct {
	ID        string
	EventType string
	UserID    sql.NullString
	Email     sql.NullString
	IP        sql.NullString
	UserAgent sql.NullString
	Success   bool
	Detail    sql.NullString
	CreatedAt time.Time
}
