package service

import (
	"context"
	"database/sql"

	"github.com/azafe/Bandidos-backend/app/entity"

	"github.com/sirupsen/logrus"
)

const (
	AuditDetailEmailNotFound    = "email_not_found"
	AuditDetailWeakPassword     = "weak_password"
	AuditDetailInvalidOrExpired = "invalid_or_expired"
)

type auditStore interface {
	InsertAuditLog(ctx context.Context, entry *entity.AuditLog) error
}

// AuditLogger writes security events on a best-effort basis. Record never
// fails; a store error is reported on the operational log and dropped.
type AuditLogger struct {
	store auditStore
}

func NewAuditLogger(store auditStore) *AuditLogger {
	return &AuditLogger{store: store}
}

func (a *AuditLogger) Record(ctx context.Context, entry *entity.AuditLog) {
	if err := a.store.InsertAuditLog(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": entry.EventType,
			"user_id":    entry.UserID.String,
			"success":    entry.Success,
		}).Warn("failed to write audit log")
	}
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
