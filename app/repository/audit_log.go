package repository

import (
	"context"

	"github.com/azafe/Bandidos-backend/app/entity"
)

type AuditLogRepository struct {
	db      DBTX
	dialect Dialect
}

func NewAuditLogRepository(db DBTX, dialect Dialect) *AuditLogRepository {
	return &AuditLogRepository{db: db, dialect: dialect}
}

func (r *AuditLogRepository) Insert(ctx context.Context, entry *entity.AuditLog) error {
	query := `
		INSERT INTO auth_audit_logs (id, event_type, user_id, email, ip, user_agent, success, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		entry.ID,
		entry.EventType,
		entry.UserID,
		entry.Email,
		entry.IP,
		entry.UserAgent,
		entry.Success,
		entry.Detail,
		entry.CreatedAt,
	)
	return err
}
