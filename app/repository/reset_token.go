package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/azafe/Bandidos-backend/app/entity"
)

type ResetTokenRepository struct {
	db      DBTX
	dialect Dialect
}

func NewResetTokenRepository(db DBTX, dialect Dialect) *ResetTokenRepository {
	return &ResetTokenRepository{db: db, dialect: dialect}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *entity.ResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

// FindLatestByHashForUpdate locks the most recently created token with the
// given hash. It must run inside a transaction for the lock to hold.
func (r *ResetTokenRepository) FindLatestByHashForUpdate(ctx context.Context, tokenHash string) (*entity.ResetToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens
		WHERE token_hash = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
		FOR UPDATE
	`
	token := &entity.ResetToken{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) (int64, error) {
	query := `UPDATE password_reset_tokens SET used_at = ? WHERE id = ? AND used_at IS NULL`
	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), usedAt, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
