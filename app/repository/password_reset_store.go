package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/azafe/Bandidos-backend/app/entity"

	"github.com/google/uuid"
)

const ReasonInvalidOrExpired = "invalid_or_expired"

type CreateResetTokenParams struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
}

type ConsumeParams struct {
	TokenHash       string
	NewPasswordHash string
	Now             time.Time
}

// ConsumeResult carries the outcome of a redemption. UserID is set whenever a
// token record was matched, including failed redemptions.
type ConsumeResult struct {
	OK     bool
	Reason string
	UserID string
}

type PasswordResetStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func NewPasswordResetStore(db *sql.DB, dialect Dialect) *PasswordResetStore {
	return &PasswordResetStore{db: db, dialect: dialect, now: time.Now}
}

func (s *PasswordResetStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	return NewUserRepository(s.db, s.dialect).FindByEmail(ctx, email)
}

func (s *PasswordResetStore) CreateResetToken(ctx context.Context, params CreateResetTokenParams) (*entity.ResetToken, error) {
	token := &entity.ResetToken{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		TokenHash: params.TokenHash,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: s.now(),
	}

	if err := NewResetTokenRepository(s.db, s.dialect).Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *PasswordResetStore) ConsumeResetToken(ctx context.Context, params ConsumeParams) (*ConsumeResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txTokenRepo := NewResetTokenRepository(tx, s.dialect)

	token, err := txTokenRepo.FindLatestByHashForUpdate(ctx, params.TokenHash)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired}, nil
	}
	if !token.IsValidAt(params.Now) {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired, UserID: token.UserID}, nil
	}

	rows, err := NewUserRepository(tx, s.dialect).UpdatePasswordHash(ctx, token.UserID, params.NewPasswordHash)
	if err != nil {
		return nil, err
	}
	// The token outlived its user.
	if rows == 0 {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired, UserID: token.UserID}, nil
	}

	rows, err = txTokenRepo.MarkUsed(ctx, token.ID, params.Now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired, UserID: token.UserID}, nil
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &ConsumeResult{OK: true, UserID: token.UserID}, nil
}

func (s *PasswordResetStore) InsertAuditLog(ctx context.Context, entry *entity.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	return NewAuditLogRepository(s.db, s.dialect).Insert(ctx, entry)
}

func (s *PasswordResetStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
