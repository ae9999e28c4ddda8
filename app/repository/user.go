package repository

import (
	"context"
	"database/sql"

	"github.com/azafe/Bandidos-backend/app/entity"
)

type UserRepository struct {
	db      DBTX
	dialect Dialect
}

func NewUserRepository(db DBTX, dialect Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, email, password_hash FROM users WHERE email = ?`

	user := &entity.User{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) (int64, error) {
	query := `UPDATE users SET password_hash = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), passwordHash, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
