package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/azafe/Bandidos-backend/app/entity"

	"github.com/google/uuid"
)

// MemoryStore keeps users, reset tokens and audit entries in process. Token
// consumption is a compare-and-swap under the store mutex, which gives the
// same single-winner guarantee as the row lock in PasswordResetStore.
type MemoryStore struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	tokens []*entity.ResetToken
	audits []entity.AuditLog
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*entity.User),
		now:   time.Now,
	}
}

func (s *MemoryStore) AddUser(user entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = &user
}

func (s *MemoryStore) UserByID(id string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			u := *user
			return &u
		}
	}
	return nil
}

func (s *MemoryStore) Tokens() []entity.ResetToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.ResetToken, 0, len(s.tokens))
	for _, token := range s.tokens {
		out = append(out, *token)
	}
	return out
}

func (s *MemoryStore) AuditLogs() []entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

func (s *MemoryStore) CreateResetToken(_ context.Context, params CreateResetTokenParams) (*entity.ResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := &entity.ResetToken{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		TokenHash: params.TokenHash,
		ExpiresAt: params.ExpiresAt,
		CreatedAt: s.now(),
	}
	s.tokens = append(s.tokens, token)

	created := *token
	return &created, nil
}

func (s *MemoryStore) ConsumeResetToken(_ context.Context, params ConsumeParams) (*ConsumeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *entity.ResetToken
	for _, token := range s.tokens {
		if token.TokenHash != params.TokenHash {
			continue
		}
		// Later inserts win ties on created_at.
		if latest == nil || !token.CreatedAt.Before(latest.CreatedAt) {
			latest = token
		}
	}

	if latest == nil {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired}, nil
	}
	if !latest.IsValidAt(params.Now) {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired, UserID: latest.UserID}, nil
	}

	var owner *entity.User
	for _, user := range s.users {
		if user.ID == latest.UserID {
			owner = user
		}
	}
	if owner == nil {
		return &ConsumeResult{Reason: ReasonInvalidOrExpired, UserID: latest.UserID}, nil
	}
	owner.PasswordHash = params.NewPasswordHash
	latest.UsedAt = sql.NullTime{Time: params.Now, Valid: true}

	return &ConsumeResult{OK: true, UserID: latest.UserID}, nil
}

func (s *MemoryStore) InsertAuditLog(_ context.Context, entry *entity.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.audits = append(s.audits, *entry)
	return nil
}
