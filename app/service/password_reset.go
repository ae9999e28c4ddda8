package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/azafe/Bandidos-backend/app/entity"
	"github.com/azafe/Bandidos-backend/app/repository"
	"github.com/azafe/Bandidos-backend/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const defaultEmailTimeout = 30 * time.Second

var (
	ErrWeakPassword          = errors.New("password does not meet policy requirements")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

type PasswordResetStore interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateResetToken(ctx context.Context, params repository.CreateResetTokenParams) (*entity.ResetToken, error)
	ConsumeResetToken(ctx context.Context, params repository.ConsumeParams) (*repository.ConsumeResult, error)
	InsertAuditLog(ctx context.Context, entry *entity.AuditLog) error
}

type ResetEmailSender interface {
	SendResetEmail(ctx context.Context, to, resetLink string) error
}

// ClientInfo identifies the caller of a reset operation for the audit trail.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type AsyncRunner func(task func())

type PasswordResetServiceOption func(*PasswordResetService)

type PasswordResetService struct {
	store        PasswordResetStore
	mailer       ResetEmailSender
	audit        *AuditLogger
	hasher       PasswordHasher
	policy       config.PasswordPolicy
	tokenTTL     time.Duration
	resetURLBase string
	now          func() time.Time
	asyncRunner  AsyncRunner
	emailTimeout time.Duration
	pending      sync.WaitGroup
}

func NewPasswordResetService(
	store PasswordResetStore,
	mailer ResetEmailSender,
	cfg *config.Config,
	opts ...PasswordResetServiceOption,
) *PasswordResetService {
	svc := &PasswordResetService{
		store:        store,
		mailer:       mailer,
		audit:        NewAuditLogger(store),
		hasher:       NewBcryptHasher(cfg.Password.HashCost),
		policy:       cfg.Password.Policy,
		tokenTTL:     cfg.Reset.TokenTTL,
		resetURLBase: cfg.Reset.URLBase,
		now:          time.Now,
		asyncRunner: func(task func()) {
			go task()
		},
		emailTimeout: defaultEmailTimeout,
	}
	if svc.tokenTTL <= 0 {
		svc.tokenTTL = time.Hour
	}
	if svc.resetURLBase == "" {
		svc.resetURLBase = config.DefaultResetURLBase
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithAsyncRunner(runner AsyncRunner) PasswordResetServiceOption {
	return func(s *PasswordResetService) {
		if runner != nil {
			s.asyncRunner = runner
		}
	}
}

// WithEmailTimeout bounds each background email delivery.
func WithEmailTimeout(timeout time.Duration) PasswordResetServiceOption {
	return func(s *PasswordResetService) {
		if timeout > 0 {
			s.emailTimeout = timeout
		}
	}
}

func WithClock(now func() time.Time) PasswordResetServiceOption {
	return func(s *PasswordResetService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithPasswordHasher(hasher PasswordHasher) PasswordResetServiceOption {
	return func(s *PasswordResetService) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// RequestReset issues a reset token for email and mails the link. It returns
// nil whether or not the account exists; only persistence failures surface.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string, client ClientInfo) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.audit.Record(ctx, &entity.AuditLog{
			EventType: entity.AuditEventPasswordResetRequested,
			Email:     nullString(email),
			IP:        nullString(client.IP),
			UserAgent: nullString(client.UserAgent),
			Success:   false,
			Detail:    nullString(AuditDetailEmailNotFound),
		})
		return nil
	}

	token, err := GenerateToken()
	if err != nil {
		return err
	}

	_, err = s.store.CreateResetToken(ctx, repository.CreateResetTokenParams{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: s.now().Add(s.tokenTTL),
	})
	if err != nil {
		return err
	}

	resetLink, err := BuildResetLink(s.resetURLBase, token)
	if err != nil {
		return err
	}

	detached := context.WithoutCancel(ctx)
	to := user.Email
	userID := user.ID
	s.runAsync(func() {
		mailCtx, cancel := context.WithTimeout(detached, s.emailTimeout)
		defer cancel()
		if sendErr := s.mailer.SendResetEmail(mailCtx, to, resetLink); sendErr != nil {
			logrus.WithError(sendErr).WithField("user_id", userID).Warn("failed to send reset email")
		}
	})

	s.audit.Record(ctx, &entity.AuditLog{
		EventType: entity.AuditEventPasswordResetRequested,
		UserID:    nullString(user.ID),
		Email:     nullString(user.Email),
		IP:        nullString(client.IP),
		UserAgent: nullString(client.UserAgent),
		Success:   true,
	})
	return nil
}

func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string, client ClientInfo) error {
	if err := s.policy.Validate(newPassword); err != nil {
		return s.rejectWeakPassword(ctx, client, err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return s.rejectWeakPassword(ctx, client, err)
	}
	if err != nil {
		return err
	}

	result, err := s.store.ConsumeResetToken(ctx, repository.ConsumeParams{
		TokenHash:       HashToken(token),
		NewPasswordHash: passwordHash,
		Now:             s.now(),
	})
	if err != nil {
		return err
	}

	if !result.OK {
		reason := result.Reason
		if reason == "" {
			reason = AuditDetailInvalidOrExpired
		}
		s.audit.Record(ctx, &entity.AuditLog{
			EventType: entity.AuditEventPasswordResetFailed,
			UserID:    nullString(result.UserID),
			IP:        nullString(client.IP),
			UserAgent: nullString(client.UserAgent),
			Success:   false,
			Detail:    nullString(reason),
		})
		return ErrInvalidOrExpiredToken
	}

	s.audit.Record(ctx, &entity.AuditLog{
		EventType: entity.AuditEventPasswordResetCompleted,
		UserID:    nullString(result.UserID),
		IP:        nullString(client.IP),
		UserAgent: nullString(client.UserAgent),
		Success:   true,
	})
	return nil
}

// Wait blocks until background email deliveries finish or ctx is done.
func (s *PasswordResetService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *PasswordResetService) runAsync(task func()) {
	s.pending.Add(1)
	s.asyncRunner(func() {
		defer s.pending.Done()
		task()
	})
}

func (s *PasswordResetService) rejectWeakPassword(ctx context.Context, client ClientInfo, cause error) error {
	s.audit.Record(ctx, &entity.AuditLog{
		EventType: entity.AuditEventPasswordResetFailed,
		IP:        nullString(client.IP),
		UserAgent: nullString(client.UserAgent),
		Success:   false,
		Detail:    nullString(AuditDetailWeakPassword),
	})
	return fmt.Errorf("%w: %s", ErrWeakPassword, cause.Error())
}
