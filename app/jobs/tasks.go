package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"
	// TaskTypePasswordResetEmail delivers a password reset link.
	TaskTypePasswordResetEmail = "email:password_reset"

	passwordResetEmailMaxRetry = 5
)

type PasswordResetEmailPayload struct {
	To        string `json:"to"`
	ResetLink string `json:"reset_link"`
}

// ResetEmailSender performs the actual delivery inside the worker.
type ResetEmailSender interface {
	SendResetEmail(ctx context.Context, to, resetLink string) error
}

func NewPasswordResetEmailTask(payload PasswordResetEmailPayload) (*asynq.Task, error) {
	if payload.To == "" || payload.ResetLink == "" {
		return nil, fmt.Errorf("password reset email: recipient and link are required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePasswordResetEmail, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(passwordResetEmailMaxRetry),
	), nil
}

func NewPasswordResetEmailHandler(sender ResetEmailSender) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PasswordResetEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
		if payload.To == "" || payload.ResetLink == "" {
			return fmt.Errorf("incomplete payload: %w", asynq.SkipRetry)
		}
		return sender.SendResetEmail(ctx, payload.To, payload.ResetLink)
	}
}
