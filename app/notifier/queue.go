package notifier

import (
	"context"

	"github.com/azafe/Bandidos-backend/app/jobs"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

type ResetEmailEnqueuer interface {
	EnqueuePasswordResetEmail(ctx context.Context, payload jobs.PasswordResetEmailPayload) (*asynq.TaskInfo, error)
}

// QueueNotifier hands the reset email to the worker through asynq.
type QueueNotifier struct {
	client ResetEmailEnqueuer
}

func NewQueueNotifier(client ResetEmailEnqueuer) *QueueNotifier {
	return &QueueNotifier{client: client}
}

func (n *QueueNotifier) SendResetEmail(ctx context.Context, to, resetLink string) error {
	info, err := n.client.EnqueuePasswordResetEmail(ctx, jobs.PasswordResetEmailPayload{
		To:        to,
		ResetLink: resetLink,
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"task_id": info.ID,
		"queue":   info.Queue,
	}).Debug("password reset email enqueued")
	return nil
}
