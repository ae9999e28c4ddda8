package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Worker wraps the asynq server that drains the email queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

type WorkerConfig struct {
	RedisOpts   asynq.RedisConnOpt
	Concurrency int
	Sender      ResetEmailSender
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.RedisOpts == nil {
		return nil, errors.New("worker: redis options are required")
	}
	if cfg.Sender == nil {
		return nil, errors.New("worker: email sender is required")
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueDefault: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logrus.WithError(err).WithField("task_type", task.Type()).Warn("task failed")
		}),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePasswordResetEmail, NewPasswordResetEmailHandler(cfg.Sender))

	return &Worker{server: srv, mux: mux}, nil
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

func (c *Client) EnqueuePasswordResetEmail(ctx context.Context, payload PasswordResetEmailPayload) (*asynq.TaskInfo, error) {
	task, err := NewPasswordResetEmailTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task)
}

func (c *Client) Close() error {
	return c.client.Close()
}

// RedisOpts parses a redis:// URL into asynq connection options.
func RedisOpts(redisURL string) (asynq.RedisConnOpt, error) {
	return asynq.ParseRedisURI(redisURL)
}
