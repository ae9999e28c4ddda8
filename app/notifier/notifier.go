package notifier

import (
	"context"
	"fmt"

	"github.com/azafe/Bandidos-backend/config"

	"github.com/sirupsen/logrus"
)

type Sender interface {
	SendResetEmail(ctx context.Context, to, resetLink string) error
}

// NewDirect builds the sender that talks to the mail provider itself. An
// smtp provider without a host degrades to logging, as does an empty one.
func NewDirect(cfg config.EmailConfig) Sender {
	if cfg.Provider == config.EmailProviderLog || cfg.SMTP.Host == "" {
		if cfg.Provider != config.EmailProviderLog {
			logrus.Warn("SMTP_HOST not configured, falling back to log email mode")
		}
		return NewLogNotifier(nil)
	}
	return NewSMTPNotifier(cfg.SMTP, cfg.From)
}

// New returns the sender used by the HTTP and gRPC processes. The queue
// provider requires an enqueuer; the worker then delivers with NewDirect.
func New(cfg config.EmailConfig, enqueuer ResetEmailEnqueuer) (Sender, error) {
	switch cfg.Provider {
	case config.EmailProviderLog, config.EmailProviderSMTP:
		return NewDirect(cfg), nil
	case config.EmailProviderQueue:
		if enqueuer == nil {
			return nil, fmt.Errorf("email provider %q requires a queue client", cfg.Provider)
		}
		return NewQueueNotifier(enqueuer), nil
	default:
		return nil, fmt.Errorf("unsupported EMAIL_PROVIDER %q", cfg.Provider)
	}
}
