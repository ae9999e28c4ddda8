package notifier

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogNotifier writes the reset link to the application log instead of
// sending mail. Meant for local development.
type LogNotifier struct {
	logger logrus.FieldLogger
}

func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendResetEmail(_ context.Context, to, resetLink string) error {
	n.logger.WithFields(logrus.Fields{
		"to":         to,
		"reset_link": resetLink,
	}).Info("password reset email")
	return nil
}
