package notifier

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/azafe/Bandidos-backend/config"
)

const (
	smtpDialTimeout    = 10 * time.Second
	defaultSMTPTimeout = 30 * time.Second
)

type SMTPNotifier struct {
	cfg       config.SMTPConfig
	from      string
	tlsConfig *tls.Config
	now       func() time.Time
}

func NewSMTPNotifier(cfg config.SMTPConfig, from string) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:       cfg,
		from:      from,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		now:       time.Now,
	}
}

func (n *SMTPNotifier) SendResetEmail(ctx context.Context, to, resetLink string) error {
	msg, err := NewResetMessage(n.from, to, resetLink).Bytes(n.now())
	if err != nil {
		return err
	}
	return n.send(ctx, to, msg)
}

func (n *SMTPNotifier) send(ctx context.Context, to string, msg []byte) error {
	if n.cfg.Host == "" {
		return errors.New("smtp host is not configured")
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	var conn net.Conn
	var err error
	if n.cfg.Secure {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: n.tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	// The whole session is bounded even when ctx carries no deadline.
	timeout := n.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if !n.cfg.Secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err = c.StartTLS(n.tlsConfig); err != nil {
				return err
			}
		}
	}

	if n.cfg.User != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err = c.Auth(smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)); err != nil {
				return err
			}
		}
	}

	if err = c.Mail(n.from); err != nil {
		return err
	}
	if err = c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
