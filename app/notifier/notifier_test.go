package notifier_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/azafe/Bandidos-backend/app/jobs"
	"github.com/azafe/Bandidos-backend/app/notifier"
	"github.com/azafe/Bandidos-backend/config"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const resetLink = "https://miapp.com/reset-password?token=abc123"

func TestNewResetMessage(t *testing.T) {
	msg := notifier.NewResetMessage("no-reply@miapp.com", "a@b.com", resetLink)

	if msg.Subject != "Restablecer contraseña" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "Usa este link para continuar: "+resetLink) {
		t.Fatalf("text body is missing the link: %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, `<a href="https://miapp.com/reset-password?token=abc123">`) {
		t.Fatalf("html body is missing the link: %q", msg.HTML)
	}

	raw, err := msg.Bytes(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	rendered := string(raw)
	for _, want := range []string{
		"From: no-reply@miapp.com\r\n",
		"To: a@b.com\r\n",
		"Subject: =?utf-8?q?Restablecer_contrase=C3=B1a?=\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/alternative;",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Type: text/html; charset=UTF-8",
	} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("rendered message is missing %q:\n%s", want, rendered)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := notifier.NewLogNotifier(logger)

	if err := n.SendResetEmail(context.Background(), "a@b.com", resetLink); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel {
		t.Fatalf("expected an info entry, got %+v", entry)
	}
	if entry.Data["to"] != "a@b.com" || entry.Data["reset_link"] != resetLink {
		t.Fatalf("unexpected fields: %+v", entry.Data)
	}
}

type fakeEnqueuer struct {
	payloads []jobs.PasswordResetEmailPayload
	err      error
}

func (f *fakeEnqueuer) EnqueuePasswordResetEmail(_ context.Context, payload jobs.PasswordResetEmailPayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueDefault, Type: jobs.TaskTypePasswordResetEmail}, nil
}

func TestQueueNotifier(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	n := notifier.NewQueueNotifier(enqueuer)

	if err := n.SendResetEmail(context.Background(), "a@b.com", resetLink); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(enqueuer.payloads) != 1 || enqueuer.payloads[0].To != "a@b.com" || enqueuer.payloads[0].ResetLink != resetLink {
		t.Fatalf("unexpected payloads: %+v", enqueuer.payloads)
	}

	enqueuer.err = errors.New("redis down")
	if err := n.SendResetEmail(context.Background(), "a@b.com", resetLink); err == nil {
		t.Fatalf("expected enqueue error to surface")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.EmailConfig
		enqueuer notifier.ResetEmailEnqueuer
		wantType string
		wantErr  bool
	}{
		{name: "log", cfg: config.EmailConfig{Provider: config.EmailProviderLog}, wantType: "*notifier.LogNotifier"},
		{name: "smtp", cfg: config.EmailConfig{Provider: config.EmailProviderSMTP, SMTP: config.SMTPConfig{Host: "smtp.example.com", Port: 587}}, wantType: "*notifier.SMTPNotifier"},
		{name: "smtp without host", cfg: config.EmailConfig{Provider: config.EmailProviderSMTP}, wantType: "*notifier.LogNotifier"},
		{name: "queue", cfg: config.EmailConfig{Provider: config.EmailProviderQueue}, enqueuer: &fakeEnqueuer{}, wantType: "*notifier.QueueNotifier"},
		{name: "queue without client", cfg: config.EmailConfig{Provider: config.EmailProviderQueue}, wantErr: true},
		{name: "unknown", cfg: config.EmailConfig{Provider: "carrier-pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := notifier.New(tt.cfg, tt.enqueuer)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("new failed: %v", err)
			}
			if got := typeName(sender); got != tt.wantType {
				t.Fatalf("expected %s, got %s", tt.wantType, got)
			}
		})
	}
}

func typeName(sender notifier.Sender) string {
	switch sender.(type) {
	case *notifier.LogNotifier:
		return "*notifier.LogNotifier"
	case *notifier.SMTPNotifier:
		return "*notifier.SMTPNotifier"
	case *notifier.QueueNotifier:
		return "*notifier.QueueNotifier"
	}
	return "unknown"
}

// fakeSMTPServer accepts one plain-text session and returns the DATA section.
func fakeSMTPServer(t *testing.T) (string, int, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }
		reply("220 localhost ESMTP")
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"):
				reply("250-localhost")
				reply("250 8BITMIME")
			case strings.HasPrefix(cmd, "MAIL FROM"), strings.HasPrefix(cmd, "RCPT TO"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				var body strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					body.WriteString(l)
				}
				data <- body.String()
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 not implemented")
			}
		}
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port, data
}

func TestSMTPNotifier(t *testing.T) {
	host, port, data := fakeSMTPServer(t)

	n := notifier.NewSMTPNotifier(config.SMTPConfig{Host: host, Port: port}, "no-reply@miapp.com")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.SendResetEmail(ctx, "a@b.com", resetLink); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case body := <-data:
		if !strings.Contains(body, "To: a@b.com") || !strings.Contains(body, resetLink) {
			t.Fatalf("unexpected message body:\n%s", body)
		}
	case <-time.After(time.Second):
		t.Fatalf("server did not receive the message")
	}
}

// stallingSMTPServer greets and then never answers another command.
func stallingSMTPServer(t *testing.T) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		_, _ = conn.Write([]byte("220 localhost ESMTP\r\n"))
		_, _ = io.Copy(io.Discard, conn)
	}()

	host, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func TestSMTPNotifierStalledServerTimesOut(t *testing.T) {
	host, port := stallingSMTPServer(t)

	n := notifier.NewSMTPNotifier(config.SMTPConfig{Host: host, Port: port, Timeout: 200 * time.Millisecond}, "no-reply@miapp.com")

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.SendResetEmail(context.Background(), "a@b.com", resetLink)
	}()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected timeout error from stalled server")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("send did not return after the session timeout")
	}
}

func TestSMTPNotifierStalledServerHonoursCancel(t *testing.T) {
	host, port := stallingSMTPServer(t)

	n := notifier.NewSMTPNotifier(config.SMTPConfig{Host: host, Port: port, Timeout: time.Minute}, "no-reply@miapp.com")
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.SendResetEmail(ctx, "a@b.com", resetLink)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected error after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("send did not return after cancellation")
	}
}

func TestSMTPNotifierRequiresHost(t *testing.T) {
	n := notifier.NewSMTPNotifier(config.SMTPConfig{Port: 587}, "no-reply@miapp.com")
	if err := n.SendResetEmail(context.Background(), "a@b.com", resetLink); err == nil {
		t.Fatalf("expected error without host")
	}
}
