package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/azafe/Bandidos-backend/app/controller"
	"github.com/azafe/Bandidos-backend/app/entity"
	"github.com/azafe/Bandidos-backend/app/repository"
	"github.com/azafe/Bandidos-backend/app/service"
	"github.com/azafe/Bandidos-backend/config"

	"github.com/labstack/echo/v4"
)

const validToken = "0123456789abcdef0123456789abcdef"

type stubResetService struct {
	requestErr error
	resetErr   error
	lastEmail  string
	lastToken  string
	lastClient service.ClientInfo
}

func (s *stubResetService) RequestReset(_ context.Context, email string, client service.ClientInfo) error {
	s.lastEmail, s.lastClient = email, client
	return s.requestErr
}

func (s *stubResetService) ResetPassword(_ context.Context, token, _ string, client service.ClientInfo) error {
	s.lastToken, s.lastClient = token, client
	return s.resetErr
}

type captureMailer struct {
	link string
}

func (m *captureMailer) SendResetEmail(_ context.Context, _, resetLink string) error {
	m.link = resetLink
	return nil
}

func newRouter(c *controller.PasswordResetController) *echo.Echo {
	e := echo.New()
	e.POST("/auth/forgot-password", c.ForgotPassword)
	e.POST("/auth/reset-password", c.ResetPassword)
	return e
}

func post(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "bandidos-web/1.0")
	req.RemoteAddr = "203.0.113.9:41000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestForgotPassword_AlwaysOK(t *testing.T) {
	svc := &stubResetService{}
	e := newRouter(controller.NewPasswordResetController(svc))

	rec := post(e, "/auth/forgot-password", `{"email":"missing@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["ok"] != true {
		t.Fatalf("unexpected body %v", body)
	}
	if svc.lastEmail != "missing@example.com" {
		t.Fatalf("unexpected email %q", svc.lastEmail)
	}
	if svc.lastClient.IP != "203.0.113.9" || svc.lastClient.UserAgent != "bandidos-web/1.0" {
		t.Fatalf("unexpected client info %+v", svc.lastClient)
	}
}

func TestForgotPassword_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "malformed json", body: `{"email":`, want: "invalid request body"},
		{name: "missing email", body: `{}`, want: "email is required"},
		{name: "invalid email", body: `{"email":"nope"}`, want: "email must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubResetService{}
			e := newRouter(controller.NewPasswordResetController(svc))

			rec := post(e, "/auth/forgot-password", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if body := decodeBody(t, rec); body["error"] != tt.want {
				t.Fatalf("expected error %q, got %v", tt.want, body["error"])
			}
			if svc.lastEmail != "" {
				t.Fatalf("service must not be called on invalid input")
			}
		})
	}
}

func TestForgotPassword_PersistenceError(t *testing.T) {
	e := newRouter(controller.NewPasswordResetController(&stubResetService{requestErr: errors.New("db down")}))

	rec := post(e, "/auth/forgot-password", `{"email":"a@b.com"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestResetPassword_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "weak password", err: fmt.Errorf("%w: too short", service.ErrWeakPassword), wantStatus: http.StatusBadRequest, wantError: service.ErrWeakPassword.Error() + ": too short"},
		{name: "invalid token", err: service.ErrInvalidOrExpiredToken, wantStatus: http.StatusBadRequest, wantError: "invalid or expired token"},
		{name: "unexpected", err: errors.New("deadlock"), wantStatus: http.StatusInternalServerError, wantError: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubResetService{resetErr: tt.err}
			e := newRouter(controller.NewPasswordResetController(svc))

			rec := post(e, "/auth/reset-password", `{"token":"`+validToken+`","new_password":"NuevaClave123"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			body := decodeBody(t, rec)
			if tt.wantError == "" {
				if body["ok"] != true {
					t.Fatalf("unexpected body %v", body)
				}
				return
			}
			if body["error"] != tt.wantError {
				t.Fatalf("expected error %q, got %v", tt.wantError, body["error"])
			}
		})
	}
}

func TestResetPassword_RejectsShortToken(t *testing.T) {
	svc := &stubResetService{}
	e := newRouter(controller.NewPasswordResetController(svc))

	rec := post(e, "/auth/reset-password", `{"token":"short","new_password":"NuevaClave123"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.lastToken != "" {
		t.Fatalf("service must not be called on invalid token")
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddUser(entity.User{ID: "user-1", Email: "a@b.com", PasswordHash: "original"})
	mailer := &captureMailer{}
	cfg := &config.Config{
		Reset:    config.ResetConfig{TokenTTL: time.Hour, URLBase: config.DefaultResetURLBase},
		Password: config.PasswordConfig{HashCost: 4, Policy: config.PasswordPolicy{MinLength: 8}},
	}
	svc := service.NewPasswordResetService(store, mailer, cfg,
		service.WithAsyncRunner(func(task func()) { task() }),
	)
	e := newRouter(controller.NewPasswordResetController(svc))

	if rec := post(e, "/auth/forgot-password", `{"email":"a@b.com"}`); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	link, err := url.Parse(mailer.link)
	if err != nil {
		t.Fatalf("invalid link %q: %v", mailer.link, err)
	}
	token := link.Query().Get("token")

	rec := post(e, "/auth/reset-password", `{"token":"`+token+`","new_password":"corta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for weak password, got %d", rec.Code)
	}

	rec = post(e, "/auth/reset-password", `{"token":"`+token+`","new_password":"`+strings.Repeat("a", 80)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlong password, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "72 bytes") {
		t.Fatalf("expected length limit in error, got %s", rec.Body.String())
	}

	rec = post(e, "/auth/reset-password", `{"token":"`+token+`","new_password":"NuevaClave123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = post(e, "/auth/reset-password", `{"token":"`+token+`","new_password":"NuevaClave123"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on reuse, got %d", rec.Code)
	}

	logs := store.AuditLogs()
	if len(logs) != 5 {
		t.Fatalf("expected 5 audit entries, got %d", len(logs))
	}
	if logs[0].IP.String != "203.0.113.9" {
		t.Fatalf("expected client ip in audit, got %q", logs[0].IP.String)
	}
}
