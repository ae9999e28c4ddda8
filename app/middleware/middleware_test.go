package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/azafe/Bandidos-backend/app/middleware"

	"github.com/labstack/echo/v4"
)

func newEcho(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(mw...)
	e.POST("/auth/forgot-password", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
	return e
}

func doPost(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", strings.NewReader(`{}`))
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP(t *testing.T) {
	e := newEcho(middleware.RateLimitByIP(2, time.Minute))

	for i := 0; i < 2; i++ {
		if rec := doPost(e, "10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec := doPost(e, "10.0.0.1:5001")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"too many requests"`) {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	if rec = doPost(e, "10.0.0.2:5000"); rec.Code != http.StatusOK {
		t.Fatalf("expected other clients to be unaffected, got %d", rec.Code)
	}
}

func TestRateLimitByIPDisabled(t *testing.T) {
	e := newEcho(middleware.RateLimitByIP(0, time.Minute))

	for i := 0; i < 5; i++ {
		if rec := doPost(e, "10.0.0.1:5000"); rec.Code != http.StatusOK {
			t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
		}
	}
}

func TestSecureHeaders(t *testing.T) {
	e := newEcho(middleware.SecureHeaders())
	rec := doPost(e, "10.0.0.1:5000")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
	if got := rec.Header().Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("expected no-referrer, got %q", got)
	}
}
