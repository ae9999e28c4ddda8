package service_test

import (
	"errors"
	"net/url"
	"regexp"
	"testing"

	"github.com/azafe/Bandidos-backend/app/service"

	"golang.org/x/crypto/bcrypt"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateToken(t *testing.T) {
	first, err := service.GenerateToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := service.GenerateToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if !hexToken.MatchString(first) || !hexToken.MatchString(second) {
		t.Fatalf("expected 64 hex characters, got %q and %q", first, second)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
}

func TestHashToken(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := service.HashToken("abc"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if service.HashToken("abc") != service.HashToken("abc") {
		t.Fatalf("expected deterministic hash")
	}
	if service.HashToken("abc") == service.HashToken("abd") {
		t.Fatalf("expected different inputs to hash differently")
	}
}

func TestBuildResetLink(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{
			name: "plain base",
			base: "https://miapp.com/reset-password",
			want: "https://miapp.com/reset-password?token=abc123",
		},
		{
			name: "keeps existing params",
			base: "https://miapp.com/reset?lang=es",
			want: "https://miapp.com/reset?lang=es&token=abc123",
		},
		{
			name: "replaces stale token",
			base: "https://miapp.com/reset?token=old",
			want: "https://miapp.com/reset?token=abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.BuildResetLink(tt.base, "abc123")
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
			u, _ := url.Parse(got)
			if u.Query().Get("token") != "abc123" {
				t.Fatalf("expected token param in %s", got)
			}
		})
	}
}

func TestBuildResetLinkRejectsMalformedBase(t *testing.T) {
	for _, base := range []string{"", "not a url", "/relative/path", "http://[::1"} {
		if _, err := service.BuildResetLink(base, "abc"); !errors.Is(err, service.ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL for %q, got %v", base, err)
		}
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := service.NewBcryptHasher(4)
	hashed, err := hasher.Hash("NuevaClave123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if err = bcrypt.CompareHashAndPassword([]byte(hashed), []byte("NuevaClave123")); err != nil {
		t.Fatalf("expected hash to verify: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(hashed)); cost != 4 {
		t.Fatalf("expected cost 4, got %d", cost)
	}
	if got, _ := bcrypt.Cost([]byte(mustHash(t, service.NewBcryptHasher(0)))); got != bcrypt.DefaultCost {
		t.Fatalf("expected out-of-range cost to fall back to default, got %d", got)
	}
}

func mustHash(t *testing.T, hasher service.PasswordHasher) string {
	t.Helper()
	hashed, err := hasher.Hash("secret-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	return hashed
}
