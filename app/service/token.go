package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"

	"github.com/azafe/Bandidos-backend/config"
)

const resetTokenBytes = 32

var ErrInvalidURL = config.ErrInvalidURL

// GenerateToken returns 256 random bits as lowercase hex.
func GenerateToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// BuildResetLink sets the token query parameter on baseURL, replacing any
// existing value and keeping the other parameters.
func BuildResetLink(baseURL, token string) (string, error) {
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return "", err
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, err.Error())
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
