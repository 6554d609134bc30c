package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// NewActivationToken returns 32 lowercase hex characters.
func NewActivationToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("NewActivationToken: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewRandomToken returns n random bytes, URL-safe base64 encoded. Used for
// session ids and anti-forgery tokens.
func NewRandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("NewRandomToken: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
