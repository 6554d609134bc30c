package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2i parameters. With a 16 byte salt and a 32 byte key the encoded hash
// is exactly 97 characters, which is what the users table stores.
const (
	argonMemory  uint32 = 1024
	argonTime    uint32 = 384
	argonThreads uint8  = 2
	argonSaltLen        = 16
	argonKeyLen  uint32 = 32
)

var (
	ErrMismatchedPassword = errors.New("password does not match hash")
	ErrUnsupportedHash    = errors.New("unsupported password hash")
)

var b64 = base64.RawStdEncoding

// HashPassword returns a PHC-formatted Argon2i hash:
// $argon2i$v=19$m=1024,t=384,p=2$<salt>$<key>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("HashPassword: %w", err)
	}

	key := argon2.Key([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2i$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// ComparePassword re-derives the key with the parameters embedded in hash.
func ComparePassword(hash, password string) error {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2i" {
		return fmt.Errorf("ComparePassword: %w", ErrUnsupportedHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return fmt.Errorf("ComparePassword: version: %w", ErrUnsupportedHash)
	}

	var (
		memory, iterations uint32
		threads            uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return fmt.Errorf("ComparePassword: params: %w", ErrUnsupportedHash)
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("ComparePassword: salt: %w", ErrUnsupportedHash)
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("ComparePassword: key: %w", ErrUnsupportedHash)
	}

	got := argon2.Key([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatchedPassword
	}
	return nil
}
