package domain

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	MaxEmailLength        = 128
	MaxUsernameLength     = 32
	PasswordHashLength    = 97
	ActivationTokenLength = 32

	passwordHashAlgorithm = "argon2i"
)

var validate = validator.New()

// User is a registered account. Fields are only reachable through accessors so
// that every value stored has passed validation.
type User struct {
	id              uuid.UUID
	activationToken *string
	email           string
	passwordHash    string
	username        string
}

// NewUser validates every field and returns the first failure.
func NewUser(id any, activationToken *string, email, passwordHash, username string) (*User, error) {
	u := &User{}

	uid, err := identifierField("userId", id)
	if err != nil {
		return nil, err
	}
	u.id = uid

	if err := u.SetActivationToken(activationToken); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.SetPasswordHash(passwordHash); err != nil {
		return nil, err
	}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) ID() uuid.UUID { return u.id }

// ActivationToken returns a copy of the token, or nil once the account is active.
func (u *User) ActivationToken() *string {
	if u.activationToken == nil {
		return nil
	}
	t := *u.activationToken
	return &t
}

func (u *User) Activated() bool { return u.activationToken == nil }

func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Username() string     { return u.username }

func (u *User) SetActivationToken(token *string) error {
	if token == nil {
		u.activationToken = nil
		return nil
	}
	t, err := ValidateActivationToken(*token)
	if err != nil {
		return err
	}
	u.activationToken = &t
	return nil
}

func (u *User) ClearActivationToken() { u.activationToken = nil }

func (u *User) SetEmail(email string) error {
	e, err := ValidateEmail(email)
	if err != nil {
		return err
	}
	u.email = e
	return nil
}

func (u *User) SetPasswordHash(hash string) error {
	h, err := ValidatePasswordHash(hash)
	if err != nil {
		return err
	}
	u.passwordHash = h
	return nil
}

func (u *User) SetUsername(username string) error {
	n, err := ValidateUsername(username)
	if err != nil {
		return err
	}
	u.username = n
	return nil
}

// MarshalJSON never emits the password hash or the activation token.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		UserID       string `json:"userId"`
		UserEmail    string `json:"userEmail"`
		UserUsername string `json:"userUsername"`
	}{
		UserID:       u.id.String(),
		UserEmail:    u.email,
		UserUsername: u.username,
	})
}

// ValidateActivationToken requires exactly 32 lowercase hex characters.
func ValidateActivationToken(token string) (string, error) {
	if len(token) != ActivationTokenLength {
		return "", invalidField("userActivationToken", "must be 32 characters", nil)
	}
	for i := 0; i < len(token); i++ {
		c := token[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", invalidField("userActivationToken", "must be lowercase hexadecimal", nil)
		}
	}
	return token, nil
}

func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalidField("userEmail", "is empty or insecure", nil)
	}
	if len(email) > MaxEmailLength {
		return "", invalidField("userEmail", "is too large", nil)
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", invalidField("userEmail", "is empty or insecure", err)
	}
	return email, nil
}

func ValidatePasswordHash(hash string) (string, error) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", invalidField("userHash", "is empty or insecure", nil)
	}
	if hashAlgorithm(hash) != passwordHashAlgorithm {
		return "", invalidField("userHash", "is not a valid hash", nil)
	}
	if len(hash) != PasswordHashLength {
		return "", invalidField("userHash", "must be 97 characters", nil)
	}
	return hash, nil
}

func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(sanitizeText(strings.TrimSpace(username)))
	if username == "" {
		return "", invalidField("userUsername", "is empty or insecure", nil)
	}
	if len(username) > MaxUsernameLength {
		return "", invalidField("userUsername", "has too many characters", nil)
	}
	return username, nil
}

// hashAlgorithm reads the algorithm tag of a PHC-formatted hash
// ("$argon2i$v=19$..."). It returns "" when the string carries no tag.
func hashAlgorithm(hash string) string {
	if !strings.HasPrefix(hash, "$") {
		return ""
	}
	alg, rest, ok := strings.Cut(hash[1:], "$")
	if !ok || rest == "" {
		return ""
	}
	return alg
}

func sanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case r == '\'', r == '"', r == '`', r == '<', r == '>':
			return -1
		}
		return r
	}, s)
}
