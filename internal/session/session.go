// Package session holds the per-visitor state that survives between
// requests: the signed-in user and the current anti-forgery token. Sessions
// are stored in an external key-value store keyed by an opaque id carried in
// a cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/auth"
)

const idBytes = 32

// ErrGone is returned when saving a loaded session whose stored copy has been
// removed, typically by a concurrent sign-out.
var ErrGone = errors.New("session no longer exists")

type Session struct {
	ID        string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	XSRFToken string    `json:"xsrf_token"`
	CreatedAt time.Time `json:"created_at"`

	isNew    bool
	modified bool
	staleID  string
}

// Store persists sessions. Get returns (nil, nil) for unknown ids. Save
// writes a new or rotated session unconditionally, but only overwrites a
// loaded one that still exists and returns ErrGone otherwise.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New returns an anonymous session. It is only persisted once modified.
func New() (*Session, error) {
	id, err := auth.NewRandomToken(idBytes)
	if err != nil {
		return nil, fmt.Errorf("session.New: %w", err)
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		isNew:     true,
	}, nil
}

func (s *Session) Authenticated() bool { return s.UserID != uuid.Nil }

// SignIn binds the session to a user and moves it to a fresh id so that an id
// planted before sign-in cannot be reused.
func (s *Session) SignIn(userID uuid.UUID) error {
	if err := s.rotate(); err != nil {
		return fmt.Errorf("SignIn: %w", err)
	}
	s.UserID = userID
	return nil
}

// SignOut clears the user and token but keeps the id.
func (s *Session) SignOut() {
	s.UserID = uuid.Nil
	s.XSRFToken = ""
	s.modified = true
}

// Destroy signs out and moves the visitor to a fresh anonymous id. The old
// id is recorded as stale so the store drops it on the next save.
func (s *Session) Destroy() error {
	if err := s.rotate(); err != nil {
		return fmt.Errorf("Destroy: %w", err)
	}
	s.SignOut()
	s.CreatedAt = time.Now().UTC()
	return nil
}

func (s *Session) rotate() error {
	id, err := auth.NewRandomToken(idBytes)
	if err != nil {
		return err
	}
	if !s.isNew && s.staleID == "" {
		s.staleID = s.ID
	}
	s.ID = id
	s.modified = true
	return nil
}

func (s *Session) SetXSRFToken(token string) {
	s.XSRFToken = token
	s.modified = true
}

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) Modified() bool { return s.modified }

// StaleID returns the id the session had before SignIn or Destroy rotated
// it, if any.
func (s *Session) StaleID() string { return s.staleID }

// IDChanged reports whether the client must be sent a new cookie.
func (s *Session) IDChanged() bool { return s.isNew || s.staleID != "" }

// MarkSaved resets the change tracking after the store accepted the session.
func (s *Session) MarkSaved() {
	s.isNew = false
	s.modified = false
	s.staleID = ""
}
