// Package authz gates mutating requests before any storage access. A request
// passes four checks in order and stops at the first failure: a signed-in
// session, a matching anti-forgery token, a bearer token issued to the same
// user, and, when the resource has an owner, ownership.
package authz

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/auth"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/metrics"
	"github.com/gogitters/apcimap/internal/session"
)

const (
	XSRFHeader = "X-XSRF-TOKEN"
	XSRFCookie = "XSRF-TOKEN"

	xsrfTokenBytes = 32
)

type Step string

const (
	StepSession   Step = "session"
	StepXSRF      Step = "xsrf"
	StepBearer    Step = "bearer"
	StepOwnership Step = "ownership"
)

type Reason int

const (
	ReasonUnauthenticated Reason = iota + 1
	ReasonForbidden
)

func (r Reason) String() string {
	switch r {
	case ReasonUnauthenticated:
		return "unauthenticated"
	case ReasonForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Rejection is returned when a request fails a check.
type Rejection struct {
	Step   Step
	Reason Reason
}

func (e *Rejection) Error() string {
	return fmt.Sprintf("authorization rejected at %s: %s", e.Step, e.Reason)
}

func (e *Rejection) Status() int {
	if e.Reason == ReasonUnauthenticated {
		return http.StatusUnauthorized
	}
	return http.StatusForbidden
}

// Target describes the resource a request acts on. A zero Owner skips the
// ownership check.
type Target struct {
	Owner uuid.UUID
}

type Pipeline struct {
	jwtSecret    string
	secureCookie bool
}

func NewPipeline(jwtSecret string, secureCookie bool) *Pipeline {
	return &Pipeline{jwtSecret: jwtSecret, secureCookie: secureCookie}
}

// Authorize runs every check against r and returns the acting user's id.
// Safe methods are not checked; they are handed the session's anti-forgery
// token and the session user, if any, is returned.
func (p *Pipeline) Authorize(w http.ResponseWriter, r *http.Request, target Target) (uuid.UUID, error) {
	sess, ok := session.FromContext(r.Context())

	if isSafe(r.Method) {
		if ok {
			if err := p.IssueXSRF(w, sess); err != nil {
				return uuid.Nil, err
			}
			return sess.UserID, nil
		}
		return uuid.Nil, nil
	}

	if !ok || !sess.Authenticated() {
		return uuid.Nil, p.reject(r, StepSession, ReasonUnauthenticated)
	}
	userID := sess.UserID

	if !xsrfMatches(r, sess) {
		return uuid.Nil, p.reject(r, StepXSRF, ReasonForbidden)
	}

	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || raw == "" {
		return uuid.Nil, p.reject(r, StepBearer, ReasonForbidden)
	}
	claims, err := auth.ValidateToken(raw, p.jwtSecret)
	if err != nil || claims.UserID != userID {
		return uuid.Nil, p.reject(r, StepBearer, ReasonForbidden)
	}

	if target.Owner != uuid.Nil && target.Owner != userID {
		return uuid.Nil, p.reject(r, StepOwnership, ReasonForbidden)
	}

	return userID, nil
}

// VerifyXSRF runs the anti-forgery check alone, for mutating requests made
// before sign-in.
func (p *Pipeline) VerifyXSRF(r *http.Request) error {
	sess, ok := session.FromContext(r.Context())
	if !ok || !xsrfMatches(r, sess) {
		return p.reject(r, StepXSRF, ReasonForbidden)
	}
	return nil
}

// IssueXSRF hands the session's anti-forgery token to the client in a
// script-readable cookie, minting one only when the session has none. Reusing
// the token keeps concurrent page loads from invalidating each other.
func (p *Pipeline) IssueXSRF(w http.ResponseWriter, sess *session.Session) error {
	if sess.XSRFToken == "" {
		if err := mintXSRF(sess); err != nil {
			return fmt.Errorf("IssueXSRF: %w", err)
		}
	}
	p.setXSRFCookie(w, sess.XSRFToken)
	return nil
}

// RotateXSRF replaces the session's anti-forgery token. Used on sign-in.
func (p *Pipeline) RotateXSRF(w http.ResponseWriter, sess *session.Session) error {
	if err := mintXSRF(sess); err != nil {
		return fmt.Errorf("RotateXSRF: %w", err)
	}
	p.setXSRFCookie(w, sess.XSRFToken)
	return nil
}

func mintXSRF(sess *session.Session) error {
	token, err := auth.NewRandomToken(xsrfTokenBytes)
	if err != nil {
		return err
	}
	sess.SetXSRFToken(token)
	return nil
}

func (p *Pipeline) setXSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     XSRFCookie,
		Value:    token,
		Path:     "/",
		Secure:   p.secureCookie,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p *Pipeline) reject(r *http.Request, step Step, reason Reason) *Rejection {
	metrics.AuthzRejections.WithLabelValues(string(step)).Inc()
	logging.FromContext(r.Context()).Warn("request rejected",
		"step", step,
		"reason", reason.String(),
		"method", r.Method,
		"path", r.URL.Path,
	)
	return &Rejection{Step: step, Reason: reason}
}

func xsrfMatches(r *http.Request, sess *session.Session) bool {
	header := r.Header.Get(XSRFHeader)
	if header == "" || sess.XSRFToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(sess.XSRFToken)) == 1
}

func isSafe(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}
