package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gogitters/apcimap/internal/auth"
	"github.com/gogitters/apcimap/internal/authz"
	"github.com/gogitters/apcimap/internal/session"
)

const (
	testSecret = "test-jwt-secret-with-at-least-32-bytes"
	testXSRF   = "test-xsrf-token"
)

func testPipeline() *authz.Pipeline {
	return authz.NewPipeline(testSecret, false)
}

type requestOpts struct {
	signedInAs uuid.UUID
	xsrf       string
	bearerFor  uuid.UUID
	body       string
}

// newRequest builds a request carrying a session. A zero signedInAs leaves
// the session anonymous.
func newRequest(t *testing.T, method, target string, opts requestOpts) (*http.Request, *session.Session) {
	t.Helper()

	var body io.Reader
	if opts.body != "" {
		body = strings.NewReader(opts.body)
	}
	r := httptest.NewRequest(method, target, body)

	sess, err := session.New()
	require.NoError(t, err)
	sess.SetXSRFToken(testXSRF)
	if opts.signedInAs != uuid.Nil {
		require.NoError(t, sess.SignIn(opts.signedInAs))
	}
	r = r.WithContext(session.NewContext(r.Context(), sess))

	if opts.xsrf != "" {
		r.Header.Set(authz.XSRFHeader, opts.xsrf)
	}
	if opts.bearerFor != uuid.Nil {
		tok, err := auth.GenerateToken(opts.bearerFor, "tester", testSecret, time.Hour)
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	return r, sess
}

// authed returns options for a fully authorized request by userID.
func authed(userID uuid.UUID) requestOpts {
	return requestOpts{signedInAs: userID, xsrf: testXSRF, bearerFor: userID}
}

func decodeReply(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

func xsrfCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == authz.XSRFCookie {
			return c
		}
	}
	require.FailNow(t, "no anti-forgery cookie set")
	return nil
}
