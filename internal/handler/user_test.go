package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/service"
)

type mockUserService struct {
	user      *domain.User
	byName    []*domain.User
	err       error
	updateErr error
	deleteErr error

	updated   *service.UpdateUserInput
	deletedID uuid.UUID
	calls     int
}

func (m *mockUserService) GetByID(_ context.Context, _ uuid.UUID) (*domain.User, error) {
	m.calls++
	return m.user, m.err
}

func (m *mockUserService) GetByUsername(_ context.Context, _ string) ([]*domain.User, error) {
	m.calls++
	return m.byName, m.err
}

func (m *mockUserService) GetByEmail(_ context.Context, _ string) (*domain.User, error) {
	m.calls++
	return m.user, m.err
}

func (m *mockUserService) Update(_ context.Context, _ uuid.UUID, in service.UpdateUserInput) (*domain.User, error) {
	m.calls++
	m.updated = &in
	return m.user, m.updateErr
}

func (m *mockUserService) Delete(_ context.Context, id uuid.UUID) error {
	m.calls++
	m.deletedID = id
	return m.deleteErr
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	hash := "$argon2i$v=19$m=1024,t=384,p=2$" + strings.Repeat("c", 22) + "$" + strings.Repeat("d", 43)
	u, err := domain.NewUser(uuid.New(), nil, "user@example.com", hash, "user")
	require.NoError(t, err)
	return u
}

func TestUserHandler_Get(t *testing.T) {
	u := testUser(t)

	tests := []struct {
		name       string
		query      string
		svc        *mockUserService
		wantStatus int
		wantData   bool
		wantList   bool
	}{
		{name: "no parameters", query: "", svc: &mockUserService{user: u}, wantStatus: 200},
		{name: "by id", query: "?userId=" + u.ID().String(), svc: &mockUserService{user: u}, wantStatus: 200, wantData: true},
		{name: "by id not found", query: "?userId=" + uuid.NewString(), svc: &mockUserService{}, wantStatus: 200},
		{name: "by username", query: "?userUsername=user", svc: &mockUserService{byName: []*domain.User{u}}, wantStatus: 200, wantData: true, wantList: true},
		{name: "by email", query: "?userEmail=user@example.com", svc: &mockUserService{user: u}, wantStatus: 200, wantData: true},
		{name: "bad id", query: "?userId=nope", svc: &mockUserService{}, wantStatus: 400},
		{
			name:       "storage failure",
			query:      "?userId=" + u.ID().String(),
			svc:        &mockUserService{err: &domain.StorageError{Op: "GetByID", Err: errors.New("boom")}},
			wantStatus: 500,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewUserHandler(tc.svc, testPipeline())
			r, _ := newRequest(t, http.MethodGet, "/user"+tc.query, requestOpts{})
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tc.wantStatus, w.Code)
			reply := decodeReply(t, w)
			assert.EqualValues(t, tc.wantStatus, reply["status"])
			_, hasData := reply["data"]
			assert.Equal(t, tc.wantData, hasData)
			if tc.wantList {
				assert.IsType(t, []any{}, reply["data"])
			}
		})
	}
}

func TestUserHandler_GetSerializesPublicFieldsOnly(t *testing.T) {
	u := testUser(t)
	h := NewUserHandler(&mockUserService{user: u}, testPipeline())
	r, _ := newRequest(t, http.MethodGet, "/user?userId="+u.ID().String(), requestOpts{})
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "argon2i")
	data := decodeReply(t, w)["data"].(map[string]any)
	assert.Equal(t, u.ID().String(), data["userId"])
	assert.Equal(t, "user@example.com", data["userEmail"])
}

func TestUserHandler_GetIssuesXSRFCookie(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, testPipeline())
	r, sess := newRequest(t, http.MethodGet, "/user", requestOpts{})
	sess.MarkSaved()
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "XSRF-TOKEN", cookies[0].Name)
	assert.Equal(t, testXSRF, cookies[0].Value)
	assert.Equal(t, testXSRF, sess.XSRFToken)
	assert.False(t, sess.Modified())
}

func TestUserHandler_Update(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	u := testUser(t)

	tests := []struct {
		name        string
		query       string
		opts        requestOpts
		body        string
		svc         *mockUserService
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{
			name:        "missing id",
			query:       "",
			opts:        authed(owner),
			body:        `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:         &mockUserService{},
			wantStatus:  405,
			wantMessage: "id cannot be empty or negative",
		},
		{
			name:       "not signed in",
			query:      "?userId=" + owner.String(),
			opts:       requestOpts{xsrf: testXSRF},
			body:       `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:        &mockUserService{},
			wantStatus: 401,
		},
		{
			name:        "another user's account",
			query:       "?userId=" + owner.String(),
			opts:        authed(stranger),
			body:        `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:         &mockUserService{},
			wantStatus:  403,
			wantMessage: "You are not allowed to access this user account",
		},
		{
			name:       "missing xsrf",
			query:      "?userId=" + owner.String(),
			opts:       requestOpts{signedInAs: owner, bearerFor: owner},
			body:       `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:        &mockUserService{},
			wantStatus: 403,
		},
		{
			name:        "no username",
			query:       "?userId=" + owner.String(),
			opts:        authed(owner),
			body:        `{"userEmail":"x@example.com"}`,
			svc:         &mockUserService{user: u},
			wantStatus:  405,
			wantMessage: "No username",
			wantCalls:   1,
		},
		{
			name:        "no email",
			query:       "?userId=" + owner.String(),
			opts:        authed(owner),
			body:        `{"userUsername":"x"}`,
			svc:         &mockUserService{user: u},
			wantStatus:  405,
			wantMessage: "No user email present",
			wantCalls:   1,
		},
		{
			name:        "absent user",
			query:       "?userId=" + owner.String(),
			opts:        authed(owner),
			body:        `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:         &mockUserService{},
			wantStatus:  404,
			wantMessage: "User account does not exist",
			wantCalls:   1,
		},
		{
			name:        "absent user with empty body",
			query:       "?userId=" + owner.String(),
			opts:        authed(owner),
			body:        `{}`,
			svc:         &mockUserService{},
			wantStatus:  404,
			wantMessage: "User account does not exist",
			wantCalls:   1,
		},
		{
			name:        "user removed before update",
			query:       "?userId=" + owner.String(),
			opts:        authed(owner),
			body:        `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:         &mockUserService{user: u, updateErr: domain.ErrNotFound},
			wantStatus:  404,
			wantMessage: "User account does not exist",
			wantCalls:   2,
		},
		{
			name:        "success",
			query:       "?userId=" + owner.String(),
			opts:        authed(owner),
			body:        `{"userUsername":"x","userEmail":"x@example.com"}`,
			svc:         &mockUserService{user: u},
			wantStatus:  200,
			wantMessage: "user information updated",
			wantCalls:   2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewUserHandler(tc.svc, testPipeline())
			tc.opts.body = tc.body
			r, _ := newRequest(t, http.MethodPut, "/user"+tc.query, tc.opts)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tc.wantStatus, w.Code)
			reply := decodeReply(t, w)
			assert.EqualValues(t, tc.wantStatus, reply["status"])
			if tc.wantMessage != "" {
				assert.Equal(t, tc.wantMessage, reply["message"])
			}
			assert.Equal(t, tc.wantCalls, tc.svc.calls, "service calls")
		})
	}
}

func TestUserHandler_DeleteWrongOwnerNeverReachesStorage(t *testing.T) {
	owner := uuid.New()
	attacker := uuid.New()
	svc := &mockUserService{}
	h := NewUserHandler(svc, testPipeline())

	r, _ := newRequest(t, http.MethodDelete, "/user?userId="+owner.String(), authed(attacker))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, svc.calls)
	assert.Equal(t, uuid.Nil, svc.deletedID)
}

func TestUserHandler_Delete(t *testing.T) {
	owner := uuid.New()

	t.Run("success", func(t *testing.T) {
		svc := &mockUserService{}
		h := NewUserHandler(svc, testPipeline())
		r, _ := newRequest(t, http.MethodDelete, "/user?userId="+owner.String(), authed(owner))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User Account Deleted", decodeReply(t, w)["message"])
		assert.Equal(t, owner, svc.deletedID)
	})

	t.Run("absent", func(t *testing.T) {
		svc := &mockUserService{deleteErr: domain.ErrNotFound}
		h := NewUserHandler(svc, testPipeline())
		r, _ := newRequest(t, http.MethodDelete, "/user?userId="+owner.String(), authed(owner))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User account does not exist", decodeReply(t, w)["message"])
	})

	t.Run("missing id", func(t *testing.T) {
		h := NewUserHandler(&mockUserService{}, testPipeline())
		r, _ := newRequest(t, http.MethodDelete, "/user", authed(owner))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestUserHandler_UnsupportedMethod(t *testing.T) {
	h := NewUserHandler(&mockUserService{}, testPipeline())
	r, _ := newRequest(t, http.MethodPatch, "/user", requestOpts{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid http request", decodeReply(t, w)["message"])
}
