package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/service"
)

type authService interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*domain.User, error)
	Activate(ctx context.Context, token string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*service.SignInResult, error)
}

type AuthHandler struct {
	auth  authService
	authz authorizer
}

func NewAuthHandler(auth authService, az authorizer) *AuthHandler {
	return &AuthHandler{auth: auth, authz: az}
}

type signUpRequest struct {
	Email           string `json:"userEmail" validate:"required,max=128"`
	Username        string `json:"userUsername" validate:"required,max=32"`
	Password        string `json:"userPassword" validate:"required,min=8"`
	PasswordConfirm string `json:"userPasswordConfirm" validate:"required,eqfield=Password"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondAppError(w, ErrInvalidHTTPRequest)
		return
	}
	if err := h.authz.VerifyXSRF(r); err != nil {
		respondAuthzError(w, r, err, nil)
		return
	}

	var req signUpRequest
	if err := decodeBody(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}
	if appErr := validateBody(&req); appErr != nil {
		RespondAppError(w, appErr)
		return
	}

	_, err := h.auth.SignUp(r.Context(), service.SignUpInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			RespondAppError(w, ErrAccountExists)
			return
		}
		RespondDomainError(w, r, err)
		return
	}

	RespondMessage(w, "Thank you for creating an account. Check your email to activate it.")
}

func (h *AuthHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondAppError(w, ErrInvalidHTTPRequest)
		return
	}

	if _, err := h.authz.Authorize(w, r, noTarget); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("activation"))
	if token == "" {
		RespondAppError(w, ErrInvalidActivation)
		return
	}

	_, err := h.auth.Activate(r.Context(), token)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			RespondAppError(w, ErrInvalidActivation)
		case errors.Is(err, domain.ErrNotFound):
			RespondAppError(w, ErrUnknownActivation)
		default:
			RespondDomainError(w, r, err)
		}
		return
	}

	RespondMessage(w, "Thank you for activating your account. You can now sign in.")
}

type signInRequest struct {
	Email    string `json:"userEmail" validate:"required"`
	Password string `json:"userPassword" validate:"required"`
}

type signInResponse struct {
	Token string `json:"token"`
}

// SignIn binds the session to the user. The session id and the
// anti-forgery token are both replaced.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		RespondAppError(w, ErrInvalidHTTPRequest)
		return
	}
	if err := h.authz.VerifyXSRF(r); err != nil {
		respondAuthzError(w, r, err, nil)
		return
	}

	var req signInRequest
	if err := decodeBody(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}
	if appErr := validateBody(&req); appErr != nil {
		RespondAppError(w, appErr)
		return
	}

	sess, err := sessionFrom(r)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	result, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	if err := sess.SignIn(result.User.ID()); err != nil {
		RespondDomainError(w, r, err)
		return
	}
	if err := h.authz.RotateXSRF(w, sess); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("user signed in", "user_id", result.User.ID())
	RespondData(w, signInResponse{Token: result.Token})
}

// SignOut drops the stored session and starts the visitor on a fresh
// anonymous one with its own anti-forgery token.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondAppError(w, ErrInvalidHTTPRequest)
		return
	}

	sess, err := sessionFrom(r)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	if err := sess.Destroy(); err != nil {
		RespondDomainError(w, r, err)
		return
	}
	if err := h.authz.IssueXSRF(w, sess); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, Reply{Status: http.StatusOK})
}
