package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/logging"
	"github.com/gogitters/apcimap/internal/service"
)

type userService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) ([]*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, id uuid.UUID, in service.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserHandler struct {
	users userService
	authz authorizer
}

func NewUserHandler(users userService, az authorizer) *UserHandler {
	return &UserHandler{users: users, authz: az}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		RespondAppError(w, ErrInvalidHTTPRequest)
	}
}

// get looks a user up by id, then username, then email. Username lookups
// return a list.
func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.authz.Authorize(w, r, noTarget); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	q := r.URL.Query()
	id, hasID, err := queryIdentifier(r, "userId")
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	switch {
	case hasID:
		u, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		respondOptional(w, u)
	case strings.TrimSpace(q.Get("userUsername")) != "":
		users, err := h.users.GetByUsername(r.Context(), q.Get("userUsername"))
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		RespondData(w, users)
	case strings.TrimSpace(q.Get("userEmail")) != "":
		u, err := h.users.GetByEmail(r.Context(), q.Get("userEmail"))
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		respondOptional(w, u)
	default:
		RespondJSON(w, http.StatusOK, Reply{Status: http.StatusOK})
	}
}

type updateUserRequest struct {
	Username string `json:"userUsername"`
	Email    string `json:"userEmail"`
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredQueryID(w, r, "userId", ErrMissingID)
	if !ok {
		return
	}
	if _, ok := authorizeOwner(w, r, h.authz, id, ErrUserForbidden); !ok {
		return
	}

	existing, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	if existing == nil {
		RespondAppError(w, ErrUserNotFound)
		return
	}

	var req updateUserRequest
	if err := decodeBody(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		RespondAppError(w, ErrNoUsername)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		RespondAppError(w, ErrNoUserEmail)
		return
	}

	_, err = h.users.Update(r.Context(), id, service.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	RespondMessage(w, "user information updated")
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredQueryID(w, r, "userId", ErrMissingID)
	if !ok {
		return
	}
	if _, ok := authorizeOwner(w, r, h.authz, id, ErrUserForbidden); !ok {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.respondUserError(w, r, err)
		return
	}

	RespondMessage(w, "User Account Deleted")
}

func (h *UserHandler) respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		RespondAppError(w, ErrUserNotFound)
	case errors.Is(err, domain.ErrDuplicate):
		RespondAppError(w, ErrAccountExists)
	default:
		logging.FromContext(r.Context()).Warn("user request failed", "error", err)
		RespondDomainError(w, r, err)
	}
}
