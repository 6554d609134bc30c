package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
)

type starService interface {
	Star(ctx context.Context, propertyID, userID uuid.UUID) (bool, error)
	Unstar(ctx context.Context, propertyID, userID uuid.UUID) error
	Get(ctx context.Context, propertyID, userID uuid.UUID) (*domain.Star, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Star, error)
}

type StarHandler struct {
	stars starService
	authz authorizer
}

func NewStarHandler(stars starService, az authorizer) *StarHandler {
	return &StarHandler{stars: stars, authz: az}
}

func (h *StarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		RespondAppError(w, ErrInvalidHTTPRequest)
	}
}

func (h *StarHandler) get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.authz.Authorize(w, r, noTarget); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	propertyID, hasProperty, err := queryIdentifier(r, "starPropertyId")
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	userID, hasUser, err := queryIdentifier(r, "starUserId")
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	switch {
	case hasProperty && hasUser:
		star, err := h.stars.Get(r.Context(), propertyID, userID)
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		respondOptional(w, star)
	case hasUser:
		stars, err := h.stars.ListByUser(r.Context(), userID)
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		RespondData(w, stars)
	default:
		RespondAppError(w, ErrSearchParams)
	}
}

type starRequest struct {
	PropertyID string `json:"starPropertyId"`
	UserID     string `json:"starUserId"`
}

// create stars a property for the signed-in user. The body's starUserId must
// name that same user.
func (h *StarHandler) create(w http.ResponseWriter, r *http.Request) {
	var req starRequest
	if err := decodeBody(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		RespondAppError(w, ErrNoStarUser)
		return
	}
	if strings.TrimSpace(req.PropertyID) == "" {
		RespondAppError(w, ErrNoStarProperty)
		return
	}

	owner, err := bodyIdentifier("starUserId", req.UserID)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	propertyID, err := bodyIdentifier("starPropertyId", req.PropertyID)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	userID, ok := authorizeOwner(w, r, h.authz, owner, ErrStarForbidden)
	if !ok {
		return
	}

	created, err := h.stars.Star(r.Context(), propertyID, userID)
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}
	if !created {
		RespondMessage(w, "property already starred")
		return
	}
	RespondMessage(w, "starred property successful")
}

func (h *StarHandler) delete(w http.ResponseWriter, r *http.Request) {
	propertyID, ok := requiredQueryID(w, r, "starPropertyId", ErrNoStarProperty)
	if !ok {
		return
	}
	owner, ok := requiredQueryID(w, r, "starUserId", ErrNoStarUser)
	if !ok {
		return
	}

	userID, ok := authorizeOwner(w, r, h.authz, owner, ErrStarForbidden)
	if !ok {
		return
	}

	if err := h.stars.Unstar(r.Context(), propertyID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrStarNotFound)
			return
		}
		RespondDomainError(w, r, err)
		return
	}

	RespondMessage(w, "Star successfully deleted")
}
