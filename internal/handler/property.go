package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/domain"
)

type propertyReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error)
	GetByCity(ctx context.Context, city string) ([]*domain.Property, error)
}

type starCounter interface {
	CountForProperty(ctx context.Context, propertyID uuid.UUID) (int, error)
}

type PropertyHandler struct {
	properties propertyReader
	stars      starCounter
	authz      authorizer
}

func NewPropertyHandler(properties propertyReader, stars starCounter, az authorizer) *PropertyHandler {
	return &PropertyHandler{properties: properties, stars: stars, authz: az}
}

type propertyDTO struct {
	*domain.Property
	StarCount int `json:"propertyStarCount"`
}

func (h *PropertyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondAppError(w, ErrInvalidHTTPRequest)
		return
	}
	if _, err := h.authz.Authorize(w, r, noTarget); err != nil {
		RespondDomainError(w, r, err)
		return
	}

	id, hasID, err := queryIdentifier(r, "propertyId")
	if err != nil {
		RespondDomainError(w, r, err)
		return
	}

	switch {
	case hasID:
		p, err := h.properties.GetByID(r.Context(), id)
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		if p == nil {
			RespondJSON(w, http.StatusOK, Reply{Status: http.StatusOK})
			return
		}
		count, err := h.stars.CountForProperty(r.Context(), id)
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		RespondData(w, propertyDTO{Property: p, StarCount: count})
	case strings.TrimSpace(r.URL.Query().Get("propertyCity")) != "":
		props, err := h.properties.GetByCity(r.Context(), strings.TrimSpace(r.URL.Query().Get("propertyCity")))
		if err != nil {
			RespondDomainError(w, r, err)
			return
		}
		RespondData(w, props)
	default:
		RespondAppError(w, ErrSearchParams)
	}
}
