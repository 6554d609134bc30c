package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/authz"
)

// authorizeOwner runs the full pipeline against a resource owned by owner and
// writes the rejection itself. ok is false when the handler must stop.
func authorizeOwner(w http.ResponseWriter, r *http.Request, az authorizer, owner uuid.UUID, forbidden *AppError) (uuid.UUID, bool) {
	userID, err := az.Authorize(w, r, authz.Target{Owner: owner})
	if err != nil {
		respondAuthzError(w, r, err, forbidden)
		return uuid.Nil, false
	}
	return userID, true
}

// requiredQueryID reads the id a mutating request acts on. A missing id is
// answered with ErrMissingID.
func requiredQueryID(w http.ResponseWriter, r *http.Request, field string, missing *AppError) (uuid.UUID, bool) {
	id, present, err := queryIdentifier(r, field)
	if !present {
		RespondAppError(w, missing)
		return uuid.Nil, false
	}
	if err != nil {
		RespondDomainError(w, r, err)
		return uuid.Nil, false
	}
	return id, true
}
