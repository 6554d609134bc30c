package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gogitters/apcimap/internal/authz"
	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/logging"
)

// Reply is the envelope every endpoint answers with. The transport status
// always equals Status.
type Reply struct {
	Status  int    `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondData(w http.ResponseWriter, data any) {
	RespondJSON(w, http.StatusOK, Reply{Status: http.StatusOK, Data: data})
}

func RespondMessage(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusOK, Reply{Status: http.StatusOK, Message: message})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError) {
	RespondJSON(w, appErr.Status, Reply{Status: appErr.Status, Message: appErr.Message})
}

// RespondRejection answers a failed authorization check. forbidden replaces
// the default message for ownership and token failures.
func RespondRejection(w http.ResponseWriter, rej *authz.Rejection, forbidden *AppError) {
	if rej.Reason == authz.ReasonUnauthenticated {
		RespondAppError(w, ErrUnauthenticated)
		return
	}
	if forbidden == nil {
		forbidden = ErrForbidden
	}
	RespondAppError(w, forbidden)
}

// RespondDomainError maps an error from the service layer onto the envelope.
// Storage failures are logged and reported generically.
func RespondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rej *authz.Rejection
		ve  *domain.ValidationError
	)

	switch {
	case errors.As(err, &rej):
		RespondRejection(w, rej, nil)
	case errors.As(err, &ve):
		RespondAppError(w, &AppError{Status: http.StatusBadRequest, Message: ve.Error()})
	case errors.Is(err, domain.ErrNotFound):
		RespondAppError(w, ErrResourceNotFound)
	case errors.Is(err, domain.ErrDuplicate):
		RespondAppError(w, ErrDuplicate)
	case errors.Is(err, domain.ErrBadCredentials):
		RespondAppError(w, ErrInvalidCredentials)
	case errors.Is(err, domain.ErrNotActivated):
		RespondAppError(w, ErrNotActivated)
	case errors.Is(err, domain.ErrInvalidRequest):
		RespondAppError(w, ErrInvalidRequest)
	default:
		logging.FromContext(r.Context()).Error("unhandled error", "error", err)
		RespondAppError(w, ErrInternalError)
	}
}
