package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gogitters/apcimap/internal/authz"
	"github.com/gogitters/apcimap/internal/domain"
	"github.com/gogitters/apcimap/internal/session"
)

const maxBodyBytes = 1 << 20

var noTarget = authz.Target{}

type authorizer interface {
	Authorize(w http.ResponseWriter, r *http.Request, target authz.Target) (uuid.UUID, error)
	VerifyXSRF(r *http.Request) error
	IssueXSRF(w http.ResponseWriter, sess *session.Session) error
	RotateXSRF(w http.ResponseWriter, sess *session.Session) error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody reads a JSON object into dst. An empty body leaves dst zeroed.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decodeBody: %w", domain.ErrInvalidRequest)
	}
	return nil
}

// validateBody runs the struct's validate tags and reports the first failing
// field by its JSON name.
func validateBody(dst any) *AppError {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return ErrInvalidRequest
	}
	return &AppError{Status: http.StatusBadRequest, Message: fieldMessage(ve[0])}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		return ErrPasswordMismatch.Message
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// queryIdentifier reads an identifier from the query string. present is
// false when the parameter is absent or blank.
func queryIdentifier(r *http.Request, field string) (id uuid.UUID, present bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err = domain.ParseIdentifier(raw)
	if err != nil {
		return uuid.Nil, true, &domain.ValidationError{Field: field, Message: "is not a valid identifier", Err: err}
	}
	return id, true, nil
}

func bodyIdentifier(field, raw string) (uuid.UUID, error) {
	id, err := domain.ParseIdentifier(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &domain.ValidationError{Field: field, Message: "is not a valid identifier", Err: err}
	}
	return id, nil
}

func sessionFrom(r *http.Request) (*session.Session, error) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return nil, errors.New("no session in request context")
	}
	return sess, nil
}

// respondAuthzError answers a failed Authorize or VerifyXSRF call.
func respondAuthzError(w http.ResponseWriter, r *http.Request, err error, forbidden *AppError) {
	var rej *authz.Rejection
	if errors.As(err, &rej) {
		RespondRejection(w, rej, forbidden)
		return
	}
	RespondDomainError(w, r, err)
}

// respondOptional answers with data, or with a bare status when the lookup
// found nothing.
func respondOptional[T any](w http.ResponseWriter, v *T) {
	if v == nil {
		RespondJSON(w, http.StatusOK, Reply{Status: http.StatusOK})
		return
	}
	RespondData(w, v)
}
