package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrMalformedType     = errors.New("malformed identifier type")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrNotActivated      = errors.New("account not activated")
	ErrBadCredentials    = errors.New("invalid credentials")
)

// ValidationError reports a field that failed entity validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalidField(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// StorageError wraps a failure reported by the relational store. Duplicate
// marks a unique or primary key violation.
type StorageError struct {
	Op        string
	Err       error
	Duplicate bool
}

func (e *StorageError) Error() string {
	if e.Duplicate {
		return fmt.Sprintf("%s: duplicate key: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return e.Duplicate && target == ErrDuplicate
}

func (e *StorageError) MetricLabel() string {
	if e.Duplicate {
		return "duplicate"
	}
	return "storage"
}
