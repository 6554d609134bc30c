package handler

import "net/http"

type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidHTTPRequest = &AppError{http.StatusBadRequest, "invalid http request"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "Invalid request body"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "Resource not found"}
	ErrDuplicate          = &AppError{http.StatusConflict, "Resource already exists"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "internal server error"}
	ErrSearchParams       = &AppError{http.StatusBadRequest, "incorrect search parameters"}

	ErrUnauthenticated    = &AppError{http.StatusUnauthorized, "you must be logged in to perform this action"}
	ErrForbidden          = &AppError{http.StatusForbidden, "You are not allowed to access this resource"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "Invalid email or password"}
	ErrNotActivated       = &AppError{http.StatusForbidden, "please check your email and activate your account"}
	ErrPasswordMismatch   = &AppError{http.StatusBadRequest, "passwords do not match"}
	ErrAccountExists      = &AppError{http.StatusConflict, "an account with this email or username already exists"}
	ErrInvalidActivation  = &AppError{http.StatusBadRequest, "activation token is invalid"}
	ErrUnknownActivation  = &AppError{http.StatusNotFound, "account already activated or token is unknown"}

	ErrMissingID     = &AppError{http.StatusMethodNotAllowed, "id cannot be empty or negative"}
	ErrUserNotFound  = &AppError{http.StatusNotFound, "User account does not exist"}
	ErrUserForbidden = &AppError{http.StatusForbidden, "You are not allowed to access this user account"}
	ErrNoUsername    = &AppError{http.StatusMethodNotAllowed, "No username"}
	ErrNoUserEmail   = &AppError{http.StatusMethodNotAllowed, "No user email present"}

	ErrNoStarProperty = &AppError{http.StatusMethodNotAllowed, "No property linked to the star"}
	ErrNoStarUser     = &AppError{http.StatusMethodNotAllowed, "No user linked to the star"}
	ErrStarNotFound   = &AppError{http.StatusNotFound, "Star does not exist"}
	ErrStarForbidden  = &AppError{http.StatusForbidden, "You are not allowed to star or unstar for another user"}
)
