package util

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindAuth
	KindNotFound
	KindUnavailable
)

// Status returns the HTTP status code for k.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicate:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AppError is an error whose Message is safe to show to clients.
type AppError struct {
	Kind    Kind
	Message string
	// Fields carries per-field validation messages, keyed by JSON field name.
	Fields map[string]string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches AppErrors of the same kind and message, so sentinels work with errors.Is
// even after being rewrapped with a cause.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// Wrap returns a copy of e carrying cause.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewValidationError builds a 400 error with field-level detail.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: "Invalid input", Fields: fields}
}

var (
	ErrMissingField       = &AppError{Kind: KindValidation, Message: "Please provide username, email and password"}
	ErrDuplicateUsername  = &AppError{Kind: KindDuplicate, Message: "Username already exists"}
	ErrDuplicateEmail     = &AppError{Kind: KindDuplicate, Message: "Email already exists"}
	ErrUserCreation       = &AppError{Kind: KindDuplicate, Message: "Failed to create user. Please try again."}
	ErrInvalidCredentials = &AppError{Kind: KindAuth, Message: "No active account found with the given credentials"}
	ErrInvalidToken       = &AppError{Kind: KindAuth, Message: "Token is invalid"}
	ErrExpiredToken       = &AppError{Kind: KindAuth, Message: "Token is expired"}
	ErrUnauthenticated    = &AppError{Kind: KindAuth, Message: "Authentication credentials were not provided"}
	ErrNotFound           = &AppError{Kind: KindNotFound, Message: "Not found"}
	ErrOAuthDisabled      = &AppError{Kind: KindUnavailable, Message: "Google login is not configured"}
)

// AsAppError extracts the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
