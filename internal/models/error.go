package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountInactive = errors.New("account is inactive")
)

// DetailedError attaches a client-facing message to a sentinel error.
// errors.Is matches the wrapped sentinel.
type DetailedError struct {
	Err     error
	Message string
}

func (e *DetailedError) Error() string {
	return e.Message
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// NotFoundf returns an ErrNotFound carrying a formatted message
func NotFoundf(format string, args ...any) error {
	return &DetailedError{Err: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf returns an ErrBadRequest carrying a formatted message
func BadRequestf(format string, args ...any) error {
	return &DetailedError{Err: ErrBadRequest, Message: fmt.Sprintf(format, args...)}
}

// MessageOf returns the client-facing message of err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var de *DetailedError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}
