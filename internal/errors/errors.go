package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds shared by every layer of the service. Callers wrap these with
// context and the HTTP layer maps the kind back to a status code.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidGrant    = errors.New("invalid grant")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Reason codes written in the "error" field of uniform error bodies.
const (
	ReasonBadRequest   = "BAD_REQUEST"
	ReasonUnauthorized = "UNAUTHORIZED"
	ReasonNotFound     = "NOT_FOUND"
	ReasonConflict     = "CONFLICT"
	ReasonInternal     = "INTERNAL_SERVER_ERROR"
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Mark attaches a kind to an error that doesn't carry one yet.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// StatusCode maps an error kind to its HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidGrant):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Reason returns the reason code for the error's status.
func Reason(err error) string {
	switch StatusCode(err) {
	case http.StatusBadRequest:
		return ReasonBadRequest
	case http.StatusUnauthorized:
		return ReasonUnauthorized
	case http.StatusNotFound:
		return ReasonNotFound
	case http.StatusConflict:
		return ReasonConflict
	default:
		return ReasonInternal
	}
}
