package apperr

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by the service stores. Every store operation
// surfaces exactly one of these (or a raw storage error, which callers
// may retry).
var (
	ErrNotFound        = errors.New("resource not found")
	ErrForbidden       = errors.New("not allowed to modify this resource")
	ErrInvalid         = errors.New("invalid operation")
	ErrDuplicate       = errors.New("resource already exists")
	ErrAlreadyDone     = errors.New("action already performed")
	ErrNotDone         = errors.New("action was not performed")
	ErrUnauthenticated = errors.New("invalid credentials")
)

// Status maps a store error to an HTTP status code. Anything outside the
// taxonomy is treated as a storage fault.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrAlreadyDone), errors.Is(err, ErrNotDone):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Write sends the error to the client with its mapped status code.
func Write(w http.ResponseWriter, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		http.Error(w, "Internal server error", code)
		return
	}
	http.Error(w, err.Error(), code)
}
