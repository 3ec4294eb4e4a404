package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors the handlers map onto problem responses. The shared
// package re-exports the authorization taxonomy (ErrUnauthorized,
// ErrForbidden, ErrNotFound) under its domain names.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("authorization denied")
	ErrUnauthorized = errors.New("authentication required")
	ErrUnavailable  = errors.New("service unavailable")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Authentication Required", "")
	case errors.Is(err, ErrUnavailable):
		Problem(w, http.StatusBadGateway, "Unable To Complete Request", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
