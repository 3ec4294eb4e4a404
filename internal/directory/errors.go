package directory

import (
	"errors"
	"fmt"
	"net/http"
)

// AccessError describes an HTTP request that completed with an error
// status. The status partitions it into the client class (the caller's
// fault, never retried) and the transient class (retried up to the
// configured bound).
type AccessError struct {
	Status     int
	StatusText string
	Method     string
	URL        string
}

// Error implements the error interface.
func (e *AccessError) Error() string {
	return fmt.Sprintf("directory: %s %s failed: %d %s", e.Method, e.URL, e.Status, e.StatusText)
}

// Retryable reports whether repeating the request unchanged could succeed.
// Client errors (4xx) signal bad input, not-found, or unauthorized; they
// never become retryable by waiting.
func (e *AccessError) Retryable() bool {
	return e.Status < http.StatusBadRequest || e.Status >= http.StatusInternalServerError
}

// IsNotFound reports whether err is an AccessError with status 404.
func IsNotFound(err error) bool {
	var accessErr *AccessError
	return errors.As(err, &accessErr) && accessErr.Status == http.StatusNotFound
}

// IsClientError reports whether err is an AccessError in the 4xx class.
func IsClientError(err error) bool {
	var accessErr *AccessError
	return errors.As(err, &accessErr) && !accessErr.Retryable()
}
