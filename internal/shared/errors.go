package shared

import (
	"errors"

	"github.com/simple-kyc/simple-kyc/internal/platform/httpx"
)

// The authorization taxonomy aliases the httpx sentinels so handlers can
// hand any service error straight to httpx.RespondError for the status
// mapping (404 / 401 / 403).
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = httpx.ErrNotFound
	// ErrAuthenticationRequired indicates a protected action was attempted
	// without an identity present.
	ErrAuthenticationRequired = httpx.ErrUnauthorized
	// ErrAuthorizationDenied indicates an identity is present but the
	// permission check failed.
	ErrAuthorizationDenied = httpx.ErrForbidden
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
