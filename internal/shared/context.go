package shared

import (
	"context"

	"github.com/simple-kyc/simple-kyc/internal/rbac"
)

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// IdentityFromContext returns the authenticated identity for the request,
// or nil when no session or identity is present.
func IdentityFromContext(ctx context.Context) *rbac.Identity {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return nil
	}
	return sess.Identity()
}
