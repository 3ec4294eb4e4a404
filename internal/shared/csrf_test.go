package shared_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-kyc/simple-kyc/internal/shared"
)

func TestCSRFTokenRoundTrip(t *testing.T) {
	manager := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "sid-1"}

	token, err := manager.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, manager.VerifyToken(context.Background(), sess, token))
}

func TestCSRFTokenSurvivesRestart(t *testing.T) {
	sess := &shared.Session{ID: "sid-1"}
	token, err := shared.NewCSRFManager("csrfsecret").EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	// A fresh manager with the same secret stands in for a restarted or
	// sibling instance; the token must still verify for the live session.
	restarted := shared.NewCSRFManager("csrfsecret")
	assert.NoError(t, restarted.VerifyToken(context.Background(), sess, token))
}

func TestCSRFTokenRejectsWrongSecret(t *testing.T) {
	sess := &shared.Session{ID: "sid-1"}
	token, err := shared.NewCSRFManager("csrfsecret").EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	other := shared.NewCSRFManager("othersecret")
	assert.ErrorIs(t, other.VerifyToken(context.Background(), sess, token), shared.ErrCSRFTokenMismatch)
}

func TestCSRFTokenIsSessionBound(t *testing.T) {
	manager := shared.NewCSRFManager("csrfsecret")
	token, err := manager.EnsureToken(context.Background(), &shared.Session{ID: "sid-1"})
	require.NoError(t, err)

	err = manager.VerifyToken(context.Background(), &shared.Session{ID: "sid-2"}, token)
	assert.ErrorIs(t, err, shared.ErrCSRFTokenMismatch)
}

func TestCSRFTokenMissingCases(t *testing.T) {
	manager := shared.NewCSRFManager("csrfsecret")
	sess := &shared.Session{ID: "sid-1"}

	assert.ErrorIs(t, manager.VerifyToken(context.Background(), sess, ""), shared.ErrCSRFTokenMissing)
	assert.ErrorIs(t, manager.VerifyToken(context.Background(), nil, "token"), shared.ErrCSRFTokenMissing)

	_, err := manager.EnsureToken(context.Background(), nil)
	assert.Error(t, err)
}
