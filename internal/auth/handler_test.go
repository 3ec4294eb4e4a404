package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-kyc/simple-kyc/internal/auth"
	"github.com/simple-kyc/simple-kyc/internal/shared"
	_ "github.com/simple-kyc/simple-kyc/testing"
)

type authFixture struct {
	router  http.Handler
	manager *shared.SessionManager
	redis   *miniredis.Miniredis
}

func newAuthFixture(t *testing.T, lookup auth.Lookup) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	logger := slog.New(slog.DiscardHandler)
	handler := auth.NewHandler(logger, auth.NewService(lookup), manager, csrf)

	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return &authFixture{router: router, manager: manager, redis: mr}
}

// serve loads the session the way the session middleware would, runs the
// request, and commits the session afterwards.
func (f *authFixture) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	sess, err := f.manager.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	require.NoError(t, f.manager.Commit(ctx, res, req, sess))
	return res, sess
}

func (f *authFixture) login(t *testing.T, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.serve(t, req)
}

func TestLoginSuccessEstablishesSession(t *testing.T) {
	fixture := newAuthFixture(t, &stubLookup{users: directoryFixture()})

	res, sess := fixture.login(t, `{"identifier":"emilys","password":"emilyspass"}`)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	var payload struct {
		Identity struct {
			ID   string `json:"id"`
			Role string `json:"role"`
		} `json:"identity"`
		Landing   string `json:"landing"`
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "1", payload.Identity.ID)
	assert.Equal(t, "officer", payload.Identity.Role)
	assert.Equal(t, "/profiles", payload.Landing)
	assert.NotEmpty(t, payload.CSRFToken)

	// The durable slot now holds the identity.
	stored, err := fixture.redis.Get("authUser:" + sess.ID)
	require.NoError(t, err)
	assert.Contains(t, stored, `"id":"1"`)
}

func TestLoginInvalidCredentials(t *testing.T) {
	fixture := newAuthFixture(t, &stubLookup{users: directoryFixture()})

	res, sess := fixture.login(t, `{"identifier":"emilys","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.False(t, fixture.redis.Exists("authUser:"+sess.ID))
}

func TestLoginDirectoryOutage(t *testing.T) {
	fixture := newAuthFixture(t, &stubLookup{err: assert.AnError})

	res, _ := fixture.login(t, `{"identifier":"emilys","password":"emilyspass"}`)
	assert.Equal(t, http.StatusBadGateway, res.Code)
}

func TestLoginMalformedBody(t *testing.T) {
	fixture := newAuthFixture(t, &stubLookup{users: directoryFixture()})

	res, _ := fixture.login(t, `{broken`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMeEndpoint(t *testing.T) {
	fixture := newAuthFixture(t, &stubLookup{users: directoryFixture()})

	// Unauthenticated first.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	res, _ := fixture.serve(t, req)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	_, sess := fixture.login(t, `{"identifier":"michaelw","password":"michaelwpass"}`)

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: fixture.manager.CookieName(), Value: sess.ID})
	res, _ = fixture.serve(t, req)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"id":"2"`)
}

func TestLogoutDestroysSession(t *testing.T) {
	fixture := newAuthFixture(t, &stubLookup{users: directoryFixture()})

	res, sess := fixture.login(t, `{"identifier":"emilys","password":"emilyspass"}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, fixture.redis.Exists("authUser:"+sess.ID))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: fixture.manager.CookieName(), Value: sess.ID})
	out, loaded := fixture.serve(t, req)

	assert.Equal(t, http.StatusOK, out.Code)
	assert.Nil(t, loaded.Identity())
	assert.False(t, fixture.redis.Exists("authUser:"+sess.ID))
}
