package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simple-kyc/simple-kyc/internal/rbac"
	"github.com/simple-kyc/simple-kyc/internal/shared"
	_ "github.com/simple-kyc/simple-kyc/testing"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func identityFixture() rbac.Identity {
	return rbac.Identity{ID: "42", Name: "Ada Lovelace", Email: "ada@example.com", Role: rbac.RoleOfficer}
}

func TestLoginThenIdentityRoundTrips(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	require.Nil(t, sess.Identity())

	want := identityFixture()
	sess.Login(want)
	got := sess.Identity()
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	// The durable slot holds the serialized identity keyed by session id.
	stored, err := mr.Get("authUser:" + sess.ID)
	require.NoError(t, err)
	assert.Contains(t, stored, `"id":"42"`)
	assert.Contains(t, stored, `"role":"officer"`)
}

func TestIdentityRestoredAcrossLoads(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, first)
	require.NoError(t, err)
	want := identityFixture()
	sess.Login(want)
	require.NoError(t, manager.Commit(ctx, httptest.NewRecorder(), first, sess))

	second := httptest.NewRequest(http.MethodGet, "/", nil)
	second.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: sess.ID})
	restored, err := manager.Load(ctx, second)
	require.NoError(t, err)
	got := restored.Identity()
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestLogoutLeavesNoTrace(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.Login(identityFixture())
	require.NoError(t, manager.Commit(ctx, httptest.NewRecorder(), req, sess))
	require.True(t, mr.Exists("authUser:"+sess.ID))

	sess.Logout()
	assert.Nil(t, sess.Identity())

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))
	assert.False(t, mr.Exists("authUser:"+sess.ID))

	// The cookie is expired on the response.
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestCorruptSlotDegradesToUnauthenticated(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("authUser:broken-sid", "{not-json"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: manager.CookieName(), Value: "broken-sid"})

	sess, err := manager.Load(ctx, req)
	require.NoError(t, err, "corrupt slot must never surface an error")
	assert.Nil(t, sess.Identity())
}

func TestSubscribersNotifiedSynchronously(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)

	var seen []*rbac.Identity
	sess.Subscribe(func(identity *rbac.Identity) { seen = append(seen, identity) })

	sess.Login(identityFixture())
	require.Len(t, seen, 1, "login must notify before returning")
	require.NotNil(t, seen[0])
	assert.Equal(t, "42", seen[0].ID)

	sess.Logout()
	require.Len(t, seen, 2, "logout must notify before returning")
	assert.Nil(t, seen[1])
}

func TestIdentityReturnsCopy(t *testing.T) {
	manager, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)

	sess.Login(identityFixture())
	first := sess.Identity()
	first.Name = "mutated"
	second := sess.Identity()
	assert.Equal(t, "Ada Lovelace", second.Name)
}
