package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/simple-kyc/simple-kyc/internal/rbac"
)

// authUserSlot is the key prefix for the durable identity slot. Each
// session owns one slot holding the JSON-serialized identity.
const authUserSlot = "authUser:"

// SessionManager orchestrates cookie based sessions backed by Redis.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session is the single source of truth for "who is logged in" within one
// request scope. It holds at most one identity at a time.
type Session struct {
	ID          string
	identity    *rbac.Identity
	subscribers []func(*rbac.Identity)
	isNew       bool
	dirty       bool
	destroyed   bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load restores the session for the request, or creates a fresh one. A
// durable slot that is absent, expired, or fails to deserialize yields an
// unauthenticated session; corruption is never surfaced to the caller.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.slotKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := sm.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var identity rbac.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		// Corrupt or foreign slot data: treat as no session.
		sess := sm.newSession()
		sess.ID = cookie.Value
		return sess, nil
	}

	sess := sm.newSession()
	sess.ID = cookie.Value
	sess.isNew = false
	sess.identity = &identity
	sess.notify()
	return sess, nil
}

// Commit persists the session slot and writes cookie headers as needed.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	if sess.destroyed {
		if err := sm.client.Del(ctx, sm.slotKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}

	if sess.dirty {
		if sess.identity == nil {
			if err := sm.client.Del(ctx, sm.slotKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
		} else {
			data, err := json.Marshal(sess.identity)
			if err != nil {
				return err
			}
			if err := sm.client.Set(ctx, sm.slotKey(sess.ID), data, sm.ttl).Err(); err != nil {
				return err
			}
		}
		sess.dirty = false
	}

	if sess.ID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(sm.ttl),
		})
	}

	return nil
}

// Destroy marks the session for deletion.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.destroyed = true
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// Session helpers

// Login sets the current identity and marks the durable slot for writing.
// Subscribers observe the transition synchronously.
func (s *Session) Login(identity rbac.Identity) {
	copied := identity
	s.identity = &copied
	s.destroyed = false
	s.dirty = true
	s.notify()
}

// Logout clears the current identity and schedules removal of the durable
// slot, leaving no residual trace in storage.
func (s *Session) Logout() {
	s.identity = nil
	s.dirty = true
	s.destroyed = true
	s.notify()
}

// Identity returns the current identity, or nil when unauthenticated. The
// returned value is a copy; the stored identity is immutable after login.
func (s *Session) Identity() *rbac.Identity {
	if s.identity == nil {
		return nil
	}
	copied := *s.identity
	return &copied
}

// Subscribe registers fn to be invoked synchronously on every identity
// transition (login, logout, restore).
func (s *Session) Subscribe(fn func(*rbac.Identity)) {
	if fn == nil {
		return
	}
	s.subscribers = append(s.subscribers, fn)
}

func (s *Session) notify() {
	for _, fn := range s.subscribers {
		fn(s.Identity())
	}
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:    sm.generateSessionID(),
		isNew: true,
	}
}

func (sm *SessionManager) slotKey(id string) string {
	return authUserSlot + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
