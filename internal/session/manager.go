package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Keys used inside a session.
const (
	KeyUserID       = "user_id"
	KeyFlashSuccess = "flash_success"
	KeyFlashError   = "flash_error"
)

type ctxKey struct{}

// Manager ties a Store to the session cookie.
type Manager struct {
	store  Store
	cookie string
	ttl    time.Duration
	secure bool
}

// NewManager creates a Manager that issues cookies named cookieName.
func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, cookie: cookieName, ttl: ttl, secure: secure}
}

// Middleware makes sure every request has a session id, issuing a fresh
// cookie when the client sent none (or a malformed one).
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(m.cookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = m.issue(w)
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), sid)))
	})
}

func (m *Manager) issue(w http.ResponseWriter) string {
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// WithID stores a session id in ctx.
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, sid)
}

// IDFromContext returns the request's session id.
func IDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(ctxKey{}).(string)
	return sid, ok && sid != ""
}

// Flash stores a one-shot message under key for the next rendered page.
// A later Flash with the same key replaces the earlier one.
func (m *Manager) Flash(ctx context.Context, key, message string) error {
	sid, ok := IDFromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	return m.store.Set(ctx, sid, key, message)
}

// TakeFlash returns the message stored under key and clears it. Failures are
// logged and reported as no message so rendering never fails on flash state.
func (m *Manager) TakeFlash(ctx context.Context, key string) string {
	sid, ok := IDFromContext(ctx)
	if !ok {
		return ""
	}
	v, _, err := m.store.Take(ctx, sid, key)
	if err != nil {
		slog.Warn("session: take flash failed", "key", key, "error", err)
		return ""
	}
	return v
}

// Login signs userID in under a fresh session id and destroys the old one,
// so an id that existed before sign-in never becomes authenticated. Pending
// flash messages move to the new session. The returned context carries the
// new id and must be used for the rest of the request.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, userID int64) (context.Context, error) {
	oldSID, ok := IDFromContext(ctx)
	if !ok {
		return ctx, ErrNoSession
	}

	sid := m.issue(w)
	for _, key := range []string{KeyFlashSuccess, KeyFlashError} {
		v, ok, err := m.store.Take(ctx, oldSID, key)
		if err != nil {
			return ctx, fmt.Errorf("move %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := m.store.Set(ctx, sid, key, v); err != nil {
			return ctx, fmt.Errorf("move %s: %w", key, err)
		}
	}
	if err := m.store.Destroy(ctx, oldSID); err != nil {
		return ctx, fmt.Errorf("destroy old session: %w", err)
	}
	if err := m.store.Set(ctx, sid, KeyUserID, strconv.FormatInt(userID, 10)); err != nil {
		return ctx, err
	}
	return WithID(ctx, sid), nil
}

// UserID returns the signed-in user's id, if any.
func (m *Manager) UserID(ctx context.Context) (int64, bool) {
	sid, ok := IDFromContext(ctx)
	if !ok {
		return 0, false
	}
	v, ok, err := m.store.Get(ctx, sid, KeyUserID)
	if err != nil {
		slog.Warn("session: load user failed", "error", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Logout forgets the signed-in user but keeps the session so a flash
// message can still be shown.
func (m *Manager) Logout(ctx context.Context) error {
	sid, ok := IDFromContext(ctx)
	if !ok {
		return ErrNoSession
	}
	return m.store.Remove(ctx, sid, KeyUserID)
}
