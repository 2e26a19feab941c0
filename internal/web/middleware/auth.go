package middleware

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/logging"
)

// SessionUsers reports which user a request's session belongs to.
type SessionUsers interface {
	UserID(ctx context.Context) (int64, bool)
	Logout(ctx context.Context) error
}

// UserLoader loads an account by id.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*core.User, error)
}

// LoadUser puts the signed-in user into the request context. A session
// pointing at an account that no longer exists is logged out. Lookup failures
// leave the request anonymous.
func LoadUser(sessions SessionUsers, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id, ok := sessions.UserID(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.GetUser(ctx, id)
			switch {
			case err == nil:
				r = r.WithContext(core.ContextWithUser(ctx, u))
			case core.IsKind(err, core.KindNotFound):
				logging.FromContext(ctx).Warn("auth: session user no longer exists", "user_id", id)
				if err := sessions.Logout(ctx); err != nil {
					logging.FromContext(ctx).Warn("auth: clear stale session", "error", err)
				}
			default:
				logging.FromContext(ctx).Error("auth: load session user",
					"user_id", id,
					"error", err,
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}
