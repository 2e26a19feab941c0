package core

import "context"

type contextKey string

const ctxKeyUser contextKey = "current_user"

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *User {
	if u, ok := ctx.Value(ctxKeyUser).(*User); ok {
		return u
	}
	return nil
}
