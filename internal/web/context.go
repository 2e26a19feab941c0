package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/survey/internal/core"
)

// requireUser rejects anonymous requests with an Unauthorized error.
func requireUser(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if core.UserFromContext(r.Context()) == nil {
			return core.Unauthorized(
				fmt.Sprintf("anonymous request to %s %s", r.Method, r.URL.Path),
				"Please log in to continue")
		}
		return next(w, r)
	}
}

// requireAdmin lets only admins through. Anonymous visitors get
// Unauthorized, signed-in users without the role get Forbidden.
func requireAdmin(next HandlerFunc) HandlerFunc {
	return requireUser(func(w http.ResponseWriter, r *http.Request) error {
		u := core.UserFromContext(r.Context())
		if !u.IsAdmin() {
			return core.Forbidden(
				fmt.Sprintf("user %d without admin role requested %s", u.ID, r.URL.Path),
				"You do not have access to this page")
		}
		return next(w, r)
	})
}
