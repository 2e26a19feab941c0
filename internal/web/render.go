package web

import (
	"bytes"
	"context"
	"net/http"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/logging"
	"github.com/JonMunkholm/survey/internal/session"
	"github.com/JonMunkholm/survey/internal/views"
	"github.com/a-h/templ"
)

// Renderer writes full pages: it picks up the flash messages of the session
// and the signed-in user, and wraps the page body in a layout.
type Renderer struct {
	sessions *session.Manager
}

// NewRenderer creates a Renderer. With a nil manager no flash messages are
// shown.
func NewRenderer(sessions *session.Manager) *Renderer {
	return &Renderer{sessions: sessions}
}

// Page renders body inside the layout and writes it with status. The page is
// rendered into a buffer first so a failing component produces an error
// instead of a half written response.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, kind views.LayoutKind, title string, body templ.Component) error {
	page := views.Layout(kind, title, rd.takeFlash(r.Context()), navData(r), body)

	var buf bytes.Buffer
	if err := page.Render(r.Context(), &buf); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// takeFlash reads and clears both flash messages.
func (rd *Renderer) takeFlash(ctx context.Context) views.Flash {
	if rd.sessions == nil {
		return views.Flash{}
	}
	return views.Flash{
		Success: rd.sessions.TakeFlash(ctx, session.KeyFlashSuccess),
		Error:   rd.sessions.TakeFlash(ctx, session.KeyFlashError),
	}
}

// Flash queues a message for the next rendered page. Failures are logged and
// otherwise ignored.
func (rd *Renderer) Flash(ctx context.Context, key, message string) {
	if rd.sessions == nil {
		return
	}
	if err := rd.sessions.Flash(ctx, key, message); err != nil {
		logging.FromContext(ctx).Warn("store flash message", "key", key, "error", err)
	}
}

// navData describes the visitor for the navigation bar.
func navData(r *http.Request) views.NavData {
	nav := views.NavData{Active: r.URL.Path}
	if u := core.UserFromContext(r.Context()); u != nil {
		nav.SignedIn = true
		nav.UserName = u.Name
		nav.IsAdmin = u.IsAdmin()
	}
	return nav
}
