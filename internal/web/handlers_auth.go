package web

import (
	"net/http"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/session"
	"github.com/JonMunkholm/survey/internal/views"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) error {
	if core.UserFromContext(r.Context()) != nil {
		return redirect(w, r, "/")
	}
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, "Log in", views.LoginPage(""))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	if err := parseForm(w, r); err != nil {
		return err
	}
	email := r.PostForm.Get("email")

	user, err := s.service.Authenticate(r.Context(), email, r.PostForm.Get("password"))
	if appErr, ok := core.AsAppError(err); ok && appErr.Kind == core.KindUnauthorized {
		logError(r, err, appErr.Status())
		s.render.Flash(r.Context(), session.KeyFlashError, appErr.UserMessage())
		return s.render.Page(w, r, appErr.Status(), views.LayoutSite, "Log in", views.LoginPage(email))
	}
	if err != nil {
		return err
	}

	ctx, err := s.sessions.Login(r.Context(), w, user.ID)
	if err != nil {
		return err
	}
	s.render.Flash(ctx, session.KeyFlashSuccess, "Welcome back, "+user.Name)
	return redirect(w, r, "/")
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) error {
	if core.UserFromContext(r.Context()) != nil {
		return redirect(w, r, "/")
	}
	return s.render.Page(w, r, http.StatusOK, views.LayoutSite, "Register", views.RegisterPage("", "", nil))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	if err := parseForm(w, r); err != nil {
		return err
	}
	in := core.RegisterInput{
		Name:            r.PostForm.Get("name"),
		Email:           r.PostForm.Get("email"),
		Password:        r.PostForm.Get("password"),
		PasswordConfirm: r.PostForm.Get("password_confirm"),
	}

	user, err := s.service.Register(r.Context(), in)
	if appErr, ok := core.AsAppError(err); ok &&
		(appErr.Kind == core.KindValidation || appErr.Kind == core.KindConflict) {
		s.render.Flash(r.Context(), session.KeyFlashError, appErr.UserMessage())
		return s.render.Page(w, r, appErr.Status(), views.LayoutSite, "Register",
			views.RegisterPage(in.Name, in.Email, appErr.FieldErrors()))
	}
	if err != nil {
		return err
	}

	ctx, err := s.sessions.Login(r.Context(), w, user.ID)
	if err != nil {
		return err
	}
	s.render.Flash(ctx, session.KeyFlashSuccess, "Welcome, "+user.Name)
	return redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	if err := s.sessions.Logout(r.Context()); err != nil {
		return err
	}
	s.render.Flash(r.Context(), session.KeyFlashSuccess, "You have been logged out")
	return redirect(w, r, "/")
}
