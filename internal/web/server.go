// Package web provides the HTTP server and handlers for the survey site.
package web

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/survey/internal/config"
	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/session"
	mw "github.com/JonMunkholm/survey/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFiles embed.FS

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// Server is the HTTP server for the survey site.
type Server struct {
	cfg      *config.Config
	service  *core.Service
	health   HealthChecker
	sessions *session.Manager
	render   *Renderer
	app      *Router
	limiter  *mw.RateLimiter
	registry *prometheus.Registry
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server with its middleware and routes in place.
func NewServer(cfg *config.Config, service *core.Service, health HealthChecker, sessions *session.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		health:   health,
		sessions: sessions,
		render:   NewRenderer(sessions),
		registry: prometheus.NewRegistry(),
		router:   chi.NewRouter(),
	}
	s.app = NewRouter(s.routes(), WithErrorHandler(s.render.Error))

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// routes is the application's route table.
func (s *Server) routes() []Route {
	return []Route{
		{http.MethodGet, "/", s.handleHome},
		{http.MethodGet, "/surveys", s.handleListSurveys},
		{http.MethodGet, "/surveys/create", requireUser(s.handleCreateSurvey)},
		{http.MethodPost, "/surveys/store", requireUser(s.handleStoreSurvey)},
		{http.MethodGet, "/surveys/view", s.handleViewSurvey},
		{http.MethodPost, "/surveys/submit", s.handleSubmitResponse},
		{http.MethodGet, "/surveys/results", s.handleResults},
		{http.MethodGet, "/login", s.handleLoginForm},
		{http.MethodPost, "/login", s.handleLogin},
		{http.MethodGet, "/register", s.handleRegisterForm},
		{http.MethodPost, "/register", s.handleRegister},
		{http.MethodPost, "/logout", s.handleLogout},
		{http.MethodGet, "/admin", requireAdmin(s.handleAdminDashboard)},
	}
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	metrics := mw.NewMetrics(s.registry, s.metricsRoute)

	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(mw.SecurityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.limiter = mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst, 10*time.Minute)
		s.limiter.StartCleanup(time.Minute)
		s.router.Use(s.limiter.Middleware)
	}
}

// setupRoutes mounts the infrastructure endpoints and hands every other path
// to the application router.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.With(
		s.sessions.Middleware,
		mw.LoadUser(s.sessions, s.service),
	).Handle("/*", s.app)
}

// metricsRoute labels known application paths by themselves and folds the
// rest into "other".
func (s *Server) metricsRoute(path string) string {
	switch {
	case s.app.Has(path), path == "/healthz", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/static/"):
		return "/static"
	default:
		return "other"
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.health.HealthCheck(r.Context()) {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Start begins listening for HTTP requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}
