package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/logging"
)

// HandlerFunc is an HTTP handler that reports failure by returning an error.
// A returned error is turned into a response by the router's error handler,
// so a handler that fails must not have written anything yet.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Route binds a method and an exact path to a handler.
type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

// ErrorHandler writes the response for an error returned by a handler.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Router dispatches requests over a route table fixed at construction.
// There is no way to add routes afterwards, so it is safe for concurrent use
// without locking.
type Router struct {
	routes  map[string]map[string]HandlerFunc // path -> method -> handler
	onError ErrorHandler
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithErrorHandler replaces the handler used for misses and handler errors.
func WithErrorHandler(h ErrorHandler) RouterOption {
	return func(rt *Router) {
		rt.onError = h
	}
}

// NewRouter compiles routes into a Router. When the same method and path
// appear more than once the last entry wins.
func NewRouter(routes []Route, opts ...RouterOption) *Router {
	rt := &Router{
		routes:  make(map[string]map[string]HandlerFunc),
		onError: NewRenderer(nil).Error,
	}
	for _, opt := range opts {
		opt(rt)
	}

	for _, route := range routes {
		if route.Handler == nil {
			panic(fmt.Sprintf("web: nil handler for %s %s", route.Method, route.Path))
		}
		methods, ok := rt.routes[route.Path]
		if !ok {
			methods = make(map[string]HandlerFunc)
			rt.routes[route.Path] = methods
		}
		methods[route.Method] = route.Handler
	}
	return rt
}

// Has reports whether any route is registered for path.
func (rt *Router) Has(path string) bool {
	_, ok := rt.routes[path]
	return ok
}

// Paths returns the registered paths in sorted order.
func (rt *Router) Paths() []string {
	paths := make([]string, 0, len(rt.routes))
	for p := range rt.routes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (rt *Router) lookup(method, path string) (HandlerFunc, bool) {
	h, ok := rt.routes[path][method]
	return h, ok
}

// ServeHTTP resolves the handler for the request and runs it inside the error
// boundary. Unknown paths and unknown methods on known paths both produce a
// not found error.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := rt.lookup(r.Method, r.URL.Path)
	if !ok {
		rt.onError(w, r, core.NotFound(
			fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path),
			"The page you are looking for does not exist"))
		return
	}

	if err := rt.run(h, w, r); err != nil {
		rt.onError(w, r, err)
	}
}

// run calls h and converts a panic into an error.
func (rt *Router) run(h HandlerFunc, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.FromContext(r.Context()).Error("handler panic",
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("panic in %s %s: %v", r.Method, r.URL.Path, rec)
		}
	}()
	return h(w, r)
}

// logError records a boundary error. Client errors are routine and logged at
// warn; everything else carries the internal detail at error level.
func logError(r *http.Request, err error, status int) {
	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	}
	if appErr, ok := core.AsAppError(err); ok {
		attrs = append(attrs, "code", appErr.Kind.Code())
	}

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	logger.Log(r.Context(), level, "request error", attrs...)
}
