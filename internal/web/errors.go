package web

// errors.go turns handler errors into responses.
//
// An *core.AppError keeps its own status and user message. Any other error
// is logged with its full text and answered with a 500 and a generic
// message, so internal detail never reaches the client. Browsers get an
// error page inside the site layout, API clients a JSON body.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/logging"
	"github.com/JonMunkholm/survey/internal/views"
)

// genericErrorMessage is shown for every error that is not an AppError.
const genericErrorMessage = "Something went wrong on our side. Please try again later."

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// describeError returns what the client may see about err.
func describeError(err error) (status int, resp ErrorResponse) {
	if appErr, ok := core.AsAppError(err); ok {
		return appErr.Status(), ErrorResponse{
			Error:  appErr.UserMessage(),
			Code:   appErr.Kind.Code(),
			Fields: appErr.FieldErrors(),
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error: genericErrorMessage,
		Code:  "ERR000",
	}
}

// Error is the error boundary: it logs err and writes the matching response.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := describeError(err)
	logError(r, err, status)

	if wantsJSON(r) {
		respondErrorJSON(w, resp, status)
		return
	}

	body := views.ErrorPage(status, resp.Error)
	if rerr := rd.Page(w, r, status, views.LayoutSite, http.StatusText(status), body); rerr != nil {
		logging.FromContext(r.Context()).Error("render error page", "error", rerr)
		http.Error(w, resp.Error, status)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, resp ErrorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

// writeJSON encodes v as JSON with status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
