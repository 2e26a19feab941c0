package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/views"
)

// maxFormBytes caps the size of a submitted form.
const maxFormBytes = 1 << 20

// parseForm reads the POST body into r.PostForm.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.BusinessLogic(
				fmt.Sprintf("form body over %d bytes", tooLarge.Limit),
				"The submitted form is too large")
		}
		return core.BusinessLogic("parse form: "+err.Error(), "The submitted form could not be read")
	}
	return nil
}

// idParam reads a positive id from the query string or form. A missing or
// malformed id is reported as a missing record, the same way an unknown id is.
func idParam(r *http.Request, name, what string) (int64, error) {
	raw := r.FormValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NotFound(
			fmt.Sprintf("invalid %s %q for %s", name, raw, r.URL.Path),
			what+" not found")
	}
	return id, nil
}

// pageParam reads the 1-based page number, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// parseSurveyForm pairs the question[] and options[] fields row by row.
// Rows with neither a prompt nor options are dropped, so field error indexes
// ("questions.N") line up with the returned form rows.
func parseSurveyForm(r *http.Request) (views.SurveyForm, core.SurveyInput) {
	form := views.SurveyForm{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
	}
	in := core.SurveyInput{Title: form.Title, Description: form.Description}

	prompts := r.PostForm["question[]"]
	options := r.PostForm["options[]"]
	for i, prompt := range prompts {
		var rawOpts string
		if i < len(options) {
			rawOpts = options[i]
		}
		opts := splitOptions(rawOpts)
		if strings.TrimSpace(prompt) == "" && len(opts) == 0 {
			continue
		}
		form.Questions = append(form.Questions, views.QuestionForm{Prompt: prompt, Options: rawOpts})
		in.Questions = append(in.Questions, core.QuestionInput{Prompt: prompt, Options: opts})
	}
	return form, in
}

// splitOptions splits a comma separated option list, dropping blanks.
func splitOptions(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// parseAnswers collects the q_<id> fields of an answer form. raw keeps the
// submitted values by field name for re-rendering.
func parseAnswers(r *http.Request) (answers map[int64]string, raw map[string]string) {
	answers = make(map[int64]string)
	raw = make(map[string]string)
	for key, values := range r.PostForm {
		rest, ok := strings.CutPrefix(key, "q_")
		if !ok || len(values) == 0 {
			continue
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			continue
		}
		answers[id] = values[0]
		raw[key] = values[0]
	}
	return answers, raw
}

// redirect sends a 303 so the browser follows up with a GET.
func redirect(w http.ResponseWriter, r *http.Request, url string) error {
	http.Redirect(w, r, url, http.StatusSeeOther)
	return nil
}
