package views

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/a-h/templ"
)

// minQuestionRows is how many question rows the empty creation form offers.
const minQuestionRows = 3

const dateFormat = "2 Jan 2006"

func (p *printer) surveyHref(path string, id int64) {
	p.raw(`href="` + path + `?id=` + strconv.FormatInt(id, 10) + `"`)
}

func (p *printer) summaryList(items []core.SurveySummary) {
	if len(items) == 0 {
		p.raw(`<p class="empty">No surveys yet.</p>`)
		return
	}
	p.raw(`<ul class="survey-list">`)
	for _, s := range items {
		p.raw(`<li><a `)
		p.surveyHref("/surveys/view", s.ID)
		p.raw(`>`)
		p.text(s.Title)
		p.raw(`</a><span class="meta">by `)
		p.text(s.Author)
		p.raw(` on `)
		p.text(s.CreatedAt.Format(dateFormat))
		p.rawf(` &middot; %d responses</span>`, s.ResponseCount)
		if s.Description != "" {
			p.raw(`<p>`)
			p.text(s.Description)
			p.raw(`</p>`)
		}
		p.raw(`</li>`)
	}
	p.raw(`</ul>`)
}

// HomePage shows the newest surveys.
func HomePage(recent []core.SurveySummary, signedIn bool) templ.Component {
	return component(func(p *printer) {
		p.raw(`<section class="hero"><h1>Surveys</h1><p>Ask questions, collect answers, see the results.</p>`)
		if signedIn {
			p.raw(`<a class="button" href="/surveys/create">Create a survey</a>`)
		} else {
			p.raw(`<a class="button" href="/register">Get started</a>`)
		}
		p.raw(`</section><section><h2>Latest surveys</h2>`)
		p.summaryList(recent)
		p.raw(`<p><a href="/surveys">Browse all surveys</a></p></section>`)
	})
}

// SurveyListPage shows one page of the survey listing.
func SurveyListPage(page *core.SurveyPage) templ.Component {
	return component(func(p *printer) {
		p.rawf(`<h1>All surveys</h1><p class="meta">%d total</p>`, page.Total)
		p.summaryList(page.Items)
		p.render(Pagination("/surveys", page.Page, page.TotalPages))
	})
}

// CreateSurveyPage renders the creation form with form's values and the
// validation errors from a previous attempt.
func CreateSurveyPage(form SurveyForm, fields map[string][]string) templ.Component {
	return component(func(p *printer) {
		p.raw(`<h1>New survey</h1><form method="post" action="/surveys/store" class="survey-form">`)
		p.input(fields, "text", "title", "Title", form.Title)

		p.raw(`<label>Description<textarea name="description" rows="3">`)
		p.text(form.Description)
		p.raw(`</textarea></label>`)
		p.fieldError(fields, "description")

		p.raw(`<fieldset><legend>Questions</legend>`)
		p.fieldError(fields, "questions")
		p.raw(`<p class="hint">Leave options empty for a free text question, or list choices separated by commas.</p>`)

		rows := form.Questions
		for len(rows) < minQuestionRows {
			rows = append(rows, QuestionForm{})
		}
		for i, q := range rows {
			p.rawf(`<div class="question-row"><label>Question %d<input type="text" name="question[]" value="`, i+1)
			p.text(q.Prompt)
			p.raw(`"></label><label>Options<input type="text" name="options[]" value="`)
			p.text(q.Options)
			p.raw(`"></label>`)
			p.fieldError(fields, fmt.Sprintf("questions.%d", i))
			p.raw(`</div>`)
		}
		p.raw(`</fieldset><button type="submit">Create survey</button></form>`)
	})
}

// SurveyAnswerPage shows a survey as an answer form. answers holds the values
// of a rejected submission keyed by field name ("q_<id>").
func SurveyAnswerPage(s *core.Survey, answers map[string]string, fields map[string][]string) templ.Component {
	return component(func(p *printer) {
		p.raw(`<article class="survey"><h1>`)
		p.text(s.Title)
		p.raw(`</h1><p class="meta">by `)
		p.text(s.Author)
		p.raw(`</p>`)
		if s.Description != "" {
			p.raw(`<p>`)
			p.text(s.Description)
			p.raw(`</p>`)
		}

		p.raw(`<form method="post" action="/surveys/submit">`)
		p.rawf(`<input type="hidden" name="survey_id" value="%d">`, s.ID)
		for i, q := range s.Questions {
			name := fmt.Sprintf("q_%d", q.ID)
			p.rawf(`<fieldset class="question"><legend>%d. `, i+1)
			p.text(q.Prompt)
			p.raw(`</legend>`)
			if q.IsChoice() {
				for _, o := range q.Options {
					value := strconv.FormatInt(o.ID, 10)
					p.raw(`<label class="option"><input type="radio" name="` + name + `" value="` + value + `"`)
					if answers[name] == value {
						p.raw(` checked`)
					}
					p.raw(`> `)
					p.text(o.Label)
					p.raw(`</label>`)
				}
			} else {
				p.raw(`<textarea name="` + name + `" rows="3">`)
				p.text(answers[name])
				p.raw(`</textarea>`)
			}
			p.fieldError(fields, name)
			p.raw(`</fieldset>`)
		}
		p.raw(`<button type="submit">Submit answers</button></form>`)
		p.raw(`<p><a `)
		p.surveyHref("/surveys/results", s.ID)
		p.raw(`>See results</a></p></article>`)
	})
}

// ResultsPage shows the tallies of a survey.
func ResultsPage(res *core.SurveyResults) templ.Component {
	return component(func(p *printer) {
		p.raw(`<article class="results"><h1>Results: `)
		p.text(res.Survey.Title)
		p.rawf(`</h1><p class="meta">%d responses</p>`, res.TotalResponses)

		for _, qr := range res.Questions {
			p.raw(`<section class="question-result"><h2>`)
			p.text(qr.Question.Prompt)
			p.raw(`</h2>`)
			if qr.Question.IsChoice() {
				p.raw(`<table><thead><tr><th>Option</th><th>Votes</th><th>Share</th></tr></thead><tbody>`)
				for _, t := range qr.Tallies {
					p.raw(`<tr><td>`)
					p.text(t.Option.Label)
					p.rawf(`</td><td>%d</td><td><span class="bar" style="width:%.0f%%"></span>%.1f%%</td></tr>`,
						t.Votes, t.Percent, t.Percent)
				}
				p.raw(`</tbody></table>`)
			} else if len(qr.Texts) == 0 {
				p.raw(`<p class="empty">No answers yet.</p>`)
			} else {
				p.raw(`<ul class="text-answers">`)
				for _, txt := range qr.Texts {
					p.raw(`<li>`)
					p.text(txt)
					p.raw(`</li>`)
				}
				p.raw(`</ul>`)
			}
			p.raw(`</section>`)
		}
		p.raw(`<p><a `)
		p.surveyHref("/surveys/view", res.Survey.ID)
		p.raw(`>Back to survey</a></p></article>`)
	})
}

// LoginPage renders the sign-in form.
func LoginPage(email string) templ.Component {
	return component(func(p *printer) {
		p.raw(`<h1>Log in</h1><form method="post" action="/login" class="auth-form">`)
		p.input(nil, "email", "email", "Email", email)
		p.raw(`<label>Password<input type="password" name="password"></label>`)
		p.raw(`<button type="submit">Log in</button></form>`)
		p.raw(`<p>No account yet? <a href="/register">Register</a></p>`)
	})
}

// RegisterPage renders the registration form.
func RegisterPage(name, email string, fields map[string][]string) templ.Component {
	return component(func(p *printer) {
		p.raw(`<h1>Register</h1><form method="post" action="/register" class="auth-form">`)
		p.input(fields, "text", "name", "Name", name)
		p.input(fields, "email", "email", "Email", email)
		p.raw(`<label>Password<input type="password" name="password"></label>`)
		p.fieldError(fields, "password")
		p.raw(`<label>Confirm password<input type="password" name="password_confirm"></label>`)
		p.fieldError(fields, "password_confirm")
		p.raw(`<button type="submit">Create account</button></form>`)
		p.raw(`<p>Already registered? <a href="/login">Log in</a></p>`)
	})
}

// AdminDashboard shows site totals and the newest surveys.
func AdminDashboard(stats *core.AdminStats) templ.Component {
	return component(func(p *printer) {
		p.raw(`<h1>Dashboard</h1><div class="stats">`)
		p.rawf(`<div class="stat"><span class="value">%d</span><span class="label">Users</span></div>`, stats.Users)
		p.rawf(`<div class="stat"><span class="value">%d</span><span class="label">Surveys</span></div>`, stats.Surveys)
		p.rawf(`<div class="stat"><span class="value">%d</span><span class="label">Responses</span></div>`, stats.Responses)
		p.raw(`</div><h2>Recent surveys</h2>`)

		if len(stats.Recent) == 0 {
			p.raw(`<p class="empty">No surveys yet.</p>`)
			return
		}
		p.raw(`<table><thead><tr><th>Title</th><th>Author</th><th>Created</th><th>Responses</th><th></th></tr></thead><tbody>`)
		for _, s := range stats.Recent {
			p.raw(`<tr><td>`)
			p.text(s.Title)
			p.raw(`</td><td>`)
			p.text(s.Author)
			p.raw(`</td><td>`)
			p.text(s.CreatedAt.Format(dateFormat))
			p.rawf(`</td><td>%d</td><td><a `, s.ResponseCount)
			p.surveyHref("/surveys/results", s.ID)
			p.raw(`>Results</a></td></tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

// ErrorPage shows message under the status text of status.
func ErrorPage(status int, message string) templ.Component {
	return component(func(p *printer) {
		p.rawf(`<section class="error-page"><h1>%d `, status)
		p.text(http.StatusText(status))
		p.raw(`</h1><p>`)
		p.text(message)
		p.raw(`</p><p><a href="/">Return home</a></p></section>`)
	})
}
