package views

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/survey/internal/core"
	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return sb.String()
}

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []int
	}{
		{"middle", 5, 10, []int{3, 4, 5, 6, 7}},
		{"first page", 1, 10, []int{1, 2, 3}},
		{"second page", 2, 10, []int{1, 2, 3, 4}},
		{"last page", 10, 10, []int{8, 9, 10}},
		{"few pages", 2, 3, []int{1, 2, 3}},
		{"single page", 1, 1, []int{1}},
		{"current past end", 15, 10, []int{8, 9, 10}},
		{"current below one", -3, 10, []int{1, 2, 3}},
		{"no pages", 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PageWindow(tt.current, tt.total)
			if !slices.Equal(got, tt.want) {
				t.Errorf("PageWindow(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
			}
		})
	}
}

func TestPagination_Window(t *testing.T) {
	html := render(t, Pagination("/surveys", 5, 10))

	for n := 3; n <= 7; n++ {
		if n == 5 {
			continue
		}
		link := `href="/surveys?page=` + strconv.Itoa(n) + `"`
		if !strings.Contains(html, link) {
			t.Errorf("missing link %s in %s", link, html)
		}
	}
	if !strings.Contains(html, `aria-current="page">5<`) {
		t.Error("current page not marked")
	}
	for _, absent := range []string{"page=2\"", "page=8\"", "page=1\"", "page=10\""} {
		if strings.Contains(html, absent) {
			t.Errorf("unexpected link %s", absent)
		}
	}
	if !strings.Contains(html, `rel="prev" href="/surveys?page=4"`) {
		t.Error("missing previous link")
	}
	if !strings.Contains(html, `rel="next" href="/surveys?page=6"`) {
		t.Error("missing next link")
	}
}

func TestPagination_Edges(t *testing.T) {
	first := render(t, Pagination("/surveys", 1, 4))
	if strings.Contains(first, `rel="prev"`) {
		t.Error("first page should have no previous link")
	}
	if !strings.Contains(first, `rel="next"`) {
		t.Error("first page should have a next link")
	}

	last := render(t, Pagination("/surveys", 4, 4))
	if !strings.Contains(last, `rel="prev"`) {
		t.Error("last page should have a previous link")
	}
	if strings.Contains(last, `rel="next"`) {
		t.Error("last page should have no next link")
	}
}

func TestPagination_SinglePageRendersNothing(t *testing.T) {
	for _, total := range []int{0, 1} {
		if html := render(t, Pagination("/surveys", 1, total)); html != "" {
			t.Errorf("Pagination(total=%d) = %q, want empty", total, html)
		}
	}
}

func TestFlashBanner(t *testing.T) {
	if html := render(t, FlashBanner(Flash{})); html != "" {
		t.Errorf("empty flash rendered %q", html)
	}

	html := render(t, FlashBanner(Flash{Success: "Saved <b>", Error: `"oops"`}))
	if !strings.Contains(html, "alert-success") || !strings.Contains(html, "Saved &lt;b&gt;") {
		t.Errorf("success message missing or unescaped: %s", html)
	}
	if !strings.Contains(html, "alert-error") || !strings.Contains(html, "&#34;oops&#34;") {
		t.Errorf("error message missing or unescaped: %s", html)
	}
}

func TestLayout_Kinds(t *testing.T) {
	body := templ.Raw("<p>body</p>")

	site := render(t, Layout(LayoutSite, "Home", Flash{}, NavData{}, body))
	if !strings.Contains(site, `href="/static/app.css"`) {
		t.Error("site layout should link app.css")
	}
	if strings.Contains(site, "admin.css") || strings.Contains(site, "Survey Admin") {
		t.Error("site layout leaked admin chrome")
	}
	if !strings.Contains(site, "<p>body</p>") {
		t.Error("body not rendered")
	}
	if !strings.Contains(site, `href="/login"`) {
		t.Error("anonymous nav should offer login")
	}

	admin := render(t, Layout(LayoutAdmin, "Dashboard", Flash{}, NavData{SignedIn: true, IsAdmin: true, UserName: "Ada"}, body))
	if !strings.Contains(admin, `href="/static/admin.css"`) {
		t.Error("admin layout should link admin.css")
	}
	if !strings.Contains(admin, "Survey Admin") || !strings.Contains(admin, `<body class="admin">`) {
		t.Error("admin layout missing admin chrome")
	}
}

func TestLayout_EscapesTitleAndUser(t *testing.T) {
	html := render(t, Layout(LayoutSite, "<script>x</script>", Flash{Success: "done"},
		NavData{SignedIn: true, UserName: "<img src=x>"}, templ.NopComponent))

	if strings.Contains(html, "<script>x</script>") || strings.Contains(html, "<img src=x>") {
		t.Errorf("user text not escaped: %s", html)
	}
	if !strings.Contains(html, "&lt;script&gt;x&lt;/script&gt;") {
		t.Error("escaped title missing")
	}
	if !strings.Contains(html, "done") {
		t.Error("flash not rendered inside layout")
	}
}

func TestNav_SignedInLinks(t *testing.T) {
	html := render(t, Nav(LayoutSite, NavData{SignedIn: true, UserName: "Bo", Active: "/surveys"}))
	if !strings.Contains(html, `href="/surveys/create"`) {
		t.Error("signed in users should see the create link")
	}
	if strings.Contains(html, `href="/admin"`) {
		t.Error("non-admin should not see the admin link")
	}
	if !strings.Contains(html, `<li class="active"><a href="/surveys">`) {
		t.Error("active section not marked")
	}
	if !strings.Contains(html, `action="/logout"`) {
		t.Error("missing logout form")
	}
}

func TestFieldErrors(t *testing.T) {
	if html := render(t, FieldErrors(nil)); html != "" {
		t.Errorf("FieldErrors(nil) = %q", html)
	}

	html := render(t, FieldErrors(map[string][]string{
		"title": {"is required"},
		"email": {"<bad>"},
	}))
	if strings.Index(html, "email") > strings.Index(html, "title") {
		t.Error("fields not sorted")
	}
	if !strings.Contains(html, "&lt;bad&gt;") {
		t.Error("message not escaped")
	}
}

func TestSurveyAnswerPage(t *testing.T) {
	s := &core.Survey{
		ID:    5,
		Title: "Lunch & <Learn>",
		Questions: []core.Question{
			{ID: 11, Prompt: "Colour?", Options: []core.Option{{ID: 101, Label: "Red"}, {ID: 102, Label: "Blue"}}},
			{ID: 12, Prompt: "Why?"},
		},
	}

	html := render(t, SurveyAnswerPage(s, map[string]string{"q_11": "102", "q_12": "<because>"},
		map[string][]string{"q_12": {"too long"}}))

	checks := []string{
		"Lunch &amp; &lt;Learn&gt;",
		`name="survey_id" value="5"`,
		`name="q_11" value="101">`,
		`name="q_11" value="102" checked>`,
		`<textarea name="q_12" rows="3">&lt;because&gt;</textarea>`,
		"too long",
		`href="/surveys/results?id=5"`,
	}
	for _, want := range checks {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestCreateSurveyPage_PadsRows(t *testing.T) {
	html := render(t, CreateSurveyPage(SurveyForm{
		Title:     "T",
		Questions: []QuestionForm{{Prompt: "Q1", Options: "a, b"}},
	}, map[string][]string{"questions.0": {"needs work"}}))

	if got := strings.Count(html, `name="question[]"`); got != minQuestionRows {
		t.Errorf("question rows = %d, want %d", got, minQuestionRows)
	}
	if !strings.Contains(html, `value="a, b"`) || !strings.Contains(html, "needs work") {
		t.Error("submitted values or errors not re-rendered")
	}
}

func TestResultsPage(t *testing.T) {
	res := &core.SurveyResults{
		Survey:         &core.Survey{ID: 5, Title: "Poll"},
		TotalResponses: 4,
		Questions: []core.QuestionResult{
			{
				Question: core.Question{ID: 11, Prompt: "Colour?", Options: []core.Option{{ID: 101, Label: "Red"}}},
				Tallies:  []core.OptionTally{{Option: core.Option{ID: 101, Label: "Red"}, Votes: 3, Percent: 75}},
			},
			{
				Question: core.Question{ID: 12, Prompt: "Why?"},
				Texts:    []string{"<i>fun</i>"},
			},
		},
	}

	html := render(t, ResultsPage(res))
	for _, want := range []string{"4 responses", "<td>3</td>", "75.0%", "&lt;i&gt;fun&lt;/i&gt;"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in %s", want, html)
		}
	}
}

func TestAdminDashboard(t *testing.T) {
	html := render(t, AdminDashboard(&core.AdminStats{
		Users: 2, Surveys: 1, Responses: 7,
		Recent: []core.SurveySummary{{ID: 9, Title: "Poll", Author: "Ada", CreatedAt: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}},
	}))
	for _, want := range []string{`<span class="value">7</span>`, "4 Mar 2026", `href="/surveys/results?id=9"`} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestErrorPage(t *testing.T) {
	html := render(t, ErrorPage(404, "Survey <x> not found"))
	if !strings.Contains(html, "404 Not Found") {
		t.Error("missing status line")
	}
	if !strings.Contains(html, "Survey &lt;x&gt; not found") {
		t.Error("message missing or unescaped")
	}
}

func TestPagination_PastLastPage(t *testing.T) {
	html := render(t, Pagination("/surveys", 12, 10))

	if !strings.Contains(html, `aria-current="page">10<`) {
		t.Errorf("last page not marked current: %s", html)
	}
	if !strings.Contains(html, `rel="prev" href="/surveys?page=9"`) {
		t.Error("previous link should point at page 9")
	}
	if strings.Contains(html, `rel="next"`) || strings.Contains(html, "page=11") {
		t.Error("no links past the last page expected")
	}
}

func TestLayout_Title(t *testing.T) {
	body := templ.Raw("")
	tests := []struct {
		kind LayoutKind
		want string
	}{
		{LayoutSite, "<title>Results &amp; more | Surveys</title>"},
		{LayoutAdmin, "<title>Results &amp; more | Admin | Surveys</title>"},
	}
	for _, tt := range tests {
		html := render(t, Layout(tt.kind, "Results & more", Flash{}, NavData{}, body))
		if !strings.Contains(html, tt.want) {
			t.Errorf("kind %d: missing %q", tt.kind, tt.want)
		}
	}
}
