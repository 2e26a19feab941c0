package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/JonMunkholm/survey/internal/config"
	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/database"
	"github.com/JonMunkholm/survey/internal/session"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type fakeHealth bool

func (f fakeHealth) HealthCheck(context.Context) bool { return bool(f) }

type testServer struct {
	srv    *Server
	mock   sqlmock.Sqlmock
	store  *session.MemoryStore
	cookie *http.Cookie
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: 5 * time.Second},
		Session:  config.SessionConfig{CookieName: "sid", TTL: time.Hour},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, health bool) *testServer {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations: %v", err)
		}
		db.Close()
	})

	svc := core.NewService(database.NewWithDB(sqlx.NewDb(db, "sqlmock")), core.WithBcryptCost(bcrypt.MinCost))
	store := session.NewMemoryStore(time.Hour)
	sessions := session.NewManager(store, cfg.Session.CookieName, cfg.Session.TTL, false)

	srv := NewServer(cfg, svc, fakeHealth(health), sessions)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return &testServer{
		srv:    srv,
		mock:   mock,
		store:  store,
		cookie: &http.Cookie{Name: cfg.Session.CookieName, Value: uuid.NewString()},
	}
}

// signIn binds the test session to userID.
func (ts *testServer) signIn(t *testing.T, userID int64) {
	t.Helper()
	ctx := session.WithID(context.Background(), ts.cookie.Value)
	if err := ts.store.Set(ctx, ts.cookie.Value, session.KeyUserID, strconv.FormatInt(userID, 10)); err != nil {
		t.Fatal(err)
	}
}

func (ts *testServer) expectUser(id int64, role string) {
	ts.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
			AddRow(id, "Grace", "grace@example.com", "x", role, time.Now()))
}

func (ts *testServer) do(method, target string, form url.Values, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	req.AddCookie(ts.cookie)

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	for _, tt := range []struct {
		healthy bool
		status  int
		body    string
	}{
		{true, http.StatusOK, `"ok"`},
		{false, http.StatusServiceUnavailable, `"unavailable"`},
	} {
		ts := newTestServer(t, testConfig(), tt.healthy)
		rec := ts.do(http.MethodGet, "/healthz", nil)
		if rec.Code != tt.status || !strings.Contains(rec.Body.String(), tt.body) {
			t.Errorf("healthy=%v: got %d %q", tt.healthy, rec.Code, rec.Body.String())
		}
	}
}

func TestServer_SecurityHeaders(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	rec := ts.do(http.MethodGet, "/healthz", nil)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}
}

func TestServer_StaticAssets(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	for _, path := range []string{"/static/app.css", "/static/admin.css"} {
		rec := ts.do(http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
}

func TestServer_UnknownRouteIs404WithSession(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)

	req := httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "does not exist") {
		t.Error("missing not found message")
	}
	if len(rec.Result().Cookies()) != 1 {
		t.Error("expected a session cookie on first visit")
	}
}

func TestServer_AdminRequiresRole(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), true)
		rec := ts.do(http.MethodGet, "/admin", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Please log in to continue") {
			t.Error("missing login prompt")
		}
	})

	t.Run("member", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), true)
		ts.signIn(t, 7)
		ts.expectUser(7, core.RoleUser)

		rec := ts.do(http.MethodGet, "/admin", nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin", func(t *testing.T) {
		ts := newTestServer(t, testConfig(), true)
		ts.signIn(t, 7)
		ts.expectUser(7, core.RoleAdmin)
		ts.mock.ExpectQuery(regexp.QuoteMeta("FROM responses) AS responses")).
			WillReturnRows(sqlmock.NewRows([]string{"users", "surveys", "responses"}).AddRow(int64(2), int64(0), int64(0)))
		ts.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total FROM surveys")).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(0)))
		ts.mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
			WithArgs(5, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "created_at", "author", "response_count"}))

		rec := ts.do(http.MethodGet, "/admin", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `href="/static/admin.css"`) {
			t.Error("admin page not rendered in admin layout")
		}
	})
}

func TestServer_ViewSurveyBadID(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	rec := ts.do(http.MethodGet, "/surveys/view?id=abc", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Survey not found") {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestServer_ListSurveysPaginates(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	ts.mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS total FROM surveys")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(95)))
	ts.mock.ExpectQuery(regexp.QuoteMeta("LIMIT $1 OFFSET $2")).
		WithArgs(core.DefaultPerPage, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "created_at", "author", "response_count"}).
			AddRow(int64(9), "Team <lunch>", "", time.Now(), "Ada", int64(3)))

	rec := ts.do(http.MethodGet, "/surveys?page=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Team &lt;lunch&gt;", `href="/surveys?page=3"`, `href="/surveys?page=7"`, `rel="next"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestServer_StoreSurveyValidation(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	ts.signIn(t, 7)
	ts.expectUser(7, core.RoleUser)

	form := url.Values{
		"title":       {""},
		"question[]":  {"Favourite <colour>?", ""},
		"options[]":   {"Red", ""},
		"description": {"d"},
	}
	rec := ts.do(http.MethodPost, "/surveys/store", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "is required") {
		t.Error("title error missing")
	}
	if !strings.Contains(body, "at least two options") {
		t.Error("question error missing")
	}
	if !strings.Contains(body, "Favourite &lt;colour&gt;?") {
		t.Error("submitted prompt not re-rendered")
	}
	if !strings.Contains(body, "Please correct the highlighted fields") {
		t.Error("flash error not shown")
	}
}

func TestServer_StoreSurveyRequiresLogin(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	rec := ts.do(http.MethodPost, "/surveys/store", url.Values{"title": {"x"}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func expectSurvey5(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "description", "created_at", "author"}).
			AddRow(int64(5), int64(1), "Colors", "Pick one", time.Now(), "Ada"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE survey_id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "prompt", "position"}).
			AddRow(int64(11), "Favorite color?", int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM question_options o")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "label"}).
			AddRow(int64(101), int64(11), "Red").
			AddRow(int64(102), int64(11), "Blue"))
}

func TestServer_SubmitThenFlashShownOnce(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	expectSurvey5(ts.mock)
	ts.mock.ExpectBegin()
	ts.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO responses")).
		WithArgs(int64(5), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(70)))
	ts.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO answers")).
		WithArgs(int64(70), int64(11), int64(101), "Red").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(700)))
	ts.mock.ExpectCommit()

	rec := ts.do(http.MethodPost, "/surveys/submit", url.Values{"survey_id": {"5"}, "q_11": {"101"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/surveys/results?id=5" {
		t.Errorf("Location = %q", loc)
	}

	first := ts.do(http.MethodGet, "/missing", nil).Body.String()
	if !strings.Contains(first, "your answers were saved") {
		t.Error("flash not shown on the next page")
	}
	second := ts.do(http.MethodGet, "/missing", nil).Body.String()
	if strings.Contains(second, "your answers were saved") {
		t.Error("flash shown twice")
	}
}

func TestServer_SubmitMissingAnswer(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	expectSurvey5(ts.mock)
	expectSurvey5(ts.mock)

	rec := ts.do(http.MethodPost, "/surveys/submit", url.Values{"survey_id": {"5"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "please answer this question") {
		t.Error("field error missing")
	}
}

func TestServer_LoginFlow(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
			AddRow(int64(7), "Grace", "grace@example.com", string(hash), core.RoleUser, time.Now())
	}

	ts.mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("grace@example.com").
		WillReturnRows(userRow())
	rec := ts.do(http.MethodPost, "/login", url.Values{"email": {"grace@example.com"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password") {
		t.Error("login error not shown")
	}

	ts.mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("grace@example.com").
		WillReturnRows(userRow())
	planted := ts.cookie.Value
	rec = ts.do(http.MethodPost, "/login", url.Values{"email": {"grace@example.com"}, "password": {"correct horse"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == planted {
		t.Fatalf("cookies = %v, want a fresh session cookie", cookies)
	}
	if _, ok, _ := ts.store.Get(context.Background(), planted, session.KeyUserID); ok {
		t.Error("pre-login session id is authenticated")
	}
	ts.cookie = cookies[0]

	ts.expectUser(7, core.RoleUser)
	body := ts.do(http.MethodGet, "/missing", nil).Body.String()
	if !strings.Contains(body, "Welcome back, Grace") {
		t.Error("welcome flash missing")
	}
	if !strings.Contains(body, `action="/logout"`) {
		t.Error("signed in nav missing")
	}
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	ts := newTestServer(t, cfg, true)

	for i := 0; i < 2; i++ {
		if rec := ts.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	rec := ts.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, testConfig(), true)
	ts.do(http.MethodGet, "/healthz", nil)

	rec := ts.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `survey_http_requests_total{method="GET",route="/healthz",status="200"} 1`) {
		t.Errorf("request counter missing:\n%s", rec.Body.String())
	}
}
