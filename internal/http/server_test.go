package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"scholarhub/internal/auth"
	"scholarhub/internal/cache"
	"scholarhub/internal/catalog"
	"scholarhub/internal/core"
	"scholarhub/internal/log"
	"scholarhub/internal/services"
	"scholarhub/internal/storage"
)

const testDomain = "@bcd.scholarship.edu.ph"

type testEnv struct {
	t       *testing.T
	handler http.Handler
	repo    *storage.SQLiteRepository
	tokens  *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "scholarhub.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	cat := catalog.Default()
	reports := services.NewReportService(repo, cat, cache.NewLRUCache[any](16, time.Minute))
	tokens := auth.NewTokenService(auth.TokenConfig{Secret: "0123456789abcdef0123456789abcdef", TTL: time.Hour, Issuer: "scholarhub"})

	srv := NewServer(":0", Deps{
		Accounts:           services.NewAccountService(repo, auth.NewHasher(4), cat, core.DefaultSignupPolicy()),
		Applications:       services.NewApplicationService(repo, cat, nil, reports),
		Reports:            reports,
		Tokens:             tokens,
		Catalog:            cat,
		Health:             repo,
		Logger:             log.New(log.Config{Output: &bytes.Buffer{}}),
		LoginRatePerMinute: 100,
	})
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	return &testEnv{t: t, handler: srv.Handler, repo: repo, tokens: tokens}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) signup(username string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/signup", "", signupRequest{
		Username: username, Email: username + testDomain, Password: "password123",
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("signup %s: %d %s", username, w.Code, w.Body.String())
	}
}

func (e *testEnv) login(username string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", "", loginRequest{Login: username, Password: "password123"})
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: %d %s", username, w.Code, w.Body.String())
	}
	return decode[loginResponse](e.t, w).Token
}

// student signs up, completes the profile and returns a token.
func (e *testEnv) student(username, municipality, college, program string) string {
	e.t.Helper()
	e.signup(username)
	token := e.login(username)
	w := e.do(http.MethodPut, "/api/me/profile", token, profileRequest{
		FirstName: "Juan", LastName: "Dela Cruz", CivilStatus: "Single", Gender: "Male",
		DateOfBirth: "2004-05-06", Age: 20, StudentID: "ID-" + username,
		College: college, YearLevel: "1st - Year", Program: program,
		Municipality: municipality, PhoneNumber: "09171234567",
	})
	if w.Code != http.StatusOK {
		e.t.Fatalf("profile %s: %d %s", username, w.Code, w.Body.String())
	}
	return token
}

func (e *testEnv) admin() string {
	e.t.Helper()
	hash, err := auth.NewHasher(4).Hash("password123")
	if err != nil {
		e.t.Fatalf("hash: %v", err)
	}
	if _, err := e.repo.CreateAccount(context.Background(), core.Admin, "admin", "admin"+testDomain, hash); err != nil {
		e.t.Fatalf("create admin: %v", err)
	}
	return e.login("admin")
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		if w := e.do(http.MethodGet, path, "", nil); w.Code != http.StatusOK {
			t.Fatalf("%s = %d", path, w.Code)
		}
	}
	if w := e.do(http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d", w.Code)
	}
}

func TestSignupAndLogin(t *testing.T) {
	e := newTestEnv(t)
	e.signup("jdoe")

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"duplicate username", "/api/auth/signup", signupRequest{Username: "jdoe", Email: "x" + testDomain, Password: "password123"}, http.StatusConflict, "username_exists"},
		{"duplicate email", "/api/auth/signup", signupRequest{Username: "x", Email: "jdoe" + testDomain, Password: "password123"}, http.StatusConflict, "email_exists"},
		{"admin self-signup", "/api/auth/signup", signupRequest{AccountType: "ADMIN", Username: "boss", Email: "boss" + testDomain, Password: "password123"}, http.StatusForbidden, "permission_denied"},
		{"foreign domain", "/api/auth/signup", signupRequest{Username: "y", Email: "y@gmail.com", Password: "password123"}, http.StatusUnprocessableEntity, "invalid_email_domain"},
		{"wrong password", "/api/auth/login", loginRequest{Login: "jdoe", Password: "bad-password"}, http.StatusUnauthorized, "invalid_credentials"},
		{"unknown user", "/api/auth/login", loginRequest{Login: "ghost", Password: "password123"}, http.StatusUnauthorized, "invalid_credentials"},
		{"login by email", "/api/auth/login", loginRequest{Email: "jdoe" + testDomain, Password: "password123"}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, tt.path, "", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantErr != "" {
				if got := decode[errorResponse](t, w).Code; got != tt.wantErr {
					t.Fatalf("code = %q, want %q", got, tt.wantErr)
				}
			}
		})
	}

	w := e.do(http.MethodPost, "/api/auth/signup", "", "not an object")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body = %d", w.Code)
	}
}

func TestProtectedRoutes(t *testing.T) {
	e := newTestEnv(t)
	token := e.student("jdoe", "Balayan", "CICS", "BSIT")

	if w := e.do(http.MethodGet, "/api/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token = %d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/me", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/admin/applications", token, nil); w.Code != http.StatusForbidden {
		t.Fatalf("student on admin route = %d", w.Code)
	}

	w := e.do(http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me = %d", w.Code)
	}
	me := decode[accountResponse](t, w)
	if me.Username != "jdoe" || !me.Profile.Complete || me.ScholarshipStatus != "NON-SCHOLAR" {
		t.Fatalf("me = %+v", me)
	}
}

func TestProfileValidationAndPhoto(t *testing.T) {
	e := newTestEnv(t)
	token := e.student("jdoe", "Balayan", "CICS", "BSIT")

	if w := e.do(http.MethodGet, "/api/me/photo", token, nil); w.Code != http.StatusNotFound {
		t.Fatalf("photo before upload = %d", w.Code)
	}

	png := []byte("\x89PNG\r\n\x1a\nrest-of-image")
	req := profileRequest{
		FirstName: "Juan", LastName: "Dela Cruz", CivilStatus: "Single", Gender: "Male",
		DateOfBirth: "2004-05-06", Age: 20, StudentID: "ID-jdoe",
		College: "CICS", YearLevel: "1st - Year", Program: "BSN",
		Municipality: "Balayan", PhoneNumber: "09171234567", Photo: png,
	}
	w := e.do(http.MethodPut, "/api/me/profile", token, req)
	if w.Code != http.StatusUnprocessableEntity || decode[errorResponse](t, w).Code != "unknown_program" {
		t.Fatalf("mismatched program = %d %s", w.Code, w.Body.String())
	}

	req.Program = "BSIT"
	if w := e.do(http.MethodPut, "/api/me/profile", token, req); w.Code != http.StatusOK {
		t.Fatalf("profile update = %d %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodGet, "/api/me/photo", token, nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("photo = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), png) {
		t.Fatal("photo bytes differ")
	}
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	token := e.student("jdoe", "Balayan", "CICS", "BSIT")

	w := e.do(http.MethodPut, "/api/me/password", token, passwordRequest{CurrentPassword: "wrong-pass", NewPassword: "newpassword1"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current password = %d", w.Code)
	}
	w = e.do(http.MethodPut, "/api/me/password", token, passwordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("change password = %d %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodPost, "/api/auth/login", "", loginRequest{Username: "jdoe", Password: "newpassword1"})
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password = %d", w.Code)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	e := newTestEnv(t)
	student := e.student("jdoe", "Balayan", "CICS", "BSIT")
	admin := e.admin()

	avg := 1.75
	w := e.do(http.MethodPost, "/api/applications", student, applicationRequest{Scholarship: "BCD SCHOLARSHIP", Average: &avg})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit = %d %s", w.Code, w.Body.String())
	}
	app := decode[applicationResponse](t, w)
	if app.Status != "PENDING" || app.Terminal {
		t.Fatalf("submitted status = %s", app.Status)
	}

	w = e.do(http.MethodPost, "/api/applications", student, applicationRequest{Scholarship: "BCD SCHOLARSHIP", Average: &avg})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate submit = %d", w.Code)
	}
	high := 3.0
	w = e.do(http.MethodPost, "/api/applications", student, applicationRequest{Scholarship: "DSWD EDUCATIONAL ASSISTANCE", Average: &high})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("average above ceiling = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/applications", admin, applicationRequest{Scholarship: "BCD SCHOLARSHIP", Average: &avg}); w.Code != http.StatusForbidden {
		t.Fatalf("admin submit = %d", w.Code)
	}

	w = e.do(http.MethodGet, "/api/admin/applications?status=pending", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list pending = %d", w.Code)
	}
	if got := decode[map[string][]applicationResponse](t, w)["applications"]; len(got) != 1 {
		t.Fatalf("pending applications = %d", len(got))
	}
	if w := e.do(http.MethodGet, "/api/admin/applications?status=bogus", admin, nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bogus filter = %d", w.Code)
	}

	path := "/api/admin/applications/" + jsonID(app.ID) + "/status"
	if w := e.do(http.MethodPost, path, admin, statusRequest{Status: "DROPPED"}); w.Code != http.StatusConflict {
		t.Fatalf("PENDING -> DROPPED = %d", w.Code)
	}

	w = e.do(http.MethodPost, path, admin, statusRequest{Status: "accepted"})
	if w.Code != http.StatusOK {
		t.Fatalf("accept = %d %s", w.Code, w.Body.String())
	}
	if tr := decode[transitionResponse](t, w); tr.ScholarshipStatus != "SCHOLAR" || tr.From != "PENDING" {
		t.Fatalf("accept = %+v", tr)
	}
	if me := decode[accountResponse](t, e.do(http.MethodGet, "/api/me", student, nil)); me.ScholarshipStatus != "SCHOLAR" {
		t.Fatalf("student status after accept = %s", me.ScholarshipStatus)
	}

	w = e.do(http.MethodPost, path, admin, statusRequest{Status: "DROPPED"})
	if tr := decode[transitionResponse](t, w); w.Code != http.StatusOK || tr.ScholarshipStatus != "NON-SCHOLAR" {
		t.Fatalf("drop = %d %s", w.Code, w.Body.String())
	}
	if w := e.do(http.MethodPost, path, admin, statusRequest{Status: "PENDING"}); w.Code != http.StatusConflict {
		t.Fatalf("reopen = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/admin/applications/999/status", admin, statusRequest{Status: "ACCEPTED"}); w.Code != http.StatusNotFound {
		t.Fatalf("missing application = %d", w.Code)
	}
	if w := e.do(http.MethodPost, "/api/admin/applications/abc/status", admin, statusRequest{Status: "ACCEPTED"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", w.Code)
	}

	w = e.do(http.MethodGet, "/api/applications/mine", student, nil)
	mine := decode[map[string][]applicationResponse](t, w)["applications"]
	if len(mine) != 1 || mine[0].Status != "DROPPED" || !mine[0].Terminal {
		t.Fatalf("mine = %+v", mine)
	}
}

func TestReports(t *testing.T) {
	e := newTestEnv(t)
	student := e.student("jdoe", "Balayan", "CICS", "BSIT")
	e.student("jane", "Tuy", "CTE", "BEED")
	admin := e.admin()

	avg := 2.0
	w := e.do(http.MethodPost, "/api/applications", student, applicationRequest{Scholarship: "BCD SCHOLARSHIP", Average: &avg})
	app := decode[applicationResponse](t, w)
	e.do(http.MethodPost, "/api/admin/applications/"+jsonID(app.ID)+"/status", admin, statusRequest{Status: "ACCEPTED"})

	w = e.do(http.MethodGet, "/api/admin/reports/scholars", admin, nil)
	scholars := decode[scholarSummaryResponse](t, w)
	if scholars.Overall.Scholars != 1 || scholars.Overall.NonScholars != 1 || scholars.Overall.Total != 2 {
		t.Fatalf("overall = %+v", scholars.Overall)
	}
	if len(scholars.ByMunicipality) != len(catalog.Default().Municipalities()) {
		t.Fatalf("municipalities not zero-filled: %d", len(scholars.ByMunicipality))
	}

	w = e.do(http.MethodGet, "/api/admin/reports/scholarships", admin, nil)
	programs := decode[programSummaryResponse](t, w)
	if programs.TotalApplications != 1 || len(programs.ByScholarship) != 3 {
		t.Fatalf("programs = %+v", programs)
	}

	w = e.do(http.MethodGet, "/api/admin/reports/scholarships/"+url.PathEscape("BCD SCHOLARSHIP")+"/colleges", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("colleges = %d %s", w.Code, w.Body.String())
	}
	w = e.do(http.MethodGet, "/api/admin/reports/scholarships/"+url.PathEscape("BCD SCHOLARSHIP")+"/colleges/CICS", admin, nil)
	body := decode[struct {
		Programs []countResponse `json:"programs"`
	}](t, w)
	if len(body.Programs) != 3 || body.Programs[0].Name != "BSIT" || body.Programs[0].Accepted != 1 {
		t.Fatalf("CICS programs = %+v", body.Programs)
	}
	if w := e.do(http.MethodGet, "/api/admin/reports/scholarships/BCD/colleges/NOPE", admin, nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown college = %d", w.Code)
	}

	w = e.do(http.MethodGet, "/api/admin/reports/dashboard", admin, nil)
	d := decode[dashboardResponse](t, w)
	if len(d.Colleges) != 3 || d.Scholars.Overall.Scholars != 1 {
		t.Fatalf("dashboard = %+v", d)
	}

	w = e.do(http.MethodPost, "/api/admin/reconcile", admin, nil)
	if w.Code != http.StatusOK || decode[map[string]int64](t, w)["scholars"] != 1 {
		t.Fatalf("reconcile = %d %s", w.Code, w.Body.String())
	}
}

func TestCatalogEndpoint(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/api/catalog", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("catalog = %d", w.Code)
	}
	cat := decode[catalog.Catalog](t, w)
	if len(cat.Colleges()) != 6 || len(cat.Scholarships()) != 3 {
		t.Fatalf("catalog = %+v", cat)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{core.ErrDuplicateApplication, http.StatusConflict, "duplicate_application"},
		{core.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{core.ErrApplicationNotFound, http.StatusNotFound, "application_not_found"},
		{core.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{core.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{core.ErrProfileIncomplete, http.StatusUnprocessableEntity, "profile_incomplete"},
		{errors.New("disk I/O error"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := classifyError(tt.err)
			if status != tt.status || code != tt.code {
				t.Fatalf("classifyError(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
			}
		})
	}
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
