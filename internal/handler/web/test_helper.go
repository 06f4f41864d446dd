package web

import (
	"database/sql"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"jobdesk/internal/cache"
	"jobdesk/internal/client"
	"jobdesk/internal/middleware"
	"jobdesk/internal/render"
	"jobdesk/internal/session"
	"jobdesk/web"
)

// fakeAPI is a scripted stand-in for the API service: each route returns
// a fixed status and JSON body.
type fakeAPI struct {
	responses map[string]fakeResponse
}

type fakeResponse struct {
	status int
	body   string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	resp, ok := f.responses[key]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"No such route"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

const loginOKBody = `{"access_token":"tok-1","token_type":"bearer","user":{"id":1,"username":"alice","email":"alice@example.com","role":"client"}}`

const adminLoginOKBody = `{"access_token":"tok-9","token_type":"bearer","user":{"id":9,"username":"root","email":"root@example.com","role":"admin"}}`

// testWebServer builds the full web client stack against the fake API
// and returns a test server plus a cookie-carrying HTTP client.
func testWebServer(t *testing.T, api *fakeAPI) (*httptest.Server, *http.Client) {
	t.Helper()

	apiSrv := httptest.NewServer(api)
	t.Cleanup(apiSrv.Close)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open session database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if err := session.EnsureSchema(db); err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	sm := session.New(db, true)

	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("failed to sub templates fs: %v", err)
	}
	renderer, err := render.New(templates, sm)
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}

	api2 := client.New(apiSrv.URL, 5*time.Second)

	jobCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = jobCache.Close() })

	h := NewHandler(api2, sm, renderer, apiSrv.URL, jobCache)

	csrfCfg := middleware.DefaultCSRFConfig([]byte("0123456789abcdef0123456789abcdef"), true)
	srv := httptest.NewServer(h.Router(csrfCfg))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	httpClient := &http.Client{Jar: jar}

	return srv, httpClient
}

// postForm submits a urlencoded form without following redirects.
func postForm(t *testing.T, c *http.Client, target string, form url.Values) *http.Response {
	t.Helper()

	noRedirect := *c
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noRedirect.Post(target, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("form post failed: %v", err)
	}
	return resp
}

// get fetches a page without following redirects.
func get(t *testing.T, c *http.Client, target string) *http.Response {
	t.Helper()

	noRedirect := *c
	noRedirect.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noRedirect.Get(target)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	return resp
}

// signIn logs the test client in through the real login flow.
func signIn(t *testing.T, c *http.Client, baseURL string) {
	t.Helper()
	resp := postForm(t, c, baseURL+"/login", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("login returned status %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
}
