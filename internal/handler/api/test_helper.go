package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"jobdesk/internal/auth"
	"jobdesk/internal/middleware"
	"jobdesk/internal/service"
	"jobdesk/internal/store"
)

const (
	testTokenSecret = "test-secret-key-0123456789abcdef"
	testPassword    = "correct-horse-battery"
)

// testDB creates an in-memory SQLite database with the job board schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'client',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE jobs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL,
			location TEXT NOT NULL,
			salary NUMERIC,
			created_by INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE SET NULL
		);

		CREATE TABLE applications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			cv_filename TEXT NOT NULL,
			cover_letter TEXT NOT NULL DEFAULT '',
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (job_id) REFERENCES jobs(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSetup creates a test database, token issuer, and API handler.
func testSetup(t *testing.T) (*sql.DB, *Handler) {
	t.Helper()

	db := testDB(t)
	issuer := auth.NewTokenIssuer(testTokenSecret, 30*time.Minute)

	resumes, err := service.NewResumeService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create resume service: %v", err)
	}

	return db, NewHandler(db, issuer, resumes)
}

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash returns an argon2id hash of testPassword, computed once
// because hashing is deliberately slow.
func testPasswordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		var err error
		testHash, err = auth.HashPassword(testPassword)
		if err != nil {
			t.Fatalf("failed to hash test password: %v", err)
		}
	})
	return testHash
}

// createTestUser creates a user with the shared test password.
func createTestUser(t *testing.T, db *sql.DB, username, email, role string) store.User {
	t.Helper()
	now := time.Now().UTC()
	hash := testPasswordHash(t)

	result, err := db.Exec(
		`INSERT INTO users (username, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		username, email, hash, role, now,
	)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	id, _ := result.LastInsertId()
	return store.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
	}
}

// createTestJob creates a job listing.
func createTestJob(t *testing.T, db *sql.DB, title, company string, salary *float64) store.Job {
	t.Helper()
	now := time.Now().UTC()

	var salaryVal sql.NullFloat64
	if salary != nil {
		salaryVal = sql.NullFloat64{Float64: *salary, Valid: true}
	}

	result, err := db.Exec(
		`INSERT INTO jobs (title, description, company, location, salary, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		title, "A test opening", company, "Remote", salaryVal, now,
	)
	if err != nil {
		t.Fatalf("failed to create test job: %v", err)
	}

	id, _ := result.LastInsertId()
	return store.Job{
		ID:          id,
		Title:       title,
		Description: "A test opening",
		Company:     company,
		Location:    "Remote",
		Salary:      salaryVal,
		CreatedAt:   now,
	}
}

// createTestApplication creates an application row directly.
func createTestApplication(t *testing.T, db *sql.DB, jobID, userID int64, cvFilename string) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO applications (job_id, user_id, cv_filename, cover_letter, applied_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, userID, cvFilename, "Please consider me", time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("failed to create test application: %v", err)
	}

	id, _ := result.LastInsertId()
	return id
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithClaims attaches verified token claims to a request, the way
// the bearer-auth middleware does for authenticated calls.
func requestWithClaims(r *http.Request, u store.User) *http.Request {
	claims := &auth.Claims{Username: u.Username, Role: u.Role}
	claims.Subject = strconv.FormatInt(u.ID, 10)
	ctx := context.WithValue(r.Context(), middleware.ContextKeyClaims, claims)
	return r.WithContext(ctx)
}

// newJSONRequest creates an HTTP request with a JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newGetRequest creates an HTTP GET request with optional URL params.
func newGetRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// newDeleteRequest creates an HTTP DELETE request with optional URL params.
func newDeleteRequest(t *testing.T, path string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// multipartField is one field of a multipart form: a plain value, or a
// file when filename is set.
type multipartField struct {
	name     string
	value    string
	filename string
}

// newMultipartRequest builds a multipart POST request from the given fields.
func newMultipartRequest(t *testing.T, path string, fields []multipartField, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.filename != "" {
			part, err := mw.CreateFormFile(f.name, f.filename)
			if err != nil {
				t.Fatalf("failed to create form file: %v", err)
			}
			if _, err := io.WriteString(part, f.value); err != nil {
				t.Fatalf("failed to write form file: %v", err)
			}
			continue
		}
		if err := mw.WriteField(f.name, f.value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// unmarshalBody unmarshals a JSON response body into the specified type.
func unmarshalBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return v
}

// errorCode extracts the error code from an error response body.
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := unmarshalBody[ErrorResponse](t, w)
	return resp.Error.Code
}

// executeHandler executes a handler and returns the response recorder.
func executeHandler(t *testing.T, handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
