package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobdesk/internal/auth"
	"jobdesk/internal/store"
)

const testSecret = "test-secret-key-0123456789abcdef"

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(testSecret, 30*time.Minute)
}

func issueToken(t *testing.T, issuer *auth.TokenIssuer, role string) string {
	t.Helper()
	token, err := issuer.Issue(1, "alice", role)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// okHandler records whether the wrapped handler ran and what claims it saw.
func okHandler(ran *bool, claims **auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*ran = true
		*claims = GetClaims(r)
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuth(t *testing.T) {
	issuer := testIssuer()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantRan    bool
	}{
		{"valid token", "Bearer " + issueToken(t, issuer, store.RoleClient), http.StatusOK, true},
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Basic abc123", http.StatusUnauthorized, false},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ran bool
			var claims *auth.Claims
			handler := BearerAuth(issuer)(okHandler(&ran, &claims))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ran != tt.wantRan {
				t.Errorf("handler ran = %v, want %v", ran, tt.wantRan)
			}
			if tt.wantRan && claims == nil {
				t.Error("claims not found in context")
			}
		})
	}
}

func TestBearerAuthExpiredToken(t *testing.T) {
	expired := auth.NewTokenIssuer(testSecret, -time.Minute)
	token := issueToken(t, expired, store.RoleClient)

	var ran bool
	var claims *auth.Claims
	handler := BearerAuth(testIssuer())(okHandler(&ran, &claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ran {
		t.Error("handler ran with expired token")
	}

	var apiErr APIError
	if err := json.Unmarshal(w.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	if apiErr.Error.Code != "unauthorized" {
		t.Errorf("error code = %q, want %q", apiErr.Error.Code, "unauthorized")
	}
}

func TestRequireAdmin(t *testing.T) {
	issuer := testIssuer()

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", store.RoleAdmin, http.StatusOK},
		{"client forbidden", store.RoleClient, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ran bool
			var claims *auth.Claims
			handler := BearerAuth(issuer)(RequireAdmin()(okHandler(&ran, &claims)))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+issueToken(t, issuer, tt.role))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	var ran bool
	var claims *auth.Claims
	handler := RequireAdmin()(okHandler(&ran, &claims))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if ran {
		t.Error("handler ran without authentication")
	}
}
