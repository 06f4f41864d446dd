// Package middleware provides HTTP middleware for bearer-token
// authentication, authorization, and request handling.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"jobdesk/internal/auth"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaims is the context key for verified token claims.
const ContextKeyClaims ContextKey = "claims"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// verifyBearerToken parses the Authorization header and verifies the token.
// On failure it writes a 401 response and returns (nil, true); the second
// return value indicates whether an error response was written.
func verifyBearerToken(w http.ResponseWriter, r *http.Request, issuer *auth.TokenIssuer) (*auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
		return nil, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
		return nil, true
	}

	claims, err := issuer.Verify(parts[1])
	if err != nil {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
		return nil, true
	}

	return claims, false
}

// BearerAuth creates middleware that requires a valid bearer token. The
// verified claims are stored in the request context.
func BearerAuth(issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, errorWritten := verifyBearerToken(w, r, issuer)
			if errorWritten {
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin creates middleware that requires the admin role claim.
// Must be used after BearerAuth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
				return
			}
			if claims.Role != "admin" {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin role required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetClaims retrieves the verified token claims from the request context.
// Returns nil if the request was not authenticated.
func GetClaims(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
