package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"jobdesk/internal/auth"
	"jobdesk/internal/store"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

// RegisterRequest is the payload for POST /register. There is no role
// field: registration always creates client accounts, admins come from
// seeding.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse is the public representation of a user.
type ProfileResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the user profile.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        ProfileResponse `json:"user"`
}

func profileFromUser(u store.User) ProfileResponse {
	return ProfileResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func validateRegistration(req *RegisterRequest) map[string]string {
	fieldErrors := make(map[string]string)

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if len(req.Username) < minUsernameLen || len(req.Username) > maxUsernameLen {
		fieldErrors["username"] = "Username must be 3-50 characters"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fieldErrors["email"] = "Invalid email address"
	}
	if len(req.Password) < minPasswordLen {
		fieldErrors["password"] = "Password must be at least 8 characters"
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// Register handles POST /register. New accounts always get the client role.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if fieldErrors := validateRegistration(&req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("hash password", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         store.RoleClient,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteConflict(w, "Username or email already registered")
			return
		}
		slog.Error("create user", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	WriteJSON(w, http.StatusCreated, profileFromUser(user))
}

// Login handles POST /login. Returns a bearer token on success. Unknown
// usernames and wrong passwords share one response so the two are not
// distinguishable by a caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		WriteUnauthorized(w, "Invalid username or password")
		return
	}

	user, err := h.queries.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		WriteUnauthorized(w, "Invalid username or password")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		WriteUnauthorized(w, "Invalid username or password")
		return
	}

	token, err := h.issuer.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		slog.Error("issue token", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to issue token")
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username)
	WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		User:        profileFromUser(user),
	})
}
