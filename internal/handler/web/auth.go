package web

import (
	"errors"
	"log/slog"
	"net/http"

	"jobdesk/internal/client"
	"jobdesk/internal/session"
)

type loginPage struct {
	AdminMode bool
}

// LoginForm handles GET /login. The ?admin=true flag only switches the
// page heading; authorization is decided by the API.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := h.baseData(r, "Sign in")
	data.Data = loginPage{AdminMode: r.URL.Query().Get("admin") == "true"}
	h.renderPage(w, r, "auth/login", data)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.api.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			h.renderer.SetFlash(r, "Invalid username or password", "error")
		} else {
			slog.Error("login via api", "error", err)
			h.renderer.SetFlash(r, "Could not reach the job board service", "error")
		}

		data := h.baseData(r, "Sign in")
		data.Data = loginPage{AdminMode: r.URL.Query().Get("admin") == "true"}
		h.renderPage(w, r, "auth/login", data)
		return
	}

	err = session.SignIn(r.Context(), h.sessions, session.Identity{
		Token:    result.AccessToken,
		UserID:   result.User.ID,
		Username: result.User.Username,
		Role:     result.User.Role,
	})
	if err != nil {
		slog.Error("sign in session", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.SetFlash(r, "Signed in successfully", "success")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// RegisterForm handles GET /register.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "auth/register", h.baseData(r, "Register"))
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	_, err := h.api.Register(r.Context(),
		r.PostFormValue("username"), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		var apiErr *client.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict:
			h.renderer.SetFlash(r, "That username or email is already taken", "error")
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity:
			h.renderer.SetFlash(r, "Please check the registration fields and try again", "error")
		default:
			slog.Error("register via api", "error", err)
			h.renderer.SetFlash(r, "Could not reach the job board service", "error")
		}
		h.renderPage(w, r, "auth/register", h.baseData(r, "Register"))
		return
	}

	h.renderer.SetFlash(r, "Account created, you can sign in now", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles GET /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.SignOut(r.Context(), h.sessions); err != nil {
		slog.Error("destroy session", "error", err)
	}
	h.renderer.SetFlash(r, "Signed out", "success")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
