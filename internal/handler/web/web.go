// Package web implements the server-rendered job board client. Every
// page is backed by synchronous calls to the API service; the session
// only caches the bearer token and profile between requests.
package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"jobdesk/internal/cache"
	"jobdesk/internal/client"
	"jobdesk/internal/render"
	"jobdesk/internal/session"
)

// jobListTTL bounds how stale the cached public job list can get between
// invalidations.
const jobListTTL = 30 * time.Second

// Handler holds shared dependencies for the web client handlers.
type Handler struct {
	api        *client.Client
	sessions   *scs.SessionManager
	renderer   *render.Renderer
	apiBaseURL string
	jobList    *cache.TypedCache[[]client.Job]
}

// NewHandler creates a web client handler. The cache holds the public job
// list between page views and is invalidated on job create and delete.
func NewHandler(api *client.Client, sm *scs.SessionManager, renderer *render.Renderer, apiBaseURL string, cacher cache.Cacher) *Handler {
	return &Handler{
		api:        api,
		sessions:   sm,
		renderer:   renderer,
		apiBaseURL: apiBaseURL,
		jobList:    cache.NewTypedCache[[]client.Job](cacher, jobListTTL),
	}
}

// baseData fills the fields every template shares.
func (h *Handler) baseData(r *http.Request, title string) render.TemplateData {
	data := render.TemplateData{Title: title}
	if id, ok := session.Current(r.Context(), h.sessions); ok {
		data.IsLoggedIn = true
		data.Username = id.Username
		data.IsAdmin = id.Role == "admin"
	}
	return data
}

// requireUser returns the signed-in identity, redirecting to the login
// page when there is none.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	id, ok := session.Current(r.Context(), h.sessions)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return session.Identity{}, false
	}
	return id, true
}

// requireAdmin returns the signed-in identity when its cached role is
// admin. The role here only gates navigation; the API re-checks the
// token's role claim on every privileged call.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (session.Identity, bool) {
	id, ok := session.Current(r.Context(), h.sessions)
	if !ok || id.Role != "admin" {
		h.renderer.SetFlash(r, "Access denied", "error")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return session.Identity{}, false
	}
	return id, true
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// renderPage renders a template, logging failures. Render errors after
// the first byte cannot be recovered, so the client gets whatever was
// written.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	if err := h.renderer.Render(w, r, name, data); err != nil {
		slog.Error("render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Index redirects to the dashboard or the login page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.Current(r.Context(), h.sessions); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
