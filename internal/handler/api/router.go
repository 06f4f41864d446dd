package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"jobdesk/internal/middleware"
)

const requestTimeout = 30 * time.Second

// Per-IP throttle on the credential endpoints.
const (
	credentialRPS   = 1
	credentialBurst = 20
)

// Router builds the full API route table with its middleware stack.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(requestTimeout))

	// Public routes.
	r.Group(func(r chi.Router) {
		r.Get("/", h.Root)
		r.Get("/health", h.Health)
		r.Get("/jobs", h.ListJobs)
		r.Get("/jobs/{id}", h.GetJob)
	})

	// Credential endpoints, throttled per client IP.
	r.Group(func(r chi.Router) {
		r.Use(middleware.IPRateLimit(credentialRPS, credentialBurst))

		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	// Stored résumés.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.resumes.UploadDir())))
	r.Get("/uploads/*", uploads.ServeHTTP)

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(h.issuer))

		r.Post("/jobs", h.CreateJob)
		r.Delete("/jobs/{id}", h.DeleteJob)
		r.Post("/upload-cv/", h.UploadCV)
		r.Post("/jobs/{id}/apply", h.Apply)

		// Admin-only routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin())

			r.Get("/jobs/{id}/applications", h.ListJobApplications)
			r.Get("/applications", h.ListApplications)
			r.Get("/users", h.ListUsers)
			r.Delete("/users/{id}", h.DeleteUser)
		})
	})

	return r
}
