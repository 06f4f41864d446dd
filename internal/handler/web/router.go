package web

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"jobdesk/internal/middleware"
)

// Router builds the web client route table. Session state and CSRF
// protection wrap everything; the CSRF config comes from the caller so
// trusted origins follow the deployment.
func (h *Handler) Router(csrfCfg middleware.CSRFConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(h.sessions.LoadAndSave)
	r.Use(middleware.CSRF(csrfCfg))

	r.Get("/", h.Index)

	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/logout", h.Logout)

	r.Get("/dashboard", h.Dashboard)
	r.Get("/add_job", h.AddJobForm)
	r.Post("/add_job", h.AddJob)
	r.Get("/apply_job/{id}", h.ApplyForm)
	r.Post("/apply_job/{id}", h.Apply)
	r.Get("/delete_job/{id}", h.DeleteJob)

	r.Get("/admin", h.Admin)
	r.Get("/admin/applications/{id}", h.JobApplications)
	r.Get("/delete_user/{id}", h.DeleteUser)

	return r
}
