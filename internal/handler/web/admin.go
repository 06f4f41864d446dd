package web

import (
	"log/slog"
	"net/http"

	"jobdesk/internal/client"
)

type adminPage struct {
	Users        []client.Profile
	Jobs         []client.Job
	Applications []client.ApplicationDetail
	APIBaseURL   string
}

// Admin handles GET /admin: users, jobs, and every application in one view.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	page := adminPage{APIBaseURL: h.apiBaseURL}
	var err error

	if page.Users, err = h.api.ListUsers(r.Context(), id.Token); err != nil {
		slog.Error("list users via api", "error", err)
	}
	if page.Jobs, err = h.api.ListJobs(r.Context()); err != nil {
		slog.Error("list jobs via api", "error", err)
	}
	if page.Applications, err = h.api.ListApplications(r.Context(), id.Token); err != nil {
		slog.Error("list applications via api", "error", err)
	}

	data := h.baseData(r, "Administration")
	data.Data = page
	h.renderPage(w, r, "admin/dashboard", data)
}

type jobApplicationsPage struct {
	JobID        int64
	Applications []client.ApplicationDetail
	APIBaseURL   string
}

// JobApplications handles GET /admin/applications/{id}.
func (h *Handler) JobApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	jobID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	apps, err := h.api.ListJobApplications(r.Context(), id.Token, jobID)
	if err != nil {
		slog.Error("list job applications via api", "error", err, "job_id", jobID)
		h.renderer.SetFlash(r, "Could not load applications", "error")
	}

	data := h.baseData(r, "Applications")
	data.Data = jobApplicationsPage{JobID: jobID, Applications: apps, APIBaseURL: h.apiBaseURL}
	h.renderPage(w, r, "admin/applications", data)
}

// DeleteUser handles GET /delete_user/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	userID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.api.DeleteUser(r.Context(), id.Token, userID); err != nil {
		slog.Error("delete user via api", "error", err, "user_id", userID)
		h.renderer.SetFlash(r, "Could not delete the user", "error")
	} else {
		h.renderer.SetFlash(r, "User deleted", "success")
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}
