package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"jobdesk/internal/client"
)

type dashboardPage struct {
	Jobs []client.Job
}

// jobListKey is the cache key for the public job list.
const jobListKey = "jobs"

// Dashboard handles GET /dashboard: the public job list for the
// signed-in user.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	var jobs []client.Job
	cached, err := h.jobList.GetOrSet(r.Context(), jobListKey, func() (*[]client.Job, error) {
		fetched, err := h.api.ListJobs(r.Context())
		if err != nil {
			return nil, err
		}
		return &fetched, nil
	})
	if err != nil {
		slog.Error("list jobs via api", "error", err)
		h.renderer.SetFlash(r, "Could not load job listings", "error")
	} else {
		jobs = *cached
	}

	data := h.baseData(r, "Dashboard")
	data.Data = dashboardPage{Jobs: jobs}
	h.renderPage(w, r, "site/dashboard", data)
}

// AddJobForm handles GET /add_job.
func (h *Handler) AddJobForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}
	h.renderPage(w, r, "site/add_job", h.baseData(r, "Post a job"))
}

// AddJob handles POST /add_job. The session's token is forwarded to the
// API, which records the signed-in user as the poster.
func (h *Handler) AddJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	job := client.NewJob{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Company:     r.PostFormValue("company"),
		Location:    r.PostFormValue("location"),
	}
	if raw := r.PostFormValue("salary"); raw != "" {
		salary, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.renderer.SetFlash(r, "Salary must be a number", "error")
			h.renderPage(w, r, "site/add_job", h.baseData(r, "Post a job"))
			return
		}
		job.Salary = &salary
	}

	if _, err := h.api.CreateJob(r.Context(), id.Token, job); err != nil {
		slog.Error("create job via api", "error", err)
		h.renderer.SetFlash(r, "Could not create the job listing", "error")
		h.renderPage(w, r, "site/add_job", h.baseData(r, "Post a job"))
		return
	}

	_ = h.jobList.Delete(r.Context(), jobListKey)
	h.renderer.SetFlash(r, "Job listing published", "success")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type applyPage struct {
	Job *client.Job
}

// ApplyForm handles GET /apply_job/{id}.
func (h *Handler) ApplyForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	jobID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	job, err := h.api.GetJob(r.Context(), jobID)
	if err != nil {
		h.renderer.SetFlash(r, "That job listing no longer exists", "error")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	data := h.baseData(r, "Apply")
	data.Data = applyPage{Job: job}
	h.renderPage(w, r, "site/apply_job", data)
}

// Apply handles POST /apply_job/{id}: forwards the cover letter and the
// uploaded résumé to the API.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	jobID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	redirectBack := func(message string) {
		h.renderer.SetFlash(r, message, "error")
		http.Redirect(w, r, "/apply_job/"+strconv.FormatInt(jobID, 10), http.StatusSeeOther)
	}

	file, header, err := r.FormFile("cv_file")
	if err != nil {
		redirectBack("Please attach a résumé")
		return
	}
	defer file.Close()

	_, err = h.api.Apply(r.Context(), id.Token, jobID, id.UserID,
		r.FormValue("cover_letter"), header.Filename, file)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
			redirectBack("Only PDF résumés are accepted")
			return
		}
		slog.Error("apply via api", "error", err, "job_id", jobID)
		redirectBack("Could not submit the application")
		return
	}

	h.renderer.SetFlash(r, "Application submitted, good luck!", "success")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DeleteJob handles GET /delete_job/{id}. Navigation-only; the API
// decides whether the caller may delete.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	jobID, err := idParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := h.api.DeleteJob(r.Context(), id.Token, jobID); err != nil {
		slog.Error("delete job via api", "error", err, "job_id", jobID)
		h.renderer.SetFlash(r, "Could not delete the job listing", "error")
	} else {
		_ = h.jobList.Delete(r.Context(), jobListKey)
		h.renderer.SetFlash(r, "Job listing deleted", "success")
	}

	if id.Role == "admin" {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
