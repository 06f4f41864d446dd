package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"jobdesk/internal/middleware"
	"jobdesk/internal/store"
)

const maxJobTitleLen = 200

// JobResponse is the public representation of a job listing.
type JobResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      *float64 `json:"salary"`
	CreatedBy   *int64   `json:"created_by"`
}

// CreateJobRequest is the payload for POST /jobs.
type CreateJobRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      *float64 `json:"salary"`
}

func jobResponseFrom(j store.Job) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		Company:     j.Company,
		Location:    j.Location,
	}
	if j.Salary.Valid {
		salary := j.Salary.Float64
		resp.Salary = &salary
	}
	if j.CreatedBy.Valid {
		createdBy := j.CreatedBy.Int64
		resp.CreatedBy = &createdBy
	}
	return resp
}

// ListJobs handles GET /jobs. Public, no authentication required.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.queries.ListJobs(r.Context())
	if err != nil {
		slog.Error("list jobs", "error", err)
		WriteInternalError(w, "Failed to list jobs")
		return
	}

	resp := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		resp = append(resp, jobResponseFrom(j))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetJob handles GET /jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := requireEntityByID(w, r, "job", func(id int64) (store.Job, error) {
		return h.queries.GetJobByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, jobResponseFrom(job))
}

func validateJob(req *CreateJobRequest) map[string]string {
	fieldErrors := make(map[string]string)

	req.Title = strings.TrimSpace(req.Title)
	req.Company = strings.TrimSpace(req.Company)
	req.Location = strings.TrimSpace(req.Location)

	if req.Title == "" || len(req.Title) > maxJobTitleLen {
		fieldErrors["title"] = "Title is required and must be at most 200 characters"
	}
	if req.Company == "" {
		fieldErrors["company"] = "Company is required"
	}
	if req.Location == "" {
		fieldErrors["location"] = "Location is required"
	}
	if req.Salary != nil && *req.Salary < 0 {
		fieldErrors["salary"] = "Salary must not be negative"
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

// CreateJob handles POST /jobs. Any signed-in user may post; the creator
// is taken from the bearer token, never from the request body.
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if fieldErrors := validateJob(&req); fieldErrors != nil {
		WriteValidationError(w, fieldErrors)
		return
	}

	params := store.CreateJobParams{
		Title:       req.Title,
		Description: req.Description,
		Company:     req.Company,
		Location:    req.Location,
		CreatedBy:   sql.NullInt64{Int64: claims.UserID(), Valid: true},
		CreatedAt:   time.Now().UTC(),
	}
	if req.Salary != nil {
		params.Salary = sql.NullFloat64{Float64: *req.Salary, Valid: true}
	}

	job, err := h.queries.CreateJob(r.Context(), params)
	if err != nil {
		slog.Error("create job", "error", err)
		WriteInternalError(w, "Failed to create job")
		return
	}

	slog.Info("job created", "job_id", job.ID, "title", job.Title, "created_by", claims.UserID())
	WriteJSON(w, http.StatusCreated, jobResponseFrom(job))
}

// DeleteJob handles DELETE /jobs/{id}. Any signed-in user may delete a
// listing. Applications against the job are removed with it.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	job, ok := requireEntityByID(w, r, "job", func(id int64) (store.Job, error) {
		return h.queries.GetJobByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteJob(r.Context(), job.ID); err != nil {
		slog.Error("delete job", "error", err, "job_id", job.ID)
		WriteInternalError(w, "Failed to delete job")
		return
	}

	slog.Info("job deleted", "job_id", job.ID, "title", job.Title)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Job deleted"})
}
