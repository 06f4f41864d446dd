package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"jobdesk/internal/service"
	"jobdesk/internal/store"
)

// ApplicationResponse is returned when an application is created.
type ApplicationResponse struct {
	ID         int64  `json:"id"`
	JobID      int64  `json:"job_id"`
	UserID     int64  `json:"user_id"`
	CvFilename string `json:"cv_filename"`
	Message    string `json:"message"`
}

// ApplicationDetailResponse is a denormalized application row as returned
// by the listing endpoints.
type ApplicationDetailResponse struct {
	ID          int64  `json:"id"`
	JobID       int64  `json:"job_id"`
	JobTitle    string `json:"job_title"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	CvFilename  string `json:"cv_filename"`
	CoverLetter string `json:"cover_letter"`
	AppliedAt   string `json:"applied_at"`
}

func detailResponsesFrom(details []store.ApplicationDetail) []ApplicationDetailResponse {
	resp := make([]ApplicationDetailResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, ApplicationDetailResponse{
			ID:          d.ID,
			JobID:       d.JobID,
			JobTitle:    d.JobTitle,
			UserID:      d.UserID,
			Username:    d.Username,
			Email:       d.Email,
			CvFilename:  d.CvFilename,
			CoverLetter: d.CoverLetter,
			AppliedAt:   d.AppliedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}

// UploadCV handles POST /upload-cv/. Stores a PDF résumé without creating
// an application. The filename check runs before anything touches disk.
func (h *Handler) UploadCV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file field", nil)
		return
	}
	defer file.Close()

	if err := h.resumes.ValidateFilename(header.Filename); err != nil {
		WriteBadRequest(w, "Only PDF files are accepted", nil)
		return
	}

	storedName, err := h.resumes.Store(file, header)
	if err != nil {
		slog.Error("store resume", "error", err)
		WriteInternalError(w, "Failed to store file")
		return
	}

	slog.Info("resume uploaded", "filename", storedName)
	WriteJSON(w, http.StatusOK, map[string]string{
		"filename": storedName,
		"message":  "File uploaded successfully",
	})
}

// Apply handles POST /jobs/{id}/apply. Multipart fields: cover_letter,
// user_id, cv_file. Job and user existence are verified before the résumé
// is written so a rejected request leaves no orphan file; the stored file
// is removed again if the insert fails.
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	job, ok := requireEntityByID(w, r, "job", func(id int64) (store.Job, error) {
		return h.queries.GetJobByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil {
		WriteBadRequest(w, "Invalid user_id", nil)
		return
	}

	file, header, err := r.FormFile("cv_file")
	if err != nil {
		WriteBadRequest(w, "Missing cv_file field", nil)
		return
	}
	defer file.Close()

	if err := h.resumes.ValidateFilename(header.Filename); err != nil {
		WriteBadRequest(w, "Only PDF files are accepted", nil)
		return
	}

	user, err := h.queries.GetUserByID(r.Context(), userID)
	if err != nil {
		WriteNotFound(w, "User not found")
		return
	}

	storedName, err := h.resumes.Store(file, header)
	if err != nil {
		slog.Error("store resume", "error", err)
		WriteInternalError(w, "Failed to store file")
		return
	}

	app, err := h.queries.CreateApplication(r.Context(), store.CreateApplicationParams{
		JobID:       job.ID,
		UserID:      user.ID,
		CvFilename:  storedName,
		CoverLetter: r.FormValue("cover_letter"),
		AppliedAt:   time.Now().UTC(),
	})
	if err != nil {
		if removeErr := h.resumes.Remove(storedName); removeErr != nil {
			slog.Error("remove orphan resume", "error", removeErr, "filename", storedName)
		}
		slog.Error("create application", "error", err, "job_id", job.ID, "user_id", user.ID)
		WriteInternalError(w, "Failed to create application")
		return
	}

	slog.Info("application submitted",
		"application_id", app.ID, "job_id", job.ID, "user_id", user.ID)
	WriteJSON(w, http.StatusCreated, ApplicationResponse{
		ID:         app.ID,
		JobID:      app.JobID,
		UserID:     app.UserID,
		CvFilename: app.CvFilename,
		Message:    "Application submitted successfully",
	})
}

// ListJobApplications handles GET /jobs/{id}/applications. Admin only.
func (h *Handler) ListJobApplications(w http.ResponseWriter, r *http.Request) {
	job, ok := requireEntityByID(w, r, "job", func(id int64) (store.Job, error) {
		return h.queries.GetJobByID(r.Context(), id)
	})
	if !ok {
		return
	}

	details, err := h.queries.ListApplicationDetailsByJob(r.Context(), job.ID)
	if err != nil {
		slog.Error("list job applications", "error", err, "job_id", job.ID)
		WriteInternalError(w, "Failed to list applications")
		return
	}
	WriteJSON(w, http.StatusOK, detailResponsesFrom(details))
}

// ListApplications handles GET /applications. Admin only.
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	details, err := h.queries.ListApplicationDetails(r.Context())
	if err != nil {
		slog.Error("list applications", "error", err)
		WriteInternalError(w, "Failed to list applications")
		return
	}
	WriteJSON(w, http.StatusOK, detailResponsesFrom(details))
}
