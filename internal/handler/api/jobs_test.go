package api

import (
	"net/http"
	"testing"

	"jobdesk/internal/store"
)

func TestListJobs(t *testing.T) {
	t.Run("empty board returns empty list", func(t *testing.T) {
		_, h := testSetup(t)

		w := executeHandler(t, h.ListJobs, newGetRequest(t, "/jobs", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("ListJobs returned status %d, want %d", w.Code, http.StatusOK)
		}
		if body := w.Body.String(); body != "[]\n" {
			t.Errorf("body = %q, want empty JSON array", body)
		}
	})

	t.Run("returns all jobs", func(t *testing.T) {
		db, h := testSetup(t)
		salary := 85000.50
		createTestJob(t, db, "Backend Engineer", "Acme", &salary)
		createTestJob(t, db, "SRE", "Initech", nil)

		w := executeHandler(t, h.ListJobs, newGetRequest(t, "/jobs", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("ListJobs returned status %d, want %d", w.Code, http.StatusOK)
		}

		jobs := unmarshalBody[[]JobResponse](t, w)
		if len(jobs) != 2 {
			t.Fatalf("got %d jobs, want 2", len(jobs))
		}
		if jobs[0].Salary == nil || *jobs[0].Salary != salary {
			t.Errorf("salary = %v, want %v", jobs[0].Salary, salary)
		}
		if jobs[1].Salary != nil {
			t.Errorf("expected null salary, got %v", *jobs[1].Salary)
		}
	})
}

func TestGetJob(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, h := testSetup(t)
		job := createTestJob(t, db, "Backend Engineer", "Acme", nil)

		req := newGetRequest(t, "/jobs/1", map[string]string{"id": "1"})
		w := executeHandler(t, h.GetJob, req)

		if w.Code != http.StatusOK {
			t.Fatalf("GetJob returned status %d, want %d", w.Code, http.StatusOK)
		}
		if got := unmarshalBody[JobResponse](t, w); got.ID != job.ID || got.Title != job.Title {
			t.Errorf("got job %+v, want id=%d title=%q", got, job.ID, job.Title)
		}
	})

	t.Run("missing job is 404", func(t *testing.T) {
		_, h := testSetup(t)

		req := newGetRequest(t, "/jobs/99", map[string]string{"id": "99"})
		w := executeHandler(t, h.GetJob, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("GetJob returned status %d, want %d", w.Code, http.StatusNotFound)
		}
		if code := errorCode(t, w); code != "not_found" {
			t.Errorf("error code = %q, want %q", code, "not_found")
		}
	})

	t.Run("non-numeric ID is 400", func(t *testing.T) {
		_, h := testSetup(t)

		req := newGetRequest(t, "/jobs/abc", map[string]string{"id": "abc"})
		w := executeHandler(t, h.GetJob, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("GetJob returned status %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestCreateJob(t *testing.T) {
	t.Run("creates job with creator from token", func(t *testing.T) {
		db, h := testSetup(t)
		admin := createTestUser(t, db, "admin", "admin@example.com", store.RoleAdmin)

		req := newJSONRequest(t, http.MethodPost, "/jobs",
			`{"title":"Backend Engineer","description":"Go services","company":"Acme","location":"Remote","salary":90000}`, nil)
		req = requestWithClaims(req, admin)
		w := executeHandler(t, h.CreateJob, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("CreateJob returned status %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
		}

		job := unmarshalBody[JobResponse](t, w)
		if job.ID == 0 {
			t.Error("expected non-zero job ID")
		}
		if job.CreatedBy == nil || *job.CreatedBy != admin.ID {
			t.Errorf("created_by = %v, want %d", job.CreatedBy, admin.ID)
		}
		if job.Salary == nil || *job.Salary != 90000 {
			t.Errorf("salary = %v, want 90000", job.Salary)
		}
	})

	t.Run("salary is optional", func(t *testing.T) {
		db, h := testSetup(t)
		admin := createTestUser(t, db, "admin", "admin@example.com", store.RoleAdmin)

		req := newJSONRequest(t, http.MethodPost, "/jobs",
			`{"title":"SRE","description":"","company":"Initech","location":"Berlin"}`, nil)
		req = requestWithClaims(req, admin)
		w := executeHandler(t, h.CreateJob, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("CreateJob returned status %d, want %d", w.Code, http.StatusCreated)
		}
		if job := unmarshalBody[JobResponse](t, w); job.Salary != nil {
			t.Errorf("expected null salary, got %v", *job.Salary)
		}
	})

	t.Run("no claims is unauthorized", func(t *testing.T) {
		_, h := testSetup(t)

		req := newJSONRequest(t, http.MethodPost, "/jobs",
			`{"title":"SRE","company":"Initech","location":"Berlin"}`, nil)
		w := executeHandler(t, h.CreateJob, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("CreateJob returned status %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name  string
			body  string
			field string
		}{
			{"missing title", `{"company":"Acme","location":"Remote"}`, "title"},
			{"missing company", `{"title":"SRE","location":"Remote"}`, "company"},
			{"missing location", `{"title":"SRE","company":"Acme"}`, "location"},
			{"negative salary", `{"title":"SRE","company":"Acme","location":"Remote","salary":-1}`, "salary"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				db, h := testSetup(t)
				admin := createTestUser(t, db, "admin", "admin@example.com", store.RoleAdmin)

				req := newJSONRequest(t, http.MethodPost, "/jobs", tt.body, nil)
				req = requestWithClaims(req, admin)
				w := executeHandler(t, h.CreateJob, req)

				if w.Code != http.StatusUnprocessableEntity {
					t.Fatalf("CreateJob returned status %d, want %d", w.Code, http.StatusUnprocessableEntity)
				}
				if resp := unmarshalBody[ErrorResponse](t, w); resp.Error.Details[tt.field] == "" {
					t.Errorf("expected details to mention %q, got %v", tt.field, resp.Error.Details)
				}
			})
		}
	})
}

func TestDeleteJob(t *testing.T) {
	t.Run("deletes job and its applications", func(t *testing.T) {
		db, h := testSetup(t)
		user := createTestUser(t, db, "alice", "alice@example.com", store.RoleClient)
		job := createTestJob(t, db, "Backend Engineer", "Acme", nil)
		createTestApplication(t, db, job.ID, user.ID, "cv_test.pdf")

		req := newDeleteRequest(t, "/jobs/1", map[string]string{"id": "1"})
		w := executeHandler(t, h.DeleteJob, req)

		if w.Code != http.StatusOK {
			t.Fatalf("DeleteJob returned status %d, want %d", w.Code, http.StatusOK)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM applications WHERE job_id = ?`, job.ID).Scan(&count); err != nil {
			t.Fatalf("failed to count applications: %v", err)
		}
		if count != 0 {
			t.Errorf("got %d applications after delete, want 0", count)
		}
	})

	t.Run("missing job is 404", func(t *testing.T) {
		_, h := testSetup(t)

		req := newDeleteRequest(t, "/jobs/42", map[string]string{"id": "42"})
		w := executeHandler(t, h.DeleteJob, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("DeleteJob returned status %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}
