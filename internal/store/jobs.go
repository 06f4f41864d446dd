package store

import (
	"context"
	"database/sql"
	"time"
)

const createJob = `
INSERT INTO jobs (title, description, company, location, salary, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// CreateJobParams holds the fields for CreateJob.
type CreateJobParams struct {
	Title       string
	Description string
	Company     string
	Location    string
	Salary      sql.NullFloat64
	CreatedBy   sql.NullInt64
	CreatedAt   time.Time
}

// CreateJob inserts a new job listing and returns it with the assigned ID.
func (q *Queries) CreateJob(ctx context.Context, arg CreateJobParams) (Job, error) {
	result, err := q.db.ExecContext(ctx, createJob,
		arg.Title, arg.Description, arg.Company, arg.Location, arg.Salary, arg.CreatedBy, arg.CreatedAt)
	if err != nil {
		return Job{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Job{}, err
	}
	return Job{
		ID:          id,
		Title:       arg.Title,
		Description: arg.Description,
		Company:     arg.Company,
		Location:    arg.Location,
		Salary:      arg.Salary,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   arg.CreatedAt,
	}, nil
}

const getJobByID = `
SELECT id, title, description, company, location, salary, created_by, created_at
FROM jobs WHERE id = ?
`

// GetJobByID fetches a job listing by primary key.
func (q *Queries) GetJobByID(ctx context.Context, id int64) (Job, error) {
	row := q.db.QueryRowContext(ctx, getJobByID, id)
	var j Job
	err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Company, &j.Location,
		&j.Salary, &j.CreatedBy, &j.CreatedAt)
	return j, err
}

const listJobs = `
SELECT id, title, description, company, location, salary, created_by, created_at
FROM jobs ORDER BY id
`

// ListJobs returns all job listings ordered by ID.
func (q *Queries) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := q.db.QueryContext(ctx, listJobs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Description, &j.Company, &j.Location,
			&j.Salary, &j.CreatedBy, &j.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

const deleteJob = `DELETE FROM jobs WHERE id = ?`

// DeleteJob removes a job listing. Its applications are removed by the
// ON DELETE CASCADE constraint.
func (q *Queries) DeleteJob(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteJob, id)
	return err
}
