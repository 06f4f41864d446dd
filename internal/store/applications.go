package store

import (
	"context"
	"time"
)

const createApplication = `
INSERT INTO applications (job_id, user_id, cv_filename, cover_letter, applied_at)
VALUES (?, ?, ?, ?, ?)
`

// CreateApplicationParams holds the fields for CreateApplication.
type CreateApplicationParams struct {
	JobID       int64
	UserID      int64
	CvFilename  string
	CoverLetter string
	AppliedAt   time.Time
}

// CreateApplication inserts a new application and returns it with the
// assigned ID.
func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (Application, error) {
	result, err := q.db.ExecContext(ctx, createApplication,
		arg.JobID, arg.UserID, arg.CvFilename, arg.CoverLetter, arg.AppliedAt)
	if err != nil {
		return Application{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Application{}, err
	}
	return Application{
		ID:          id,
		JobID:       arg.JobID,
		UserID:      arg.UserID,
		CvFilename:  arg.CvFilename,
		CoverLetter: arg.CoverLetter,
		AppliedAt:   arg.AppliedAt,
	}, nil
}

const applicationDetailColumns = `
SELECT a.id, a.job_id, j.title, a.user_id, u.username, u.email,
       a.cv_filename, a.cover_letter, a.applied_at
FROM applications a
JOIN jobs j ON j.id = a.job_id
JOIN users u ON u.id = a.user_id
`

const listApplicationDetailsByJob = applicationDetailColumns + `
WHERE a.job_id = ? ORDER BY a.id
`

// ListApplicationDetailsByJob returns denormalized applications for one job.
func (q *Queries) ListApplicationDetailsByJob(ctx context.Context, jobID int64) ([]ApplicationDetail, error) {
	rows, err := q.db.QueryContext(ctx, listApplicationDetailsByJob, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplicationDetails(rows)
}

const listApplicationDetails = applicationDetailColumns + `
ORDER BY a.id
`

// ListApplicationDetails returns all denormalized applications, unscoped.
func (q *Queries) ListApplicationDetails(ctx context.Context) ([]ApplicationDetail, error) {
	rows, err := q.db.QueryContext(ctx, listApplicationDetails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplicationDetails(rows)
}

const countApplicationsByJob = `SELECT COUNT(*) FROM applications WHERE job_id = ?`

// CountApplicationsByJob returns the number of applications against one job.
func (q *Queries) CountApplicationsByJob(ctx context.Context, jobID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countApplicationsByJob, jobID).Scan(&n)
	return n, err
}

const listCVFilenames = `SELECT DISTINCT cv_filename FROM applications`

// ListCVFilenames returns every stored resume name still referenced by an
// application.
func (q *Queries) ListCVFilenames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listCVFilenames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanApplicationDetails(rows rowScanner) ([]ApplicationDetail, error) {
	var details []ApplicationDetail
	for rows.Next() {
		var d ApplicationDetail
		if err := rows.Scan(&d.ID, &d.JobID, &d.JobTitle, &d.UserID, &d.Username,
			&d.Email, &d.CvFilename, &d.CoverLetter, &d.AppliedAt); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
