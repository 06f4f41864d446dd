package store

import (
	"context"
	"database/sql"
	"time"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Job is a posted opening.
type Job struct {
	ID          int64
	Title       string
	Description string
	Company     string
	Location    string
	Salary      sql.NullFloat64
	CreatedBy   sql.NullInt64
	CreatedAt   time.Time
}

// Application is a candidate's submission against one job.
type Application struct {
	ID          int64
	JobID       int64
	UserID      int64
	CvFilename  string
	CoverLetter string
	AppliedAt   time.Time
}

// ApplicationDetail is an application joined with applicant and job
// display fields, as returned by the application listing endpoints.
type ApplicationDetail struct {
	ID          int64
	JobID       int64
	JobTitle    string
	UserID      int64
	Username    string
	Email       string
	CvFilename  string
	CoverLetter string
	AppliedAt   time.Time
}

// DBTX is the subset of *sql.DB / *sql.Tx used by the query layer.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries provides typed access to the database.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries instance bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
