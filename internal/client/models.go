package client

// Profile is a user as returned by the API.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// LoginResult carries the issued token and the signed-in user's profile.
type LoginResult struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Profile `json:"user"`
}

// Job is a listing as returned by the API.
type Job struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      *float64 `json:"salary"`
	CreatedBy   *int64   `json:"created_by"`
}

// NewJob is the payload for creating a listing.
type NewJob struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      *float64 `json:"salary,omitempty"`
}

// ApplicationReceipt confirms a submitted application.
type ApplicationReceipt struct {
	ID         int64  `json:"id"`
	JobID      int64  `json:"job_id"`
	UserID     int64  `json:"user_id"`
	CvFilename string `json:"cv_filename"`
	Message    string `json:"message"`
}

// ApplicationDetail is a denormalized application row.
type ApplicationDetail struct {
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
