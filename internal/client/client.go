// Package client is the HTTP client the web tier uses to talk to the
// job board API service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"
)

// Client calls the API service. Methods taking a token attach it as a
// bearer credential; the API decides whether it is still valid.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the API at baseURL with the given per-request
// timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// APIError is a decoded error response from the API service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// do sends the request and decodes the response into out. Non-2xx
// responses are returned as *APIError.
func (c *Client) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: "Unexpected API response"}
		var envelope errorEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.Details = envelope.Error.Details
		}
		slog.Warn("api call failed",
			"method", req.Method, "url", req.URL.Path,
			"status", resp.StatusCode, "code", apiErr.Code)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding api response: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, token, out)
}

func (c *Client) postJSON(ctx context.Context, path, token string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, token, out)
}

func (c *Client) delete(ctx context.Context, path, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, token, nil)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Profile, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var profile Profile
	if err := c.postJSON(ctx, "/register", "", in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	in := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.postJSON(ctx, "/login", "", in, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListJobs fetches all job listings. No token required.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := c.getJSON(ctx, "/jobs", "", &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// GetJob fetches a single job listing.
func (c *Client) GetJob(ctx context.Context, id int64) (*Job, error) {
	var job Job
	if err := c.getJSON(ctx, "/jobs/"+strconv.FormatInt(id, 10), "", &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateJob posts a new job listing. Requires a signed-in token.
func (c *Client) CreateJob(ctx context.Context, token string, job NewJob) (*Job, error) {
	var created Job
	if err := c.postJSON(ctx, "/jobs", token, job, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteJob removes a job listing. Requires a signed-in token.
func (c *Client) DeleteJob(ctx context.Context, token string, id int64) error {
	return c.delete(ctx, "/jobs/"+strconv.FormatInt(id, 10), token)
}

// Apply submits an application with a PDF résumé.
func (c *Client) Apply(ctx context.Context, token string, jobID, userID int64, coverLetter, cvName string, cv io.Reader) (*ApplicationReceipt, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("cover_letter", coverLetter); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	if err := mw.WriteField("user_id", strconv.FormatInt(userID, 10)); err != nil {
		return nil, fmt.Errorf("writing form field: %w", err)
	}
	part, err := mw.CreateFormFile("cv_file", cvName)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, cv); err != nil {
		return nil, fmt.Errorf("copying resume: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	path := fmt.Sprintf("/jobs/%d/apply", jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var receipt ApplicationReceipt
	if err := c.do(req, token, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListApplications fetches all applications. Requires an admin token.
func (c *Client) ListApplications(ctx context.Context, token string) ([]ApplicationDetail, error) {
	var rows []ApplicationDetail
	if err := c.getJSON(ctx, "/applications", token, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListJobApplications fetches one job's applications. Requires an admin token.
func (c *Client) ListJobApplications(ctx context.Context, token string, jobID int64) ([]ApplicationDetail, error) {
	var rows []ApplicationDetail
	path := fmt.Sprintf("/jobs/%d/applications", jobID)
	if err := c.getJSON(ctx, path, token, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUsers fetches all user profiles. Requires an admin token.
func (c *Client) ListUsers(ctx context.Context, token string) ([]Profile, error) {
	var users []Profile
	if err := c.getJSON(ctx, "/users", token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUser removes an account. Requires an admin token.
func (c *Client) DeleteUser(ctx context.Context, token string, id int64) error {
	return c.delete(ctx, "/users/"+strconv.FormatInt(id, 10), token)
}
