// Package remote provides RemoteStore implementations used by the authoring
// and player sides to reach the canonical store.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
)

// IdempotencyHeader carries the per-save token on create and submit calls
const IdempotencyHeader = "Idempotency-Key"

const apiPrefix = "/api/v1"

// Client talks to the canonical store over its HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// envelope is the shape of every API response body
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
	Code    string          `json:"code,omitempty"`
}

type assessmentList struct {
	Assessments []*models.Assessment `json:"assessments"`
	Total       int64                `json:"total"`
}

type responseList struct {
	Responses []*models.ResponseRecord `json:"responses"`
	Total     int64                    `json:"total"`
}

func (c *Client) ListAssessments(ctx context.Context, filter services.AssessmentFilter) ([]*models.Assessment, error) {
	query := url.Values{}
	if filter.JobID != nil {
		query.Set("job_id", *filter.JobID)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Limit > 0 {
		query.Set("limit", fmt.Sprint(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", fmt.Sprint(filter.Offset))
	}

	var list assessmentList
	if err := c.do(ctx, "list_assessments", http.MethodGet, "/assessments?"+query.Encode(), nil, "", &list); err != nil {
		return nil, err
	}
	return list.Assessments, nil
}

func (c *Client) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.do(ctx, "get_assessment", http.MethodGet, "/assessments/"+url.PathEscape(id), nil, "", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.do(ctx, "get_assessment_by_job", http.MethodGet, "/jobs/"+url.PathEscape(jobID)+"/assessment", nil, "", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateAssessment(ctx context.Context, jobID string, assessment models.Assessment, idempotencyKey string) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.do(ctx, "create_assessment", http.MethodPost, "/jobs/"+url.PathEscape(jobID)+"/assessment", assessment, idempotencyKey, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAssessment(ctx context.Context, assessment models.Assessment) (*models.Assessment, error) {
	var a models.Assessment
	if err := c.do(ctx, "update_assessment", http.MethodPut, "/assessments/"+url.PathEscape(assessment.ID), assessment, "", &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) SubmitResponse(ctx context.Context, submission models.Submission, idempotencyKey string) (*models.ResponseRecord, error) {
	var r models.ResponseRecord
	path := "/assessments/" + url.PathEscape(submission.AssessmentID) + "/responses"
	if err := c.do(ctx, "submit_response", http.MethodPost, path, submission, idempotencyKey, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) ListResponses(ctx context.Context, assessmentID string) ([]*models.ResponseRecord, error) {
	var list responseList
	if err := c.do(ctx, "list_responses", http.MethodGet, "/assessments/"+url.PathEscape(assessmentID)+"/responses", nil, "", &list); err != nil {
		return nil, err
	}
	return list.Responses, nil
}

// do sends one request and decodes the data field of the reply into out.
// Failures come back as *services.RemoteError.
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, idempotencyKey string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return services.NewPermanentError(op, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return services.NewPermanentError(op, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set(IdempotencyHeader, idempotencyKey)
	}

	c.logger.Debug("Remote request", "op", op, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.NewTransientError(op, services.CauseCommunication, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.NewTransientError(op, services.CauseCommunication, fmt.Errorf("failed to read response body: %w", err))
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return services.NewTransientError(op, services.CauseServer, fmt.Errorf("failed to decode response: %w", err))
		}
	}

	if resp.StatusCode >= 400 {
		remoteErr := classify(op, resp.StatusCode, env)
		c.logger.Warn("Remote request failed", "op", op, "status_code", resp.StatusCode, "class", remoteErr.Class, "message", env.Message)
		return remoteErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return services.NewTransientError(op, services.CauseServer, fmt.Errorf("failed to decode response data: %w", err))
		}
	}
	return nil
}

// classify turns an error status into a RemoteError. 429 and 5xx are worth
// retrying; every other 4xx is not.
func classify(op string, status int, env envelope) *services.RemoteError {
	message := env.Message
	if message == "" {
		message = http.StatusText(status)
	}

	var remoteErr *services.RemoteError
	switch {
	case status == http.StatusNotFound:
		remoteErr = services.NewPermanentError(op, fmt.Errorf("%s: %w", message, services.ErrAssessmentNotFound))
	case status == http.StatusConflict:
		remoteErr = services.NewPermanentError(op, fmt.Errorf("%s: %w", message, services.ErrConflict))
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if verrs := decodeValidation(env.Details); len(verrs) > 0 {
			remoteErr = services.NewPermanentError(op, verrs)
		} else {
			remoteErr = services.NewPermanentError(op, fmt.Errorf("%s: %w", message, services.ErrBadRequest))
		}
	case status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable:
		remoteErr = services.NewTransientError(op, services.CauseUnavailable, errors.New(message))
	case status >= 500:
		remoteErr = services.NewTransientError(op, services.CauseServer, errors.New(message))
	default:
		remoteErr = services.NewPermanentError(op, errors.New(message))
	}
	remoteErr.StatusCode = status
	return remoteErr
}

func decodeValidation(details json.RawMessage) services.ValidationErrors {
	if len(details) == 0 {
		return nil
	}
	var verrs services.ValidationErrors
	if err := json.Unmarshal(details, &verrs); err != nil {
		return nil
	}
	return verrs
}

var _ services.RemoteStore = (*Client)(nil)
