package services

import (
	"context"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// AssessmentFilter narrows ListAssessments
type AssessmentFilter struct {
	JobID     *string `json:"jobId,omitempty" form:"job_id"`
	Search    string  `json:"search,omitempty" form:"search" validate:"max=200"`
	Status    string  `json:"status,omitempty" form:"status" validate:"publish_status"`
	Limit     int     `json:"limit,omitempty" form:"limit" validate:"min=0,max=100"`
	Offset    int     `json:"offset,omitempty" form:"offset" validate:"min=0"`
	SortBy    string  `json:"sortBy,omitempty" form:"sort_by"`
	SortOrder string  `json:"sortOrder,omitempty" form:"sort_order"`
}

type AssessmentListResponse struct {
	Assessments []*models.Assessment `json:"assessments"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

type ResponseListResponse struct {
	Responses []*models.ResponseRecord `json:"responses"`
	Total     int64                    `json:"total"`
}

// AssessmentService is the canonical store behind the HTTP API
type AssessmentService interface {
	Create(ctx context.Context, jobID string, assessment *models.Assessment, idempotencyKey string) (*models.Assessment, error)
	Update(ctx context.Context, id string, assessment *models.Assessment) (*models.Assessment, error)
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	GetByJob(ctx context.Context, jobID string) (*models.Assessment, error)
	List(ctx context.Context, filter AssessmentFilter) (*AssessmentListResponse, error)
}

// ResponseService stores candidate submissions
type ResponseService interface {
	Submit(ctx context.Context, submission *models.Submission, idempotencyKey string) (*models.ResponseRecord, error)
	List(ctx context.Context, assessmentID string, from, to *time.Time) (*ResponseListResponse, error)
}

// RemoteStore is the canonical store as seen by the authoring and player
// sides. Implementations classify failures with RemoteError.
type RemoteStore interface {
	ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*models.Assessment, error)
	GetAssessment(ctx context.Context, id string) (*models.Assessment, error)
	GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error)
	CreateAssessment(ctx context.Context, jobID string, assessment models.Assessment, idempotencyKey string) (*models.Assessment, error)
	UpdateAssessment(ctx context.Context, assessment models.Assessment) (*models.Assessment, error)
	SubmitResponse(ctx context.Context, submission models.Submission, idempotencyKey string) (*models.ResponseRecord, error)
	ListResponses(ctx context.Context, assessmentID string) ([]*models.ResponseRecord, error)
}
