package repositories

import (
	"context"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// AssessmentRepository interface for canonical assessment records
type AssessmentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, assessment *models.Assessment) error
	GetByID(ctx context.Context, id string) (*models.Assessment, error)
	Update(ctx context.Context, assessment *models.Assessment) error
	Delete(ctx context.Context, id string) error

	// Query operations
	List(ctx context.Context, filters AssessmentFilters) ([]*models.Assessment, int64, error)
	GetByJobID(ctx context.Context, jobID string) (*models.Assessment, error) // most recently updated
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Assessment, error)

	// Validation helpers
	ExistsByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// ResponseRepository interface for submitted candidate responses
type ResponseRepository interface {
	Create(ctx context.Context, response *models.ResponseRecord) error
	GetByID(ctx context.Context, id string) (*models.ResponseRecord, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.ResponseRecord, error)
	ListByAssessment(ctx context.Context, assessmentID string, filters ResponseFilters) ([]*models.ResponseRecord, int64, error)
	CountByAssessment(ctx context.Context, assessmentID string) (int64, error)
}
