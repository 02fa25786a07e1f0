package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type AssessmentFilters struct {
	JobID     *string `json:"job_id"`
	Search    string  `json:"search"`
	Status    string  `json:"status" validate:"publish_status"` // "published", "draft", "" for both
	Limit     int     `json:"limit" validate:"min=0,max=100"`
	Offset    int     `json:"offset" validate:"min=0"`
	SortBy    string  `json:"sort_by"`    // "created_at", "updated_at", "title"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	CandidateID *string    `json:"candidate_id"`
	DateFrom    *time.Time `json:"date_from"`
	DateTo      *time.Time `json:"date_to"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
	SortOrder   string     `json:"sort_order"` // by submitted_at
}

// Repository groups the canonical store's repositories
type Repository interface {
	Assessment() AssessmentRepository
	Response() ResponseRepository

	// WithTransaction runs fn against repositories bound to one transaction
	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err means the record does not exist
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique constraint violation
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
