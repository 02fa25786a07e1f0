package postgres

import (
	"context"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"gorm.io/gorm"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.ResponseRecord) error {
	return wrap("create response", r.db.WithContext(ctx).Create(response).Error)
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, id string) (*models.ResponseRecord, error) {
	return findOne[models.ResponseRecord](ctx, r.db, "id = ?", id)
}

func (r *ResponsePostgreSQL) GetByIdempotencyKey(ctx context.Context, key string) (*models.ResponseRecord, error) {
	return findOne[models.ResponseRecord](ctx, r.db, "idempotency_key = ?", key)
}

// ListByAssessment pages through responses by submission time
func (r *ResponsePostgreSQL) ListByAssessment(ctx context.Context, assessmentID string, filters repositories.ResponseFilters) ([]*models.ResponseRecord, int64, error) {
	query := responseFilter(filters)(r.db.WithContext(ctx).
		Model(&models.ResponseRecord{}).
		Where("assessment_id = ?", assessmentID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count responses", err)
	}

	var out []*models.ResponseRecord
	err := query.
		Scopes(
			orderBy("submitted_at", filters.SortOrder, nil, "submitted_at"),
			paginate(filters.Limit, filters.Offset),
		).
		Find(&out).Error
	if err != nil {
		return nil, 0, wrap("list responses", err)
	}
	return out, total, nil
}

func (r *ResponsePostgreSQL) CountByAssessment(ctx context.Context, assessmentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ResponseRecord{}).Where("assessment_id = ?", assessmentID).Count(&n).Error
	return n, err
}

func responseFilter(f repositories.ResponseFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CandidateID != nil {
			db = db.Where("candidate_id = ?", *f.CandidateID)
		}
		if f.DateFrom != nil {
			db = db.Where("submitted_at >= ?", *f.DateFrom)
		}
		if f.DateTo != nil {
			db = db.Where("submitted_at <= ?", *f.DateTo)
		}
		return db
	}
}
