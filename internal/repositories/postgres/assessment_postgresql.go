package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"gorm.io/gorm"
)

var assessmentSortColumns = []string{"created_at", "updated_at", "title"}

type AssessmentPostgreSQL struct {
	db *gorm.DB
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db}
}

// Create inserts a canonical assessment under the id the service minted
func (a *AssessmentPostgreSQL) Create(ctx context.Context, assessment *models.Assessment) error {
	if assessment.ID == "" {
		return errors.New("create assessment: missing id")
	}
	return wrap("create assessment", a.db.WithContext(ctx).Create(assessment).Error)
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	return findOne[models.Assessment](ctx, a.db, "id = ?", id)
}

// GetByJobID returns the most recently updated assessment of a job
func (a *AssessmentPostgreSQL) GetByJobID(ctx context.Context, jobID string) (*models.Assessment, error) {
	return findOne[models.Assessment](ctx, a.db.Order("updated_at DESC"), "job_id = ?", jobID)
}

// GetByIdempotencyKey finds the record an earlier attempt of the same save created
func (a *AssessmentPostgreSQL) GetByIdempotencyKey(ctx context.Context, key string) (*models.Assessment, error) {
	return findOne[models.Assessment](ctx, a.db, "idempotency_key = ?", key)
}

// Update replaces the record in place, keeping its creation time and the
// idempotency key of the original create.
func (a *AssessmentPostgreSQL) Update(ctx context.Context, assessment *models.Assessment) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findOne[models.Assessment](ctx, tx, "id = ?", assessment.ID)
		if err != nil {
			return wrap("update assessment", err)
		}
		assessment.CreatedAt = current.CreatedAt
		assessment.IdempotencyKey = current.IdempotencyKey
		assessment.UpdatedAt = time.Now().UTC()
		return wrap("update assessment", tx.Save(assessment).Error)
	})
}

func (a *AssessmentPostgreSQL) Delete(ctx context.Context, id string) error {
	res := a.db.WithContext(ctx).Delete(&models.Assessment{}, "id = ?", id)
	switch {
	case res.Error != nil:
		return wrap("delete assessment", res.Error)
	case res.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, filters repositories.AssessmentFilters) ([]*models.Assessment, int64, error) {
	query := assessmentFilter(filters)(a.db.WithContext(ctx).Model(&models.Assessment{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrap("count assessments", err)
	}

	var out []*models.Assessment
	err := query.
		Scopes(
			orderBy(filters.SortBy, filters.SortOrder, assessmentSortColumns, "updated_at"),
			paginate(filters.Limit, filters.Offset),
		).
		Find(&out).Error
	if err != nil {
		return nil, 0, wrap("list assessments", err)
	}
	return out, total, nil
}

func (a *AssessmentPostgreSQL) ExistsByID(ctx context.Context, id string) (bool, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&models.Assessment{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (a *AssessmentPostgreSQL) Count(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&models.Assessment{}).Count(&n).Error
	return n, err
}

func assessmentFilter(f repositories.AssessmentFilters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.JobID != nil {
			db = db.Where("job_id = ?", *f.JobID)
		}
		if f.Status != "" {
			db = db.Where("is_published = ?", f.Status == models.StatusPublished)
		}
		if search := strings.TrimSpace(f.Search); search != "" {
			// LOWER/LIKE runs on both postgres and sqlite
			pattern := "%" + strings.ToLower(search) + "%"
			db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}
		return db
	}
}
