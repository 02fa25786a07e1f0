package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/cache"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/google/uuid"
)

type assessmentService struct {
	repo      repositories.Repository
	cache     cache.AssessmentCache
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	ops       *ServiceLogger
	now       func() time.Time
}

func NewAssessmentService(repo repositories.Repository, assessmentCache cache.AssessmentCache, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AssessmentService {
	return &assessmentService{
		repo:      repo,
		cache:     assessmentCache,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		ops:       NewServiceLogger(logger, LogConfig{Service: "assessment-service", Component: "assessments"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ===== CORE OPERATIONS =====

// Create stores a new canonical record under a server-minted id. A repeated
// idempotency key returns the record created by the first call.
func (s *assessmentService) Create(ctx context.Context, jobID string, assessment *models.Assessment, idempotencyKey string) (*models.Assessment, error) {
	op := s.ops.WithOperation(ctx, "create_assessment")
	created, err := s.create(ctx, jobID, assessment, idempotencyKey)
	op.LogResult(assessmentID(created), "assessment", err)
	return created, err
}

func (s *assessmentService) create(ctx context.Context, jobID string, assessment *models.Assessment, idempotencyKey string) (*models.Assessment, error) {
	s.logger.Info("Creating assessment", "job_id", jobID, "title", assessment.Title, "idempotency_key", idempotencyKey)

	record := prepareForStore(*assessment)
	record.ID = uuid.NewString()
	record.JobID = jobID
	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if idempotencyKey != "" {
		record.IdempotencyKey = &idempotencyKey
	}

	if errs := s.validator.ValidateAssessment(record); len(errs) > 0 {
		return nil, errs
	}

	var replay *models.Assessment
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if idempotencyKey != "" {
			existing, err := tx.Assessment().GetByIdempotencyKey(ctx, idempotencyKey)
			if err == nil {
				replay = existing
				return nil
			}
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to check idempotency key: %w", err)
			}
		}
		return tx.Assessment().Create(ctx, &record)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) && idempotencyKey != "" {
			// lost a race with a concurrent retry of the same save
			if existing, getErr := s.repo.Assessment().GetByIdempotencyKey(ctx, idempotencyKey); getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create assessment: %w", err)
	}
	if replay != nil {
		s.logger.Info("Returning assessment from earlier create", "assessment_id", replay.ID)
		return replay, nil
	}

	s.cache.Set(ctx, &record)
	s.publish(ctx, events.EventAssessmentCreated, &record)
	if record.IsPublished {
		s.publish(ctx, events.EventAssessmentPublished, &record)
	}

	s.logger.Info("Assessment created successfully", "assessment_id", record.ID, "job_id", record.JobID)
	return &record, nil
}

// Update replaces the canonical record in place, keeping its id
func (s *assessmentService) Update(ctx context.Context, id string, assessment *models.Assessment) (*models.Assessment, error) {
	op := s.ops.WithOperation(ctx, "update_assessment")
	updated, err := s.update(ctx, id, assessment)
	op.LogResult(id, "assessment", err)
	return updated, err
}

func (s *assessmentService) update(ctx context.Context, id string, assessment *models.Assessment) (*models.Assessment, error) {
	s.logger.Info("Updating assessment", "assessment_id", id)

	existing, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	record := prepareForStore(*assessment)
	record.ID = id
	if record.JobID == "" {
		record.JobID = existing.JobID
	}

	if errs := s.validator.ValidateAssessment(record); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Assessment().Update(ctx, &record); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to update assessment: %w", err)
	}

	s.cache.Invalidate(ctx, existing)
	s.cache.Set(ctx, &record)
	s.publish(ctx, events.EventAssessmentUpdated, &record)
	if record.IsPublished && !existing.IsPublished {
		s.publish(ctx, events.EventAssessmentPublished, &record)
	}

	s.logger.Info("Assessment updated successfully", "assessment_id", id)
	return &record, nil
}

func (s *assessmentService) GetByID(ctx context.Context, id string) (*models.Assessment, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	s.cache.Set(ctx, assessment)
	return assessment, nil
}

// GetByJob returns the most recently updated assessment for the job
func (s *assessmentService) GetByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	if cached, ok := s.cache.GetByJob(ctx, jobID); ok {
		return cached, nil
	}

	assessment, err := s.repo.Assessment().GetByJobID(ctx, jobID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment for job: %w", err)
	}

	s.cache.Set(ctx, assessment)
	return assessment, nil
}

func (s *assessmentService) List(ctx context.Context, filter AssessmentFilter) (*AssessmentListResponse, error) {
	s.logger.Debug("Listing assessments", "job_id", filter.JobID, "search", filter.Search, "status", filter.Status)

	if err := s.validator.Validate(filter); err != nil {
		return nil, err
	}

	assessments, total, err := s.repo.Assessment().List(ctx, repositories.AssessmentFilters{
		JobID:     filter.JobID,
		Search:    filter.Search,
		Status:    filter.Status,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}

	return &AssessmentListResponse{
		Assessments: assessments,
		Total:       total,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}, nil
}

func (s *assessmentService) publish(ctx context.Context, t events.EventType, a *models.Assessment) {
	if err := s.publisher.Publish(ctx, events.NewAssessmentSavedEvent(t, savedEventPayload(a))); err != nil {
		s.logger.Warn("Failed to publish assessment event", "assessment_id", a.ID, "event_type", t, "error", err)
	}
}
