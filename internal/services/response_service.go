package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/visibility"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const responsePageSize = 100

type responseService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	ops       *ServiceLogger
	now       func() time.Time
}

func NewResponseService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ResponseService {
	return &responseService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		ops:       NewServiceLogger(logger, LogConfig{Service: "assessment-service", Component: "responses"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit re-checks the answers against the canonical assessment and stores
// only the answers to questions visible at submission time.
func (s *responseService) Submit(ctx context.Context, submission *models.Submission, idempotencyKey string) (*models.ResponseRecord, error) {
	op := s.ops.WithOperation(ctx, "submit_response")
	record, err := s.submit(ctx, submission, idempotencyKey)
	responseID := ""
	if record != nil {
		responseID = record.ID
	}
	op.LogResult(responseID, "response", err)
	return record, err
}

func (s *responseService) submit(ctx context.Context, submission *models.Submission, idempotencyKey string) (*models.ResponseRecord, error) {
	s.logger.Info("Submitting response",
		"assessment_id", submission.AssessmentID,
		"candidate_id", submission.CandidateID,
		"answers", len(submission.Answers))

	if err := s.validator.Validate(submission); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		existing, err := s.repo.Response().GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, submission.AssessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	answers := visibility.VisibleAnswers(*assessment, submission.Answers)
	if errs := s.validator.ValidateResponse(*assessment, answers); len(errs) > 0 {
		s.logger.Warn("Rejected response", "assessment_id", assessment.ID, "violations", len(errs), "first", errs.First())
		return nil, errs
	}

	record := &models.ResponseRecord{
		ID:             uuid.NewString(),
		AssessmentID:   assessment.ID,
		CandidateID:    submission.CandidateID,
		Answers:        datatypes.NewJSONType(answers),
		ElapsedSeconds: submission.ElapsedSeconds,
		SubmittedAt:    s.now(),
	}
	if idempotencyKey != "" {
		record.IdempotencyKey = &idempotencyKey
	}

	if err := s.repo.Response().Create(ctx, record); err != nil {
		if repositories.IsDuplicateError(err) && idempotencyKey != "" {
			if existing, getErr := s.repo.Response().GetByIdempotencyKey(ctx, idempotencyKey); getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to store response: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.NewResponseSubmittedEvent(submittedEventPayload(record))); err != nil {
		s.logger.Warn("Failed to publish response event", "response_id", record.ID, "error", err)
	}

	s.logger.Info("Response submitted successfully", "response_id", record.ID, "assessment_id", record.AssessmentID)
	return record, nil
}

// List returns every response to the assessment, oldest first
func (s *responseService) List(ctx context.Context, assessmentID string, from, to *time.Time) (*ResponseListResponse, error) {
	exists, err := s.repo.Assessment().ExistsByID(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assessment: %w", err)
	}
	if !exists {
		return nil, ErrAssessmentNotFound
	}

	filters := repositories.ResponseFilters{
		DateFrom:  from,
		DateTo:    to,
		Limit:     responsePageSize,
		SortOrder: "asc",
	}

	var all []*models.ResponseRecord
	var total int64
	for {
		page, count, err := s.repo.Response().ListByAssessment(ctx, assessmentID, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list responses: %w", err)
		}
		total = count
		all = append(all, page...)
		if len(page) < responsePageSize || int64(len(all)) >= total {
			break
		}
		filters.Offset += len(page)
	}

	return &ResponseListResponse{Responses: all, Total: total}, nil
}
