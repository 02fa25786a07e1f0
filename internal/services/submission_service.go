package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/google/uuid"
)

// SubmissionService sends finished responses to the canonical store
type SubmissionService struct {
	remote   RemoteStore
	notifier Notifier
	logger   *slog.Logger
	retry    RetryConfig
	newKey   func() string
}

func NewSubmissionService(remote RemoteStore, notifier Notifier, retry RetryConfig, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{
		remote:   remote,
		notifier: notifier,
		logger:   logger,
		retry:    retry,
		newKey:   uuid.NewString,
	}
}

// Submit retries transient failures under a single idempotency key
func (s *SubmissionService) Submit(ctx context.Context, submission models.Submission) (*models.ResponseRecord, error) {
	idempotencyKey := s.newKey()
	s.logger.Info("Submitting response", "assessment_id", submission.AssessmentID, "candidate_id", submission.CandidateID)

	var record *models.ResponseRecord
	attempts, err := s.retry.run(ctx, func() error {
		r, err := s.remote.SubmitResponse(ctx, submission, idempotencyKey)
		if err != nil {
			s.logger.Warn("Submit attempt failed", "assessment_id", submission.AssessmentID, "error", err)
			return err
		}
		record = r
		return nil
	})

	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.notifier.Notify(ctx, NotifyError, verrs.First())
			return nil, verrs
		}
		saveErr := &SaveError{AssessmentID: submission.AssessmentID, Attempts: attempts, Cause: CauseOf(err), Err: err}
		s.logger.Error("Failed to submit response", "assessment_id", submission.AssessmentID, "attempts", attempts, "error", err)
		s.notifier.Notify(ctx, NotifyError, saveErr.UserMessage())
		return nil, saveErr
	}

	s.logger.Info("Response submitted successfully", "response_id", record.ID, "attempts", attempts)
	s.notifier.Notify(ctx, NotifySuccess, "Assessment submitted successfully")
	return record, nil
}
