package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/google/uuid"
)

// SaveKind says whether a save created a canonical record or updated one
type SaveKind int

const (
	Created SaveKind = iota + 1
	Updated
)

func (k SaveKind) String() string {
	switch k {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "unknown"
	}
}

// SaveResult is the outcome of a successful save. ID is the canonical id,
// which differs from the local one after a create.
type SaveResult struct {
	Kind       SaveKind
	ID         string
	Assessment *models.Assessment
}

// AuthorDraftClearer deletes the local author draft once the canonical record
// is saved, unless the draft holds edits made after savedAt
type AuthorDraftClearer interface {
	ClearSavedAuthor(ctx context.Context, assessmentID string, savedAt time.Time) bool
}

// AuthorDraftClearerFunc adapts a function to AuthorDraftClearer
type AuthorDraftClearerFunc func(ctx context.Context, assessmentID string, savedAt time.Time) bool

func (f AuthorDraftClearerFunc) ClearSavedAuthor(ctx context.Context, assessmentID string, savedAt time.Time) bool {
	return f(ctx, assessmentID, savedAt)
}

// ReconciliationService maps a locally edited assessment onto the canonical store
type ReconciliationService struct {
	remote    RemoteStore
	drafts    AuthorDraftClearer
	notifier  Notifier
	jobs      *JobDirectory
	validator *validator.Validator
	logger    *slog.Logger
	retry     RetryConfig
	newKey    func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewReconciliationService wires the service. jobs may be nil to skip the
// job association check.
func NewReconciliationService(remote RemoteStore, drafts AuthorDraftClearer, notifier Notifier, jobs *JobDirectory, v *validator.Validator, retry RetryConfig, logger *slog.Logger) *ReconciliationService {
	return &ReconciliationService{
		remote:    remote,
		drafts:    drafts,
		notifier:  notifier,
		jobs:      jobs,
		validator: v,
		logger:    logger,
		retry:     retry,
		newKey:    uuid.NewString,
		inFlight:  make(map[string]struct{}),
	}
}

// Save updates the canonical record when a.ID resolves remotely, and
// creates one otherwise. One idempotency key covers every retry of the
// call, so a create that succeeded on a lost response is not duplicated.
func (s *ReconciliationService) Save(ctx context.Context, a models.Assessment) (SaveResult, error) {
	if errs := s.validator.ValidateAssessment(a); len(errs) > 0 {
		s.notifier.Notify(ctx, NotifyError, errs.First())
		return SaveResult{}, errs
	}
	if s.jobs != nil {
		if _, ok := s.jobs.Lookup(a.JobID); !ok {
			s.notifier.Notify(ctx, NotifyError, "Please select a job for this assessment")
			return SaveResult{}, ErrUnknownJob
		}
	}

	key := flightKey(a)
	if !s.begin(key) {
		s.logger.Debug("Save suppressed, another save is running", "assessment_id", a.ID)
		return SaveResult{}, ErrSaveInProgress
	}
	defer s.end(key)

	idempotencyKey := s.newKey()
	s.logger.Info("Saving assessment", "assessment_id", a.ID, "job_id", a.JobID, "idempotency_key", idempotencyKey)

	var result SaveResult
	attempts, err := s.retry.run(ctx, func() error {
		r, err := s.reconcile(ctx, a, idempotencyKey)
		if err != nil {
			s.logger.Warn("Save attempt failed", "assessment_id", a.ID, "error", err)
			return err
		}
		result = r
		return nil
	})

	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			s.notifier.Notify(ctx, NotifyError, verrs.First())
			return SaveResult{}, verrs
		}
		saveErr := &SaveError{AssessmentID: a.ID, Attempts: attempts, Cause: CauseOf(err), Err: err}
		s.logger.Error("Failed to save assessment", "assessment_id", a.ID, "attempts", attempts, "cause", saveErr.Cause, "error", err)
		s.notifier.Notify(ctx, NotifyError, saveErr.UserMessage())
		return SaveResult{}, saveErr
	}

	// edits made while the save was running stay in the draft
	if a.ID != "" && !s.drafts.ClearSavedAuthor(ctx, a.ID, a.UpdatedAt) {
		s.logger.Info("Kept draft with newer edits", "assessment_id", a.ID)
	}
	if result.ID != a.ID {
		s.drafts.ClearSavedAuthor(ctx, result.ID, a.UpdatedAt)
	}

	s.logger.Info("Assessment saved successfully", "assessment_id", result.ID, "kind", result.Kind, "attempts", attempts)
	s.notifier.Notify(ctx, NotifySuccess, "Assessment saved successfully")
	return result, nil
}

// Saving reports whether a save for the assessment is outstanding
func (s *ReconciliationService) Saving(a models.Assessment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[flightKey(a)]
	return ok
}

func (s *ReconciliationService) reconcile(ctx context.Context, a models.Assessment, idempotencyKey string) (SaveResult, error) {
	if a.ID != "" {
		_, err := s.remote.GetAssessment(ctx, a.ID)
		switch {
		case err == nil:
			updated, err := s.remote.UpdateAssessment(ctx, a)
			if err != nil {
				return SaveResult{}, err
			}
			return SaveResult{Kind: Updated, ID: updated.ID, Assessment: updated}, nil
		case !IsNotFound(err):
			return SaveResult{}, err
		}
	}

	created, err := s.remote.CreateAssessment(ctx, a.JobID, a, idempotencyKey)
	if err != nil {
		return SaveResult{}, err
	}
	return SaveResult{Kind: Created, ID: created.ID, Assessment: created}, nil
}

func (s *ReconciliationService) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

func (s *ReconciliationService) end(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

func flightKey(a models.Assessment) string {
	if a.ID != "" {
		return a.ID
	}
	return "job:" + a.JobID
}
