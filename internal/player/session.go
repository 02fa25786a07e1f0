// Package player walks a candidate through an assessment one section at a time.
//
// A Session owns the candidate's answers. Every recorded answer re-evaluates
// visibility for the current and later sections before returning, and
// re-arms the debounced response draft. Hidden questions are never validated
// and never submitted.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/drafts"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/visibility"
)

var (
	ErrNoSections      = errors.New("assessment has no sections")
	ErrCompleted       = errors.New("assessment already submitted")
	ErrUnknownQuestion = errors.New("question not found")
	ErrHiddenQuestion  = errors.New("question is not visible")
	ErrNotStarted      = errors.New("session not started")
)

// Submitter delivers the finished response to the canonical store
type Submitter interface {
	Submit(ctx context.Context, submission models.Submission) (*models.ResponseRecord, error)
}

// State is the position of a session: a section index, or completed
type State struct {
	Section   int
	Completed bool
}

type Progress struct {
	Answered int
	Total    int
}

// Percent is 100 when nothing is visible
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 100
	}
	return p.Answered * 100 / p.Total
}

type Config struct {
	CandidateID string
	// Now defaults to the wall clock
	Now func() time.Time
}

type Session struct {
	assessment models.Assessment
	drafts     *drafts.Store
	validator  *validator.Validator
	submitter  Submitter
	logger     *slog.Logger
	cfg        Config

	mu         sync.Mutex
	started    bool
	submitting bool
	state      State
	answers    models.AnswerMap
	visible    map[string]bool
	startedAt  time.Time
	record     *models.ResponseRecord
}

func NewSession(a models.Assessment, store *drafts.Store, v *validator.Validator, submitter Submitter, cfg Config, logger *slog.Logger) (*Session, error) {
	if len(a.Sections) == 0 {
		return nil, ErrNoSections
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		assessment: a.Clone(),
		drafts:     store,
		validator:  v,
		submitter:  submitter,
		logger:     logger.With("assessment_id", a.ID, "candidate_id", cfg.CandidateID),
		cfg:        cfg,
		answers:    models.AnswerMap{},
		visible:    map[string]bool{},
	}, nil
}

// Start restores a saved response draft when there is one and positions the
// session on the latest section holding an answered question. It reports
// whether a draft was restored.
func (s *Session) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.started = true
	s.startedAt = s.cfg.Now()
	s.state = State{}
	s.answers = models.AnswerMap{}

	restored := false
	if draft := s.drafts.LoadResponse(ctx, s.assessment.ID); draft != nil {
		s.answers = draft.Answers.Clone()
		s.state.Section = s.latestAnsweredSection()
		restored = len(s.answers) > 0
		s.logger.Info("Response draft restored", "answers", len(s.answers), "section", s.state.Section)
	}

	s.visible = visibility.Map(s.assessment, s.answers)
	return restored
}

// latestAnsweredSection scans sections from the last one backwards
func (s *Session) latestAnsweredSection() int {
	for i := len(s.assessment.Sections) - 1; i >= 0; i-- {
		for _, id := range s.assessment.Sections[i].QuestionIDs {
			if answer, ok := s.answers[id]; ok && !answer.IsEmpty() {
				return i
			}
		}
	}
	return 0
}

// RecordAnswer stores answer for questionID and schedules a draft write.
// An empty answer clears the question.
func (s *Session) RecordAnswer(questionID string, answer models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return err
	}
	if _, ok := s.assessment.Questions[questionID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if !s.visible[questionID] {
		return fmt.Errorf("%w: %s", ErrHiddenQuestion, questionID)
	}

	if answer.IsEmpty() {
		delete(s.answers, questionID)
	} else {
		s.answers[questionID] = answer.Clone()
	}
	s.drafts.ScheduleResponse(s.assessment.ID, s.answers)

	for id, shown := range visibility.From(s.assessment, s.state.Section, s.answers) {
		s.visible[id] = shown
	}
	return nil
}

// Next validates the visible answers of the current section and advances.
// On the last section it submits the response instead. Validation failures
// come back as validator.ValidationErrors, one per violated question.
func (s *Session) Next(ctx context.Context) (State, error) {
	s.mu.Lock()
	if err := s.checkActive(); err != nil {
		s.mu.Unlock()
		return s.state, err
	}
	if errs := s.validator.ValidateSectionAnswers(s.assessment, s.state.Section, s.answers); len(errs) > 0 {
		state := s.state
		s.mu.Unlock()
		return state, errs
	}

	if s.state.Section < len(s.assessment.Sections)-1 {
		s.state.Section++
		state := s.state
		s.mu.Unlock()
		return state, nil
	}

	submission := models.Submission{
		AssessmentID:   s.assessment.ID,
		CandidateID:    s.cfg.CandidateID,
		Answers:        visibility.VisibleAnswers(s.assessment, s.answers),
		ElapsedSeconds: int(s.cfg.Now().Sub(s.startedAt).Seconds()),
	}
	s.submitting = true
	s.mu.Unlock()

	// the submit call can be slow; readers may inspect the session meanwhile
	record, err := s.submitter.Submit(ctx, submission)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.logger.Warn("Submission failed, keeping response draft", "error", err)
		s.drafts.CancelResponse(s.assessment.ID)
		s.drafts.SaveResponse(ctx, s.assessment.ID, s.answers)
		return s.state, err
	}

	s.drafts.ClearResponse(ctx, s.assessment.ID)
	s.record = record
	s.state.Completed = true
	s.logger.Info("Assessment completed", "response_id", record.ID, "elapsed_seconds", submission.ElapsedSeconds)
	return s.state, nil
}

// Validate checks the visible answers of the current section without moving
func (s *Session) Validate() validator.ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validator.ValidateSectionAnswers(s.assessment, s.state.Section, s.answers)
}

// Previous moves back one section. It is a no-op on the first section.
func (s *Session) Previous() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkActive() == nil && s.state.Section > 0 {
		s.state.Section--
	}
	return s.state
}

// Close cancels the pending draft write. A draft already on disk is kept so
// a later session can resume from it.
func (s *Session) Close() {
	s.drafts.CancelResponse(s.assessment.ID)
}

// Restart throws away every answer, including the stored draft
func (s *Session) Restart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts.ClearResponse(ctx, s.assessment.ID)
	s.started = true
	s.state = State{}
	s.answers = models.AnswerMap{}
	s.visible = visibility.Map(s.assessment, s.answers)
	s.record = nil
	s.startedAt = s.cfg.Now()
	s.logger.Info("Session restarted")
}

func (s *Session) checkActive() error {
	switch {
	case !s.started:
		return ErrNotStarted
	case s.state.Completed, s.submitting:
		return ErrCompleted
	}
	return nil
}

func (s *Session) Assessment() models.Assessment {
	return s.assessment
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Section() models.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessment.Sections[s.state.Section]
}

func (s *Session) IsLastSection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Section == len(s.assessment.Sections)-1
}

// Questions returns the visible questions of the current section, in order
func (s *Session) Questions() []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Question
	for _, q := range s.assessment.SectionQuestions(s.state.Section) {
		if s.visible[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

func (s *Session) Visible(questionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[questionID]
}

func (s *Session) Answer(questionID string) (models.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, ok := s.answers[questionID]
	return answer.Clone(), ok
}

func (s *Session) Answers() models.AnswerMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Progress counts answered questions among those currently visible, across all sections
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	var p Progress
	for id, shown := range s.visible {
		if !shown {
			continue
		}
		p.Total++
		if answer, ok := s.answers[id]; ok && !answer.IsEmpty() {
			p.Answered++
		}
	}
	return p
}

// TimeRemaining reports the time left under the assessment's limit, if it has one
func (s *Session) TimeRemaining() (time.Duration, bool) {
	if s.assessment.TimeLimit == nil {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := time.Duration(*s.assessment.TimeLimit) * time.Minute
	remaining := limit - s.cfg.Now().Sub(s.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// DraftStatus reports whether recent answers are still waiting to be written
// and whether draft storage has stopped working
func (s *Session) DraftStatus() (pending, degraded bool) {
	return s.drafts.ResponsePending(s.assessment.ID), s.drafts.Degraded()
}

// Record is the stored response once the session has completed
func (s *Session) Record() *models.ResponseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}
