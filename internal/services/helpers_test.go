package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/cache"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories/postgres"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) repositories.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))
	return postgres.NewRepository(db)
}

type serverFixture struct {
	repo        repositories.Repository
	publisher   *events.MockEventPublisher
	assessments AssessmentService
	responses   ResponseService
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()
	repo := newTestRepo(t)
	publisher := events.NewMockEventPublisher(testLogger())
	v := validator.New()
	return &serverFixture{
		repo:        repo,
		publisher:   publisher,
		assessments: NewAssessmentService(repo, cache.NewAssessmentCache(cache.NoopCache{}, time.Minute, testLogger()), publisher, testLogger(), v),
		responses:   NewResponseService(repo, publisher, testLogger(), v),
	}
}

// screeningAssessment has a required follow-up shown only when q1 is "No"
func screeningAssessment() models.Assessment {
	return models.Assessment{
		ID:    "local-1",
		JobID: "job-1",
		Title: "Backend screening",
		Sections: []models.Section{
			{ID: "s1", Title: "Basics", QuestionIDs: []string{"q1", "q2"}},
			{ID: "s2", Title: "Experience", QuestionIDs: []string{"q3"}, Order: 1},
		},
		Questions: map[string]models.Question{
			"q1": {ID: "q1", Type: models.SingleChoice, Text: "Open to remote work?", Required: true, Options: []string{"Yes", "No"}},
			"q2": {ID: "q2", Type: models.ShortText, Text: "Preferred office city", Required: true, Order: 1,
				Conditional: &models.Conditional{DependsOn: "q1", ShowWhen: "No"}},
			"q3": {ID: "q3", Type: models.Numeric, Text: "Years of Go", Required: true,
				Validation: &models.Validation{Min: floatPtr(0), Max: floatPtr(40)}},
		},
	}
}

func floatPtr(f float64) *float64 { return &f }

// fakeRemote serves RemoteStore from the real server services and lets a
// test inject failures before or after each call.
type fakeRemote struct {
	assessments AssessmentService
	responses   ResponseService

	mu     sync.Mutex
	before func(op string) error
	after  func(op string) error
	calls  map[string]int
	keys   []string
}

func newFakeRemote(f *serverFixture) *fakeRemote {
	return &fakeRemote{assessments: f.assessments, responses: f.responses, calls: make(map[string]int)}
}

func (r *fakeRemote) enter(op string) error {
	r.mu.Lock()
	r.calls[op]++
	before := r.before
	r.mu.Unlock()
	if before != nil {
		return before(op)
	}
	return nil
}

func (r *fakeRemote) leave(op string) error {
	r.mu.Lock()
	after := r.after
	r.mu.Unlock()
	if after != nil {
		return after(op)
	}
	return nil
}

func (r *fakeRemote) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeRemote) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*models.Assessment, error) {
	if err := r.enter("list"); err != nil {
		return nil, err
	}
	list, err := r.assessments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return list.Assessments, nil
}

func (r *fakeRemote) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	if err := r.enter("get"); err != nil {
		return nil, err
	}
	return r.assessments.GetByID(ctx, id)
}

func (r *fakeRemote) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	if err := r.enter("get_by_job"); err != nil {
		return nil, err
	}
	return r.assessments.GetByJob(ctx, jobID)
}

func (r *fakeRemote) CreateAssessment(ctx context.Context, jobID string, a models.Assessment, key string) (*models.Assessment, error) {
	r.mu.Lock()
	r.keys = append(r.keys, key)
	r.mu.Unlock()
	if err := r.enter("create"); err != nil {
		return nil, err
	}
	created, err := r.assessments.Create(ctx, jobID, &a, key)
	if err != nil {
		return nil, err
	}
	return created, r.leave("create")
}

func (r *fakeRemote) UpdateAssessment(ctx context.Context, a models.Assessment) (*models.Assessment, error) {
	if err := r.enter("update"); err != nil {
		return nil, err
	}
	updated, err := r.assessments.Update(ctx, a.ID, &a)
	if err != nil {
		return nil, err
	}
	return updated, r.leave("update")
}

func (r *fakeRemote) SubmitResponse(ctx context.Context, s models.Submission, key string) (*models.ResponseRecord, error) {
	if err := r.enter("submit"); err != nil {
		return nil, err
	}
	record, err := r.responses.Submit(ctx, &s, key)
	if err != nil {
		return nil, err
	}
	return record, r.leave("submit")
}

func (r *fakeRemote) ListResponses(ctx context.Context, assessmentID string) ([]*models.ResponseRecord, error) {
	if err := r.enter("list_responses"); err != nil {
		return nil, err
	}
	list, err := r.responses.List(ctx, assessmentID, nil, nil)
	if err != nil {
		return nil, err
	}
	return list.Responses, nil
}

// failTimes returns a hook failing op the first n times with err
func failTimes(op string, n int, err error) func(string) error {
	var mu sync.Mutex
	left := n
	return func(called string) error {
		mu.Lock()
		defer mu.Unlock()
		if called == op && left > 0 {
			left--
			return err
		}
		return nil
	}
}

// recordingTimer fires immediately and remembers every wait it was asked for
type recordingTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

func (t *recordingTimer) Start(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waits = append(t.waits, d)
	t.c = make(chan time.Time, 1)
	t.c <- time.Time{}
}

func (t *recordingTimer) Stop() {}

func (t *recordingTimer) C() <-chan time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.c
}

func (t *recordingTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]time.Duration(nil), t.waits...)
}

// MockDraftClearer records draft deletions
type MockDraftClearer struct {
	mock.Mock
}

func (m *MockDraftClearer) ClearSavedAuthor(ctx context.Context, assessmentID string, savedAt time.Time) bool {
	args := m.Called(ctx, assessmentID, savedAt)
	return args.Bool(0)
}

// recordingNotifier keeps every notification
type recordingNotifier struct {
	mu       sync.Mutex
	kinds    []NotifyKind
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, kind NotifyKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) last() (NotifyKind, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.kinds) == 0 {
		return "", ""
	}
	return n.kinds[len(n.kinds)-1], n.messages[len(n.messages)-1]
}
