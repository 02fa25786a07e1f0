package builder

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthorDrafts is a mock implementation of AuthorDrafts
type MockAuthorDrafts struct {
	mock.Mock
}

func (m *MockAuthorDrafts) ScheduleAuthor(snapshot models.Assessment) {
	m.Called(snapshot)
}

func (m *MockAuthorDrafts) CancelAuthor(assessmentID string) {
	m.Called(assessmentID)
}

func (m *MockAuthorDrafts) LoadAuthor(ctx context.Context, assessmentID string) *models.AuthorDraft {
	args := m.Called(ctx, assessmentID)
	if d := args.Get(0); d != nil {
		return d.(*models.AuthorDraft)
	}
	return nil
}

func (m *MockAuthorDrafts) ClearAuthor(ctx context.Context, assessmentID string) {
	m.Called(ctx, assessmentID)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestController_MutationsScheduleDraft(t *testing.T) {
	drafts := new(MockAuthorDrafts)
	drafts.On("ScheduleAuthor", mock.AnythingOfType("models.Assessment")).Return()

	c := NewController(New("job-1"), drafts, nil, testLogger())
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.SetTitle("Platform engineer")
	c.AddSection()
	snap, id, err := c.AddQuestion(0, models.SingleChoice)
	require.NoError(t, err)

	assert.Equal(t, "Platform engineer", snap.Title)
	assert.Contains(t, snap.Questions, id)
	assert.Equal(t, fixed, snap.UpdatedAt)
	drafts.AssertNumberOfCalls(t, "ScheduleAuthor", 3)
}

func TestController_RejectedMutationKeepsSnapshot(t *testing.T) {
	drafts := new(MockAuthorDrafts)
	drafts.On("ScheduleAuthor", mock.Anything).Return()

	c := NewController(New("job-1"), drafts, nil, testLogger())
	c.AddSection()
	before := c.Snapshot()

	_, err := c.DeleteQuestion(0, 0)
	assert.ErrorIs(t, err, ErrQuestionIndex)
	assert.Equal(t, before, c.Snapshot())
	drafts.AssertNumberOfCalls(t, "ScheduleAuthor", 1)
}

func TestController_SnapshotsAreIndependent(t *testing.T) {
	c := NewController(New("job-1"), nil, nil, testLogger())
	c.AddSection()

	snap := c.Snapshot()
	snap.Sections[0].Title = "changed outside"

	assert.Equal(t, "Section 1", c.Snapshot().Sections[0].Title)
}

func TestController_Validate(t *testing.T) {
	c := NewController(New("job-1"), nil, nil, testLogger())
	errs := c.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, "Assessment title is required", errs.First())

	c.SetTitle("Data analyst")
	c.AddSection()
	_, _, err := c.AddQuestion(0, models.LongText)
	require.NoError(t, err)
	_, err = c.UpdateQuestion(0, 0, QuestionPatch{Text: strPtr("Describe a dashboard you built")})
	require.NoError(t, err)

	assert.Empty(t, c.Validate())
}

func TestController_RestoreAndDiscard(t *testing.T) {
	ctx := context.Background()
	start := New("job-1")

	stored := start.Clone()
	stored.Title = "Recovered title"
	draft := &models.AuthorDraft{AssessmentID: start.ID, Snapshot: stored, SavedAt: time.Now()}

	drafts := new(MockAuthorDrafts)
	drafts.On("LoadAuthor", ctx, start.ID).Return(draft)
	drafts.On("ClearAuthor", ctx, start.ID).Return()
	drafts.On("CancelAuthor", start.ID).Return()

	c := NewController(start, drafts, nil, testLogger())

	pending := c.PendingDraft(ctx)
	require.NotNil(t, pending)
	restored := c.Restore(*pending)
	assert.Equal(t, "Recovered title", restored.Title)

	c.Discard(ctx)
	c.Close()
	drafts.AssertExpectations(t)
}

func TestController_AdoptCancelsLocalDraft(t *testing.T) {
	local := New("job-1")
	drafts := new(MockAuthorDrafts)
	drafts.On("CancelAuthor", local.ID).Return()

	c := NewController(local, drafts, nil, testLogger())

	canonical := local.Clone()
	canonical.ID = "server-id"
	adopted := c.Adopt(canonical)

	assert.Equal(t, "server-id", adopted.ID)
	assert.Equal(t, "server-id", c.Snapshot().ID)
	drafts.AssertExpectations(t)
}
