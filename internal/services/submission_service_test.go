package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmissionFixture(t *testing.T) (*serverFixture, *fakeRemote, *recordingNotifier, *recordingTimer, *SubmissionService) {
	t.Helper()
	server := newServerFixture(t)
	remote := newFakeRemote(server)
	notifier := &recordingNotifier{}
	timer := &recordingTimer{}
	svc := NewSubmissionService(remote, notifier, RetryConfig{MaxAttempts: 3, InitialInterval: 200 * time.Millisecond, Timer: timer}, testLogger())
	return server, remote, notifier, timer, svc
}

func TestSubmissionService_RetriesUnderOneKey(t *testing.T) {
	ctx := context.Background()
	server, remote, notifier, timer, svc := newSubmissionFixture(t)
	a := createScreening(t, server)

	remote.after = failTimes("submit", 1, NewTransientError("submit_response", CauseServer, errors.New("502 bad gateway")))

	record, err := svc.Submit(ctx, models.Submission{
		AssessmentID: a.ID,
		CandidateID:  "cand-1",
		Answers:      models.AnswerMap{"q1": models.TextAnswer("Yes"), "q3": models.TextAnswer("2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, remote.count("submit"))
	assert.Equal(t, []time.Duration{200 * time.Millisecond}, timer.Waits())

	list, err := server.responses.List(ctx, a.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, list.Responses, 1)
	assert.Equal(t, record.ID, list.Responses[0].ID)

	kind, message := notifier.last()
	assert.Equal(t, NotifySuccess, kind)
	assert.Equal(t, "Assessment submitted successfully", message)
}

func TestSubmissionService_RejectedAnswersAreNotRetried(t *testing.T) {
	ctx := context.Background()
	server, remote, notifier, timer, svc := newSubmissionFixture(t)
	a := createScreening(t, server)

	_, err := svc.Submit(ctx, models.Submission{
		AssessmentID: a.ID,
		CandidateID:  "cand-1",
		Answers:      models.AnswerMap{"q1": models.TextAnswer("Yes"), "q3": models.TextAnswer("-1")},
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.HasRule(string(validator.ViolationBelowMin)))
	assert.Equal(t, 1, remote.count("submit"))
	assert.Empty(t, timer.Waits())

	kind, message := notifier.last()
	assert.Equal(t, NotifyError, kind)
	assert.Equal(t, "Value must be at least 0", message)
}

func TestSubmissionService_GivesUp(t *testing.T) {
	ctx := context.Background()
	server, remote, _, _, svc := newSubmissionFixture(t)
	a := createScreening(t, server)

	remote.before = func(string) error {
		return NewTransientError("submit_response", CauseCommunication, errors.New("dial tcp: connection refused"))
	}

	_, err := svc.Submit(ctx, models.Submission{AssessmentID: a.ID, CandidateID: "cand-1"})
	require.Error(t, err)

	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, 3, saveErr.Attempts)
	assert.Equal(t, CauseCommunication, saveErr.Cause)
	assert.Equal(t, UserMessage(CauseCommunication), saveErr.UserMessage())
}
