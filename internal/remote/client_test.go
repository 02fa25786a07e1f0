package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/cache"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/handlers"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories/postgres"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stack struct {
	assessments services.AssessmentService
	responses   services.ResponseService
	server      *httptest.Server
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard, TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	log := discardLogger()
	repo := postgres.NewRepository(db)
	v := validator.New()
	publisher := events.NewMockEventPublisher(log)
	s := &stack{
		assessments: services.NewAssessmentService(repo, cache.NewAssessmentCache(cache.NoopCache{}, time.Minute, log), publisher, log, v),
		responses:   services.NewResponseService(repo, publisher, log, v),
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers.NewHandlerManager(s.assessments, s.responses, services.NewExportService(s.assessments, s.responses, log), repo, utils.NewSlogLogger(log)).SetupRoutes(router)
	s.server = httptest.NewServer(router)
	t.Cleanup(s.server.Close)
	return s
}

func sampleAssessment() models.Assessment {
	return models.Assessment{
		ID:    "draft-1",
		JobID: "job-3",
		Title: "Data analyst screening",
		Sections: []models.Section{
			{ID: "s1", Title: "SQL", QuestionIDs: []string{"q1"}},
		},
		Questions: map[string]models.Question{
			"q1": {ID: "q1", Type: models.ShortText, Text: "Favourite window function", Required: true},
		},
	}
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	client := NewClient(s.server.URL+"/", 5*time.Second, discardLogger())

	_, err := client.GetAssessment(ctx, "draft-1")
	require.Error(t, err)
	assert.True(t, services.IsNotFound(err))
	assert.True(t, services.IsPermanent(err))

	created, err := client.CreateAssessment(ctx, "job-3", sampleAssessment(), "key-1")
	require.NoError(t, err)
	assert.NotEqual(t, "draft-1", created.ID)

	again, err := client.CreateAssessment(ctx, "job-3", sampleAssessment(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	created.Title = "Senior data analyst screening"
	updated, err := client.UpdateAssessment(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "Senior data analyst screening", updated.Title)

	byJob, err := client.GetAssessmentByJob(ctx, "job-3")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byJob.ID)

	job := "job-3"
	list, err := client.ListAssessments(ctx, services.AssessmentFilter{JobID: &job, Search: "senior"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	record, err := client.SubmitResponse(ctx, models.Submission{
		AssessmentID: created.ID,
		CandidateID:  "cand-1",
		Answers:      models.AnswerMap{"q1": models.TextAnswer("ROW_NUMBER")},
	}, "submit-1")
	require.NoError(t, err)
	assert.Equal(t, "ROW_NUMBER", record.Answers.Data()["q1"].Value)

	responses, err := client.ListResponses(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, record.ID, responses[0].ID)
}

func TestClient_ValidationErrorsArePermanent(t *testing.T) {
	s := newStack(t)
	client := NewClient(s.server.URL, 5*time.Second, discardLogger())

	a := sampleAssessment()
	a.Sections[0].QuestionIDs = nil
	_, err := client.CreateAssessment(context.Background(), "job-3", a, "")
	require.Error(t, err)

	var verrs services.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.NotEmpty(t, verrs.First())
	assert.True(t, services.IsPermanent(err))

	var remoteErr *services.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
}

func TestClient_ClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		class  services.RemoteClass
		cause  services.RemoteCause
	}{
		{"unavailable", http.StatusServiceUnavailable, `{"message":"maintenance"}`, services.Transient, services.CauseUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`, services.Transient, services.CauseUnavailable},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, services.Transient, services.CauseServer},
		{"bad gateway html", http.StatusBadGateway, `<html>bad gateway</html>`, services.Transient, services.CauseServer},
		{"conflict", http.StatusConflict, `{"message":"busy"}`, services.Permanent, services.CauseClient},
		{"forbidden", http.StatusForbidden, ``, services.Permanent, services.CauseClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, time.Second, discardLogger()).GetAssessment(context.Background(), "a-1")
			var remoteErr *services.RemoteError
			require.True(t, errors.As(err, &remoteErr))
			assert.Equal(t, tt.class, remoteErr.Class)
			assert.Equal(t, tt.cause, remoteErr.Cause)
			assert.Equal(t, tt.status, remoteErr.StatusCode)
		})
	}
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, time.Second, discardLogger()).GetAssessment(context.Background(), "a-1")
	var remoteErr *services.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, services.Transient, remoteErr.Class)
	assert.Equal(t, services.CauseCommunication, remoteErr.Cause)
}

func TestClient_SendsIdempotencyKey(t *testing.T) {
	var seen atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get(IdempotencyHeader))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"ok","data":{"id":"srv-1","jobId":"job-3"}}`))
	}))
	defer server.Close()

	created, err := NewClient(server.URL, time.Second, discardLogger()).CreateAssessment(context.Background(), "job-3", sampleAssessment(), "key-42")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", created.ID)
	assert.Equal(t, "key-42", seen.Load())
}
