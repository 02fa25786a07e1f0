package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func testAssessment(id, jobID, title string) *models.Assessment {
	return &models.Assessment{
		ID:          id,
		JobID:       jobID,
		Title:       title,
		Description: "Screening for " + title,
		Sections: []models.Section{
			{ID: "s1", Title: "Basics", QuestionIDs: []string{"q1", "q2"}},
		},
		Questions: map[string]models.Question{
			"q1": {ID: "q1", Type: models.SingleChoice, Text: "Remote?", Options: []string{"Yes", "No"}},
			"q2": {ID: "q2", Type: models.ShortText, Text: "City", Order: 1,
				Conditional: &models.Conditional{DependsOn: "q1", ShowWhen: "No"}},
		},
	}
}

func TestAssessmentRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	a := testAssessment("a-1", "job-1", "Backend engineer")
	require.NoError(t, repo.Assessment().Create(ctx, a))

	got, err := repo.Assessment().GetByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Backend engineer", got.Title)
	assert.Equal(t, []string{"q1", "q2"}, got.Sections[0].QuestionIDs)
	require.NotNil(t, got.Questions["q2"].Conditional)
	assert.Equal(t, "q1", got.Questions["q2"].Conditional.DependsOn)

	created := got.CreatedAt
	got.Title = "Senior backend engineer"
	require.NoError(t, repo.Assessment().Update(ctx, got))

	updated, err := repo.Assessment().GetByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Senior backend engineer", updated.Title)
	assert.WithinDuration(t, created, updated.CreatedAt, time.Second)

	count, err := repo.Assessment().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Assessment().Delete(ctx, "a-1"))
	_, err = repo.Assessment().GetByID(ctx, "a-1")
	assert.True(t, repositories.IsNotFoundError(err))
	assert.True(t, repositories.IsNotFoundError(repo.Assessment().Delete(ctx, "a-1")))
}

func TestAssessmentRepository_CreateRequiresID(t *testing.T) {
	repo := NewRepository(newTestDB(t))
	err := repo.Assessment().Create(context.Background(), testAssessment("", "job-1", "x"))
	assert.Error(t, err)
}

func TestAssessmentRepository_IdempotencyKey(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	key := "idem-1"
	first := testAssessment("a-1", "job-1", "First")
	first.IdempotencyKey = &key
	require.NoError(t, repo.Assessment().Create(ctx, first))

	found, err := repo.Assessment().GetByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a-1", found.ID)

	second := testAssessment("a-2", "job-1", "Second")
	second.IdempotencyKey = &key
	err = repo.Assessment().Create(ctx, second)
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicateError(err))

	// update keeps the key of the original create
	found.IdempotencyKey = nil
	require.NoError(t, repo.Assessment().Update(ctx, found))
	again, err := repo.Assessment().GetByIdempotencyKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "a-1", again.ID)
}

func TestAssessmentRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	for i, tc := range []struct {
		job, title string
		published  bool
	}{
		{"job-1", "Go developer", true},
		{"job-1", "Rust developer", false},
		{"job-2", "Product designer", true},
	} {
		a := testAssessment(fmt.Sprintf("a-%d", i), tc.job, tc.title)
		a.IsPublished = tc.published
		require.NoError(t, repo.Assessment().Create(ctx, a))
	}

	job := "job-1"
	list, total, err := repo.Assessment().List(ctx, repositories.AssessmentFilters{JobID: &job})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = repo.Assessment().List(ctx, repositories.AssessmentFilters{Status: models.StatusPublished, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, "Go developer", list[0].Title)
	assert.Equal(t, "Product designer", list[1].Title)

	list, _, err = repo.Assessment().List(ctx, repositories.AssessmentFilters{Search: "DEVELOPER", Status: models.StatusDraft})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Rust developer", list[0].Title)

	list, total, err = repo.Assessment().List(ctx, repositories.AssessmentFilters{Limit: 1, Offset: 1, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Product designer", list[0].Title)
}

func TestAssessmentRepository_GetByJobIDReturnsLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	now := time.Now().UTC()
	older := testAssessment("a-1", "job-1", "Old")
	older.CreatedAt, older.UpdatedAt = now.Add(-2*time.Hour), now.Add(-2*time.Hour)
	require.NoError(t, repo.Assessment().Create(ctx, older))
	newer := testAssessment("a-2", "job-1", "New")
	newer.CreatedAt, newer.UpdatedAt = now.Add(-3*time.Hour), now.Add(-3*time.Hour)
	require.NoError(t, repo.Assessment().Create(ctx, newer))

	got, err := repo.Assessment().GetByJobID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", got.ID)

	// editing moves it to the front
	require.NoError(t, repo.Assessment().Update(ctx, newer))

	got, err = repo.Assessment().GetByJobID(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "a-2", got.ID)

	_, err = repo.Assessment().GetByJobID(ctx, "job-404")
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestResponseRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))
	require.NoError(t, repo.Assessment().Create(ctx, testAssessment("a-1", "job-1", "Backend")))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Response().Create(ctx, &models.ResponseRecord{
			ID:           fmt.Sprintf("r-%d", i),
			AssessmentID: "a-1",
			CandidateID:  fmt.Sprintf("c-%d", i%2),
			Answers: datatypes.NewJSONType(models.AnswerMap{
				"q1": models.TextAnswer("No"),
				"q2": models.TextAnswer("Lisbon"),
			}),
			ElapsedSeconds: 60 * (i + 1),
			SubmittedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := repo.Response().GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Answers.Data()["q2"].Value)

	list, total, err := repo.Response().ListByAssessment(ctx, "a-1", repositories.ResponseFilters{SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, "r-0", list[0].ID)

	candidate := "c-0"
	list, total, err = repo.Response().ListByAssessment(ctx, "a-1", repositories.ResponseFilters{CandidateID: &candidate})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "r-2", list[0].ID)

	from := base.Add(30 * time.Minute)
	to := base.Add(90 * time.Minute)
	list, _, err = repo.Response().ListByAssessment(ctx, "a-1", repositories.ResponseFilters{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r-1", list[0].ID)

	count, err := repo.Response().CountByAssessment(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepository_WithTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Assessment().Create(ctx, testAssessment("a-1", "job-1", "Rolled back")); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	exists, err := repo.Assessment().ExistsByID(ctx, "a-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, repo.Ping(ctx))
}
