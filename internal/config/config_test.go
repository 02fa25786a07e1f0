package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTHOR_DRAFT_DELAY", "")
	t.Setenv("SAVE_ATTEMPTS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.AuthorDraftDelay)
	assert.Equal(t, time.Second, cfg.ResponseDraftDelay)
	assert.Equal(t, 7*24*time.Hour, cfg.DraftRetention)
	assert.Equal(t, 3, cfg.SaveAttempts)
	assert.Equal(t, "sqlite", cfg.DraftBackend)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTHOR_DRAFT_DELAY", "250")
	t.Setenv("RESPONSE_DRAFT_DELAY", "2s")
	t.Setenv("SAVE_ATTEMPTS", "5")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("RATE_LIMIT", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.AuthorDraftDelay)
	assert.Equal(t, 2*time.Second, cfg.ResponseDraftDelay)
	assert.Equal(t, 5, cfg.SaveAttempts)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, 2.5, cfg.RateLimit)
}

func TestConfig_JobList(t *testing.T) {
	cfg := Config{Jobs: "job-1:Backend engineer, job-2 ,,job-3:"}
	assert.Equal(t, []models.Job{
		{ID: "job-1", Title: "Backend engineer"},
		{ID: "job-2", Title: "job-2"},
		{ID: "job-3", Title: "job-3"},
	}, cfg.JobList())

	assert.Empty(t, (&Config{}).JobList())
}

func TestEventConfig(t *testing.T) {
	cfg := EventConfig{KafkaBrokers: "a:9092, b:9092,"}
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.GetKafkaBrokers())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, c := range []EventConfig{{Enabled: false}, {Enabled: true, Publisher: "mock"}, {Enabled: true, Publisher: "nats"}} {
		publisher, err := c.CreateEventPublisher(logger)
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, publisher)
	}

	inProcess := EventConfig{Enabled: true, Publisher: "gochannel", Topic: "assessment-events"}
	publisher, err := inProcess.CreateEventPublisher(logger)
	require.NoError(t, err)
	assert.IsType(t, &events.WatermillEventPublisher{}, publisher)
	assert.NoError(t, publisher.Close())
}
