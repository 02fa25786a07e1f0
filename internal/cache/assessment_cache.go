package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// AssessmentCache holds canonical assessments read through the API
type AssessmentCache interface {
	Get(ctx context.Context, id string) (*models.Assessment, bool)
	GetByJob(ctx context.Context, jobID string) (*models.Assessment, bool)
	Set(ctx context.Context, assessment *models.Assessment)
	Invalidate(ctx context.Context, assessment *models.Assessment)
}

type assessmentCache struct {
	cache  CacheService
	ttl    time.Duration
	logger *slog.Logger
}

func NewAssessmentCache(cache CacheService, ttl time.Duration, logger *slog.Logger) AssessmentCache {
	return &assessmentCache{cache: cache, ttl: ttl, logger: logger}
}

// Key helpers
func assessmentKey(id string) string { return fmt.Sprintf("assessment:%s", id) }
func jobKey(jobID string) string     { return fmt.Sprintf("assessment:job:%s", jobID) }

// Cache failures are logged and read as misses.
func (c *assessmentCache) Get(ctx context.Context, id string) (*models.Assessment, bool) {
	return c.get(ctx, assessmentKey(id))
}

func (c *assessmentCache) GetByJob(ctx context.Context, jobID string) (*models.Assessment, bool) {
	return c.get(ctx, jobKey(jobID))
}

func (c *assessmentCache) get(ctx context.Context, key string) (*models.Assessment, bool) {
	var assessment models.Assessment
	if err := c.cache.Get(ctx, key, &assessment); err != nil {
		if err != ErrCacheMiss {
			c.logger.Warn("Assessment cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return &assessment, true
}

func (c *assessmentCache) Set(ctx context.Context, assessment *models.Assessment) {
	if err := c.cache.Set(ctx, assessmentKey(assessment.ID), assessment, c.ttl); err != nil {
		c.logger.Warn("Assessment cache write failed", "assessment_id", assessment.ID, "error", err)
		return
	}
	if assessment.JobID != "" {
		if err := c.cache.Set(ctx, jobKey(assessment.JobID), assessment, c.ttl); err != nil {
			c.logger.Warn("Assessment cache write failed", "job_id", assessment.JobID, "error", err)
		}
	}
}

func (c *assessmentCache) Invalidate(ctx context.Context, assessment *models.Assessment) {
	keys := []string{assessmentKey(assessment.ID)}
	if assessment.JobID != "" {
		keys = append(keys, jobKey(assessment.JobID))
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.logger.Warn("Assessment cache invalidation failed", "assessment_id", assessment.ID, "error", err)
	}
}
