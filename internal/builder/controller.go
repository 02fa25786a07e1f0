package builder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
)

// AuthorDrafts is the slice of the draft store the controller autosaves into
type AuthorDrafts interface {
	ScheduleAuthor(snapshot models.Assessment)
	CancelAuthor(assessmentID string)
	LoadAuthor(ctx context.Context, assessmentID string) *models.AuthorDraft
	ClearAuthor(ctx context.Context, assessmentID string)
}

// Controller owns the assessment being authored. Each successful mutation
// replaces the current snapshot and schedules a debounced author draft write.
type Controller struct {
	mu        sync.Mutex
	current   models.Assessment
	drafts    AuthorDrafts
	validator *validator.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewController starts authoring from initial. drafts may be nil, which disables autosave.
func NewController(initial models.Assessment, drafts AuthorDrafts, v *validator.Validator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = validator.New()
	}
	return &Controller{
		current:   initial.Clone(),
		drafts:    drafts,
		validator: v,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Snapshot returns a copy of the current assessment
func (c *Controller) Snapshot() models.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Clone()
}

func (c *Controller) apply(op string, fn func(models.Assessment) (models.Assessment, error)) (models.Assessment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(c.current)
	if err != nil {
		c.logger.Debug("Authoring operation rejected", "operation", op, "assessment_id", c.current.ID, "error", err)
		return c.current.Clone(), err
	}
	next.UpdatedAt = c.now()
	c.current = next
	if c.drafts != nil {
		c.drafts.ScheduleAuthor(next.Clone())
	}
	return next.Clone(), nil
}

func (c *Controller) AddSection() models.Assessment {
	a, _ := c.apply("add_section", func(a models.Assessment) (models.Assessment, error) {
		return AddSection(a), nil
	})
	return a
}

func (c *Controller) UpdateSection(section int, patch SectionPatch) (models.Assessment, error) {
	return c.apply("update_section", func(a models.Assessment) (models.Assessment, error) {
		return UpdateSection(a, section, patch)
	})
}

func (c *Controller) DeleteSection(section int) (models.Assessment, error) {
	return c.apply("delete_section", func(a models.Assessment) (models.Assessment, error) {
		return DeleteSection(a, section)
	})
}

func (c *Controller) MoveSection(from, to int) (models.Assessment, error) {
	return c.apply("move_section", func(a models.Assessment) (models.Assessment, error) {
		return MoveSection(a, from, to)
	})
}

// AddQuestion appends a question and returns the new snapshot with the question's id
func (c *Controller) AddQuestion(section int, t models.QuestionType) (models.Assessment, string, error) {
	var id string
	a, err := c.apply("add_question", func(a models.Assessment) (models.Assessment, error) {
		next, newID, err := AddQuestion(a, section, t)
		id = newID
		return next, err
	})
	return a, id, err
}

func (c *Controller) UpdateQuestion(section, index int, patch QuestionPatch) (models.Assessment, error) {
	return c.apply("update_question", func(a models.Assessment) (models.Assessment, error) {
		return UpdateQuestion(a, section, index, patch)
	})
}

func (c *Controller) DeleteQuestion(section, index int) (models.Assessment, error) {
	return c.apply("delete_question", func(a models.Assessment) (models.Assessment, error) {
		return DeleteQuestion(a, section, index)
	})
}

func (c *Controller) MoveQuestion(fromSection, fromIndex, toSection, toIndex int) (models.Assessment, error) {
	return c.apply("move_question", func(a models.Assessment) (models.Assessment, error) {
		return MoveQuestion(a, fromSection, fromIndex, toSection, toIndex)
	})
}

func (c *Controller) SetConditional(section, index int, dependsOn, showWhen string) (models.Assessment, error) {
	return c.apply("set_conditional", func(a models.Assessment) (models.Assessment, error) {
		return SetConditional(a, section, index, dependsOn, showWhen)
	})
}

func (c *Controller) ClearConditional(section, index int) (models.Assessment, error) {
	return c.apply("clear_conditional", func(a models.Assessment) (models.Assessment, error) {
		return ClearConditional(a, section, index)
	})
}

func (c *Controller) UpdateDetails(patch DetailsPatch) models.Assessment {
	a, _ := c.apply("update_details", func(a models.Assessment) (models.Assessment, error) {
		return UpdateDetails(a, patch), nil
	})
	return a
}

func (c *Controller) SetTitle(title string) models.Assessment {
	return c.UpdateDetails(DetailsPatch{Title: &title})
}

func (c *Controller) SetDescription(description string) models.Assessment {
	return c.UpdateDetails(DetailsPatch{Description: &description})
}

func (c *Controller) SetJob(jobID string) models.Assessment {
	return c.UpdateDetails(DetailsPatch{JobID: &jobID})
}

// SetTimeLimit sets the limit in minutes; zero clears it
func (c *Controller) SetTimeLimit(minutes int) models.Assessment {
	return c.UpdateDetails(DetailsPatch{TimeLimit: &minutes})
}

func (c *Controller) SetPublished(published bool) models.Assessment {
	return c.UpdateDetails(DetailsPatch{IsPublished: &published})
}

// Validate runs the whole-assessment save-time check on the current snapshot
func (c *Controller) Validate() validator.ValidationErrors {
	return c.validator.ValidateAssessment(c.Snapshot())
}

// PendingDraft returns a stored author draft for the current assessment, if any
func (c *Controller) PendingDraft(ctx context.Context) *models.AuthorDraft {
	if c.drafts == nil {
		return nil
	}
	return c.drafts.LoadAuthor(ctx, c.Snapshot().ID)
}

// Restore replaces the current snapshot with a draft's
func (c *Controller) Restore(draft models.AuthorDraft) models.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = draft.Snapshot.Clone()
	c.logger.Info("Restored assessment draft", "assessment_id", c.current.ID, "saved_at", draft.SavedAt)
	return c.current.Clone()
}

// Discard drops any pending or stored draft of the current assessment
func (c *Controller) Discard(ctx context.Context) {
	if c.drafts == nil {
		return
	}
	c.drafts.ClearAuthor(ctx, c.Snapshot().ID)
}

// Adopt replaces the current snapshot with the canonical record returned by a save.
// The id may differ from the local one when the save created a new record.
func (c *Controller) Adopt(saved models.Assessment) models.Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drafts != nil && saved.ID != c.current.ID {
		c.drafts.CancelAuthor(c.current.ID)
	}
	c.current = saved.Clone()
	return c.current.Clone()
}

// Close cancels a pending draft write without deleting what is already stored
func (c *Controller) Close() {
	if c.drafts == nil {
		return
	}
	c.drafts.CancelAuthor(c.Snapshot().ID)
}
