// Package builder holds the authoring operations over an assessment.
//
// Every operation takes a snapshot and returns a new one; the input is never
// modified. Order fields are renumbered after each structural change so they
// always match slice position.
package builder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
)

var (
	ErrSectionIndex      = errors.New("section index out of range")
	ErrQuestionIndex     = errors.New("question index out of range")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrInvalidType       = errors.New("invalid question type")
	ErrSelfDependency    = errors.New("a question cannot depend on itself")
	ErrForwardDependency = errors.New("a question can only depend on an earlier question")
	ErrBrokenDependency  = errors.New("move would place a question before a question it depends on")
)

// DefaultOptions seeds new choice questions
var DefaultOptions = []string{"Option 1", "Option 2"}

// SectionPatch updates section fields; nil fields are left unchanged.
// An empty Description clears it.
type SectionPatch struct {
	Title       *string
	Description *string
}

// QuestionPatch updates question fields; nil fields are left unchanged.
type QuestionPatch struct {
	Type        *models.QuestionType
	Text        *string
	Description *string
	Required    *bool
	Options     *[]string
	Validation  *models.Validation
	// ClearValidation drops all declared rules; it wins over Validation
	ClearValidation bool
}

// DetailsPatch updates assessment-level fields. A zero TimeLimit clears it.
type DetailsPatch struct {
	Title       *string
	Description *string
	JobID       *string
	TimeLimit   *int
	IsPublished *bool
}

// New returns an empty assessment with a locally generated id
func New(jobID string) models.Assessment {
	now := time.Now().UTC()
	return models.Assessment{
		ID:        models.NewID(),
		JobID:     jobID,
		Sections:  []models.Section{},
		Questions: map[string]models.Question{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddSection appends an empty section with the next sequential order
func AddSection(a models.Assessment) models.Assessment {
	out := a.Clone()
	n := len(out.Sections)
	out.Sections = append(out.Sections, models.Section{
		ID:          models.NewID(),
		Title:       fmt.Sprintf("Section %d", n+1),
		QuestionIDs: []string{},
		Order:       n,
	})
	return out
}

func UpdateSection(a models.Assessment, section int, patch SectionPatch) (models.Assessment, error) {
	if err := checkSection(a, section); err != nil {
		return a, err
	}
	out := a.Clone()
	s := &out.Sections[section]
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = optionalString(*patch.Description)
	}
	return out, nil
}

// DeleteSection removes the section and all of its questions. Conditionals
// elsewhere that referenced a removed question are cleared.
func DeleteSection(a models.Assessment, section int) (models.Assessment, error) {
	if err := checkSection(a, section); err != nil {
		return a, err
	}
	out := a.Clone()
	removed := out.Sections[section].QuestionIDs
	out.Sections = append(out.Sections[:section], out.Sections[section+1:]...)
	for _, id := range removed {
		delete(out.Questions, id)
	}
	clearDependents(&out, removed...)
	renumber(&out)
	return out, nil
}

// AddQuestion appends a question of type t to the section and returns its id.
// Choice questions start with two placeholder options.
func AddQuestion(a models.Assessment, section int, t models.QuestionType) (models.Assessment, string, error) {
	if err := checkSection(a, section); err != nil {
		return a, "", err
	}
	if !t.Valid() {
		return a, "", fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	out := a.Clone()
	q := models.Question{
		ID:   models.NewID(),
		Type: t,
	}
	if t.IsChoice() {
		q.Options = append([]string{}, DefaultOptions...)
	}
	out.Questions[q.ID] = q
	out.Sections[section].QuestionIDs = append(out.Sections[section].QuestionIDs, q.ID)
	renumber(&out)
	return out, q.ID, nil
}

func UpdateQuestion(a models.Assessment, section, index int, patch QuestionPatch) (models.Assessment, error) {
	id, err := questionAt(a, section, index)
	if err != nil {
		return a, err
	}
	if patch.Type != nil && !patch.Type.Valid() {
		return a, fmt.Errorf("%w: %q", ErrInvalidType, *patch.Type)
	}

	out := a.Clone()
	q := out.Questions[id]
	if patch.Text != nil {
		q.Text = *patch.Text
	}
	if patch.Description != nil {
		q.Description = optionalString(*patch.Description)
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	if patch.Options != nil {
		q.Options = append([]string{}, (*patch.Options)...)
	}
	if patch.Validation != nil {
		v := *patch.Validation
		q.Validation = &v
		q = q.Clone()
	}
	if patch.ClearValidation {
		q.Validation = nil
	}
	if patch.Type != nil && *patch.Type != q.Type {
		q = retype(q, *patch.Type)
	}
	out.Questions[id] = q
	return out, nil
}

// retype switches q to t and drops settings that no longer apply
func retype(q models.Question, t models.QuestionType) models.Question {
	q.Type = t
	switch {
	case t.IsChoice():
		if validator.CountOptions(q.Options) < validator.MinChoiceOptions {
			q.Options = append([]string{}, DefaultOptions...)
		}
	default:
		q.Options = nil
	}
	if q.Validation != nil {
		v := *q.Validation
		if !t.IsText() {
			v.MinLength, v.MaxLength = nil, nil
		}
		if t != models.Numeric {
			v.Min, v.Max = nil, nil
		}
		q.Validation = &v
		if v.IsEmpty() {
			q.Validation = nil
		}
	}
	return q
}

// DeleteQuestion removes the question; conditionals that referenced it are cleared
func DeleteQuestion(a models.Assessment, section, index int) (models.Assessment, error) {
	id, err := questionAt(a, section, index)
	if err != nil {
		return a, err
	}
	out := a.Clone()
	ids := out.Sections[section].QuestionIDs
	out.Sections[section].QuestionIDs = append(ids[:index], ids[index+1:]...)
	delete(out.Questions, id)
	clearDependents(&out, id)
	renumber(&out)
	return out, nil
}

// MoveQuestion moves a question to position toIndex of toSection. Moves across
// sections are supported. toIndex is clamped to the destination bounds. A move
// that would put a question ahead of a question it depends on, or behind one
// that depends on it, is rejected with ErrBrokenDependency.
func MoveQuestion(a models.Assessment, fromSection, fromIndex, toSection, toIndex int) (models.Assessment, error) {
	id, err := questionAt(a, fromSection, fromIndex)
	if err != nil {
		return a, err
	}
	if err := checkSection(a, toSection); err != nil {
		return a, err
	}

	out := a.Clone()
	src := out.Sections[fromSection].QuestionIDs
	out.Sections[fromSection].QuestionIDs = append(src[:fromIndex], src[fromIndex+1:]...)

	dst := out.Sections[toSection].QuestionIDs
	toIndex = clamp(toIndex, 0, len(dst))
	dst = append(dst, "")
	copy(dst[toIndex+1:], dst[toIndex:])
	dst[toIndex] = id
	out.Sections[toSection].QuestionIDs = dst

	if errs := validator.ValidateDependencies(out); len(errs) > 0 {
		return a, fmt.Errorf("%w: %s", ErrBrokenDependency, errs.First())
	}
	renumber(&out)
	return out, nil
}

// MoveSection moves a section to position to, subject to the same dependency check as MoveQuestion
func MoveSection(a models.Assessment, from, to int) (models.Assessment, error) {
	if err := checkSection(a, from); err != nil {
		return a, err
	}
	out := a.Clone()
	s := out.Sections[from]
	out.Sections = append(out.Sections[:from], out.Sections[from+1:]...)
	to = clamp(to, 0, len(out.Sections))
	out.Sections = append(out.Sections, models.Section{})
	copy(out.Sections[to+1:], out.Sections[to:])
	out.Sections[to] = s

	if errs := validator.ValidateDependencies(out); len(errs) > 0 {
		return a, fmt.Errorf("%w: %s", ErrBrokenDependency, errs.First())
	}
	renumber(&out)
	return out, nil
}

// SetConditional makes the question visible only when dependsOn's answer matches showWhen.
// dependsOn must be an earlier question.
func SetConditional(a models.Assessment, section, index int, dependsOn, showWhen string) (models.Assessment, error) {
	id, err := questionAt(a, section, index)
	if err != nil {
		return a, err
	}
	if dependsOn == id {
		return a, ErrSelfDependency
	}
	if _, ok := a.Questions[dependsOn]; !ok {
		return a, fmt.Errorf("%w: %q", ErrUnknownQuestion, dependsOn)
	}
	if !a.Precedes(dependsOn, id) {
		return a, ErrForwardDependency
	}

	out := a.Clone()
	q := out.Questions[id]
	q.Conditional = &models.Conditional{DependsOn: dependsOn, ShowWhen: showWhen}
	out.Questions[id] = q
	return out, nil
}

func ClearConditional(a models.Assessment, section, index int) (models.Assessment, error) {
	id, err := questionAt(a, section, index)
	if err != nil {
		return a, err
	}
	out := a.Clone()
	q := out.Questions[id]
	q.Conditional = nil
	out.Questions[id] = q
	return out, nil
}

func UpdateDetails(a models.Assessment, patch DetailsPatch) models.Assessment {
	out := a.Clone()
	if patch.Title != nil {
		out.Title = *patch.Title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.JobID != nil {
		out.JobID = *patch.JobID
	}
	if patch.TimeLimit != nil {
		if *patch.TimeLimit <= 0 {
			out.TimeLimit = nil
		} else {
			minutes := *patch.TimeLimit
			out.TimeLimit = &minutes
		}
	}
	if patch.IsPublished != nil {
		out.IsPublished = *patch.IsPublished
	}
	return out
}

func checkSection(a models.Assessment, section int) error {
	if section < 0 || section >= len(a.Sections) {
		return fmt.Errorf("%w: %d", ErrSectionIndex, section)
	}
	return nil
}

func questionAt(a models.Assessment, section, index int) (string, error) {
	if err := checkSection(a, section); err != nil {
		return "", err
	}
	ids := a.Sections[section].QuestionIDs
	if index < 0 || index >= len(ids) {
		return "", fmt.Errorf("%w: %d", ErrQuestionIndex, index)
	}
	return ids[index], nil
}

func clearDependents(a *models.Assessment, removed ...string) {
	gone := make(map[string]bool, len(removed))
	for _, id := range removed {
		gone[id] = true
	}
	for id, q := range a.Questions {
		if q.Conditional != nil && gone[q.Conditional.DependsOn] {
			q.Conditional = nil
			a.Questions[id] = q
		}
	}
}

func renumber(a *models.Assessment) {
	for si := range a.Sections {
		a.Sections[si].Order = si
		for qi, id := range a.Sections[si].QuestionIDs {
			if q, ok := a.Questions[id]; ok {
				q.Order = qi
				a.Questions[id] = q
			}
		}
	}
}

func optionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
