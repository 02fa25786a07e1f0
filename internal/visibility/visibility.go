// Package visibility decides which questions a candidate currently sees.
//
// Results are never cached: any answer change can toggle several
// downstream questions, so callers recompute after every change.
package visibility

import (
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// IsVisible reports whether q should be shown given the answers so far.
// A question whose prerequisite has not been answered is hidden.
func IsVisible(q models.Question, answers models.AnswerMap) bool {
	if q.Conditional == nil {
		return true
	}
	prerequisite := answers.Lookup(q.Conditional.DependsOn)
	if prerequisite == nil {
		return false
	}
	return prerequisite.Contains(q.Conditional.ShowWhen)
}

// VisibleQuestions returns the questions of section i that are currently shown, in order
func VisibleQuestions(a models.Assessment, section int, answers models.AnswerMap) []models.Question {
	shown := Map(a, answers)
	var visible []models.Question
	for _, q := range a.SectionQuestions(section) {
		if shown[q.ID] {
			visible = append(visible, q)
		}
	}
	return visible
}

// Map evaluates every question of the assessment in document order. An
// answer to a question that is itself hidden counts as absent, so hiding a
// question also hides everything that depends on it.
func Map(a models.Assessment, answers models.AnswerMap) map[string]bool {
	out := make(map[string]bool, len(a.Questions))
	for _, id := range a.OrderedQuestionIDs() {
		if q, ok := a.Questions[id]; ok {
			out[id] = visibleGiven(q, answers, out)
		}
	}
	return out
}

// visibleGiven is IsVisible with the prerequisite's own visibility applied.
// Dependencies point backward, so shown already holds the prerequisite.
func visibleGiven(q models.Question, answers models.AnswerMap, shown map[string]bool) bool {
	if q.Conditional != nil {
		if visible, seen := shown[q.Conditional.DependsOn]; seen && !visible {
			return false
		}
	}
	return IsVisible(q, answers)
}

// From evaluates the questions of section and every later section. Earlier
// sections still take part so chains that cross sections resolve.
func From(a models.Assessment, section int, answers models.AnswerMap) map[string]bool {
	shown := Map(a, answers)
	out := make(map[string]bool)
	for i := max(section, 0); i < len(a.Sections); i++ {
		for _, q := range a.SectionQuestions(i) {
			out[q.ID] = shown[q.ID]
		}
	}
	return out
}

// VisibleAnswers drops answers to questions that are currently hidden
func VisibleAnswers(a models.Assessment, answers models.AnswerMap) models.AnswerMap {
	shown := Map(a, answers)
	out := make(models.AnswerMap, len(answers))
	for id, answer := range answers {
		if shown[id] {
			out[id] = answer.Clone()
		}
	}
	return out
}
