package visibility

import (
	"testing"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/stretchr/testify/assert"
)

func conditional(dependsOn, showWhen string) *models.Conditional {
	return &models.Conditional{DependsOn: dependsOn, ShowWhen: showWhen}
}

func TestIsVisible_SingleValued(t *testing.T) {
	q2 := models.Question{ID: "q2", Type: models.ShortText, Conditional: conditional("q1", "Yes")}

	assert.True(t, IsVisible(q2, models.AnswerMap{"q1": models.TextAnswer("Yes")}))
	assert.False(t, IsVisible(q2, models.AnswerMap{"q1": models.TextAnswer("No")}))
	assert.False(t, IsVisible(q2, models.AnswerMap{}))
	assert.False(t, IsVisible(q2, nil))
}

func TestIsVisible_MultiValued(t *testing.T) {
	answers := models.AnswerMap{"q1": models.ChoicesAnswer("Red", "Blue")}

	blue := models.Question{ID: "q2", Conditional: conditional("q1", "Blue")}
	green := models.Question{ID: "q3", Conditional: conditional("q1", "Green")}

	assert.True(t, IsVisible(blue, answers))
	assert.False(t, IsVisible(green, answers))
}

func TestIsVisible_Unconditional(t *testing.T) {
	assert.True(t, IsVisible(models.Question{ID: "q1"}, nil))
}

func TestIsVisible_EmptyShowWhenStillNeedsAnswer(t *testing.T) {
	q := models.Question{ID: "q2", Conditional: conditional("q1", "")}

	assert.False(t, IsVisible(q, models.AnswerMap{}))
	assert.True(t, IsVisible(q, models.AnswerMap{"q1": models.TextAnswer("")}))
}

func chain() models.Assessment {
	return models.Assessment{
		Sections: []models.Section{
			{ID: "s1", QuestionIDs: []string{"q1", "q2"}},
			{ID: "s2", QuestionIDs: []string{"q3", "q4"}},
		},
		Questions: map[string]models.Question{
			"q1": {ID: "q1", Type: models.SingleChoice, Options: []string{"Yes", "No"}},
			"q2": {ID: "q2", Type: models.ShortText, Conditional: conditional("q1", "Yes")},
			"q3": {ID: "q3", Type: models.ShortText, Conditional: conditional("q1", "Yes")},
			"q4": {ID: "q4", Type: models.ShortText, Conditional: conditional("q1", "No")},
		},
	}
}

func TestMap_RecomputesOnEveryChange(t *testing.T) {
	a := chain()

	answers := models.AnswerMap{"q1": models.TextAnswer("Yes")}
	assert.Equal(t, map[string]bool{"q1": true, "q2": true, "q3": true, "q4": false}, Map(a, answers))

	answers["q1"] = models.TextAnswer("No")
	assert.Equal(t, map[string]bool{"q1": true, "q2": false, "q3": false, "q4": true}, Map(a, answers))
}

func TestVisibleQuestions(t *testing.T) {
	a := chain()
	answers := models.AnswerMap{"q1": models.TextAnswer("No")}

	visible := VisibleQuestions(a, 1, answers)
	if assert.Len(t, visible, 1) {
		assert.Equal(t, "q4", visible[0].ID)
	}
	assert.Empty(t, VisibleQuestions(a, 5, answers))
}

func TestFrom(t *testing.T) {
	a := chain()
	got := From(a, 1, models.AnswerMap{"q1": models.TextAnswer("Yes")})
	assert.Equal(t, map[string]bool{"q3": true, "q4": false}, got)
}

func TestVisibleAnswers(t *testing.T) {
	a := chain()
	answers := models.AnswerMap{
		"q1": models.TextAnswer("No"),
		"q2": models.TextAnswer("stale"),
		"q4": models.TextAnswer("kept"),
	}

	got := VisibleAnswers(a, answers)
	assert.Equal(t, models.AnswerMap{"q1": models.TextAnswer("No"), "q4": models.TextAnswer("kept")}, got)
}

func TestMap_HiddenPrerequisiteHidesDependents(t *testing.T) {
	a := models.Assessment{
		Sections: []models.Section{
			{ID: "s1", QuestionIDs: []string{"q1", "q2"}},
			{ID: "s2", QuestionIDs: []string{"q3"}},
		},
		Questions: map[string]models.Question{
			"q1": {ID: "q1", Type: models.SingleChoice, Options: []string{"Yes", "No"}},
			"q2": {ID: "q2", Type: models.SingleChoice, Options: []string{"Ops", "Dev"}, Conditional: conditional("q1", "Yes")},
			"q3": {ID: "q3", Type: models.ShortText, Conditional: conditional("q2", "Ops")},
		},
	}
	answers := models.AnswerMap{"q1": models.TextAnswer("Yes"), "q2": models.TextAnswer("Ops")}
	assert.Equal(t, map[string]bool{"q1": true, "q2": true, "q3": true}, Map(a, answers))

	// q2 keeps its stored answer but is hidden, so q3 goes with it
	answers["q1"] = models.TextAnswer("No")
	assert.Equal(t, map[string]bool{"q1": true, "q2": false, "q3": false}, Map(a, answers))
	assert.Equal(t, map[string]bool{"q3": false}, From(a, 1, answers))
	assert.Empty(t, VisibleQuestions(a, 1, answers))
	assert.Equal(t, models.AnswerMap{"q1": models.TextAnswer("No")}, VisibleAnswers(a, answers))
}
