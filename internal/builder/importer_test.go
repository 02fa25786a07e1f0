package builder

import (
	"strings"
	"testing"

	verrors "github.com/Vivek-Bhagat/TalentFlow-sub000/internal/errors"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const screeningYAML = `
title: Frontend screening
jobId: job-42
timeLimit: 30
sections:
  - title: Basics
    questions:
      - id: remote
        type: single-choice
        text: Are you open to remote work?
        required: true
        options: ["Yes", "No"]
      - id: city
        type: short-text
        text: Which city are you based in?
        required: true
        validation:
          minLength: 2
          maxLength: 80
        conditional:
          dependsOn: remote
          showWhen: "No"
  - title: Experience
    questions:
      - type: numeric
        text: Years of React experience
        validation:
          min: 0
          max: 30
`

func TestImport_YAML(t *testing.T) {
	a, err := Import([]byte(screeningYAML))
	require.NoError(t, err)

	assert.Equal(t, "Frontend screening", a.Title)
	assert.Equal(t, "job-42", a.JobID)
	require.NotNil(t, a.TimeLimit)
	assert.Equal(t, 30, *a.TimeLimit)
	require.Len(t, a.Sections, 2)
	assert.Equal(t, 3, a.QuestionCount())

	remoteID := a.Sections[0].QuestionIDs[0]
	city := a.Questions[a.Sections[0].QuestionIDs[1]]
	assert.NotEqual(t, "remote", remoteID)
	require.NotNil(t, city.Conditional)
	assert.Equal(t, remoteID, city.Conditional.DependsOn)
	assert.Equal(t, "No", city.Conditional.ShowWhen)
	assert.Equal(t, 80, *city.Validation.MaxLength)

	assert.Empty(t, validator.New().ValidateAssessment(a))
}

func TestImport_JSON(t *testing.T) {
	payload := `{"title":"JSON","sections":[{"title":"S","questions":[{"type":"long-text","text":"Tell us"}]}]}`
	a, err := Import([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "JSON", a.Title)
	assert.Equal(t, 1, a.QuestionCount())
}

func TestImport_RejectsBadDependencies(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		rule string
	}{
		{
			name: "self reference",
			yaml: `
title: Loop
sections:
  - title: S
    questions:
      - id: a
        type: short-text
        text: A
        conditional: {dependsOn: a, showWhen: x}
`,
			rule: validator.RuleSelfDependency,
		},
		{
			name: "forward reference",
			yaml: `
title: Forward
sections:
  - title: S
    questions:
      - id: a
        type: short-text
        text: A
        conditional: {dependsOn: b, showWhen: x}
      - id: b
        type: short-text
        text: B
`,
			rule: validator.RuleForwardDependency,
		},
		{
			name: "unknown reference",
			yaml: `
title: Unknown
sections:
  - title: S
    questions:
      - id: a
        type: short-text
        text: A
        conditional: {dependsOn: ghost, showWhen: x}
`,
			rule: validator.RuleUnknownDependency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.yaml))
			require.Error(t, err)
			errs, ok := err.(verrors.ValidationErrors)
			require.True(t, ok)
			assert.True(t, errs.HasRule(tt.rule))
		})
	}
}

func TestImport_Errors(t *testing.T) {
	_, err := Import([]byte("   "))
	assert.Error(t, err)

	_, err = Import([]byte("title: [unterminated"))
	assert.Error(t, err)

	_, err = Import([]byte("title: T\nsections:\n  - questions:\n      - type: essay\n        text: x\n"))
	assert.ErrorIs(t, err, ErrInvalidType)

	dup := "sections:\n  - questions:\n      - {id: a, type: short-text}\n      - {id: a, type: short-text}\n"
	_, err = Import([]byte(dup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate question id")
}

func TestExportTemplate_RoundTrip(t *testing.T) {
	a, err := Import([]byte(screeningYAML))
	require.NoError(t, err)

	data, err := ExportTemplate(a)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "dependsOn: q1"))

	again, err := ImportReader(strings.NewReader(string(data)))
	require.NoError(t, err)

	assert.Equal(t, a.Title, again.Title)
	assert.Equal(t, a.QuestionCount(), again.QuestionCount())
	for si := range a.Sections {
		for qi := range a.Sections[si].QuestionIDs {
			orig := a.Questions[a.Sections[si].QuestionIDs[qi]]
			got := again.Questions[again.Sections[si].QuestionIDs[qi]]
			assert.Equal(t, orig.Text, got.Text)
			assert.Equal(t, orig.Type, got.Type)
			assert.Equal(t, orig.Conditional != nil, got.Conditional != nil)
		}
	}
	city := again.Questions[again.Sections[0].QuestionIDs[1]]
	assert.Equal(t, again.Sections[0].QuestionIDs[0], city.Conditional.DependsOn)
	assert.Equal(t, models.ShortText, city.Type)
}
