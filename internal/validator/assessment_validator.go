package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/errors"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// Rule names carried by whole-assessment validation errors
const (
	RuleRequired            = "required"
	RuleMinSections         = "min_sections"
	RuleMinQuestions        = "min_questions"
	RuleInsufficientOptions = string(ViolationInsufficientOptions)
	RuleInvalidRange        = "invalid_range"
	RuleNotApplicable       = "rule_not_applicable"
	RuleDuplicateQuestion   = "duplicate_question"
	RuleUnknownQuestion     = "unknown_question"
	RuleOrphanQuestion      = "orphan_question"
	RuleSelfDependency      = "self_dependency"
	RuleForwardDependency   = "forward_dependency"
	RuleUnknownDependency   = "unknown_dependency"
)

// ValidateAssessment runs the save-time check over the whole assessment.
// Errors come back in document order; callers that show one message show the first.
func (v *Validator) ValidateAssessment(a models.Assessment) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(a.Title) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule("title", "Assessment title is required", RuleRequired, a.Title))
	}
	if strings.TrimSpace(a.JobID) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule("jobId", "Please select a job for this assessment", RuleRequired, a.JobID))
	}
	if len(a.Sections) == 0 {
		errs = append(errs, *errors.NewValidationErrorWithRule("sections", "At least one section is required", RuleMinSections, 0))
	}

	for si, section := range a.Sections {
		if len(section.QuestionIDs) == 0 {
			errs = append(errs, *errors.NewValidationErrorWithRule(
				fmt.Sprintf("sections[%d].questionIds", si),
				fmt.Sprintf("Section %d must have at least one question", si+1),
				RuleMinQuestions, 0))
			continue
		}
		for qi, id := range section.QuestionIDs {
			q, ok := a.Questions[id]
			if !ok {
				errs = append(errs, *errors.NewValidationErrorWithRule(
					questionField(si, qi, ""),
					fmt.Sprintf("%s references an unknown question", questionLabel(si, qi)),
					RuleUnknownQuestion, id))
				continue
			}
			errs = append(errs, v.validateQuestion(si, qi, q)...)
		}
	}

	errs = append(errs, ValidateStructure(a)...)
	errs = append(errs, ValidateDependencies(a)...)

	if err := v.ValidateStruct(a); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}

	return errs
}

func (v *Validator) validateQuestion(si, qi int, q models.Question) ValidationErrors {
	var errs ValidationErrors
	label := questionLabel(si, qi)

	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			questionField(si, qi, "text"), fmt.Sprintf("%s must have text", label), RuleRequired, q.Text))
	}

	if r := v.rules.EvaluateAuthoring(q); !r.Valid {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			questionField(si, qi, "options"),
			fmt.Sprintf("%s must have at least %d options", label, MinChoiceOptions),
			string(r.Violation), CountOptions(q.Options)))
	}

	rules := q.Validation
	if rules.IsEmpty() {
		return errs
	}
	if (rules.MinLength != nil || rules.MaxLength != nil) && !q.Type.IsText() {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			questionField(si, qi, "validation"),
			fmt.Sprintf("%s: length limits only apply to text questions", label),
			RuleNotApplicable, q.Type))
	}
	if (rules.Min != nil || rules.Max != nil) && q.Type != models.Numeric {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			questionField(si, qi, "validation"),
			fmt.Sprintf("%s: value limits only apply to numeric questions", label),
			RuleNotApplicable, q.Type))
	}
	if rules.MinLength != nil && rules.MaxLength != nil && *rules.MinLength > *rules.MaxLength {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			questionField(si, qi, "validation"),
			fmt.Sprintf("%s: minimum length cannot exceed maximum length", label),
			RuleInvalidRange, nil))
	}
	if rules.Min != nil && rules.Max != nil && *rules.Min > *rules.Max {
		errs = append(errs, *errors.NewValidationErrorWithRule(
			questionField(si, qi, "validation"),
			fmt.Sprintf("%s: minimum value cannot exceed maximum value", label),
			RuleInvalidRange, nil))
	}
	return errs
}

// ValidateStructure checks the arena: every question is listed by exactly one
// section slot, and every listed id resolves.
func ValidateStructure(a models.Assessment) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(a.Questions))

	for si, section := range a.Sections {
		for qi, id := range section.QuestionIDs {
			if seen[id] {
				errs = append(errs, *errors.NewValidationErrorWithRule(
					questionField(si, qi, "id"),
					fmt.Sprintf("%s repeats question id %q", questionLabel(si, qi), id),
					RuleDuplicateQuestion, id))
			}
			seen[id] = true
		}
	}

	for _, id := range sortedKeys(a.Questions) {
		if !seen[id] {
			errs = append(errs, *errors.NewValidationErrorWithRule(
				"questions", fmt.Sprintf("Question %q is not part of any section", id), RuleOrphanQuestion, id))
		}
	}
	return errs
}

// ValidateDependencies rejects conditionals that point at the question
// itself, at a later question, or at nothing. Backward-only references keep
// the dependency graph acyclic.
func ValidateDependencies(a models.Assessment) ValidationErrors {
	var errs ValidationErrors

	for si, section := range a.Sections {
		for qi, id := range section.QuestionIDs {
			q, ok := a.Questions[id]
			if !ok || q.Conditional == nil {
				continue
			}
			field := questionField(si, qi, "conditional.dependsOn")
			label := questionLabel(si, qi)
			dep := q.Conditional.DependsOn

			switch {
			case dep == "":
				errs = append(errs, *errors.NewValidationErrorWithRule(field,
					fmt.Sprintf("%s must name the question it depends on", label), RuleRequired, dep))
			case dep == q.ID || dep == id:
				errs = append(errs, *errors.NewValidationErrorWithRule(field,
					fmt.Sprintf("%s cannot depend on itself", label), RuleSelfDependency, dep))
			case !exists(a, dep):
				errs = append(errs, *errors.NewValidationErrorWithRule(field,
					fmt.Sprintf("%s depends on an unknown question", label), RuleUnknownDependency, dep))
			case !a.Precedes(dep, id):
				errs = append(errs, *errors.NewValidationErrorWithRule(field,
					fmt.Sprintf("%s can only depend on an earlier question", label), RuleForwardDependency, dep))
			}
		}
	}
	return errs
}

func exists(a models.Assessment, id string) bool {
	if _, ok := a.Questions[id]; !ok {
		return false
	}
	_, _, ok := a.Locate(id)
	return ok
}

func questionLabel(si, qi int) string {
	return fmt.Sprintf("Question %d in section %d", qi+1, si+1)
}

func questionField(si, qi int, field string) string {
	base := fmt.Sprintf("sections[%d].questions[%d]", si, qi)
	if field == "" {
		return base
	}
	return base + "." + field
}

func sortedKeys(m map[string]models.Question) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
