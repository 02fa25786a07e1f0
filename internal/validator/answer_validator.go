package validator

import (
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/errors"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/visibility"
)

// ValidateSectionAnswers checks the answers to the questions of section that
// are currently visible. Hidden questions are exempt, required or not.
func (v *Validator) ValidateSectionAnswers(a models.Assessment, section int, answers models.AnswerMap) ValidationErrors {
	var errs ValidationErrors
	for _, q := range visibility.VisibleQuestions(a, section, answers) {
		result := v.rules.Evaluate(q, answers.Lookup(q.ID))
		if result.Valid {
			continue
		}
		var value interface{}
		if answer := answers.Lookup(q.ID); answer != nil {
			value = answer.String()
		}
		errs = append(errs, *errors.NewValidationErrorWithRule(
			"answers."+q.ID, result.Message(q), string(result.Violation), value))
	}
	return errs
}

// ValidateResponse checks every section of a finished response
func (v *Validator) ValidateResponse(a models.Assessment, answers models.AnswerMap) ValidationErrors {
	var errs ValidationErrors
	for i := range a.Sections {
		errs = append(errs, v.ValidateSectionAnswers(a, i, answers)...)
	}
	return errs
}
