package validator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// Violation names the specific constraint an answer or question broke
type Violation string

const (
	ViolationNone                Violation = ""
	ViolationTooShort            Violation = "too_short"
	ViolationTooLong             Violation = "too_long"
	ViolationBelowMin            Violation = "below_min"
	ViolationAboveMax            Violation = "above_max"
	ViolationEmptyRequired       Violation = "empty_required"
	ViolationInsufficientOptions Violation = "insufficient_options"
	ViolationNotNumeric          Violation = "not_numeric"
	ViolationInvalidOption       Violation = "invalid_option"
)

// MinChoiceOptions is the least number of non-empty options a choice question needs
const MinChoiceOptions = 2

// Result is the outcome of evaluating one question
type Result struct {
	Valid     bool      `json:"valid"`
	Violation Violation `json:"violation,omitempty"`
}

func pass() Result { return Result{Valid: true} }

func fail(v Violation) Result { return Result{Violation: v} }

// Message renders the violation for display next to question q
func (r Result) Message(q models.Question) string {
	v := q.Validation
	if v == nil {
		v = &models.Validation{}
	}
	switch r.Violation {
	case ViolationNone:
		return ""
	case ViolationEmptyRequired:
		return "This question is required"
	case ViolationTooShort:
		return fmt.Sprintf("Answer must be at least %d characters", derefInt(v.MinLength))
	case ViolationTooLong:
		return fmt.Sprintf("Answer must be at most %d characters", derefInt(v.MaxLength))
	case ViolationBelowMin:
		return fmt.Sprintf("Value must be at least %s", formatNumber(v.Min))
	case ViolationAboveMax:
		return fmt.Sprintf("Value must be at most %s", formatNumber(v.Max))
	case ViolationNotNumeric:
		return "Please enter a valid number"
	case ViolationInvalidOption:
		return "Please choose one of the listed options"
	case ViolationInsufficientOptions:
		return fmt.Sprintf("Choice questions need at least %d options", MinChoiceOptions)
	default:
		return string(r.Violation)
	}
}

// RuleEvaluator checks candidate answers against a question's declared rules.
// It holds no state; every method is a pure function of its arguments.
type RuleEvaluator struct{}

func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{}
}

// Evaluate checks answer against q. A nil answer means the question was never answered.
func (e *RuleEvaluator) Evaluate(q models.Question, answer *models.Answer) Result {
	if answer == nil || answer.IsEmpty() {
		if q.Required {
			return fail(ViolationEmptyRequired)
		}
		return pass()
	}

	switch {
	case q.Type.IsText():
		return e.evaluateText(q, answer.String())
	case q.Type == models.Numeric:
		return e.evaluateNumeric(q, answer.String())
	case q.Type.IsChoice():
		return e.evaluateChoice(q, *answer)
	default:
		// file-upload answers are a filename reference only
		return pass()
	}
}

// EvaluateAuthoring checks the question definition itself, independent of any answer
func (e *RuleEvaluator) EvaluateAuthoring(q models.Question) Result {
	if q.Type.IsChoice() && CountOptions(q.Options) < MinChoiceOptions {
		return fail(ViolationInsufficientOptions)
	}
	return pass()
}

// CountOptions returns the number of non-blank options
func CountOptions(options []string) int {
	n := 0
	for _, o := range options {
		if strings.TrimSpace(o) != "" {
			n++
		}
	}
	return n
}

func (e *RuleEvaluator) evaluateText(q models.Question, value string) Result {
	if q.Validation == nil {
		return pass()
	}
	length := utf8.RuneCountInString(value)
	if q.Validation.MinLength != nil && length < *q.Validation.MinLength {
		return fail(ViolationTooShort)
	}
	if q.Validation.MaxLength != nil && length > *q.Validation.MaxLength {
		return fail(ViolationTooLong)
	}
	return pass()
}

func (e *RuleEvaluator) evaluateNumeric(q models.Question, value string) Result {
	n, ok := ParseNumber(value)
	if !ok {
		return fail(ViolationNotNumeric)
	}
	if q.Validation == nil {
		return pass()
	}
	if q.Validation.Min != nil && n < *q.Validation.Min {
		return fail(ViolationBelowMin)
	}
	if q.Validation.Max != nil && n > *q.Validation.Max {
		return fail(ViolationAboveMax)
	}
	return pass()
}

func (e *RuleEvaluator) evaluateChoice(q models.Question, answer models.Answer) Result {
	if len(q.Options) == 0 {
		return pass()
	}
	picked := []string{answer.Value}
	if answer.Multi {
		picked = answer.Choices
	}
	if q.Type == models.SingleChoice && len(picked) > 1 {
		return fail(ViolationInvalidOption)
	}
	for _, p := range picked {
		if !containsOption(q.Options, p) {
			return fail(ViolationInvalidOption)
		}
	}
	return pass()
}

// ParseNumber parses a finite decimal number, tolerating surrounding whitespace
func ParseNumber(value string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func formatNumber(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
