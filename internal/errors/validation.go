// Package errors holds the field-level validation error shared by the
// validator, the services and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected field. Field is a dotted path such
// as "sections[1].questions[0].options" or "answers.q3".
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors keeps the order the checks ran in. Surfaces that show a
// single message use First.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + ve[0].Message
	}
	return fmt.Sprintf("validation failed: %s (and %d more)", ve[0].Message, len(ve)-1)
}

func (ve ValidationErrors) First() string {
	if len(ve) == 0 {
		return ""
	}
	return ve[0].Message
}

func (ve ValidationErrors) HasRule(rule string) bool {
	for i := range ve {
		if ve[i].Rule == rule {
			return true
		}
	}
	return false
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value, Rule: rule}
}

// tagMessages maps struct tag failures to text appended after the field name.
// %s is replaced with the tag parameter.
var tagMessages = map[string]string{
	"required":       "is required",
	"min":            "must be at least %s",
	"max":            "must be at most %s",
	"len":            "must be exactly %s characters",
	"uuid":           "must be a valid UUID",
	"numeric":        "must be a number",
	"oneof":          "must be one of: %s",
	"gtefield":       "must not be below %s",
	"question_type":  "must be one of " + strings.Join(questionTypeNames, ", "),
	"publish_status": "must be published or draft",
}

var questionTypeNames = []string{"single-choice", "multi-choice", "short-text", "long-text", "numeric", "file-upload"}

// ToValidationErrors turns struct tag failures into ValidationErrors. Any
// other error yields nil.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: fe.Field() + " " + tagMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func tagMessage(fe validator.FieldError) string {
	format, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed the %q check", fe.Tag())
	}
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, fe.Param())
	}
	return format
}
