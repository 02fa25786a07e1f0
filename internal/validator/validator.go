package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/Vivek-Bhagat/TalentFlow-sub000/internal/errors"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/go-playground/validator/v10"
)

type (
	ValidationError  = apperrors.ValidationError
	ValidationErrors = apperrors.ValidationErrors
)

// ToValidationErrors converts struct tag failures; other errors yield nil
func ToValidationErrors(err error) ValidationErrors {
	return apperrors.ToValidationErrors(err)
}

// Validator checks assessments, answers and request structs. It is safe for
// concurrent use; build one per process.
type Validator struct {
	tags  *validator.Validate
	rules *RuleEvaluator
}

func New() *Validator {
	tags := validator.New()
	_ = tags.RegisterValidation("question_type", validateQuestionType)
	_ = tags.RegisterValidation("publish_status", validatePublishStatus)
	tags.RegisterTagNameFunc(jsonFieldName)

	return &Validator{tags: tags, rules: NewRuleEvaluator()}
}

// ValidateStruct runs struct tag checks and returns the raw validator error
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.tags.Struct(s)
}

// Validate runs struct tag checks, reporting failures as ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

func (v *Validator) Rules() *RuleEvaluator {
	return v.rules
}

// jsonFieldName reports fields by their wire name
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validatePublishStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", models.StatusPublished, models.StatusDraft:
		return true
	}
	return false
}
