package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "Assessment title is required", "")

	if err.Field != "title" {
		t.Errorf("Expected field to be 'title', got '%s'", err.Field)
	}

	if err.Message != "Assessment title is required" {
		t.Errorf("Expected message to be 'Assessment title is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'title': Assessment title is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}
	if errs.First() != "" {
		t.Errorf("Expected empty first message, got '%s'", errs.First())
	}

	errs = append(errs, *NewValidationError("title", "Assessment title is required", nil))
	expected := "validation failed: Assessment title is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("sections", "At least one section is required", nil))
	expected = "validation failed: Assessment title is required (and 1 more)"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
	if errs.First() != "Assessment title is required" {
		t.Errorf("Expected first message to be kept in order, got '%s'", errs.First())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("sections[0].questions[0].options", "needs two options", "insufficient_options", 1)

	if err.Rule != "insufficient_options" {
		t.Errorf("Expected rule to be 'insufficient_options', got '%s'", err.Rule)
	}

	errs := ValidationErrors{*err}
	if !errs.HasRule("insufficient_options") {
		t.Error("Expected HasRule to find insufficient_options")
	}
	if errs.HasRule("too_short") {
		t.Error("Did not expect HasRule to find too_short")
	}
}
