package services

import (
	"errors"
	"fmt"

	apperrors "github.com/Vivek-Bhagat/TalentFlow-sub000/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Assessment specific errors
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrSaveInProgress     = errors.New("a save for this assessment is already in progress")
	ErrUnknownJob         = errors.New("assessment is not attached to a known job")

	// Response specific errors
	ErrResponseNotFound = errors.New("response not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// RemoteClass tells the retry loop whether a remote failure may succeed on a later attempt
type RemoteClass int

const (
	Transient RemoteClass = iota
	Permanent
)

func (c RemoteClass) String() string {
	if c == Permanent {
		return "permanent"
	}
	return "transient"
}

// RemoteCause is what the user is told went wrong
type RemoteCause string

const (
	CauseUnavailable   RemoteCause = "unavailable"
	CauseServer        RemoteCause = "server"
	CauseCommunication RemoteCause = "communication"
	CauseClient        RemoteCause = "client"
)

// RemoteError is a failed call to the canonical store
type RemoteError struct {
	Op         string
	Class      RemoteClass
	Cause      RemoteCause
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Op, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Class, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func NewTransientError(op string, cause RemoteCause, err error) *RemoteError {
	return &RemoteError{Op: op, Class: Transient, Cause: cause, Err: err}
}

func NewPermanentError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Class: Permanent, Cause: CauseClient, Err: err}
}

// SaveError is returned once a save or submission has given up
type SaveError struct {
	AssessmentID string
	Attempts     int
	Cause        RemoteCause
	Err          error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("remote write for assessment %q failed after %d attempt(s): %v", e.AssessmentID, e.Attempts, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// UserMessage is the generic message shown for the failure, with a suggested action
func (e *SaveError) UserMessage() string {
	return UserMessage(e.Cause)
}

// UserMessage maps a failure cause to the text shown to the user
func UserMessage(cause RemoteCause) string {
	switch cause {
	case CauseUnavailable:
		return "The service is currently unavailable. Your work is kept locally, please try again in a moment."
	case CauseServer:
		return "The server could not complete the request. Please try again later."
	case CauseCommunication:
		return "Could not reach the server. Check your connection and try again."
	default:
		return "The request was rejected. Please review your changes and try again."
	}
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrResponseNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrSaveInProgress)
}

// IsPermanent reports whether retrying err cannot help. Validation and
// not-found outcomes are permanent, as is any RemoteError classed so.
func IsPermanent(err error) bool {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Class == Permanent
	}
	return IsValidation(err) || IsNotFound(err) || errors.Is(err, ErrUnknownJob)
}

// CauseOf classifies err for the user-facing message
func CauseOf(err error) RemoteCause {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Cause
	}
	if IsPermanent(err) {
		return CauseClient
	}
	return CauseCommunication
}

// IsSaveError checks if err is an exhausted save
func IsSaveError(err error) bool {
	var se *SaveError
	return errors.As(err, &se)
}
