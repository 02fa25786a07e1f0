package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of domain events the engine emits
type EventType string

const (
	// Assessment events
	EventAssessmentCreated   EventType = "assessment.created"
	EventAssessmentUpdated   EventType = "assessment.updated"
	EventAssessmentPublished EventType = "assessment.published"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"

	// User-facing outcome of a save or submit
	EventNotification EventType = "system.notification"
)

const (
	eventSource  = "talentflow-assessments"
	eventVersion = "1.0"
)

// Event is the envelope every published event shares
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type AssessmentSavedEvent struct {
	AssessmentID  string `json:"assessment_id"`
	JobID         string `json:"job_id"`
	Title         string `json:"title"`
	SectionCount  int    `json:"section_count"`
	QuestionCount int    `json:"question_count"`
	IsPublished   bool   `json:"is_published"`
}

type ResponseSubmittedEvent struct {
	ResponseID     string    `json:"response_id"`
	AssessmentID   string    `json:"assessment_id"`
	CandidateID    string    `json:"candidate_id"`
	AnswerCount    int       `json:"answer_count"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type NotificationPayload struct {
	Kind    string `json:"kind"` // success or error
	Message string `json:"message"`
}

// Event factory functions

func newEvent(t EventType, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAssessmentSavedEvent(t EventType, payload AssessmentSavedEvent) *Event {
	return newEvent(t, payload)
}

func NewResponseSubmittedEvent(payload ResponseSubmittedEvent) *Event {
	return newEvent(EventResponseSubmitted, payload)
}

func NewNotificationEvent(kind, message string) *Event {
	return newEvent(EventNotification, NotificationPayload{Kind: kind, Message: message})
}

// GenerateEventID returns a fresh unique event id
func GenerateEventID() string {
	return uuid.NewString()
}
