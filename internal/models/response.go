package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResponseRecord is a submitted candidate response held by the canonical store
type ResponseRecord struct {
	ID             string                        `json:"id" gorm:"primaryKey;size:64"`
	AssessmentID   string                        `json:"assessmentId" gorm:"not null;index;size:64"`
	CandidateID    string                        `json:"candidateId" gorm:"not null;index;size:64"`
	Answers        datatypes.JSONType[AnswerMap] `json:"answers"`
	ElapsedSeconds int                           `json:"elapsedSeconds"`
	SubmittedAt    time.Time                     `json:"submittedAt" gorm:"index"`

	IdempotencyKey *string `json:"-" gorm:"uniqueIndex;size:64"`
}

func (ResponseRecord) TableName() string {
	return "assessment_responses"
}

// Submission is the payload assembled by the runtime player on completion
type Submission struct {
	AssessmentID   string    `json:"assessmentId" validate:"required"`
	CandidateID    string    `json:"candidateId" validate:"required"`
	Answers        AnswerMap `json:"answers"`
	ElapsedSeconds int       `json:"elapsedSeconds" validate:"min=0"`
}
