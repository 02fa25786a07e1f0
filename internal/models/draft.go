package models

import "time"

// AuthorDraft is a full local snapshot of an assessment being authored
type AuthorDraft struct {
	AssessmentID string     `json:"assessmentId"`
	Snapshot     Assessment `json:"snapshot"`
	SavedAt      time.Time  `json:"savedAt"`
}

// ResponseDraft holds a candidate's in-progress answers
type ResponseDraft struct {
	AssessmentID string    `json:"assessmentId"`
	Answers      AnswerMap `json:"answers"`
	SavedAt      time.Time `json:"savedAt"`
}
