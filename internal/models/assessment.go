package models

import (
	"time"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single-choice"
	MultiChoice  QuestionType = "multi-choice"
	ShortText    QuestionType = "short-text"
	LongText     QuestionType = "long-text"
	Numeric      QuestionType = "numeric"
	FileUpload   QuestionType = "file-upload"
)

// QuestionTypes lists every supported question type in display order
var QuestionTypes = []QuestionType{SingleChoice, MultiChoice, ShortText, LongText, Numeric, FileUpload}

func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

func (t QuestionType) IsText() bool {
	return t == ShortText || t == LongText
}

func (t QuestionType) Valid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Validation holds the declared answer rules of a question.
// MinLength/MaxLength apply to text types, Min/Max to numeric.
type Validation struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty" validate:"omitempty,min=0"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"omitempty,min=0"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

func (v *Validation) IsEmpty() bool {
	return v == nil || (v.MinLength == nil && v.MaxLength == nil && v.Min == nil && v.Max == nil)
}

// Conditional makes a question visible only when an earlier question's
// answer equals (or, for multi-choice, contains) ShowWhen.
type Conditional struct {
	DependsOn string `json:"dependsOn" yaml:"dependsOn" validate:"required"`
	ShowWhen  string `json:"showWhen" yaml:"showWhen"`
}

type Question struct {
	ID          string       `json:"id" validate:"required"`
	Type        QuestionType `json:"type" validate:"required,question_type"`
	Text        string       `json:"text" validate:"max=2000"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=4000"`
	Required    bool         `json:"required"`
	Order       int          `json:"order" validate:"min=0"`
	Options     []string     `json:"options,omitempty" validate:"omitempty,max=50"`
	Validation  *Validation  `json:"validation,omitempty" validate:"omitempty"`
	Conditional *Conditional `json:"conditional,omitempty" validate:"omitempty"`
}

// Section keeps the ordered ids of its questions; the questions themselves
// live in the owning Assessment's Questions arena.
type Section struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	QuestionIDs []string `json:"questionIds"`
	Order       int      `json:"order" validate:"min=0"`
}

type Assessment struct {
	ID          string              `json:"id" gorm:"primaryKey;size:64"`
	JobID       string              `json:"jobId" gorm:"not null;index;size:64" validate:"max=64"`
	Title       string              `json:"title" gorm:"not null;size:200;index" validate:"max=200"`
	Description string              `json:"description" gorm:"type:text" validate:"max=4000"`
	Sections    []Section           `json:"sections" gorm:"serializer:json" validate:"dive"`
	Questions   map[string]Question `json:"questions" gorm:"serializer:json" validate:"dive"`
	TimeLimit   *int                `json:"timeLimit,omitempty" validate:"omitempty,min=1,max=600"` // minutes
	IsPublished bool                `json:"isPublished" gorm:"default:false;index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Set by the canonical store so a retried create returns the first record
	IdempotencyKey *string `json:"-" gorm:"uniqueIndex;size:64"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// List filter values for Assessment.IsPublished
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Job is the read-only job reference an assessment is attached to
type Job struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
