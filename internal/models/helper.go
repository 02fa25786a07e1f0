package models

import (
	"github.com/google/uuid"
)

// NewID returns a fresh globally unique identifier
func NewID() string {
	return uuid.NewString()
}

func stringPtrCopy(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (q Question) Clone() Question {
	q.Description = stringPtrCopy(q.Description)
	if q.Options != nil {
		q.Options = append([]string{}, q.Options...)
	}
	if q.Validation != nil {
		v := *q.Validation
		if v.MinLength != nil {
			n := *v.MinLength
			v.MinLength = &n
		}
		if v.MaxLength != nil {
			n := *v.MaxLength
			v.MaxLength = &n
		}
		if v.Min != nil {
			n := *v.Min
			v.Min = &n
		}
		if v.Max != nil {
			n := *v.Max
			v.Max = &n
		}
		q.Validation = &v
	}
	if q.Conditional != nil {
		c := *q.Conditional
		q.Conditional = &c
	}
	return q
}

func (s Section) Clone() Section {
	s.Description = stringPtrCopy(s.Description)
	s.QuestionIDs = append([]string{}, s.QuestionIDs...)
	return s
}

// Clone returns a deep copy so snapshots never share mutable state
func (a Assessment) Clone() Assessment {
	sections := make([]Section, len(a.Sections))
	for i, s := range a.Sections {
		sections[i] = s.Clone()
	}
	a.Sections = sections

	questions := make(map[string]Question, len(a.Questions))
	for id, q := range a.Questions {
		questions[id] = q.Clone()
	}
	a.Questions = questions

	if a.TimeLimit != nil {
		t := *a.TimeLimit
		a.TimeLimit = &t
	}
	a.IdempotencyKey = stringPtrCopy(a.IdempotencyKey)
	return a
}

// SectionQuestions resolves the ordered questions of section i
func (a Assessment) SectionQuestions(i int) []Question {
	if i < 0 || i >= len(a.Sections) {
		return nil
	}
	out := make([]Question, 0, len(a.Sections[i].QuestionIDs))
	for _, id := range a.Sections[i].QuestionIDs {
		if q, ok := a.Questions[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Locate returns the section index and in-section index of question id
func (a Assessment) Locate(id string) (section, index int, ok bool) {
	for si, s := range a.Sections {
		for qi, qid := range s.QuestionIDs {
			if qid == id {
				return si, qi, true
			}
		}
	}
	return -1, -1, false
}

// OrderedQuestionIDs lists every question id in rendering order
func (a Assessment) OrderedQuestionIDs() []string {
	var ids []string
	for _, s := range a.Sections {
		ids = append(ids, s.QuestionIDs...)
	}
	return ids
}

// Precedes reports whether question a comes strictly before question b
func (a Assessment) Precedes(first, second string) bool {
	fs, fi, ok := a.Locate(first)
	if !ok {
		return false
	}
	ss, si, ok := a.Locate(second)
	if !ok {
		return false
	}
	if fs != ss {
		return fs < ss
	}
	return fi < si
}

func (a Assessment) QuestionCount() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.QuestionIDs)
	}
	return n
}
