package services

import (
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
)

// prepareForStore deep-copies the incoming assessment, drops fields the
// client may not set and renumbers orders to match positions.
func prepareForStore(in models.Assessment) models.Assessment {
	a := in.Clone()
	a.IdempotencyKey = nil
	if a.Questions == nil {
		a.Questions = make(map[string]models.Question)
	}
	for si := range a.Sections {
		a.Sections[si].Order = si
		for qi, id := range a.Sections[si].QuestionIDs {
			if q, ok := a.Questions[id]; ok {
				q.Order = qi
				a.Questions[id] = q
			}
		}
	}
	return a
}

func assessmentID(a *models.Assessment) string {
	if a == nil {
		return ""
	}
	return a.ID
}

func savedEventPayload(a *models.Assessment) events.AssessmentSavedEvent {
	return events.AssessmentSavedEvent{
		AssessmentID:  a.ID,
		JobID:         a.JobID,
		Title:         a.Title,
		SectionCount:  len(a.Sections),
		QuestionCount: a.QuestionCount(),
		IsPublished:   a.IsPublished,
	}
}

func submittedEventPayload(r *models.ResponseRecord) events.ResponseSubmittedEvent {
	return events.ResponseSubmittedEvent{
		ResponseID:     r.ID,
		AssessmentID:   r.AssessmentID,
		CandidateID:    r.CandidateID,
		AnswerCount:    len(r.Answers.Data()),
		ElapsedSeconds: r.ElapsedSeconds,
		SubmittedAt:    r.SubmittedAt,
	}
}
