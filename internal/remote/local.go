package remote

import (
	"context"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
)

// Local serves RemoteStore from in-process services, for single-binary use
// and tests. Service errors are classified the same way the HTTP client
// classifies status codes.
type Local struct {
	assessments services.AssessmentService
	responses   services.ResponseService
}

func NewLocal(assessments services.AssessmentService, responses services.ResponseService) *Local {
	return &Local{assessments: assessments, responses: responses}
}

func (l *Local) ListAssessments(ctx context.Context, filter services.AssessmentFilter) ([]*models.Assessment, error) {
	list, err := l.assessments.List(ctx, filter)
	if err != nil {
		return nil, classifyLocal("list_assessments", err)
	}
	return list.Assessments, nil
}

func (l *Local) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	a, err := l.assessments.GetByID(ctx, id)
	return a, classifyLocal("get_assessment", err)
}

func (l *Local) GetAssessmentByJob(ctx context.Context, jobID string) (*models.Assessment, error) {
	a, err := l.assessments.GetByJob(ctx, jobID)
	return a, classifyLocal("get_assessment_by_job", err)
}

func (l *Local) CreateAssessment(ctx context.Context, jobID string, assessment models.Assessment, idempotencyKey string) (*models.Assessment, error) {
	a, err := l.assessments.Create(ctx, jobID, &assessment, idempotencyKey)
	return a, classifyLocal("create_assessment", err)
}

func (l *Local) UpdateAssessment(ctx context.Context, assessment models.Assessment) (*models.Assessment, error) {
	a, err := l.assessments.Update(ctx, assessment.ID, &assessment)
	return a, classifyLocal("update_assessment", err)
}

func (l *Local) SubmitResponse(ctx context.Context, submission models.Submission, idempotencyKey string) (*models.ResponseRecord, error) {
	r, err := l.responses.Submit(ctx, &submission, idempotencyKey)
	return r, classifyLocal("submit_response", err)
}

func (l *Local) ListResponses(ctx context.Context, assessmentID string) ([]*models.ResponseRecord, error) {
	list, err := l.responses.List(ctx, assessmentID, nil, nil)
	if err != nil {
		return nil, classifyLocal("list_responses", err)
	}
	return list.Responses, nil
}

func classifyLocal(op string, err error) error {
	if err == nil {
		return nil
	}
	if services.IsPermanent(err) || services.IsConflict(err) {
		return services.NewPermanentError(op, err)
	}
	return services.NewTransientError(op, services.CauseServer, err)
}

var _ services.RemoteStore = (*Local)(nil)
