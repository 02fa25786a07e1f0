package handlers

import (
	"net/http"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(
	assessmentService services.AssessmentService,
	logger utils.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
	}
}

// CreateAssessment creates the canonical assessment for a job
// @Summary Create assessment
// @Description Creates an assessment under a server-minted id. A repeated Idempotency-Key returns the first result.
// @Tags assessments
// @Accept json
// @Produce json
// @Param job_id path string true "Job ID"
// @Param Idempotency-Key header string false "Idempotency token"
// @Param assessment body models.Assessment true "Assessment"
// @Success 201 {object} SuccessResponse{data=models.Assessment}
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /jobs/{job_id}/assessment [post]
func (h *AssessmentHandler) CreateAssessment(c *gin.Context) {
	jobID := ParseStringIDParam(c, "job_id")
	if jobID == "" {
		return
	}

	var req models.Assessment
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
	h.LogRequest(c, "Creating assessment", "job_id", jobID, "idempotency_key", idempotencyKey)

	assessment, err := h.assessmentService.Create(c.Request.Context(), jobID, &req, idempotencyKey)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Assessment created successfully", assessment, "assessment_id", assessment.ID)
}

// GetAssessment retrieves an assessment by ID
// @Summary Get assessment
// @Tags assessments
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} SuccessResponse{data=models.Assessment}
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [get]
func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	assessment, err := h.assessmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Assessment retrieved successfully", assessment, "assessment_id", id)
}

// GetAssessmentByJob returns the latest assessment attached to a job
// @Summary Get assessment by job
// @Tags assessments
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} SuccessResponse{data=models.Assessment}
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{job_id}/assessment [get]
func (h *AssessmentHandler) GetAssessmentByJob(c *gin.Context) {
	jobID := ParseStringIDParam(c, "job_id")
	if jobID == "" {
		return
	}

	assessment, err := h.assessmentService.GetByJob(c.Request.Context(), jobID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Assessment retrieved successfully", assessment, "job_id", jobID)
}

// UpdateAssessment replaces an assessment in place
// @Summary Update assessment
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param assessment body models.Assessment true "Assessment"
// @Success 200 {object} SuccessResponse{data=models.Assessment}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id} [put]
func (h *AssessmentHandler) UpdateAssessment(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req models.Assessment
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	h.LogRequest(c, "Updating assessment", "assessment_id", id)

	assessment, err := h.assessmentService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Assessment updated successfully", assessment, "assessment_id", id)
}

// ListAssessments lists assessments with filters
// @Summary List assessments
// @Tags assessments
// @Produce json
// @Param job_id query string false "Job ID"
// @Param search query string false "Title search"
// @Param status query string false "published or draft"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=services.AssessmentListResponse}
// @Failure 400 {object} ErrorResponse
// @Router /assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	var filter services.AssessmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.bindError(c, err)
		return
	}

	list, err := h.assessmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Assessments retrieved successfully", list, "total", list.Total)
}
