package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/models"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
	exportService   services.ExportService
}

func NewResponseHandler(
	responseService services.ResponseService,
	exportService services.ExportService,
	logger utils.Logger,
) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
		exportService:   exportService,
	}
}

// SubmitResponse stores a candidate's finished response
// @Summary Submit response
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param Idempotency-Key header string false "Idempotency token"
// @Param submission body models.Submission true "Submission"
// @Success 201 {object} SuccessResponse{data=models.ResponseRecord}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	assessmentID := ParseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	var req models.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	req.AssessmentID = assessmentID

	h.LogRequest(c, "Submitting response", "assessment_id", assessmentID, "candidate_id", req.CandidateID)

	record, err := h.responseService.Submit(c.Request.Context(), &req, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Response submitted successfully", record, "response_id", record.ID)
}

// ListResponses returns the responses to an assessment, oldest first
// @Summary List responses
// @Tags responses
// @Produce json
// @Param id path string true "Assessment ID"
// @Param from query string false "RFC 3339 lower bound on submittedAt"
// @Param to query string false "RFC 3339 upper bound on submittedAt"
// @Success 200 {object} SuccessResponse{data=services.ResponseListResponse}
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	assessmentID := ParseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}
	from, ok := ParseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := ParseTimeQuery(c, "to")
	if !ok {
		return
	}

	list, err := h.responseService.List(c.Request.Context(), assessmentID, from, to)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Responses retrieved successfully", list, "total", list.Total)
}

// ExportResponses downloads the responses as a spreadsheet
// @Summary Export responses
// @Tags responses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Assessment ID"
// @Param format query string false "xlsx (default) or csv"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /assessments/{id}/responses/export [get]
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	assessmentID := ParseStringIDParam(c, "id")
	if assessmentID == "" {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))
	h.LogRequest(c, "Exporting responses", "assessment_id", assessmentID, "format", format)

	var (
		data        []byte
		err         error
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = h.exportService.ExportResponsesToExcel(c.Request.Context(), assessmentID)
		contentType = contentTypeXLSX
	case "csv":
		data, err = h.exportService.ExportResponsesToCSV(c.Request.Context(), assessmentID)
		contentType = contentTypeCSV
	default:
		h.RespondWithError(c, http.StatusBadRequest, CodeBadRequest, "Unsupported export format", nil, format)
		return
	}
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("responses-%s.%s", assessmentID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
