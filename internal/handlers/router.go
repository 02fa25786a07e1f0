package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	responseHandler   *ResponseHandler
	pinger            Pinger
}

func NewHandlerManager(
	assessmentService services.AssessmentService,
	responseService services.ResponseService,
	exportService services.ExportService,
	pinger Pinger,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(assessmentService, logger),
		responseHandler:   NewResponseHandler(responseService, exportService, logger),
		pinger:            pinger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		assessments := v1.Group("/assessments")
		{
			assessments.GET("", hm.assessmentHandler.ListAssessments)
			assessments.GET("/:id", hm.assessmentHandler.GetAssessment)
			assessments.PUT("/:id", hm.assessmentHandler.UpdateAssessment)

			// Candidate responses
			assessments.POST("/:id/responses", hm.responseHandler.SubmitResponse)
			assessments.GET("/:id/responses", hm.responseHandler.ListResponses)
			assessments.GET("/:id/responses/export", hm.responseHandler.ExportResponses)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.GET("/:job_id/assessment", hm.assessmentHandler.GetAssessmentByJob)
			jobs.POST("/:job_id/assessment", hm.assessmentHandler.CreateAssessment)
		}
	}
}

// HealthCheck reports service status, degraded when the database is unreachable
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status":  "healthy",
		"service": "assessment-service",
	}

	if hm.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := hm.pinger.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = err.Error()
		}
	}

	c.JSON(status, body)
}
