package handlers

import (
	"errors"
	"net/http"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/services"
	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets a client retry a create or submit without duplicating it
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler gives every handler request-scoped logging and the shared
// response envelopes.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// requestLogger tags log lines with the request they belong to
func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return h.logger.With(
		"request_id", c.GetHeader(utils.RequestIDHeader),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, fields ...interface{}) {
	h.requestLogger(c).Info(message, append(fields, "remote_addr", c.ClientIP())...)
}

// RespondWithError writes the error envelope. Only 5xx responses carrying an
// error are logged at error level.
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, code, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Message: message, Code: code}
	if len(details) > 0 {
		resp.Details = details[0]
	}

	log := h.requestLogger(c)
	if err != nil && statusCode >= http.StatusInternalServerError {
		log.LogError(err, message, "status_code", statusCode)
	} else {
		log.Warn(message, "status_code", statusCode)
	}
	c.JSON(statusCode, resp)
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}, fields ...interface{}) {
	h.requestLogger(c).Info(message, append([]interface{}{"status_code", statusCode}, fields...)...)
	c.JSON(statusCode, SuccessResponse{Message: message, Data: data})
}

// errorMapping pairs a service error test with the response it produces.
// The first match wins. Clients retry on 5xx only.
var errorMapping = []struct {
	match   func(error) bool
	status  int
	code    string
	message string
	detail  bool
}{
	{func(err error) bool { return errors.Is(err, services.ErrAssessmentNotFound) }, http.StatusNotFound, CodeNotFound, "Assessment not found", false},
	{func(err error) bool {
		return errors.Is(err, services.ErrResponseNotFound) || errors.Is(err, services.ErrNotFound)
	}, http.StatusNotFound, CodeNotFound, "Resource not found", false},
	{services.IsConflict, http.StatusConflict, CodeConflict, "Resource conflict", false},
	{func(err error) bool {
		return errors.Is(err, services.ErrBadRequest) || errors.Is(err, services.ErrValidationFailed)
	}, http.StatusBadRequest, CodeBadRequest, "Bad request", true},
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var invalid services.ValidationErrors
	if errors.As(err, &invalid) {
		h.RespondWithError(c, http.StatusBadRequest, CodeValidationFailed, "Validation failed", err, invalid)
		return
	}

	for _, m := range errorMapping {
		if !m.match(err) {
			continue
		}
		if m.detail {
			h.RespondWithError(c, m.status, m.code, m.message, err, err.Error())
		} else {
			h.RespondWithError(c, m.status, m.code, m.message, err)
		}
		return
	}
	h.RespondWithError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	h.RespondWithError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request payload", err, err.Error())
}
