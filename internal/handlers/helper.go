package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func rejectParam(c *gin.Context, param, detail string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid " + param, Details: detail, Code: CodeBadRequest})
}

// ParseStringIDParam returns the trimmed path parameter, or "" after writing a 400
func ParseStringIDParam(c *gin.Context, param string) string {
	id := strings.TrimSpace(c.Param(param))
	if id == "" {
		rejectParam(c, param, "ID cannot be empty")
	}
	return id
}

// ParseTimeQuery reads an optional RFC 3339 timestamp. ok is false after a
// 400 has been written.
func ParseTimeQuery(c *gin.Context, param string) (t *time.Time, ok bool) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		rejectParam(c, param, "expected an RFC 3339 timestamp")
		return nil, false
	}
	return &parsed, true
}
