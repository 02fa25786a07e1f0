package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestIPRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(10, 10)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	assert.Equal(t, 2, l.Len())

	now = now.Add(3 * time.Hour)
	l.Allow("10.0.0.3")
	assert.Equal(t, 1, l.Len())
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewIPRateLimiter(0.001, 1)))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
