package utils

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader correlates a request across client, server and logs
const RequestIDHeader = "X-Request-ID"

// Logger is the logging surface handlers and binaries share
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	With(args ...any) Logger

	LogRequest(method, path string, statusCode int, duration time.Duration, args ...any)
	LogError(err error, msg string, args ...any)

	// Slog exposes the underlying logger for packages that take *slog.Logger
	Slog() *slog.Logger
}

type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) Logger {
	return &SlogLogger{logger: logger}
}

// NewLogger builds the process logger: JSON in production, text elsewhere.
// level is one of debug, info, warn or error; anything else means info.
func NewLogger(w io.Writer, environment, level string) Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return NewSlogLogger(slog.New(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}

func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// LogRequest picks the level from the status: warn for 4xx, error for 5xx
func (l *SlogLogger) LogRequest(method, path string, statusCode int, duration time.Duration, args ...any) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	args = append([]any{"method", method, "path", path, "status_code", statusCode, "duration", duration}, args...)
	l.logger.Log(context.Background(), level, "HTTP Request", args...)
}

func (l *SlogLogger) LogError(err error, msg string, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

// LoggerMiddleware logs one line per request once the handler chain is done
func LoggerMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		path := c.Request.URL.Path
		c.Next()

		args := []any{"client_ip", c.ClientIP(), "request_id", c.GetHeader(RequestIDHeader)}
		if len(c.Errors) > 0 {
			args = append(args, "errors", c.Errors.String())
		}
		logger.LogRequest(c.Request.Method, path, c.Writer.Status(), time.Since(started), args...)
	}
}

// RequestIDMiddleware assigns a request id when the client did not send one
// and echoes it on the response.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, id)
		}
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
