package services

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ServiceLogger records one line per service call with its outcome and timing
type ServiceLogger struct {
	logger *slog.Logger
}

type LogConfig struct {
	Service   string
	Component string
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{logger: logger.With("service", config.Service, "component", config.Component)}
}

// outcome classifies err into a status label and level. Failures the caller
// caused stay below error level.
func outcome(err error) (string, slog.Level) {
	switch {
	case err == nil:
		return "success", slog.LevelInfo
	case IsValidation(err):
		return "validation_error", slog.LevelWarn
	case IsNotFound(err):
		return "not_found", slog.LevelInfo
	case IsConflict(err):
		return "conflict", slog.LevelWarn
	}
	return "error", slog.LevelError
}

func (l *ServiceLogger) log(ctx context.Context, operation, resourceType, resourceID string, elapsed time.Duration, err error) {
	status, level := outcome(err)
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_type", resourceType),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		attrs = append(attrs, slog.String("remote_class", remoteErr.Class.String()), slog.String("remote_cause", string(remoteErr.Cause)))
	}

	var invalid ValidationErrors
	if errors.As(err, &invalid) {
		attrs = append(attrs, slog.Int("validation_errors", len(invalid)))
		// the first few are enough to see what the client sent
		for i := 0; i < len(invalid) && i < 3; i++ {
			attrs = append(attrs, slog.Group("invalid_"+invalid[i].Field,
				slog.String("rule", invalid[i].Rule),
				slog.String("message", invalid[i].Message),
			))
		}
	}

	l.logger.LogAttrs(ctx, level, operation+" "+status, attrs...)
}

// Operation times a single service call
type Operation struct {
	logger  *ServiceLogger
	ctx     context.Context
	name    string
	started time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, name string) *Operation {
	return &Operation{logger: l, ctx: ctx, name: name, started: time.Now()}
}

// LogResult logs the call once it has finished
func (o *Operation) LogResult(resourceID, resourceType string, err error) {
	o.logger.log(o.ctx, o.name, resourceType, resourceID, time.Since(o.started), err)
}
