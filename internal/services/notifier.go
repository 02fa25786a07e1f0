package services

import (
	"context"
	"log/slog"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
)

type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
)

// Notifier receives the outcome of saves and submissions. How it is shown
// is up to the caller.
type Notifier interface {
	Notify(ctx context.Context, kind NotifyKind, message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, kind NotifyKind, message string)

func (f NotifierFunc) Notify(ctx context.Context, kind NotifyKind, message string) {
	f(ctx, kind, message)
}

type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, kind NotifyKind, message string) {
	if kind == NotifyError {
		n.logger.WarnContext(ctx, message, "kind", kind)
		return
	}
	n.logger.InfoContext(ctx, message, "kind", kind)
}

// EventNotifier forwards notifications as events
type EventNotifier struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEventNotifier(publisher events.EventPublisher, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{publisher: publisher, logger: logger}
}

func (n *EventNotifier) Notify(ctx context.Context, kind NotifyKind, message string) {
	if err := n.publisher.Publish(ctx, events.NewNotificationEvent(string(kind), message)); err != nil {
		n.logger.Warn("Failed to publish notification", "kind", kind, "error", err)
	}
}

// MultiNotifier fans a notification out to several notifiers
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, kind NotifyKind, message string) {
	for _, n := range m {
		n.Notify(ctx, kind, message)
	}
}
