package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/interview-pipeline/internal/persistence"
)

// Notification types emitted by the core.
const (
	NotificationTypeStageAdvanced      = "stage_advanced"
	NotificationTypeInterviewScheduled = "interview_scheduled"
)

// Notification is the payload handed to the notification sink.
type Notification struct {
	UserID            string
	Type              string
	Title             string
	Message           string
	RelatedEntityType string
	RelatedEntityID   string
}

// Notifier is the fire-and-forget notification sink injected into services.
// Failures must never fail the triggering operation; callers log and move on.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, notification Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, notification Notification) error {
	return f(ctx, notification)
}

// PersistNotifier stores notifications as rows for later delivery or display.
type PersistNotifier struct {
	notifications persistence.NotificationRepository
	idGenerator   func() string
	now           func() time.Time
}

// NewPersistNotifier wires a repository-backed notification sink.
func NewPersistNotifier(notifications persistence.NotificationRepository, idGenerator func() string, now func() time.Time) *PersistNotifier {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PersistNotifier{notifications: notifications, idGenerator: idGenerator, now: now}
}

// Notify implements Notifier.
func (n *PersistNotifier) Notify(ctx context.Context, notification Notification) error {
	if n == nil || n.notifications == nil {
		return nil
	}
	return n.notifications.CreateNotification(ctx, persistence.Notification{
		ID:                n.idGenerator(),
		UserID:            notification.UserID,
		Type:              notification.Type,
		Title:             notification.Title,
		Message:           notification.Message,
		RelatedEntityType: notification.RelatedEntityType,
		RelatedEntityID:   notification.RelatedEntityID,
		CreatedAt:         n.now(),
	})
}

// notify delivers a notification without letting sink failures escape.
func notify(ctx context.Context, notifier Notifier, logger *slog.Logger, notification Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, notification); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to deliver notification",
			"error", err,
			"notification_type", notification.Type,
			"user_id", notification.UserID,
		)
	}
}
