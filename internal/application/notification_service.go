package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/interview-pipeline/internal/persistence"
)

// NotificationService exposes stored notifications to their recipients.
type NotificationService struct {
	notifications persistence.NotificationRepository
	logger        *slog.Logger
}

// NewNotificationService wires the notification read side.
func NewNotificationService(notifications persistence.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: defaultLogger(logger)}
}

// ListNotifications returns the user's notifications, newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string) (result []persistence.Notification, err error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("notification store not configured")
	}

	logger := serviceLogger(ctx, s.logger, "NotificationService", "ListNotifications", "user_id", userID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list notifications", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if userID == "" {
		vErr := &ValidationError{}
		vErr.add("user_id", "a user is required")
		err = vErr
		return
	}

	result, err = s.notifications.ListNotificationsForUser(ctx, userID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// MarkRead flags a notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (err error) {
	if s == nil || s.notifications == nil {
		return fmt.Errorf("notification store not configured")
	}

	logger := serviceLogger(ctx, s.logger, "NotificationService", "MarkRead", "notification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark notification read", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if err = s.notifications.MarkNotificationRead(ctx, id); err != nil {
		err = mapRepoError(err)
	}
	return
}
