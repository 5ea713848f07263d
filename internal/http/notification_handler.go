package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/interview-pipeline/internal/application"
	"github.com/example/interview-pipeline/internal/persistence"
)

type notificationService interface {
	ListNotifications(ctx context.Context, userID string) ([]persistence.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingUserID)
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), userID)
	if err != nil {
		h.log(r.Context(), "List", "user_id", userID).ErrorContext(r.Context(), "notification listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		dtos = append(dtos, toNotificationDTO(notification))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationListResponse{Notifications: dtos})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(notificationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	if err := h.service.MarkRead(r.Context(), notificationID); err != nil {
		h.log(r.Context(), "MarkRead", "notification_id", notificationID).ErrorContext(r.Context(), "mark read failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type notificationDTO struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	Type              string `json:"type"`
	Title             string `json:"title"`
	Message           string `json:"message"`
	RelatedEntityType string `json:"related_entity_type,omitempty"`
	RelatedEntityID   string `json:"related_entity_id,omitempty"`
	Read              bool   `json:"read"`
	CreatedAt         string `json:"created_at"`
}

type notificationListResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

func toNotificationDTO(notification persistence.Notification) notificationDTO {
	return notificationDTO{
		ID:                notification.ID,
		UserID:            notification.UserID,
		Type:              notification.Type,
		Title:             notification.Title,
		Message:           notification.Message,
		RelatedEntityType: notification.RelatedEntityType,
		RelatedEntityID:   notification.RelatedEntityID,
		Read:              notification.Read,
		CreatedAt:         notification.CreatedAt.UTC().Format(time.RFC3339),
	}
}
