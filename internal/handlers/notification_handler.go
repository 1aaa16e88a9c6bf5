package handlers

import (
	"net/http"
	"strconv"

	"taskhive/internal/repository"
)

const defaultNotificationLimit = 50

// NotificationHandler handles in-app notification requests
type NotificationHandler struct {
	notifications *repository.NotificationRepository
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	notifications, err := h.notifications.ListByUser(user.ID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	views := make([]notificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, newNotificationView(&notifications[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	count, err := h.notifications.UnreadCount(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	notificationID, ok := pathID(r, "id")
	if !ok {
		respondBadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(notificationID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.notifications.MarkAllRead(user.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
