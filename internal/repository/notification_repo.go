package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"taskhive/internal/database"
	"taskhive/internal/models"
)

// NotificationRepository handles database operations for in-app
// notifications
type NotificationRepository struct {
	q database.DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Insert persists a notification and returns its ID
func (r *NotificationRepository) Insert(userID int64, ntype, title, message string, metadata map[string]string) (int64, error) {
	encoded := "{}"
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to encode notification metadata: %w", err)
		}
		encoded = string(raw)
	}

	query := `
		INSERT INTO notifications (user_id, type, title, message, metadata)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.q.ExecReturningID(query, userID, ntype, title, message, encoded)
	if err != nil {
		return 0, fmt.Errorf("failed to insert notification: %w", err)
	}
	return id, nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(userID int64, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, metadata, read_at, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.q.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var metadata string
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &metadata, &readAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		if metadata != "" && metadata != "{}" {
			if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode notification metadata: %w", err)
			}
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

// ListByUserAndType retrieves a user's notifications of one type. Used by
// tests to verify fan-out.
func (r *NotificationRepository) ListByUserAndType(userID int64, ntype string) ([]models.Notification, error) {
	all, err := r.ListByUser(userID, 1000)
	if err != nil {
		return nil, err
	}
	var filtered []models.Notification
	for _, n := range all {
		if n.Type == ntype {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// UnreadCount returns the number of unread notifications for a user
func (r *NotificationRepository) UnreadCount(userID int64) (int, error) {
	query := "SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL"
	var count int
	if err := r.q.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read. Scoped to the owning user so a
// notification can't be cleared by someone else.
func (r *NotificationRepository) MarkRead(id, userID int64) error {
	query := "UPDATE notifications SET read_at = ? WHERE id = ? AND user_id = ? AND read_at IS NULL"
	if _, err := r.q.Exec(query, time.Now(), id, userID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks all of a user's notifications as read
func (r *NotificationRepository) MarkAllRead(userID int64) error {
	query := "UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL"
	if _, err := r.q.Exec(query, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
