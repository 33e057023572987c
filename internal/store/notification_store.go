package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/todocal/internal/model"
)

// CreateNotification inserts n unless a notification for the same todo and
// due date already exists.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *model.Notification) (bool, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.stamp()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, todo_id, due_date, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(todo_id, due_date) DO NOTHING`,
		n.ID, n.UserID, n.TodoID, n.DueDate, n.Message, boolToInt(n.Read), n.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("creating notification for todo %s: %w", n.TodoID, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ListUnreadNotifications returns the user's unread notifications, newest first.
func (s *SQLiteStore) ListUnreadNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	notifications := []model.Notification{}
	err := s.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, todo_id, due_date, message, read, created_at
		FROM notifications
		WHERE user_id = ? AND read = 0
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}
