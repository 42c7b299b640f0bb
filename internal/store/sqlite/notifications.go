package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"fmt"
	"strings"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// notificationColumns is the ordered list of columns selected in
// notification queries. Must match the scan order in scanNotification.
const notificationColumns = `id, created_at, updated_at, user_id, type, read, payload`

// scanNotification scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Notification. The payload is stored as a JSON object.
func scanNotification(scanner interface{ Scan(dest ...any) error }) (*domain.Notification, error) {
	var n domain.Notification

	var (
		createdAt string
		updatedAt string
		ntype     string
		read      int
		payload   string
	)

	err := scanner.Scan(
		&n.ID,
		&createdAt,
		&updatedAt,
		&n.UserID,
		&ntype,
		&read,
		&payload,
	)
	if err != nil {
		return nil, err
	}

	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	n.Type = domain.NotificationType(ntype)
	n.Read = read != 0

	if err := json.Unmarshal([]byte(payload), &n.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal notification payload: %w", err)
	}

	return &n, nil
}

// CreateNotification inserts a notification.
func (s *Store) CreateNotification(ctx context.Context, notification *domain.Notification) error {
	payload := notification.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, created_at, updated_at, user_id, type, read, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		formatTime(notification.CreatedAt),
		formatTime(notification.UpdatedAt),
		notification.UserID,
		string(notification.Type),
		boolToInt(notification.Read),
		string(data),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListNotifications returns a user's notifications newest-first, paginated.
// The cursor encodes "created_at|id" of the last row of the previous page.
func (s *Store) ListNotifications(ctx context.Context, userID string, params store.PaginationParams) (*store.PaginatedResult[*domain.Notification], error) {
	params.Validate()

	var cursorTime, cursorID string
	if params.Cursor != "" {
		decoded, err := store.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, fmt.Errorf("decode cursor: %w", err)
		}
		parts := strings.SplitN(decoded, "|", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid cursor format")
		}
		cursorTime = parts[0]
		cursorID = parts[1]
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return nil, err
	}

	var rows *sql.Rows
	if cursorTime == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+notificationColumns+` FROM notifications
			WHERE user_id = ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?`, userID, params.Limit+1)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+notificationColumns+` FROM notifications
			WHERE user_id = ?
			AND (created_at < ? OR (created_at = ? AND id < ?))
			ORDER BY created_at DESC, id DESC
			LIMIT ?`, userID, cursorTime, cursorTime, cursorID, params.Limit+1)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(notifications) > params.Limit
	if hasMore {
		notifications = notifications[:params.Limit]
	}

	var nextCursor string
	if hasMore && len(notifications) > 0 {
		last := notifications[len(notifications)-1]
		nextCursor = store.EncodeCursor(formatTime(last.CreatedAt) + "|" + last.ID)
	}

	if notifications == nil {
		notifications = []*domain.Notification{}
	}

	return &store.PaginatedResult[*domain.Notification]{
		Items:      notifications,
		NextCursor: nextCursor,
		HasMore:    hasMore,
		Total:      total,
	}, nil
}

// MarkNotificationRead marks one of the user's notifications as read.
// Returns store.ErrNotFound if the notification does not exist or belongs
// to another user.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification for the user as
// read. Returns the number of notifications updated.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0`, userID)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CountUnreadNotifications returns the user's unread notification count.
func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID).Scan(&n)
	return n, err
}

// DeleteNotification removes one of the user's notifications.
// Returns store.ErrNotFound if the notification does not exist or belongs
// to another user.
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
