package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/id"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// NotificationService records and serves user notifications.
// Notification writes are best-effort: a failed insert is logged and
// swallowed so it never fails the vote or comment that triggered it.
type NotificationService struct {
	store  store.Store
	logger *slog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(store store.Store, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

// NotificationPage is a page of notifications with the unread total.
type NotificationPage struct {
	Items       []*domain.Notification `json:"items"`
	NextCursor  string                 `json:"next_cursor,omitempty"`
	HasMore     bool                   `json:"has_more"`
	UnreadCount int                    `json:"unread_count"`
}

// List returns the user's notifications newest-first.
func (s *NotificationService) List(ctx context.Context, userID string, params store.PaginationParams) (*NotificationPage, error) {
	result, err := s.store.ListNotifications(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	unread, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}

	return &NotificationPage{
		Items:       result.Items,
		NextCursor:  result.NextCursor,
		HasMore:     result.HasMore,
		UnreadCount: unread,
	}, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.store.MarkNotificationRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("notification not found")
		}
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every unread notification as read and returns the count.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	count, err := s.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return count, nil
}

// NotifyVote records a vote notification for the product owner.
// Self-votes produce nothing.
func (s *NotificationService) NotifyVote(ctx context.Context, recipientID, actorID, productID string) {
	if recipientID == actorID {
		return
	}
	s.notify(ctx, recipientID, domain.NotificationTypeVote, map[string]string{
		"actor_id":   actorID,
		"product_id": productID,
	})
}

// NotifyComment records a comment notification for the product owner.
func (s *NotificationService) NotifyComment(ctx context.Context, recipientID, actorID, productID, commentID string) {
	if recipientID == actorID {
		return
	}
	s.notify(ctx, recipientID, domain.NotificationTypeComment, map[string]string{
		"actor_id":   actorID,
		"product_id": productID,
		"comment_id": commentID,
	})
}

// NotifyReply records a reply notification for the parent comment's author.
func (s *NotificationService) NotifyReply(ctx context.Context, recipientID, actorID, productID, commentID string) {
	if recipientID == actorID {
		return
	}
	s.notify(ctx, recipientID, domain.NotificationTypeReply, map[string]string{
		"actor_id":   actorID,
		"product_id": productID,
		"comment_id": commentID,
	})
}

func (s *NotificationService) notify(ctx context.Context, recipientID string, typ domain.NotificationType, payload map[string]string) {
	notifID, err := id.Generate("notif")
	if err != nil {
		s.logger.Warn("notification ID generation failed", "error", err)
		return
	}

	notification := &domain.Notification{
		Record:  domain.Record{ID: notifID},
		UserID:  recipientID,
		Type:    typ,
		Payload: payload,
	}
	notification.InitTimestamps()

	if err := s.store.CreateNotification(ctx, notification); err != nil {
		s.logger.Warn("notification write failed",
			"recipient", recipientID,
			"type", typ,
			"error", err,
		)
	}
}
