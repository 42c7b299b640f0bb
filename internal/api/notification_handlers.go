package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nichehunt/nichehunt-server/internal/domain"
)

func (s *Server) registerNotificationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List notifications",
		Description: "Returns the caller's notifications, newest first",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotifications)

	huma.Register(s.api, huma.Operation{
		OperationID: "markNotificationRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/{id}/read",
		Summary:     "Mark notification read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkNotificationRead)

	huma.Register(s.api, huma.Operation{
		OperationID: "markAllNotificationsRead",
		Method:      http.MethodPost,
		Path:        "/api/v1/notifications/read-all",
		Summary:     "Mark all notifications read",
		Tags:        []string{"Notifications"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMarkAllNotificationsRead)
}

// === DTOs ===

// ListNotificationsInput pages through notifications.
type ListNotificationsInput struct {
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size (default 20)"`
}

// NotificationPageResponse is a page of notifications plus the unread total.
type NotificationPageResponse struct {
	Items       []*domain.Notification `json:"items" doc:"Notifications, newest first"`
	NextCursor  string                 `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore     bool                   `json:"has_more" doc:"Whether more pages exist"`
	UnreadCount int                    `json:"unread_count" doc:"Total unread notifications"`
}

// NotificationPageOutput wraps the notification page for Huma.
type NotificationPageOutput struct {
	Body NotificationPageResponse
}

// NotificationIDInput identifies a notification by ID.
type NotificationIDInput struct {
	ID string `path:"id" doc:"Notification ID"`
}

// MarkAllReadResponse reports how many notifications were marked.
type MarkAllReadResponse struct {
	Marked int `json:"marked" doc:"Number of notifications marked read"`
}

// MarkAllReadOutput wraps the mark-all response for Huma.
type MarkAllReadOutput struct {
	Body MarkAllReadResponse
}

// === Handlers ===

func (s *Server) handleListNotifications(ctx context.Context, input *ListNotificationsInput) (*NotificationPageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Notification.List(ctx, userID, paginationParams(input.Cursor, input.Limit))
	if err != nil {
		return nil, err
	}

	return &NotificationPageOutput{Body: NotificationPageResponse{
		Items:       page.Items,
		NextCursor:  page.NextCursor,
		HasMore:     page.HasMore,
		UnreadCount: page.UnreadCount,
	}}, nil
}

func (s *Server) handleMarkNotificationRead(ctx context.Context, input *NotificationIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Notification.MarkRead(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Notification marked read"}}, nil
}

func (s *Server) handleMarkAllNotificationsRead(ctx context.Context, _ *struct{}) (*MarkAllReadOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	marked, err := s.services.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MarkAllReadOutput{Body: MarkAllReadResponse{Marked: marked}}, nil
}
