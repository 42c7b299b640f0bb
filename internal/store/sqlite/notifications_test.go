package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func makeTestNotification(id, userID string, ntype domain.NotificationType, createdAt time.Time) *domain.Notification {
	n := &domain.Notification{
		UserID: userID,
		Type:   ntype,
		Payload: map[string]string{
			"product_id": "prod-1",
			"actor_id":   "user-2",
		},
	}
	n.ID = id
	n.CreatedAt = createdAt
	n.UpdatedAt = createdAt
	return n
}

func TestNotificationLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	n := makeTestNotification("notif-1", user.ID, domain.NotificationTypeVote, time.Now().UTC())
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	unread, err := s.CountUnreadNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountUnreadNotifications: %v", err)
	}
	if unread != 1 {
		t.Errorf("unread: got %d, want 1", unread)
	}

	result, err := s.ListNotifications(ctx, user.ID, store.PaginationParams{})
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("got %d notifications, want 1", len(result.Items))
	}
	got := result.Items[0]
	if got.Type != domain.NotificationTypeVote {
		t.Errorf("Type: got %q", got.Type)
	}
	// Payload round-trips through the JSON column.
	if got.Payload["product_id"] != "prod-1" {
		t.Errorf("Payload: got %v", got.Payload)
	}

	if err := s.MarkNotificationRead(ctx, user.ID, "notif-1"); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	unread, err = s.CountUnreadNotifications(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountUnreadNotifications: %v", err)
	}
	if unread != 0 {
		t.Errorf("unread after read: got %d, want 0", unread)
	}

	if err := s.DeleteNotification(ctx, user.ID, "notif-1"); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if err := s.DeleteNotification(ctx, user.ID, "notif-1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMarkNotificationRead_WrongUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	n := makeTestNotification("notif-1", user.ID, domain.NotificationTypeComment, time.Now().UTC())
	if err := s.CreateNotification(ctx, n); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	// Another user cannot touch it.
	if err := s.MarkNotificationRead(ctx, "someone-else", "notif-1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := s.DeleteNotification(ctx, "someone-else", "notif-1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound for foreign delete, got %v", err)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		n := makeTestNotification(
			fmt.Sprintf("notif-%d", i), user.ID, domain.NotificationTypeReply,
			base.Add(time.Duration(i)*time.Second))
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	updated, err := s.MarkAllNotificationsRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead: %v", err)
	}
	if updated != 3 {
		t.Errorf("updated: got %d, want 3", updated)
	}

	// Idempotent: nothing left to update.
	updated, err = s.MarkAllNotificationsRead(ctx, user.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead again: %v", err)
	}
	if updated != 0 {
		t.Errorf("second pass updated %d, want 0", updated)
	}
}

func TestListNotifications_Pagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := makeTestNotification(
			fmt.Sprintf("notif-%d", i), user.ID, domain.NotificationTypeVote,
			base.Add(time.Duration(i)*time.Minute))
		if err := s.CreateNotification(ctx, n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	page1, err := s.ListNotifications(ctx, user.ID, store.PaginationParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListNotifications page 1: %v", err)
	}
	if len(page1.Items) != 2 || !page1.HasMore {
		t.Fatalf("page 1: %d items, hasMore=%v", len(page1.Items), page1.HasMore)
	}
	// Newest first.
	if page1.Items[0].ID != "notif-4" {
		t.Errorf("first item: got %s, want notif-4", page1.Items[0].ID)
	}

	page2, err := s.ListNotifications(ctx, user.ID, store.PaginationParams{Limit: 2, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatalf("ListNotifications page 2: %v", err)
	}
	if len(page2.Items) != 2 {
		t.Fatalf("page 2: got %d items", len(page2.Items))
	}
	if page2.Items[0].ID != "notif-2" {
		t.Errorf("page 2 first item: got %s, want notif-2", page2.Items[0].ID)
	}
}
