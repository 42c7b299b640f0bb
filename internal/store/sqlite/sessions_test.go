package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func makeTestSession(id, userID, tokenHash string, expiresAt time.Time) *domain.Session {
	now := time.Now().UTC()
	sess := &domain.Session{
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		UserAgent:        "test-agent",
		IPAddress:        "127.0.0.1",
		ExpiresAt:        expiresAt,
		LastUsedAt:       now,
	}
	sess.ID = id
	sess.CreatedAt = now
	sess.UpdatedAt = now
	return sess
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	sess := makeTestSession("sess-1", user.ID, "hash-abc", time.Now().Add(time.Hour))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "hash-abc")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("ID: got %q", got.ID)
	}
	if got.UserAgent != "test-agent" {
		t.Errorf("UserAgent: got %q", got.UserAgent)
	}

	// Rotate the refresh token.
	got.RefreshTokenHash = "hash-def"
	got.LastUsedAt = time.Now().UTC()
	got.Touch()
	if err := s.UpdateSession(ctx, got); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-abc"); err != store.ErrNotFound {
		t.Errorf("old token hash should be gone, got %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-def"); err != nil {
		t.Errorf("new token hash should resolve: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.GetSession(ctx, "sess-1"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	expired := makeTestSession("sess-old", user.ID, "hash-old", time.Now().Add(-time.Hour))
	live := makeTestSession("sess-new", user.ID, "hash-new", time.Now().Add(time.Hour))
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession expired: %v", err)
	}
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("CreateSession live: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}
	if _, err := s.GetSession(ctx, "sess-old"); err != store.ErrNotFound {
		t.Errorf("expired session should be gone, got %v", err)
	}
	if _, err := s.GetSession(ctx, "sess-new"); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}

func TestDeleteAllUserSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	for i, hash := range []string{"h1", "h2", "h3"} {
		sess := makeTestSession(
			string(rune('a'+i))+"-sess", user.ID, hash, time.Now().Add(time.Hour))
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	if err := s.DeleteAllUserSessions(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAllUserSessions: %v", err)
	}

	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sessions WHERE user_id = ?`, user.ID).Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 sessions, got %d", count)
	}
}
