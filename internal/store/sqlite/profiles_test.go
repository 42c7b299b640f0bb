package sqlite

import (
	"context"
	"testing"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func makeTestProfile(userID, username string) *domain.Profile {
	p := &domain.Profile{
		UserID:      userID,
		Username:    username,
		DisplayName: "Test Maker",
		Bio:         "building things",
	}
	p.ID = userID
	p.InitTimestamps()
	return p
}

func TestSaveAndGetProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	p := makeTestProfile(user.ID, user.Username)
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	got, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.DisplayName != "Test Maker" {
		t.Errorf("DisplayName: got %q", got.DisplayName)
	}

	// Save again acts as an upsert.
	p.Bio = "shipping daily"
	p.Touch()
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile upsert: %v", err)
	}
	got, err = s.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got.Bio != "shipping daily" {
		t.Errorf("Bio: got %q", got.Bio)
	}

	byName, err := s.GetProfileByUsername(ctx, user.Username)
	if err != nil {
		t.Fatalf("GetProfileByUsername: %v", err)
	}
	if byName.UserID != user.ID {
		t.Errorf("UserID: got %q", byName.UserID)
	}
}

func TestGetProfilesByUserIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	p := makeTestProfile(user.ID, user.Username)
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}

	profiles, err := s.GetProfilesByUserIDs(ctx, []string{user.ID, "user-missing"})
	if err != nil {
		t.Fatalf("GetProfilesByUserIDs: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}
	if profiles[user.ID] == nil {
		t.Error("profile for seeded user missing")
	}

	// Empty input returns an empty map without querying.
	empty, err := s.GetProfilesByUserIDs(ctx, nil)
	if err != nil {
		t.Fatalf("GetProfilesByUserIDs empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty map, got %v", empty)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "nonexistent"); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
