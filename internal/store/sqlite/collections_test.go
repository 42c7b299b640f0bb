package sqlite

import (
	"context"
	"testing"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func TestGetOrCreateDefaultCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	coll, err := s.GetOrCreateDefaultCollection(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateDefaultCollection: %v", err)
	}
	if coll.Name != domain.DefaultCollectionName {
		t.Errorf("Name: got %q, want %q", coll.Name, domain.DefaultCollectionName)
	}
	if !coll.IsDefault {
		t.Error("IsDefault should be set")
	}

	// Second call returns the same collection.
	again, err := s.GetOrCreateDefaultCollection(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateDefaultCollection again: %v", err)
	}
	if again.ID != coll.ID {
		t.Errorf("ID changed between calls: %q vs %q", again.ID, coll.ID)
	}

	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM collections WHERE owner_id = ? AND is_default = 1`,
		user.ID).Scan(&count); err != nil {
		t.Fatalf("count collections: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 default collection, got %d", count)
	}
}

func TestToggleSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	// First toggle saves and lazily creates the default collection.
	saved, err := s.ToggleSave(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("ToggleSave: %v", err)
	}
	if !saved {
		t.Error("first toggle should save")
	}

	set, err := s.GetSavedProductIDs(ctx, user.ID, []string{product.ID})
	if err != nil {
		t.Fatalf("GetSavedProductIDs: %v", err)
	}
	if !set[product.ID] {
		t.Error("product should be in the saved set")
	}

	// Second toggle unsaves.
	saved, err = s.ToggleSave(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("ToggleSave: %v", err)
	}
	if saved {
		t.Error("second toggle should unsave")
	}

	set, err = s.GetSavedProductIDs(ctx, user.ID, []string{product.ID})
	if err != nil {
		t.Fatalf("GetSavedProductIDs: %v", err)
	}
	if set[product.ID] {
		t.Error("product should be gone from the saved set")
	}
}

func TestCollectionCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	coll := &domain.Collection{
		OwnerID:     user.ID,
		Name:        "AI picks",
		Description: "Tools worth watching",
	}
	coll.ID = "coll-custom"
	coll.InitTimestamps()

	if err := s.CreateCollection(ctx, coll); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	if err := s.AddProductToCollection(ctx, coll.ID, product.ID); err != nil {
		t.Fatalf("AddProductToCollection: %v", err)
	}
	// Re-adding is a no-op, not an error.
	if err := s.AddProductToCollection(ctx, coll.ID, product.ID); err != nil {
		t.Fatalf("AddProductToCollection again: %v", err)
	}

	got, err := s.GetCollection(ctx, coll.ID)
	if err != nil {
		t.Fatalf("GetCollection: %v", err)
	}
	if len(got.ProductIDs) != 1 || got.ProductIDs[0] != product.ID {
		t.Errorf("ProductIDs: got %v", got.ProductIDs)
	}

	got.Name = "AI picks 2026"
	got.Touch()
	if err := s.UpdateCollection(ctx, got); err != nil {
		t.Fatalf("UpdateCollection: %v", err)
	}

	list, err := s.ListUserCollections(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListUserCollections: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d collections, want 1", len(list))
	}
	if list[0].Name != "AI picks 2026" {
		t.Errorf("Name: got %q", list[0].Name)
	}

	if err := s.RemoveProductFromCollection(ctx, coll.ID, product.ID); err != nil {
		t.Fatalf("RemoveProductFromCollection: %v", err)
	}
	if err := s.RemoveProductFromCollection(ctx, coll.ID, product.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}

	if err := s.DeleteCollection(ctx, coll.ID); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	if _, err := s.GetCollection(ctx, coll.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListUserCollections_DefaultFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, _ := seedProductFixtures(t, s)

	custom := &domain.Collection{OwnerID: user.ID, Name: "Custom"}
	custom.ID = "coll-a"
	custom.InitTimestamps()
	if err := s.CreateCollection(ctx, custom); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}

	if _, err := s.GetOrCreateDefaultCollection(ctx, user.ID); err != nil {
		t.Fatalf("GetOrCreateDefaultCollection: %v", err)
	}

	list, err := s.ListUserCollections(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListUserCollections: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d collections, want 2", len(list))
	}
	if !list[0].IsDefault {
		t.Error("default collection should sort first")
	}
}
