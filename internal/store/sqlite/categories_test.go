package sqlite

import (
	"context"
	"testing"

	"github.com/nichehunt/nichehunt-server/internal/store"
)

func TestCategoryCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := makeTestCategory("cat-1", "productivity", "Productivity")
	if err := s.CreateCategory(ctx, c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	got, err := s.GetCategory(ctx, "cat-1")
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "Productivity" {
		t.Errorf("Name: got %q", got.Name)
	}

	bySlug, err := s.GetCategoryBySlug(ctx, "productivity")
	if err != nil {
		t.Fatalf("GetCategoryBySlug: %v", err)
	}
	if bySlug.ID != "cat-1" {
		t.Errorf("ID: got %q", bySlug.ID)
	}

	dup := makeTestCategory("cat-2", "productivity", "Productivity Again")
	if err := s.CreateCategory(ctx, dup); err != store.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListCategories_OrderedByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, c := range []struct{ id, slug, name string }{
		{"cat-1", "saas", "SaaS"},
		{"cat-2", "ai", "AI"},
		{"cat-3", "devtools", "Developer Tools"},
	} {
		if err := s.CreateCategory(ctx, makeTestCategory(c.id, c.slug, c.name)); err != nil {
			t.Fatalf("CreateCategory %s: %v", c.id, err)
		}
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("got %d categories, want 3", len(categories))
	}
	if categories[0].Name != "AI" || categories[2].Name != "SaaS" {
		t.Errorf("unexpected order: %s, %s, %s",
			categories[0].Name, categories[1].Name, categories[2].Name)
	}
}

func TestGetCategoriesByIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := makeTestCategory("cat-1", "fintech", "Fintech")
	if err := s.CreateCategory(ctx, c); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	categories, err := s.GetCategoriesByIDs(ctx, []string{"cat-1", "cat-missing"})
	if err != nil {
		t.Fatalf("GetCategoriesByIDs: %v", err)
	}
	if len(categories) != 1 || categories["cat-1"] == nil {
		t.Errorf("got %v", categories)
	}
}
