package dto

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nichehunt/nichehunt-server/internal/domain"
)

// fakeStore counts queries so tests can assert batching behavior.
type fakeStore struct {
	profiles   map[string]*domain.Profile
	categories map[string]*domain.Category
	tags       map[string][]*domain.Tag
	voted      map[string]bool
	saved      map[string]bool

	queries atomic.Int32
	failOn  string
}

func (f *fakeStore) GetProfilesByUserIDs(_ context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	f.queries.Add(1)
	if f.failOn == "profiles" {
		return nil, errors.New("profiles unavailable")
	}
	out := make(map[string]*domain.Profile)
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeStore) GetCategoriesByIDs(_ context.Context, ids []string) (map[string]*domain.Category, error) {
	f.queries.Add(1)
	out := make(map[string]*domain.Category)
	for _, id := range ids {
		if c, ok := f.categories[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeStore) GetTagsForProductIDs(_ context.Context, productIDs []string) (map[string][]*domain.Tag, error) {
	f.queries.Add(1)
	out := make(map[string][]*domain.Tag)
	for _, id := range productIDs {
		if ts, ok := f.tags[id]; ok {
			out[id] = ts
		}
	}
	return out, nil
}

func (f *fakeStore) GetVotedProductIDs(_ context.Context, _ string, productIDs []string) (map[string]bool, error) {
	f.queries.Add(1)
	out := make(map[string]bool)
	for _, id := range productIDs {
		if f.voted[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeStore) GetSavedProductIDs(_ context.Context, _ string, productIDs []string) (map[string]bool, error) {
	f.queries.Add(1)
	out := make(map[string]bool)
	for _, id := range productIDs {
		if f.saved[id] {
			out[id] = true
		}
	}
	return out, nil
}

func makeProduct(id, userID, categoryID string) *domain.Product {
	p := &domain.Product{
		Slug:       "slug-" + id,
		Name:       "Product " + id,
		CategoryID: categoryID,
		UserID:     userID,
		Status:     domain.ProductStatusPublished,
	}
	p.ID = id
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	return p
}

func makeProfile(userID, username string) *domain.Profile {
	p := &domain.Profile{UserID: userID, Username: username}
	p.ID = userID
	return p
}

func TestEnrichProducts(t *testing.T) {
	alice := makeProfile("user-alice", "alice")
	tech := &domain.Category{Name: "Tech", Slug: "tech"}
	tech.ID = "cat-tech"

	react := &domain.Tag{Slug: "react", Name: "React"}
	react.ID = "tag-react"
	typescript := &domain.Tag{Slug: "typescript", Name: "TS"}
	typescript.ID = "tag-ts"

	store := &fakeStore{
		profiles:   map[string]*domain.Profile{"user-alice": alice},
		categories: map[string]*domain.Category{"cat-tech": tech},
		tags: map[string][]*domain.Tag{
			"prod-42": {react, typescript},
		},
		voted: map[string]bool{"prod-42": true},
		saved: map[string]bool{},
	}

	e := NewEnricher(store, nil)
	product := makeProduct("prod-42", "user-alice", "cat-tech")

	enriched, err := e.EnrichProduct(context.Background(), product, "viewer-1")
	if err != nil {
		t.Fatalf("EnrichProduct: %v", err)
	}

	if enriched.Maker == nil || enriched.Maker.Username != "alice" {
		t.Errorf("Maker: got %+v, want alice", enriched.Maker)
	}
	if enriched.CategoryName != "Tech" {
		t.Errorf("CategoryName: got %q, want Tech", enriched.CategoryName)
	}
	if len(enriched.Tags) != 2 {
		t.Fatalf("Tags: got %d, want 2", len(enriched.Tags))
	}
	if enriched.Tags[0].Slug != "react" || enriched.Tags[1].Slug != "typescript" {
		t.Errorf("Tags: got %v", enriched.Tags)
	}
	// Display names keep the submitted casing; "TS" must not come back "Ts".
	if enriched.Tags[0].Name != "React" || enriched.Tags[1].Name != "TS" {
		t.Errorf("Tag names: got [%q %q], want [React TS]", enriched.Tags[0].Name, enriched.Tags[1].Name)
	}
	if !enriched.HasVoted {
		t.Error("HasVoted should be true")
	}
	if enriched.IsSaved {
		t.Error("IsSaved should be false")
	}
}

func TestEnrichProducts_ConstantQueryCount(t *testing.T) {
	store := &fakeStore{
		profiles:   map[string]*domain.Profile{},
		categories: map[string]*domain.Category{},
		tags:       map[string][]*domain.Tag{},
		voted:      map[string]bool{},
		saved:      map[string]bool{},
	}
	e := NewEnricher(store, nil)

	// A full page of products must cost the same number of store calls as
	// a single one.
	var products []*domain.Product
	for i := 0; i < 50; i++ {
		products = append(products,
			makeProduct(fmt.Sprintf("prod-%d", i), fmt.Sprintf("user-%d", i), "cat-1"))
	}

	if _, err := e.EnrichProducts(context.Background(), products, "viewer-1"); err != nil {
		t.Fatalf("EnrichProducts: %v", err)
	}
	if got := store.queries.Load(); got != 5 {
		t.Errorf("store calls for 50 products: got %d, want 5", got)
	}

	store.queries.Store(0)
	if _, err := e.EnrichProducts(context.Background(), products[:1], "viewer-1"); err != nil {
		t.Fatalf("EnrichProducts single: %v", err)
	}
	if got := store.queries.Load(); got != 5 {
		t.Errorf("store calls for 1 product: got %d, want 5", got)
	}
}

func TestEnrichProducts_AnonymousSkipsViewerLookups(t *testing.T) {
	store := &fakeStore{
		profiles:   map[string]*domain.Profile{},
		categories: map[string]*domain.Category{},
		tags:       map[string][]*domain.Tag{},
	}
	e := NewEnricher(store, nil)

	enriched, err := e.EnrichProducts(context.Background(),
		[]*domain.Product{makeProduct("prod-1", "user-1", "cat-1")}, "")
	if err != nil {
		t.Fatalf("EnrichProducts: %v", err)
	}
	if got := store.queries.Load(); got != 3 {
		t.Errorf("store calls for anonymous viewer: got %d, want 3", got)
	}
	if enriched[0].HasVoted || enriched[0].IsSaved {
		t.Error("anonymous viewer flags should be false")
	}
}

func TestEnrichProducts_MissingRelationsDegrade(t *testing.T) {
	store := &fakeStore{
		profiles:   map[string]*domain.Profile{},
		categories: map[string]*domain.Category{},
		tags:       map[string][]*domain.Tag{},
	}
	e := NewEnricher(store, nil)

	enriched, err := e.EnrichProduct(context.Background(),
		makeProduct("prod-1", "user-gone", "cat-gone"), "")
	if err != nil {
		t.Fatalf("EnrichProduct: %v", err)
	}
	if enriched.Maker != nil {
		t.Errorf("Maker should be nil for missing profile, got %+v", enriched.Maker)
	}
	if enriched.CategoryName != "" {
		t.Errorf("CategoryName should be empty, got %q", enriched.CategoryName)
	}
	if enriched.Tags == nil || len(enriched.Tags) != 0 {
		t.Errorf("Tags should be an empty slice, got %v", enriched.Tags)
	}
}

func TestEnrichProducts_LookupFailureDegrades(t *testing.T) {
	tech := &domain.Category{Name: "Tech", Slug: "tech"}
	tech.ID = "cat-1"
	store := &fakeStore{
		profiles:   map[string]*domain.Profile{"user-1": makeProfile("user-1", "alice")},
		categories: map[string]*domain.Category{"cat-1": tech},
		tags:       map[string][]*domain.Tag{},
		failOn:     "profiles",
	}
	e := NewEnricher(store, nil)

	// The failing profile lookup must degrade to absent data, not fail
	// the page; the other lookups still populate their fields.
	enriched, err := e.EnrichProducts(context.Background(),
		[]*domain.Product{makeProduct("prod-1", "user-1", "cat-1")}, "")
	if err != nil {
		t.Fatalf("EnrichProducts: %v", err)
	}
	if enriched[0].Maker != nil {
		t.Errorf("Maker should be nil when the profile lookup fails, got %+v", enriched[0].Maker)
	}
	if enriched[0].CategoryName != "Tech" {
		t.Errorf("CategoryName: got %q, want Tech", enriched[0].CategoryName)
	}
	if enriched[0].Tags == nil || len(enriched[0].Tags) != 0 {
		t.Errorf("Tags should be an empty slice, got %v", enriched[0].Tags)
	}
}

func TestEnrichProducts_Empty(t *testing.T) {
	store := &fakeStore{}
	e := NewEnricher(store, nil)

	enriched, err := e.EnrichProducts(context.Background(), nil, "viewer-1")
	if err != nil {
		t.Fatalf("EnrichProducts: %v", err)
	}
	if len(enriched) != 0 {
		t.Errorf("got %d items, want 0", len(enriched))
	}
	if store.queries.Load() != 0 {
		t.Error("empty input should not touch the store")
	}
}
