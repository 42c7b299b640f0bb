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

// CategoryService serves the static category reference data.
type CategoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

// defaultCategories is the reference set seeded into an empty store.
var defaultCategories = []struct {
	slug, name, description string
}{
	{"developer-tools", "Developer Tools", "APIs, SDKs, and tooling for builders"},
	{"saas", "SaaS", "Software as a service businesses"},
	{"marketplaces", "Marketplaces", "Two-sided markets and platforms"},
	{"productivity", "Productivity", "Get more done"},
	{"finance", "Finance", "Money, payments, and fintech"},
	{"ecommerce", "E-Commerce", "Selling things online"},
	{"content", "Content & Media", "Newsletters, communities, and media businesses"},
	{"ai", "AI", "Products built on machine learning"},
	{"health", "Health & Wellness", "Healthier living"},
	{"education", "Education", "Learning and teaching"},
}

// List returns all categories ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetBySlug returns one category.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	category, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("category %q not found", slug)
		}
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	return category, nil
}

// Seed inserts the default categories, skipping slugs that already
// exist. Safe to run on every startup.
func (s *CategoryService) Seed(ctx context.Context) error {
	created := 0
	for _, c := range defaultCategories {
		if _, err := s.store.GetCategoryBySlug(ctx, c.slug); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check category %q: %w", c.slug, err)
		}

		categoryID, err := id.Generate("cat")
		if err != nil {
			return fmt.Errorf("generate category ID: %w", err)
		}

		category := &domain.Category{
			Record:      domain.Record{ID: categoryID},
			Slug:        c.slug,
			Name:        c.name,
			Description: c.description,
		}
		category.InitTimestamps()

		if err := s.store.CreateCategory(ctx, category); err != nil {
			// Concurrent seeders can race; the row is there either way.
			if errors.Is(err, store.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("create category %q: %w", c.slug, err)
		}
		created++
	}

	if created > 0 {
		s.logger.Info("seeded categories", "count", created)
	}
	return nil
}
