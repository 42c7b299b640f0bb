package dto

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/nichehunt/nichehunt-server/internal/domain"
)

// Store defines the interface for fetching related entities during enrichment.
// This allows Enricher to remain testable and independent of concrete store
// implementation.
type Store interface {
	GetProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) (map[string]*domain.Category, error)
	GetTagsForProductIDs(ctx context.Context, productIDs []string) (map[string][]*domain.Tag, error)
	GetVotedProductIDs(ctx context.Context, userID string, productIDs []string) (map[string]bool, error)
	GetSavedProductIDs(ctx context.Context, userID string, productIDs []string) (map[string]bool, error)
}

// Enricher denormalizes domain models for client consumption.
//
// Design philosophy:
//   - Batch fetching: one query per related entity type, never per product,
//     so the query count for a page is constant regardless of page size
//   - Graceful degradation: a missing profile or category leaves the
//     denormalized fields empty instead of failing the page, and a failed
//     batch lookup is logged and treated the same as an empty result
//   - Idempotent: safe to enrich the same product multiple times
type Enricher struct {
	store  Store
	logger *slog.Logger
}

// NewEnricher creates a new enricher. Logger may be nil (falls back to stderr).
func NewEnricher(store Store, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Enricher{store: store, logger: logger}
}

// EnrichProduct denormalizes a single product. viewerID may be empty for
// anonymous requests.
func (e *Enricher) EnrichProduct(ctx context.Context, product *domain.Product, viewerID string) (*Product, error) {
	enriched, err := e.EnrichProducts(ctx, []*domain.Product{product}, viewerID)
	if err != nil {
		return nil, err
	}
	return enriched[0], nil
}

// EnrichProducts denormalizes a page of products.
//
// All related entities are fetched in five batched lookups (profiles,
// categories, tags, votes, saves) that run concurrently. The two
// viewer-dependent lookups are skipped for anonymous requests. A lookup
// that errors is logged and contributes nothing to the page, so the page
// renders with absent related data instead of failing outright.
func (e *Enricher) EnrichProducts(ctx context.Context, products []*domain.Product, viewerID string) ([]*Product, error) {
	if len(products) == 0 {
		return []*Product{}, nil
	}

	// Collect distinct related-entity IDs across the page.
	userIDSet := make(map[string]struct{})
	categoryIDSet := make(map[string]struct{})
	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		userIDSet[p.UserID] = struct{}{}
		categoryIDSet[p.CategoryID] = struct{}{}
		productIDs = append(productIDs, p.ID)
	}
	userIDs := setToSlice(userIDSet)
	categoryIDs := setToSlice(categoryIDSet)

	var (
		profiles   map[string]*domain.Profile
		categories map[string]*domain.Category
		tags       map[string][]*domain.Tag
		voted      map[string]bool
		saved      map[string]bool
	)

	// A failing lookup degrades to an empty map rather than failing the
	// page, so the errgroup carries no errors out of the fan-out.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if profiles, err = e.store.GetProfilesByUserIDs(ctx, userIDs); err != nil {
			e.logger.Warn("profile lookup failed during enrichment", "error", err)
			profiles = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if categories, err = e.store.GetCategoriesByIDs(ctx, categoryIDs); err != nil {
			e.logger.Warn("category lookup failed during enrichment", "error", err)
			categories = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tags, err = e.store.GetTagsForProductIDs(ctx, productIDs); err != nil {
			e.logger.Warn("tag lookup failed during enrichment", "error", err)
			tags = nil
		}
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			var err error
			if voted, err = e.store.GetVotedProductIDs(ctx, viewerID, productIDs); err != nil {
				e.logger.Warn("vote lookup failed during enrichment", "error", err)
				voted = nil
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if saved, err = e.store.GetSavedProductIDs(ctx, viewerID, productIDs); err != nil {
				e.logger.Warn("save lookup failed during enrichment", "error", err)
				saved = nil
			}
			return nil
		})
	}
	_ = g.Wait()

	enriched := make([]*Product, 0, len(products))
	for _, p := range products {
		dto := &Product{
			Product:  p,
			Tags:     []ProductTag{},
			HasVoted: voted[p.ID],
			IsSaved:  saved[p.ID],
		}

		if profile, ok := profiles[p.UserID]; ok {
			dto.Maker = &ProductMaker{
				UserID:      profile.UserID,
				Username:    profile.Username,
				DisplayName: profile.DisplayName,
				AvatarURL:   profile.AvatarURL,
			}
		}

		if category, ok := categories[p.CategoryID]; ok {
			dto.CategoryName = category.Name
			dto.CategorySlug = category.Slug
		}

		for _, t := range tags[p.ID] {
			dto.Tags = append(dto.Tags, ProductTag{ID: t.ID, Slug: t.Slug, Name: t.Name})
		}

		enriched = append(enriched, dto)
	}

	return enriched, nil
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
