package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/dto"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/id"
	"github.com/nichehunt/nichehunt-server/internal/metrics"
	"github.com/nichehunt/nichehunt-server/internal/store"
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

// ProductService manages product listings: creation, updates, browsing,
// and the denormalized card views most pages render.
type ProductService struct {
	store     store.Store
	enricher  *dto.Enricher
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	store store.Store,
	enricher *dto.Enricher,
	validator *validation.Validator,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		store:     store,
		enricher:  enricher,
		validator: validator,
		logger:    logger,
	}
}

// CreateProductRequest holds a new product submission.
type CreateProductRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=100"`
	Tagline     string     `json:"tagline" validate:"required,min=2,max=200"`
	Description string     `json:"description" validate:"required,min=10"`
	WebsiteURL  string     `json:"website_url,omitempty" validate:"omitempty,url"`
	LogoURL     string     `json:"logo_url,omitempty" validate:"omitempty,url"`
	CategoryID  string     `json:"category_id" validate:"required"`
	Tags        []string   `json:"tags,omitempty" validate:"max=10"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	LaunchDate  *time.Time `json:"launch_date,omitempty"`
}

// UpdateProductRequest carries a partial product update. Nil fields are
// left unchanged.
type UpdateProductRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Tagline     *string    `json:"tagline,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,min=10"`
	WebsiteURL  *string    `json:"website_url,omitempty" validate:"omitempty,url"`
	LogoURL     *string    `json:"logo_url,omitempty" validate:"omitempty,url"`
	CategoryID  *string    `json:"category_id,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
	LaunchDate  *time.Time `json:"launch_date,omitempty"`
}

// ListProductsOptions are the public listing filters.
type ListProductsOptions struct {
	CategorySlug string
	TagSlug      string
	Username     string // Filter to one maker's products
	FeaturedOnly bool
	Sort         store.ProductSort
}

// Create submits a new product owned by userID.
func (s *ProductService) Create(ctx context.Context, userID string, req CreateProductRequest) (*dto.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Validationf("unknown category %q", req.CategoryID)
		}
		return nil, fmt.Errorf("lookup category: %w", err)
	}

	productID, err := id.Generate("prod")
	if err != nil {
		return nil, fmt.Errorf("generate product ID: %w", err)
	}

	slug, err := s.availableSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	status := domain.ProductStatusPublished
	if req.Status != "" {
		status = domain.ProductStatus(req.Status)
	}

	product := &domain.Product{
		Record:      domain.Record{ID: productID},
		Slug:        slug,
		Name:        req.Name,
		Tagline:     req.Tagline,
		Description: normalizeDescription(req.Description),
		WebsiteURL:  req.WebsiteURL,
		LogoURL:     req.LogoURL,
		CategoryID:  req.CategoryID,
		UserID:      userID,
		Status:      status,
		LaunchDate:  req.LaunchDate,
	}
	product.InitTimestamps()

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.attachTags(ctx, product, req.Tags); err != nil {
		return nil, err
	}

	metrics.ProductsCreated.Inc()
	s.logger.Info("product created",
		"product_id", productID,
		"slug", slug,
		"user_id", userID,
	)

	return s.enricher.EnrichProduct(ctx, product, userID)
}

// Update applies a partial update to a product. Only the owner may update.
func (s *ProductService) Update(ctx context.Context, userID, productID string, req UpdateProductRequest) (*dto.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.getOwned(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Tagline != nil {
		product.Tagline = *req.Tagline
	}
	if req.Description != nil {
		product.Description = normalizeDescription(*req.Description)
	}
	if req.WebsiteURL != nil {
		product.WebsiteURL = *req.WebsiteURL
	}
	if req.LogoURL != nil {
		product.LogoURL = *req.LogoURL
	}
	if req.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.Validationf("unknown category %q", *req.CategoryID)
			}
			return nil, fmt.Errorf("lookup category: %w", err)
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Status != nil {
		product.Status = domain.ProductStatus(*req.Status)
	}
	if req.LaunchDate != nil {
		product.LaunchDate = req.LaunchDate
	}
	product.Touch()

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if req.Tags != nil {
		if err := s.attachTags(ctx, product, *req.Tags); err != nil {
			return nil, err
		}
	}

	return s.enricher.EnrichProduct(ctx, product, userID)
}

// GetBySlug returns one enriched product. Drafts are visible only to
// their owner.
func (s *ProductService) GetBySlug(ctx context.Context, slug, viewerID string) (*dto.Product, error) {
	product, err := s.store.GetProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("product %q not found", slug)
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	if !product.VisibleTo(viewerID) {
		// Hide the draft's existence instead of answering 403.
		return nil, domainerrors.NotFoundf("product %q not found", slug)
	}

	return s.enricher.EnrichProduct(ctx, product, viewerID)
}

// ProductPage is one page of enriched product cards.
type ProductPage struct {
	Items      []*dto.Product `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
	Total      int            `json:"total"`
}

// List returns a filtered, sorted page of published products, enriched
// for the viewer.
func (s *ProductService) List(ctx context.Context, opts ListProductsOptions, params store.PaginationParams, viewerID string) (*ProductPage, error) {
	filter := store.ProductFilter{
		FeaturedOnly: opts.FeaturedOnly,
		Sort:         opts.Sort,
	}
	if filter.Sort == "" {
		filter.Sort = store.SortNewest
	}
	if !filter.Sort.Valid() {
		return nil, domainerrors.Validationf("unknown sort %q", filter.Sort)
	}

	if opts.CategorySlug != "" {
		category, err := s.store.GetCategoryBySlug(ctx, opts.CategorySlug)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFoundf("category %q not found", opts.CategorySlug)
			}
			return nil, fmt.Errorf("lookup category: %w", err)
		}
		filter.CategoryID = category.ID
	}

	if opts.TagSlug != "" {
		tag, err := s.store.GetTagBySlug(ctx, domain.NormalizeTagSlug(opts.TagSlug))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFoundf("tag %q not found", opts.TagSlug)
			}
			return nil, fmt.Errorf("lookup tag: %w", err)
		}
		filter.TagID = tag.ID
	}

	if opts.Username != "" {
		profile, err := s.store.GetProfileByUsername(ctx, opts.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.NotFoundf("profile %q not found", opts.Username)
			}
			return nil, fmt.Errorf("lookup profile: %w", err)
		}
		filter.UserID = profile.UserID
		// Owners browsing their own listing see drafts too.
		filter.IncludeDrafts = viewerID != "" && viewerID == profile.UserID
	}

	result, err := s.store.ListProducts(ctx, filter, params)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items, err := s.enricher.EnrichProducts(ctx, result.Items, viewerID)
	if err != nil {
		return nil, fmt.Errorf("enrich products: %w", err)
	}

	return &ProductPage{
		Items:      items,
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
		Total:      result.Total,
	}, nil
}

// RecordView bumps a product's view counter.
func (s *ProductService) RecordView(ctx context.Context, productID string) error {
	if err := s.store.IncrementProductViews(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("product not found")
		}
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

// getOwned loads a product and verifies ownership.
func (s *ProductService) getOwned(ctx context.Context, userID, productID string) (*domain.Product, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if product.UserID != userID {
		return nil, domainerrors.Forbidden("only the product owner can do that")
	}
	return product, nil
}

// attachTags resolves raw tag inputs to tag rows (get-or-create) and
// replaces the product's tag set. Inputs that normalize to nothing are
// dropped. The raw spelling becomes the display name when the tag is new.
func (s *ProductService) attachTags(ctx context.Context, product *domain.Product, rawTags []string) error {
	tagIDs := make([]string, 0, len(rawTags))
	seen := make(map[string]bool, len(rawTags))
	for _, raw := range rawTags {
		slug := domain.NormalizeTagSlug(raw)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true

		tag, _, err := s.store.FindOrCreateTagBySlug(ctx, slug, strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", slug, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := s.store.SetProductTags(ctx, product.ID, tagIDs); err != nil {
		return fmt.Errorf("set product tags: %w", err)
	}
	product.TagIDs = tagIDs
	return nil
}

// availableSlug derives a URL slug from the product name, suffixing with
// random characters when the name is taken.
func (s *ProductService) availableSlug(ctx context.Context, name string) (string, error) {
	base := domain.NormalizeTagSlug(name)
	if base == "" {
		return "", domainerrors.Validation("name must contain letters or digits")
	}
	if len(base) > 80 {
		base = base[:80]
	}

	candidate := base
	for range 5 {
		_, err := s.store.GetProductBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 6)
		if err != nil {
			return "", fmt.Errorf("generate slug suffix: %w", err)
		}
		candidate = base + "-" + suffix
	}
	return "", domainerrors.Internal("could not allocate a product slug")
}
