package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// TagService serves the global tag vocabulary.
// Tag creation happens implicitly through product submission
// (ProductService.attachTags); there is no direct create endpoint.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: store, logger: logger}
}

// List returns all tags with their product counts.
func (s *TagService) List(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetBySlug returns one tag. Input is normalized first so
// "Developer Tools" and "developer-tools" resolve identically.
func (s *TagService) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	normalized := domain.NormalizeTagSlug(slug)
	if normalized == "" {
		return nil, domainerrors.Validation("invalid tag slug")
	}

	tag, err := s.store.GetTagBySlug(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("tag %q not found", normalized)
		}
		return nil, fmt.Errorf("lookup tag: %w", err)
	}
	return tag, nil
}
