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
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

// CollectionService manages user-owned product collections and the
// implicit "Saved" list.
type CollectionService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store store.Store, validator *validation.Validator, logger *slog.Logger) *CollectionService {
	return &CollectionService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// CreateCollectionRequest holds a new named collection.
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpdateCollectionRequest carries a partial collection update.
type UpdateCollectionRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// Create adds a new named collection for the user.
func (s *CollectionService) Create(ctx context.Context, userID string, req CreateCollectionRequest) (*domain.Collection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	collectionID, err := id.Generate("coll")
	if err != nil {
		return nil, fmt.Errorf("generate collection ID: %w", err)
	}

	collection := &domain.Collection{
		Record:      domain.Record{ID: collectionID},
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		ProductIDs:  []string{},
	}
	collection.InitTimestamps()

	if err := s.store.CreateCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return collection, nil
}

// Get returns one of the user's collections.
func (s *CollectionService) Get(ctx context.Context, userID, collectionID string) (*domain.Collection, error) {
	return s.getOwned(ctx, userID, collectionID)
}

// ListMine returns the user's collections, default list first.
func (s *CollectionService) ListMine(ctx context.Context, userID string) ([]*domain.Collection, error) {
	collections, err := s.store.ListUserCollections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return collections, nil
}

// Update renames or re-describes a collection. The default list keeps
// its name.
func (s *CollectionService) Update(ctx context.Context, userID, collectionID string, req UpdateCollectionRequest) (*domain.Collection, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	collection, err := s.getOwned(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if collection.IsDefault {
			return nil, domainerrors.Validation("the default collection cannot be renamed")
		}
		collection.Name = *req.Name
	}
	if req.Description != nil {
		collection.Description = *req.Description
	}
	collection.Touch()

	if err := s.store.UpdateCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("update collection: %w", err)
	}
	return collection, nil
}

// Delete removes a collection and its memberships. The default list
// cannot be deleted.
func (s *CollectionService) Delete(ctx context.Context, userID, collectionID string) error {
	collection, err := s.getOwned(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if collection.IsDefault {
		return domainerrors.Validation("the default collection cannot be deleted")
	}

	if err := s.store.DeleteCollection(ctx, collectionID); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// AddProduct puts a product into a collection. Already-present is a no-op.
func (s *CollectionService) AddProduct(ctx context.Context, userID, collectionID, productID string) error {
	if _, err := s.getOwned(ctx, userID, collectionID); err != nil {
		return err
	}
	if err := s.productExists(ctx, productID); err != nil {
		return err
	}

	if err := s.store.AddProductToCollection(ctx, collectionID, productID); err != nil {
		return fmt.Errorf("add product to collection: %w", err)
	}
	return nil
}

// RemoveProduct takes a product out of a collection.
func (s *CollectionService) RemoveProduct(ctx context.Context, userID, collectionID, productID string) error {
	if _, err := s.getOwned(ctx, userID, collectionID); err != nil {
		return err
	}

	if err := s.store.RemoveProductFromCollection(ctx, collectionID, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("product is not in this collection")
		}
		return fmt.Errorf("remove product from collection: %w", err)
	}
	return nil
}

// SaveResult reports the state after a save toggle.
type SaveResult struct {
	Saved bool `json:"saved"`
}

// ToggleSave adds or removes a product from the user's default "Saved"
// list, creating the list lazily on first use.
func (s *CollectionService) ToggleSave(ctx context.Context, userID, productID string) (*SaveResult, error) {
	if err := s.productExists(ctx, productID); err != nil {
		return nil, err
	}

	saved, err := s.store.ToggleSave(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("toggle save: %w", err)
	}
	return &SaveResult{Saved: saved}, nil
}

func (s *CollectionService) getOwned(ctx context.Context, userID, collectionID string) (*domain.Collection, error) {
	collection, err := s.store.GetCollection(ctx, collectionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("collection not found")
		}
		return nil, fmt.Errorf("lookup collection: %w", err)
	}
	if collection.OwnerID != userID {
		// Collections are private; hide their existence.
		return nil, domainerrors.NotFound("collection not found")
	}
	return collection, nil
}

func (s *CollectionService) productExists(ctx context.Context, productID string) error {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("product not found")
		}
		return fmt.Errorf("lookup product: %w", err)
	}
	return nil
}
