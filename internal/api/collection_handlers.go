package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/service"
)

func (s *Server) registerCollectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createCollection",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections",
		Summary:     "Create collection",
		Description: "Creates a new product collection",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCollections",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections",
		Summary:     "List collections",
		Description: "Returns the caller's collections",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCollections)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCollection",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Get collection",
		Description: "Returns one of the caller's collections",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCollection",
		Method:      http.MethodPatch,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Update collection",
		Description: "Updates a collection's name or description",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCollection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collections/{id}",
		Summary:     "Delete collection",
		Description: "Deletes a collection (the default save list cannot be deleted)",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "addProductToCollection",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections/{id}/products/{productID}",
		Summary:     "Add product to collection",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddProductToCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeProductFromCollection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collections/{id}/products/{productID}",
		Summary:     "Remove product from collection",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveProductFromCollection)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleSave",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/save",
		Summary:     "Toggle save",
		Description: "Adds or removes the product from the caller's default save list",
		Tags:        []string{"Collections"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleSave)
}

// === DTOs ===

// CollectionResponse is one product collection.
type CollectionResponse struct {
	ID          string    `json:"id" doc:"Collection ID"`
	Name        string    `json:"name" doc:"Collection name"`
	Description string    `json:"description,omitempty" doc:"Collection description"`
	IsDefault   bool      `json:"is_default" doc:"Whether this is the implicit save list"`
	ProductIDs  []string  `json:"product_ids" doc:"Contained product IDs, newest first"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// CollectionOutput wraps a collection for Huma.
type CollectionOutput struct {
	Body CollectionResponse
}

// CollectionListResponse is the caller's collections.
type CollectionListResponse struct {
	Collections []CollectionResponse `json:"collections" doc:"Collections, default first"`
}

// CollectionListOutput wraps the collection list for Huma.
type CollectionListOutput struct {
	Body CollectionListResponse
}

// CreateCollectionRequest holds a new collection.
type CreateCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100" doc:"Collection name"`
	Description string `json:"description,omitempty" validate:"omitempty,max=500" doc:"Collection description"`
}

// CreateCollectionInput wraps the create request for Huma.
type CreateCollectionInput struct {
	Body CreateCollectionRequest
}

// UpdateCollectionRequest carries a partial collection update.
type UpdateCollectionRequest struct {
	Name        *string `json:"name,omitempty" doc:"Collection name"`
	Description *string `json:"description,omitempty" doc:"Collection description"`
}

// UpdateCollectionInput wraps the update request for Huma.
type UpdateCollectionInput struct {
	ID   string `path:"id" doc:"Collection ID"`
	Body UpdateCollectionRequest
}

// CollectionIDInput identifies a collection by ID.
type CollectionIDInput struct {
	ID string `path:"id" doc:"Collection ID"`
}

// CollectionProductInput identifies a collection/product pair.
type CollectionProductInput struct {
	ID        string `path:"id" doc:"Collection ID"`
	ProductID string `path:"productID" doc:"Product ID"`
}

// SaveStateResponse reports the save state after a toggle.
type SaveStateResponse struct {
	Saved bool `json:"saved" doc:"Whether the product is now in the save list"`
}

// SaveStateOutput wraps the save state for Huma.
type SaveStateOutput struct {
	Body SaveStateResponse
}

// === Handlers ===

func (s *Server) handleCreateCollection(ctx context.Context, input *CreateCollectionInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	collection, err := s.services.Collection.Create(ctx, userID, service.CreateCollectionRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: mapCollectionResponse(collection)}, nil
}

func (s *Server) handleListCollections(ctx context.Context, _ *struct{}) (*CollectionListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	collections, err := s.services.Collection.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]CollectionResponse, len(collections))
	for i, c := range collections {
		resp[i] = mapCollectionResponse(c)
	}

	return &CollectionListOutput{Body: CollectionListResponse{Collections: resp}}, nil
}

func (s *Server) handleGetCollection(ctx context.Context, input *CollectionIDInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	collection, err := s.services.Collection.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: mapCollectionResponse(collection)}, nil
}

func (s *Server) handleUpdateCollection(ctx context.Context, input *UpdateCollectionInput) (*CollectionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	collection, err := s.services.Collection.Update(ctx, userID, input.ID, service.UpdateCollectionRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &CollectionOutput{Body: mapCollectionResponse(collection)}, nil
}

func (s *Server) handleDeleteCollection(ctx context.Context, input *CollectionIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Collection.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Collection deleted"}}, nil
}

func (s *Server) handleAddProductToCollection(ctx context.Context, input *CollectionProductInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Collection.AddProduct(ctx, userID, input.ID, input.ProductID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Product added"}}, nil
}

func (s *Server) handleRemoveProductFromCollection(ctx context.Context, input *CollectionProductInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Collection.RemoveProduct(ctx, userID, input.ID, input.ProductID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Product removed"}}, nil
}

func (s *Server) handleToggleSave(ctx context.Context, input *ProductIDInput) (*SaveStateOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Collection.ToggleSave(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &SaveStateOutput{Body: SaveStateResponse{Saved: result.Saved}}, nil
}

// === Helpers ===

func mapCollectionResponse(c *domain.Collection) CollectionResponse {
	return CollectionResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsDefault:   c.IsDefault,
		ProductIDs:  c.ProductIDs,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
