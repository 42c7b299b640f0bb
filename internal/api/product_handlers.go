package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nichehunt/nichehunt-server/internal/dto"
	"github.com/nichehunt/nichehunt-server/internal/search"
	"github.com/nichehunt/nichehunt-server/internal/service"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func (s *Server) registerProductRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Description: "Returns a filtered, cursor-paginated product feed",
		Tags:        []string{"Products"},
	}, s.handleListProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/search",
		Summary:     "Search products",
		Description: "Full-text search over product listings",
		Tags:        []string{"Products"},
	}, s.handleSearchProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProduct",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{slug}",
		Summary:     "Get product",
		Description: "Returns a product by slug",
		Tags:        []string{"Products"},
	}, s.handleGetProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProduct",
		Method:      http.MethodPost,
		Path:        "/api/v1/products",
		Summary:     "Submit product",
		Description: "Creates a new product listing owned by the caller",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProduct",
		Method:      http.MethodPatch,
		Path:        "/api/v1/products/{id}",
		Summary:     "Update product",
		Description: "Applies a partial update to an owned product",
		Tags:        []string{"Products"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProduct)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordProductView",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/view",
		Summary:     "Record product view",
		Description: "Increments the product's view counter",
		Tags:        []string{"Products"},
	}, s.handleRecordProductView)
}

// === DTOs ===

// ListProductsInput carries the feed filters.
type ListProductsInput struct {
	Category string `query:"category" doc:"Category slug filter"`
	Tag      string `query:"tag" doc:"Tag slug filter"`
	User     string `query:"user" doc:"Maker username filter"`
	Featured bool   `query:"featured" doc:"Only featured products"`
	Sort     string `query:"sort" enum:"newest,votes,launch" doc:"Sort order (default newest)"`
	Cursor   string `query:"cursor" doc:"Pagination cursor"`
	Limit    int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size (default 20)"`
}

// ProductPageResponse is a page of enriched product cards.
type ProductPageResponse struct {
	Items      []*dto.Product `json:"items" doc:"Product cards"`
	NextCursor string         `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages exist"`
	Total      int            `json:"total,omitempty" doc:"Total matching products"`
}

// ProductPageOutput wraps a product page for Huma.
type ProductPageOutput struct {
	Body ProductPageResponse
}

// ProductOutput wraps a single enriched product for Huma.
type ProductOutput struct {
	Body *dto.Product
}

// GetProductInput identifies a product by slug.
type GetProductInput struct {
	Slug string `path:"slug" doc:"Product slug"`
}

// CreateProductRequest holds a new product submission.
type CreateProductRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=100" doc:"Product name"`
	Tagline     string     `json:"tagline" validate:"required,min=2,max=200" doc:"One-line pitch"`
	Description string     `json:"description" validate:"required,min=10" doc:"Full description (Markdown or HTML)"`
	WebsiteURL  string     `json:"website_url,omitempty" doc:"Product website"`
	LogoURL     string     `json:"logo_url,omitempty" doc:"Logo image URL"`
	CategoryID  string     `json:"category_id" validate:"required" doc:"Category ID"`
	Tags        []string   `json:"tags,omitempty" doc:"Tag names (max 10)"`
	Status      string     `json:"status,omitempty" enum:"draft,published" doc:"Publication state (default published)"`
	LaunchDate  *time.Time `json:"launch_date,omitempty" doc:"Planned launch date"`
}

// CreateProductInput wraps the product submission for Huma.
type CreateProductInput struct {
	Body CreateProductRequest
}

// UpdateProductRequest carries a partial product update.
type UpdateProductRequest struct {
	Name        *string    `json:"name,omitempty" doc:"Product name"`
	Tagline     *string    `json:"tagline,omitempty" doc:"One-line pitch"`
	Description *string    `json:"description,omitempty" doc:"Full description"`
	WebsiteURL  *string    `json:"website_url,omitempty" doc:"Product website"`
	LogoURL     *string    `json:"logo_url,omitempty" doc:"Logo image URL"`
	CategoryID  *string    `json:"category_id,omitempty" doc:"Category ID"`
	Tags        *[]string  `json:"tags,omitempty" doc:"Replacement tag set"`
	Status      *string    `json:"status,omitempty" enum:"draft,published" doc:"Publication state"`
	LaunchDate  *time.Time `json:"launch_date,omitempty" doc:"Planned launch date"`
}

// UpdateProductInput wraps the product update for Huma.
type UpdateProductInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body UpdateProductRequest
}

// ProductIDInput identifies a product by ID.
type ProductIDInput struct {
	ID string `path:"id" doc:"Product ID"`
}

// SearchProductsInput carries the search query.
type SearchProductsInput struct {
	Query    string `query:"q" required:"true" doc:"Search query"`
	Category string `query:"category" doc:"Category slug filter"`
	Limit    int    `query:"limit" minimum:"1" maximum:"100" doc:"Result cap (default 20)"`
	Offset   int    `query:"offset" minimum:"0" doc:"Result offset"`
}

// SearchPageResponse is a page of search results.
type SearchPageResponse struct {
	Items  []*dto.Product `json:"items" doc:"Matching product cards"`
	Total  uint64         `json:"total" doc:"Total matches"`
	Query  string         `json:"query" doc:"Echoed query"`
	TookMs int64          `json:"took_ms" doc:"Search duration in milliseconds"`
}

// SearchPageOutput wraps search results for Huma.
type SearchPageOutput struct {
	Body SearchPageResponse
}

// === Handlers ===

func (s *Server) handleListProducts(ctx context.Context, input *ListProductsInput) (*ProductPageOutput, error) {
	page, err := s.services.Product.List(ctx, service.ListProductsOptions{
		CategorySlug: input.Category,
		TagSlug:      input.Tag,
		Username:     input.User,
		FeaturedOnly: input.Featured,
		Sort:         store.ProductSort(input.Sort),
	}, paginationParams(input.Cursor, input.Limit), ViewerID(ctx))
	if err != nil {
		return nil, err
	}

	return &ProductPageOutput{Body: mapProductPage(page)}, nil
}

func (s *Server) handleSearchProducts(ctx context.Context, input *SearchProductsInput) (*SearchPageOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	page, err := s.services.Search.Search(ctx, search.SearchParams{
		Query:        input.Query,
		CategorySlug: input.Category,
		Limit:        limit,
		Offset:       input.Offset,
	}, ViewerID(ctx))
	if err != nil {
		return nil, err
	}

	return &SearchPageOutput{Body: SearchPageResponse{
		Items:  page.Items,
		Total:  page.Total,
		Query:  page.Query,
		TookMs: page.TookMs,
	}}, nil
}

func (s *Server) handleGetProduct(ctx context.Context, input *GetProductInput) (*ProductOutput, error) {
	product, err := s.services.Product.GetBySlug(ctx, input.Slug, ViewerID(ctx))
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: product}, nil
}

func (s *Server) handleCreateProduct(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	product, err := s.services.Product.Create(ctx, userID, service.CreateProductRequest{
		Name:        input.Body.Name,
		Tagline:     input.Body.Tagline,
		Description: input.Body.Description,
		WebsiteURL:  input.Body.WebsiteURL,
		LogoURL:     input.Body.LogoURL,
		CategoryID:  input.Body.CategoryID,
		Tags:        input.Body.Tags,
		Status:      input.Body.Status,
		LaunchDate:  input.Body.LaunchDate,
	})
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: product}, nil
}

func (s *Server) handleUpdateProduct(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	product, err := s.services.Product.Update(ctx, userID, input.ID, service.UpdateProductRequest{
		Name:        input.Body.Name,
		Tagline:     input.Body.Tagline,
		Description: input.Body.Description,
		WebsiteURL:  input.Body.WebsiteURL,
		LogoURL:     input.Body.LogoURL,
		CategoryID:  input.Body.CategoryID,
		Tags:        input.Body.Tags,
		Status:      input.Body.Status,
		LaunchDate:  input.Body.LaunchDate,
	})
	if err != nil {
		return nil, err
	}

	return &ProductOutput{Body: product}, nil
}

func (s *Server) handleRecordProductView(ctx context.Context, input *ProductIDInput) (*MessageOutput, error) {
	if err := s.services.Product.RecordView(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "View recorded"}}, nil
}

// === Helpers ===

const defaultPageSize = 20

func paginationParams(cursor string, limit int) store.PaginationParams {
	if limit <= 0 {
		limit = defaultPageSize
	}
	return store.PaginationParams{Cursor: cursor, Limit: limit}
}

func mapProductPage(page *service.ProductPage) ProductPageResponse {
	return ProductPageResponse{
		Items:      page.Items,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
		Total:      page.Total,
	}
}
