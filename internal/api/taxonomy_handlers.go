package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/service"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func (s *Server) registerTaxonomyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all product categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{slug}/products",
		Summary:     "List category products",
		Description: "Returns the published products in a category",
		Tags:        []string{"Categories"},
	}, s.handleGetCategoryProducts)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags in use",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagProducts",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{slug}/products",
		Summary:     "List tag products",
		Description: "Returns the published products carrying a tag",
		Tags:        []string{"Tags"},
	}, s.handleGetTagProducts)
}

// === DTOs ===

// CategoryResponse is one product category.
type CategoryResponse struct {
	ID          string `json:"id" doc:"Category ID"`
	Slug        string `json:"slug" doc:"URL-safe slug"`
	Name        string `json:"name" doc:"Display name"`
	Description string `json:"description,omitempty" doc:"Short description"`
}

// CategoryListResponse is all categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"All categories"`
}

// CategoryListOutput wraps the category list for Huma.
type CategoryListOutput struct {
	Body CategoryListResponse
}

// TagResponse is one tag.
type TagResponse struct {
	ID           string `json:"id" doc:"Tag ID"`
	Slug         string `json:"slug" doc:"Normalized slug"`
	Name         string `json:"name" doc:"Display name, first-seen casing"`
	ProductCount int    `json:"product_count" doc:"Number of products carrying the tag"`
}

// TagListResponse is all tags.
type TagListResponse struct {
	Tags []TagResponse `json:"tags" doc:"All tags"`
}

// TagListOutput wraps the tag list for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// SlugProductsInput pages through products under a taxonomy slug.
type SlugProductsInput struct {
	Slug   string `path:"slug" doc:"Taxonomy slug"`
	Sort   string `query:"sort" enum:"newest,votes,launch" doc:"Sort order (default newest)"`
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" minimum:"1" maximum:"100" doc:"Page size (default 20)"`
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*CategoryListOutput, error) {
	categories, err := s.services.Category.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = mapCategoryResponse(c)
	}

	return &CategoryListOutput{Body: CategoryListResponse{Categories: resp}}, nil
}

func (s *Server) handleGetCategoryProducts(ctx context.Context, input *SlugProductsInput) (*ProductPageOutput, error) {
	// 404 for unknown categories rather than an empty page.
	if _, err := s.services.Category.GetBySlug(ctx, input.Slug); err != nil {
		return nil, err
	}

	page, err := s.services.Product.List(ctx, service.ListProductsOptions{
		CategorySlug: input.Slug,
		Sort:         store.ProductSort(input.Sort),
	}, paginationParams(input.Cursor, input.Limit), ViewerID(ctx))
	if err != nil {
		return nil, err
	}

	return &ProductPageOutput{Body: mapProductPage(page)}, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := s.services.Tag.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = mapTagResponse(t)
	}

	return &TagListOutput{Body: TagListResponse{Tags: resp}}, nil
}

func (s *Server) handleGetTagProducts(ctx context.Context, input *SlugProductsInput) (*ProductPageOutput, error) {
	tag, err := s.services.Tag.GetBySlug(ctx, input.Slug)
	if err != nil {
		return nil, err
	}

	page, err := s.services.Product.List(ctx, service.ListProductsOptions{
		TagSlug: tag.Slug,
		Sort:    store.ProductSort(input.Sort),
	}, paginationParams(input.Cursor, input.Limit), ViewerID(ctx))
	if err != nil {
		return nil, err
	}

	return &ProductPageOutput{Body: mapProductPage(page)}, nil
}

// === Helpers ===

func mapCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Description: c.Description,
	}
}

func mapTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:           t.ID,
		Slug:         t.Slug,
		Name:         t.Name,
		ProductCount: t.ProductCount,
	}
}
