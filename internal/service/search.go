package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/dto"
	"github.com/nichehunt/nichehunt-server/internal/metrics"
	"github.com/nichehunt/nichehunt-server/internal/search"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// SearchService bridges the full-text index with the store: indexing on
// product writes, query execution, and full rebuilds.
type SearchService struct {
	index    *search.SearchIndex
	store    store.Store
	enricher *dto.Enricher
	logger   *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, enricher *dto.Enricher, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:    index,
		store:    store,
		enricher: enricher,
		logger:   logger,
	}
}

// SearchPage is a page of search results resolved to enriched products.
type SearchPage struct {
	Items  []*dto.Product `json:"items"`
	Total  uint64         `json:"total"`
	Query  string         `json:"query"`
	TookMs int64          `json:"took_ms"`
}

// Search runs a full-text query and resolves the hits to enriched
// product cards in index ranking order. Hits whose product row has
// vanished are dropped.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams, viewerID string) (*SearchPage, error) {
	metrics.SearchesExecuted.Inc()

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	items, err := s.enricher.EnrichProducts(ctx, products, viewerID)
	if err != nil {
		return nil, fmt.Errorf("enrich products: %w", err)
	}

	return &SearchPage{
		Items:  items,
		Total:  result.Total,
		Query:  params.Query,
		TookMs: result.TookMs,
	}, nil
}

// IndexProduct adds or updates one product in the index.
func (s *SearchService) IndexProduct(ctx context.Context, product *domain.Product) error {
	doc, err := s.buildDocument(ctx, product)
	if err != nil {
		return fmt.Errorf("build document: %w", err)
	}
	if err := s.index.IndexDocument(doc); err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	s.logger.Debug("indexed product", "id", product.ID, "slug", product.Slug)
	return nil
}

// RemoveProduct drops a product from the index.
func (s *SearchService) RemoveProduct(productID string) error {
	return s.index.DeleteDocument(productID)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll rebuilds the entire index from the store.
// Heavy; runs at startup only when the mapping version changed.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	products, err := s.store.ListAllProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	// Batch the related lookups instead of querying per product.
	productIDs := make([]string, 0, len(products))
	categoryIDSet := make(map[string]struct{})
	for _, p := range products {
		productIDs = append(productIDs, p.ID)
		categoryIDSet[p.CategoryID] = struct{}{}
	}
	categoryIDs := make([]string, 0, len(categoryIDSet))
	for cid := range categoryIDSet {
		categoryIDs = append(categoryIDs, cid)
	}

	categories, err := s.store.GetCategoriesByIDs(ctx, categoryIDs)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	tagsByProduct, err := s.store.GetTagsForProductIDs(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}

	docs := make([]*search.ProductDocument, 0, len(products))
	for _, p := range products {
		var categorySlug string
		if c, ok := categories[p.CategoryID]; ok {
			categorySlug = c.Slug
		}
		tagSlugs := make([]string, 0, len(tagsByProduct[p.ID]))
		for _, t := range tagsByProduct[p.ID] {
			tagSlugs = append(tagSlugs, t.Slug)
		}
		docs = append(docs, search.NewProductDocument(p, categorySlug, tagSlugs))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index products: %w", err)
		}
	}

	s.logger.Info("reindex complete", "count", len(docs))
	return nil
}

// buildDocument assembles the search document for one product.
func (s *SearchService) buildDocument(ctx context.Context, product *domain.Product) (*search.ProductDocument, error) {
	var categorySlug string
	if category, err := s.store.GetCategory(ctx, product.CategoryID); err == nil {
		categorySlug = category.Slug
	} else {
		s.logger.Warn("category lookup failed while indexing", "product_id", product.ID, "error", err)
	}

	tagsByProduct, err := s.store.GetTagsForProductIDs(ctx, []string{product.ID})
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	tagSlugs := make([]string, 0, len(tagsByProduct[product.ID]))
	for _, t := range tagsByProduct[product.ID] {
		tagSlugs = append(tagSlugs, t.Slug)
	}

	return search.NewProductDocument(product, categorySlug, tagSlugs), nil
}

// Indexer adapts SearchService to the store's SearchIndexer hook, which
// fires inside store write paths without a request context.
type Indexer struct {
	search *SearchService
}

// NewIndexer wraps a SearchService for registration with the store.
func NewIndexer(search *SearchService) *Indexer {
	return &Indexer{search: search}
}

// IndexProduct implements store.SearchIndexer.
func (i *Indexer) IndexProduct(product *domain.Product) error {
	return i.search.IndexProduct(context.Background(), product)
}

// RemoveProduct implements store.SearchIndexer.
func (i *Indexer) RemoveProduct(productID string) error {
	return i.search.RemoveProduct(productID)
}
