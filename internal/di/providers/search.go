package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/nichehunt/nichehunt-server/internal/config"
	"github.com/nichehunt/nichehunt-server/internal/dto"
	"github.com/nichehunt/nichehunt-server/internal/logger"
	"github.com/nichehunt/nichehunt-server/internal/search"
	"github.com/nichehunt/nichehunt-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, enricher, log.Logger)

	// Wire to store for automatic indexing on product writes
	storeHandle.SetSearchIndexer(service.NewIndexer(svc))

	return svc, nil
}

// TriggerSearchReindexIfNeeded checks if reindexing is needed and triggers it.
// Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	// Check if products exist that need indexing
	ctx := context.Background()
	count, err := storeHandle.CountProducts(ctx)
	if err != nil || count == 0 {
		return
	}

	log.Info("Search index is empty but products exist, triggering initial reindex",
		"product_count", count,
	)

	go func() {
		reindexCtx := context.Background()
		if err := searchService.ReindexAll(reindexCtx); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			indexed, _ := searchService.DocumentCount()
			log.Info("Initial search reindex completed", "documents", indexed)
		}
	}()
}
