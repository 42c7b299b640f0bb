package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func testDoc(id, name, tagline, categorySlug string, tags []string, votes int) *ProductDocument {
	now := time.Now().UnixMilli()
	return &ProductDocument{
		ID:           id,
		Slug:         id,
		Name:         name,
		Tagline:      tagline,
		Status:       "published",
		CategorySlug: categorySlug,
		Tags:         tags,
		VoteCount:    votes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := testDoc("prod-1", "Acme Analytics", "Product analytics for makers", "analytics", nil, 0)
	require.NoError(t, index.IndexDocument(doc))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*ProductDocument{
		testDoc("prod-1", "Product One", "", "", nil, 0),
		testDoc("prod-2", "Product Two", "", "", nil, 0),
		testDoc("prod-3", "Product Three", "", "", nil, 0),
	}
	require.NoError(t, index.IndexDocuments(docs))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearch_ByName(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments([]*ProductDocument{
		testDoc("prod-1", "Acme Analytics", "Product analytics for makers", "analytics", nil, 10),
		testDoc("prod-2", "Beta Board", "Kanban for indie hackers", "productivity", nil, 5),
	}))

	params := DefaultSearchParams()
	params.Query = "analytics"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "prod-1", result.Hits[0].ID)
	assert.Equal(t, "Acme Analytics", result.Hits[0].Name)
}

func TestSearch_ExcludesDrafts(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	draft := testDoc("prod-draft", "Stealth Analytics", "", "", nil, 0)
	draft.Status = "draft"
	require.NoError(t, index.IndexDocuments([]*ProductDocument{
		testDoc("prod-1", "Acme Analytics", "", "", nil, 0),
		draft,
	}))

	params := DefaultSearchParams()
	params.Query = "analytics"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "prod-1", result.Hits[0].ID)
}

func TestSearch_FilterByCategoryAndTag(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments([]*ProductDocument{
		testDoc("prod-1", "Tracker One", "", "analytics", []string{"open-source"}, 0),
		testDoc("prod-2", "Tracker Two", "", "productivity", []string{"open-source"}, 0),
		testDoc("prod-3", "Tracker Three", "", "analytics", []string{"saas"}, 0),
	}))

	params := DefaultSearchParams()
	params.Query = "tracker"
	params.CategorySlug = "analytics"
	params.TagSlugs = []string{"open-source"}
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 1)
	assert.Equal(t, "prod-1", result.Hits[0].ID)
}

func TestSearch_SortByVotes(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocuments([]*ProductDocument{
		testDoc("prod-low", "Widget Alpha", "", "", nil, 1),
		testDoc("prod-high", "Widget Beta", "", "", nil, 50),
	}))

	params := DefaultSearchParams()
	params.Query = "widget"
	params.SortBy = "votes"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, result.Hits, 2)
	assert.Equal(t, "prod-high", result.Hits[0].ID)
}

func TestSearch_FuzzyTypo(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(
		testDoc("prod-1", "Launchpad", "", "", nil, 0)))

	params := DefaultSearchParams()
	params.Query = "lanchpad"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "prod-1", result.Hits[0].ID)
}

func TestDeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(testDoc("prod-1", "Gone Soon", "", "", nil, 0)))
	require.NoError(t, index.DeleteDocument("prod-1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	require.NoError(t, index.IndexDocument(testDoc("prod-1", "Before Rebuild", "", "", nil, 0)))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	// Index remains usable after a rebuild.
	require.NoError(t, index.IndexDocument(testDoc("prod-2", "After Rebuild", "", "", nil, 0)))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
