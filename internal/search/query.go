package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string // User's search query

	// Filters
	CategorySlug string   // Filter by exact category slug
	TagSlugs     []string // Filter by exact tag slugs (OR)

	// Pagination
	Limit  int
	Offset int

	// Sorting: "relevance", "recent", "votes"
	SortBy string

	Highlight bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		Highlight: true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID           string            `json:"id"`
	Slug         string            `json:"slug"`
	Score        float64           `json:"score"`
	Name         string            `json:"name"`
	Tagline      string            `json:"tagline,omitempty"`
	CategorySlug string            `json:"category_slug,omitempty"`
	VoteCount    int               `json:"vote_count"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query against published products.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchQuery := buildSearchQuery(params)
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	switch params.SortBy {
	case "recent":
		searchRequest.SortBy([]string{"-created_at", "-_score"})
	case "votes":
		searchRequest.SortBy([]string{"-vote_count", "-_score"})
	default:
		searchRequest.SortBy([]string{"-_score", "-created_at"})
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("name")
		searchRequest.Highlight.AddField("tagline")
	}

	searchRequest.Fields = []string{
		"slug", "name", "tagline", "category_slug", "vote_count",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if s, ok := hit.Fields["slug"].(string); ok {
			searchHit.Slug = s
		}
		if n, ok := hit.Fields["name"].(string); ok {
			searchHit.Name = n
		}
		if tl, ok := hit.Fields["tagline"].(string); ok {
			searchHit.Tagline = tl
		}
		if cs, ok := hit.Fields["category_slug"].(string); ok {
			searchHit.CategorySlug = cs
		}
		if vc, ok := hit.Fields["vote_count"].(float64); ok {
			searchHit.VoteCount = int(vc)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// Only published products are ever returned.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if params.Query != "" {
		textQueries := []query.Query{}

		// Name match with highest boost
		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		taglineMatch := bleve.NewMatchQuery(params.Query)
		taglineMatch.SetField("tagline")
		taglineMatch.SetBoost(1.5)
		textQueries = append(textQueries, taglineMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		// Fuzzy matching for typo tolerance on name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("name")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Drafts never surface in search.
	statusQuery := bleve.NewTermQuery("published")
	statusQuery.SetField("status")
	queries = append(queries, statusQuery)

	if params.CategorySlug != "" {
		cq := bleve.NewTermQuery(params.CategorySlug)
		cq.SetField("category_slug")
		queries = append(queries, cq)
	}

	if len(params.TagSlugs) > 0 {
		tagQueries := make([]query.Query, len(params.TagSlugs))
		for i, slug := range params.TagSlugs {
			tq := bleve.NewTermQuery(slug)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	if len(queries) == 1 && params.Query == "" {
		// No text query and no filters beyond status.
		return queries[0]
	}

	return bleve.NewConjunctionQuery(queries...)
}
