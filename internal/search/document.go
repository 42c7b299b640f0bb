// Package search provides full-text product search using Bleve.
// Products are searchable by name, tagline, and description, with exact
// filters on category and tag slugs.
package search

import "github.com/nichehunt/nichehunt-server/internal/domain"

// ProductDocument is the document structure for the Bleve index.
//
// Category and tag slugs are denormalized into the document so a single
// query can filter without touching the database. The index is rebuilt from
// the store on mapping changes, so staleness self-heals on restart.
type ProductDocument struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	Status      string `json:"status"`

	CategorySlug string   `json:"category_slug,omitempty"`
	Tags         []string `json:"tags,omitempty"`

	VoteCount int `json:"vote_count"`

	// Unix millis, for sorting by recency.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewProductDocument builds an index document from a product and its
// denormalized relations. categorySlug and tagSlugs may be empty.
func NewProductDocument(p *domain.Product, categorySlug string, tagSlugs []string) *ProductDocument {
	return &ProductDocument{
		ID:           p.ID,
		Slug:         p.Slug,
		Name:         p.Name,
		Tagline:      p.Tagline,
		Description:  p.Description,
		Status:       string(p.Status),
		CategorySlug: categorySlug,
		Tags:         tagSlugs,
		VoteCount:    p.VoteCount,
		CreatedAt:    p.CreatedAt.UnixMilli(),
		UpdatedAt:    p.UpdatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but the
// mapping uses lowercase names, so we convert explicitly.
func (d *ProductDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"slug":       d.Slug,
		"name":       d.Name,
		"status":     d.Status,
		"vote_count": d.VoteCount,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.Tagline != "" {
		m["tagline"] = d.Tagline
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.CategorySlug != "" {
		m["category_slug"] = d.CategorySlug
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
