// Package dto provides Data Transfer Objects for API responses.
//
// DTOs contain denormalized fields for immediate client rendering while
// preserving normalized IDs for relationships. A product card renders from a
// single DTO without follow-up requests for the maker, category, or tags.
package dto

import "github.com/nichehunt/nichehunt-server/internal/domain"

// ProductMaker is the denormalized submitter shown on a product card.
type ProductMaker struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// ProductTag is the denormalized tag shown on a product card.
type ProductTag struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Product is the client-facing representation of a product listing.
//
// Denormalized fields are populated by the Enricher before the response is
// written. Viewer-specific flags (HasVoted, IsSaved) are false for anonymous
// requests.
type Product struct {
	*domain.Product // Embeds all database fields

	Maker        *ProductMaker `json:"maker,omitempty"`
	CategoryName string        `json:"category_name,omitempty"`
	CategorySlug string        `json:"category_slug,omitempty"`
	Tags         []ProductTag  `json:"tags"`

	HasVoted bool `json:"has_voted"`
	IsSaved  bool `json:"is_saved"`
}
