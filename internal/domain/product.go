package domain

import "time"

// ProductStatus is the publication state of a product listing.
type ProductStatus string

const (
	ProductStatusDraft     ProductStatus = "draft"
	ProductStatusPublished ProductStatus = "published"
)

// Valid checks if the status is a known value.
func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusPublished:
		return true
	default:
		return false
	}
}

// Product is a listed business-model submission.
// Counters are denormalized and maintained in the same transaction as the
// child-row mutation that changes them. Products are never hard-deleted
// through the public API; they transition back to draft instead.
type Product struct {
	Record
	Slug         string        `json:"slug"`
	Name         string        `json:"name"`
	Tagline      string        `json:"tagline"`
	Description  string        `json:"description"` // Markdown
	WebsiteURL   string        `json:"website_url,omitempty"`
	LogoURL      string        `json:"logo_url,omitempty"`
	LogoBlurhash string        `json:"logo_blurhash,omitempty"`
	CategoryID   string        `json:"category_id"`
	UserID       string        `json:"user_id"`
	Status       ProductStatus `json:"status"`
	LaunchDate   *time.Time    `json:"launch_date,omitempty"`
	Featured     bool          `json:"featured"`
	ViewCount    int           `json:"view_count"`
	VoteCount    int           `json:"vote_count"`
	CommentCount int           `json:"comment_count"`

	TagIDs []string `json:"tag_ids,omitempty"`
}

// IsPublished reports whether the product is visible to non-owners.
func (p *Product) IsPublished() bool {
	return p.Status == ProductStatusPublished
}

// VisibleTo reports whether viewerID may read this product.
// Drafts are visible only to their owner.
func (p *Product) VisibleTo(viewerID string) bool {
	return p.IsPublished() || (viewerID != "" && viewerID == p.UserID)
}
