package domain

import (
	"strings"
	"unicode"
)

// Tag is a global label attached to products.
// Slug is the canonical unique key; Name keeps the casing the tag was first
// submitted with ("TS" stays "TS", never "Ts").
// Tags are created on demand during product submission (get-or-create).
type Tag struct {
	Record
	Slug         string `json:"slug"` // Canonical form: lowercase, hyphenated
	Name         string `json:"name"` // First-seen display casing
	ProductCount int    `json:"product_count"`
}

// ProductTag is the many-to-many relationship between products and tags.
type ProductTag struct {
	ProductID string `json:"product_id"`
	TagID     string `json:"tag_id"`
}

// NormalizeTagSlug converts raw user input to a canonical tag slug:
// lowercase, spaces and runs of punctuation collapsed to single hyphens,
// leading/trailing hyphens trimmed. Returns "" if nothing survives.
func NormalizeTagSlug(raw string) string {
	var b strings.Builder
	lastHyphen := true // Suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
