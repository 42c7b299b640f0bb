package domain

// Category is static reference data; many products reference one category.
// Categories are seeded at startup and never created through the public API.
type Category struct {
	Record
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
