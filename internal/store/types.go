package store

import "github.com/nichehunt/nichehunt-server/internal/domain"

// ProductSort selects the ordering of a product listing.
type ProductSort string

const (
	// SortNewest orders by creation time descending. Default.
	SortNewest ProductSort = "newest"
	// SortVotes orders by vote count descending.
	SortVotes ProductSort = "votes"
	// SortLaunch orders by launch date descending, unlaunched last.
	SortLaunch ProductSort = "launch"
)

// Valid reports whether s is a known sort order.
func (s ProductSort) Valid() bool {
	switch s {
	case SortNewest, SortVotes, SortLaunch:
		return true
	}
	return false
}

// ProductFilter narrows a product listing.
// Zero values mean "no restriction"; Status defaults to published-only
// unless IncludeDrafts is set by an owner-scoped listing.
type ProductFilter struct {
	CategoryID    string
	TagID         string
	UserID        string
	Status        domain.ProductStatus
	FeaturedOnly  bool
	IncludeDrafts bool
	Sort          ProductSort
}
