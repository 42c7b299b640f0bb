package domain

import (
	"slices"
	"time"
)

// DefaultCollectionName is the name of the implicit save list.
// It is a normal collection distinguished only by the IsDefault flag,
// created lazily the first time the user saves a product.
const DefaultCollectionName = "Saved"

// Collection is a user-owned named set of saved products.
type Collection struct {
	Record
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default"`

	ProductIDs []string `json:"product_ids"` // Newest-first
}

// CollectionProduct is a saved product inside a collection.
// Unique per (collection, product).
type CollectionProduct struct {
	CollectionID string    `json:"collection_id"`
	ProductID    string    `json:"product_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AddProduct prepends a product ID, keeping newest-first ordering.
// No-op if already present; returns whether the set changed.
func (c *Collection) AddProduct(productID string) bool {
	if slices.Contains(c.ProductIDs, productID) {
		return false
	}
	c.ProductIDs = append([]string{productID}, c.ProductIDs...)
	c.Touch()
	return true
}

// RemoveProduct removes a product ID. Returns whether the set changed.
func (c *Collection) RemoveProduct(productID string) bool {
	for i, id := range c.ProductIDs {
		if id == productID {
			c.ProductIDs = append(c.ProductIDs[:i], c.ProductIDs[i+1:]...)
			c.Touch()
			return true
		}
	}
	return false
}

// ContainsProduct checks membership.
func (c *Collection) ContainsProduct(productID string) bool {
	return slices.Contains(c.ProductIDs, productID)
}
