package domain

import "time"

// Vote marks that a user voted for a product.
// One row per (user, product); existence means "has voted". Votes are
// toggled (insert-if-absent / delete-if-present), never updated in place.
type Vote struct {
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}
