// Package store defines the persistence interface for the NicheHunt server.
package store

import (
	"context"

	"github.com/nichehunt/nichehunt-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByOAuthSubject(ctx context.Context, subject string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Profiles
	SaveProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetProfilesByUserIDs(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error)

	// Categories
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategoriesByIDs(ctx context.Context, ids []string) (map[string]*domain.Category, error)

	// Products
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter, params PaginationParams) (*PaginatedResult[*domain.Product], error)
	ListAllProducts(ctx context.Context) ([]*domain.Product, error)
	CountProducts(ctx context.Context) (int, error)
	IncrementProductViews(ctx context.Context, id string) error

	// Tags
	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTagByID(ctx context.Context, id string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	FindOrCreateTagBySlug(ctx context.Context, slug, name string) (*domain.Tag, bool, error)
	SetProductTags(ctx context.Context, productID string, tagIDs []string) error
	GetProductTags(ctx context.Context, productID string) ([]string, error)
	GetTagsForProductIDs(ctx context.Context, productIDs []string) (map[string][]*domain.Tag, error)

	// Votes
	ToggleVote(ctx context.Context, userID, productID string) (voted bool, voteCount int, err error)
	HasVoted(ctx context.Context, userID, productID string) (bool, error)
	GetVotedProductIDs(ctx context.Context, userID string, productIDs []string) (map[string]bool, error)

	// Comments
	CreateComment(ctx context.Context, comment *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	UpdateComment(ctx context.Context, comment *domain.Comment) error
	DeleteComment(ctx context.Context, id string) error
	ListCommentsForProduct(ctx context.Context, productID string) ([]*domain.Comment, error)

	// Collections
	CreateCollection(ctx context.Context, collection *domain.Collection) error
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)
	ListUserCollections(ctx context.Context, ownerID string) ([]*domain.Collection, error)
	UpdateCollection(ctx context.Context, collection *domain.Collection) error
	DeleteCollection(ctx context.Context, id string) error
	GetOrCreateDefaultCollection(ctx context.Context, ownerID string) (*domain.Collection, error)
	AddProductToCollection(ctx context.Context, collectionID, productID string) error
	RemoveProductFromCollection(ctx context.Context, collectionID, productID string) error
	ToggleSave(ctx context.Context, userID, productID string) (saved bool, err error)
	GetSavedProductIDs(ctx context.Context, userID string, productIDs []string) (map[string]bool, error)

	// Notifications
	CreateNotification(ctx context.Context, notification *domain.Notification) error
	ListNotifications(ctx context.Context, userID string, params PaginationParams) (*PaginatedResult[*domain.Notification], error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, userID, id string) error
}

// SearchIndexer maintains the full-text search index as products change.
// The store calls it after writes; a no-op implementation keeps the store
// usable without search.
type SearchIndexer interface {
	IndexProduct(product *domain.Product) error
	RemoveProduct(productID string) error
}

// NewNoopSearchIndexer returns a SearchIndexer that does nothing.
func NewNoopSearchIndexer() SearchIndexer { return noopSearchIndexer{} }

type noopSearchIndexer struct{}

func (noopSearchIndexer) IndexProduct(*domain.Product) error { return nil }
func (noopSearchIndexer) RemoveProduct(string) error         { return nil }
