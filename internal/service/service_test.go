package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nichehunt/nichehunt-server/internal/auth"
	"github.com/nichehunt/nichehunt-server/internal/dto"
	"github.com/nichehunt/nichehunt-server/internal/media/images"
	"github.com/nichehunt/nichehunt-server/internal/store"
	"github.com/nichehunt/nichehunt-server/internal/store/sqlite"
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

// testEnv wires real services over a temporary SQLite store.
type testEnv struct {
	store         store.Store
	auth          *AuthService
	sessions      *SessionService
	profiles      *ProfileService
	products      *ProductService
	votes         *VoteService
	comments      *CommentService
	collections   *CollectionService
	categories    *CategoryService
	tags          *TagService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	keyBytes := make([]byte, 32)
	_, err = rand.Read(keyBytes)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(hex.EncodeToString(keyBytes), 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	avatars, err := images.NewStorage(dir, "avatars")
	require.NoError(t, err)
	mirror := images.NewMirror(avatars, 5<<20, 5*time.Second, logger)

	validator := validation.New()
	enricher := dto.NewEnricher(st, logger)

	sessions := NewSessionService(st, tokenService, logger)
	profiles := NewProfileService(st, mirror, avatars, "http://localhost:8080", validator, logger)
	notifications := NewNotificationService(st, logger)

	env := &testEnv{
		store:         st,
		sessions:      sessions,
		profiles:      profiles,
		notifications: notifications,
		auth:          NewAuthService(st, sessions, profiles, validator, logger),
		products:      NewProductService(st, enricher, validator, logger),
		votes:         NewVoteService(st, notifications, logger),
		comments:      NewCommentService(st, notifications, validator, logger),
		collections:   NewCollectionService(st, validator, logger),
		categories:    NewCategoryService(st, logger),
		tags:          NewTagService(st, logger),
	}
	return env
}

// registerUser creates an account through the real registration flow.
func (e *testEnv) registerUser(t *testing.T, email, username string) *AuthResponse {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:       email,
		Password:    "correct-horse-battery",
		Username:    username,
		DisplayName: username,
	}, auth.ClientInfo{UserAgent: "test"})
	require.NoError(t, err)
	return resp
}

// seedCategory inserts the default categories and returns one by slug.
func (e *testEnv) seedCategory(t *testing.T, slug string) string {
	t.Helper()
	require.NoError(t, e.categories.Seed(context.Background()))
	category, err := e.categories.GetBySlug(context.Background(), slug)
	require.NoError(t, err)
	return category.ID
}

// submitProduct creates a published product through the real flow.
func (e *testEnv) submitProduct(t *testing.T, userID, categoryID, name string, tags ...string) *dto.Product {
	t.Helper()
	product, err := e.products.Create(context.Background(), userID, CreateProductRequest{
		Name:        name,
		Tagline:     "A very useful product",
		Description: "A longer description of the product.",
		CategoryID:  categoryID,
		Tags:        tags,
	})
	require.NoError(t, err)
	return product
}
