package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func TestCommentService_CreateAndListTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	maker := env.registerUser(t, "maker@example.com", "maker").User
	commenter := env.registerUser(t, "commenter@example.com", "commenter").User
	categoryID := env.seedCategory(t, "saas")
	product := env.submitProduct(t, maker.ID, categoryID, "Discussable")

	root, err := env.comments.Create(ctx, commenter.ID, product.ID, CreateCommentRequest{
		Body: "Looks great!",
	})
	require.NoError(t, err)

	reply, err := env.comments.Create(ctx, maker.ID, product.ID, CreateCommentRequest{
		Body:     "Thanks!",
		ParentID: &root.ID,
	})
	require.NoError(t, err)

	tree, err := env.comments.ListTree(ctx, product.ID, "")
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, reply.ID, tree[0].Replies[0].ID)
}

func TestCommentService_ReplyToForeignParent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	maker := env.registerUser(t, "maker@example.com", "maker").User
	categoryID := env.seedCategory(t, "saas")
	first := env.submitProduct(t, maker.ID, categoryID, "First")
	second := env.submitProduct(t, maker.ID, categoryID, "Second")

	parent, err := env.comments.Create(ctx, maker.ID, first.ID, CreateCommentRequest{
		Body: "On the first product",
	})
	require.NoError(t, err)

	// A parent from another product is rejected.
	_, err = env.comments.Create(ctx, maker.ID, second.ID, CreateCommentRequest{
		Body:     "Crossed wires",
		ParentID: &parent.ID,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestCommentService_Notifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	maker := env.registerUser(t, "maker@example.com", "maker").User
	commenter := env.registerUser(t, "commenter@example.com", "commenter").User
	categoryID := env.seedCategory(t, "saas")
	product := env.submitProduct(t, maker.ID, categoryID, "Discussable")

	// A top-level comment notifies the product owner.
	root, err := env.comments.Create(ctx, commenter.ID, product.ID, CreateCommentRequest{
		Body: "Looks great!",
	})
	require.NoError(t, err)

	page, err := env.notifications.List(ctx, maker.ID, store.PaginationParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.NotificationTypeComment, page.Items[0].Type)

	// A reply notifies the parent comment's author instead.
	_, err = env.comments.Create(ctx, maker.ID, product.ID, CreateCommentRequest{
		Body:     "Thanks!",
		ParentID: &root.ID,
	})
	require.NoError(t, err)

	page, err = env.notifications.List(ctx, commenter.ID, store.PaginationParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.NotificationTypeReply, page.Items[0].Type)
}

func TestCommentService_DeleteAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	maker := env.registerUser(t, "maker@example.com", "maker").User
	commenter := env.registerUser(t, "commenter@example.com", "commenter").User
	categoryID := env.seedCategory(t, "saas")
	product := env.submitProduct(t, maker.ID, categoryID, "Discussable")

	comment, err := env.comments.Create(ctx, commenter.ID, product.ID, CreateCommentRequest{
		Body: "I might regret this",
	})
	require.NoError(t, err)

	err = env.comments.Delete(ctx, maker.ID, comment.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, env.comments.Delete(ctx, commenter.ID, comment.ID))

	tree, err := env.comments.ListTree(ctx, product.ID, "")
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestCommentService_DraftProductHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	maker := env.registerUser(t, "maker@example.com", "maker").User
	stranger := env.registerUser(t, "stranger@example.com", "stranger").User
	categoryID := env.seedCategory(t, "saas")

	draft, err := env.products.Create(ctx, maker.ID, CreateProductRequest{
		Name:        "Hidden Gem",
		Tagline:     "Not ready yet",
		Description: "Still working on this one.",
		CategoryID:  categoryID,
		Status:      string(domain.ProductStatusDraft),
	})
	require.NoError(t, err)

	_, err = env.comments.Create(ctx, stranger.ID, draft.ID, CreateCommentRequest{
		Body: "How did I even find this?",
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
