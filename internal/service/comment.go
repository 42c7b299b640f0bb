package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/id"
	"github.com/nichehunt/nichehunt-server/internal/metrics"
	"github.com/nichehunt/nichehunt-server/internal/store"
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

// CommentService manages threaded product discussions.
type CommentService struct {
	store         store.Store
	notifications *NotificationService
	validator     *validation.Validator
	logger        *slog.Logger
}

// NewCommentService creates a new comment service.
func NewCommentService(
	store store.Store,
	notifications *NotificationService,
	validator *validation.Validator,
	logger *slog.Logger,
) *CommentService {
	return &CommentService{
		store:         store,
		notifications: notifications,
		validator:     validator,
		logger:        logger,
	}
}

// CreateCommentRequest holds a new comment or reply.
type CreateCommentRequest struct {
	Body     string  `json:"body" validate:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id,omitempty"`
}

// ListTree returns the product's full comment tree, newest-first at
// every level.
func (s *CommentService) ListTree(ctx context.Context, productID, viewerID string) ([]*domain.CommentNode, error) {
	if _, err := s.visibleProduct(ctx, productID, viewerID); err != nil {
		return nil, err
	}

	comments, err := s.store.ListCommentsForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	tree := domain.BuildCommentTree(comments)
	if tree == nil {
		tree = []*domain.CommentNode{}
	}
	return tree, nil
}

// Create posts a comment on a product, optionally as a reply.
// The product owner is notified of top-level comments, the parent's
// author of replies.
func (s *CommentService) Create(ctx context.Context, userID, productID string, req CreateCommentRequest) (*domain.Comment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.visibleProduct(ctx, productID, userID)
	if err != nil {
		return nil, err
	}

	var parent *domain.Comment
	if req.ParentID != nil {
		parent, err = s.store.GetComment(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.Validation("parent comment not found")
			}
			return nil, fmt.Errorf("lookup parent: %w", err)
		}
		if parent.ProductID != productID {
			return nil, domainerrors.Validation("parent comment belongs to another product")
		}
	}

	commentID, err := id.Generate("comment")
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}

	comment := &domain.Comment{
		Record:    domain.Record{ID: commentID},
		ProductID: productID,
		UserID:    userID,
		ParentID:  req.ParentID,
		Body:      req.Body,
	}
	comment.InitTimestamps()

	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	metrics.CommentsCreated.Inc()

	if parent != nil {
		s.notifications.NotifyReply(ctx, parent.UserID, userID, productID, commentID)
	} else {
		s.notifications.NotifyComment(ctx, product.UserID, userID, productID, commentID)
	}

	return comment, nil
}

// Delete removes a comment. Only the author may delete. Replies are kept
// and surface at the root of the tree.
func (s *CommentService) Delete(ctx context.Context, userID, commentID string) error {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("comment not found")
		}
		return fmt.Errorf("lookup comment: %w", err)
	}
	if comment.UserID != userID {
		return domainerrors.Forbidden("only the comment author can delete it")
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// visibleProduct loads a product and enforces draft visibility.
func (s *CommentService) visibleProduct(ctx context.Context, productID, viewerID string) (*domain.Product, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if !product.VisibleTo(viewerID) {
		return nil, domainerrors.NotFound("product not found")
	}
	return product, nil
}
