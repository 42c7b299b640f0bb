package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/service"
)

func (s *Server) registerCommentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}/comments",
		Summary:     "List comments",
		Description: "Returns the product's comment tree, newest first",
		Tags:        []string{"Comments"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "createComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/comments",
		Summary:     "Create comment",
		Description: "Posts a comment or reply on a product",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete comment",
		Description: "Deletes the caller's own comment",
		Tags:        []string{"Comments"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === DTOs ===

// CommentResponse is one comment with its replies.
type CommentResponse struct {
	ID        string            `json:"id" doc:"Comment ID"`
	UserID    string            `json:"user_id" doc:"Author user ID"`
	ProductID string            `json:"product_id" doc:"Product ID"`
	ParentID  string            `json:"parent_id,omitempty" doc:"Parent comment ID"`
	Body      string            `json:"body" doc:"Comment text"`
	CreatedAt time.Time         `json:"created_at" doc:"Creation timestamp"`
	Replies   []CommentResponse `json:"replies" doc:"Nested replies, newest first"`
}

// CommentTreeResponse is the full tree for a product.
type CommentTreeResponse struct {
	Comments []CommentResponse `json:"comments" doc:"Root comments, newest first"`
}

// CommentTreeOutput wraps the comment tree for Huma.
type CommentTreeOutput struct {
	Body CommentTreeResponse
}

// CreateCommentRequest holds a new comment or reply.
type CreateCommentRequest struct {
	Body     string  `json:"body" validate:"required,min=1,max=5000" doc:"Comment text"`
	ParentID *string `json:"parent_id,omitempty" doc:"Parent comment ID for replies"`
}

// CreateCommentInput wraps the comment request for Huma.
type CreateCommentInput struct {
	ID   string `path:"id" doc:"Product ID"`
	Body CreateCommentRequest
}

// CommentOutput wraps a single created comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// CommentIDInput identifies a comment by ID.
type CommentIDInput struct {
	ID string `path:"id" doc:"Comment ID"`
}

// === Handlers ===

func (s *Server) handleListComments(ctx context.Context, input *ProductIDInput) (*CommentTreeOutput, error) {
	tree, err := s.services.Comment.ListTree(ctx, input.ID, ViewerID(ctx))
	if err != nil {
		return nil, err
	}

	return &CommentTreeOutput{Body: CommentTreeResponse{Comments: mapCommentNodes(tree)}}, nil
}

func (s *Server) handleCreateComment(ctx context.Context, input *CreateCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Comment.Create(ctx, userID, input.ID, service.CreateCommentRequest{
		Body:     input.Body.Body,
		ParentID: input.Body.ParentID,
	})
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: mapComment(comment)}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Comment.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Comment deleted"}}, nil
}

// === Helpers ===

func mapComment(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		ProductID: c.ProductID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		Replies:   []CommentResponse{},
	}
	if c.ParentID != nil {
		resp.ParentID = *c.ParentID
	}
	return resp
}

func mapCommentNodes(nodes []*domain.CommentNode) []CommentResponse {
	out := make([]CommentResponse, len(nodes))
	for i, node := range nodes {
		resp := mapComment(node.Comment)
		resp.Replies = mapCommentNodes(node.Replies)
		out[i] = resp
	}
	return out
}
