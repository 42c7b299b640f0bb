package sqlite

import (
	"context"
	"testing"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

func makeTestComment(id, productID, userID string, parentID *string) *domain.Comment {
	c := &domain.Comment{
		ProductID: productID,
		UserID:    userID,
		ParentID:  parentID,
		Body:      "comment " + id,
	}
	c.ID = id
	c.InitTimestamps()
	return c
}

func TestCreateComment_BumpsCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	c1 := makeTestComment("cmt-1", product.ID, user.ID, nil)
	if err := s.CreateComment(ctx, c1); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	reply := makeTestComment("cmt-2", product.ID, user.ID, &c1.ID)
	if err := s.CreateComment(ctx, reply); err != nil {
		t.Fatalf("CreateComment reply: %v", err)
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.CommentCount != 2 {
		t.Errorf("CommentCount: got %d, want 2", got.CommentCount)
	}
}

func TestDeleteComment_DecrementsCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	c1 := makeTestComment("cmt-1", product.ID, user.ID, nil)
	if err := s.CreateComment(ctx, c1); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	if err := s.DeleteComment(ctx, c1.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.CommentCount != 0 {
		t.Errorf("CommentCount: got %d, want 0", got.CommentCount)
	}

	if err := s.DeleteComment(ctx, c1.ID); err != store.ErrNotFound {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListCommentsForProduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	c1 := makeTestComment("cmt-1", product.ID, user.ID, nil)
	if err := s.CreateComment(ctx, c1); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	reply := makeTestComment("cmt-2", product.ID, user.ID, &c1.ID)
	if err := s.CreateComment(ctx, reply); err != nil {
		t.Fatalf("CreateComment reply: %v", err)
	}

	comments, err := s.ListCommentsForProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("ListCommentsForProduct: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}

	// Parent ID round-trips through the nullable column.
	var foundReply bool
	for _, c := range comments {
		if c.ID == "cmt-2" {
			foundReply = true
			if c.ParentID == nil || *c.ParentID != "cmt-1" {
				t.Errorf("ParentID: got %v, want cmt-1", c.ParentID)
			}
		}
	}
	if !foundReply {
		t.Error("reply missing from listing")
	}

	// Products without comments get an empty slice, not nil.
	none, err := s.ListCommentsForProduct(ctx, "prod-none")
	if err != nil {
		t.Fatalf("ListCommentsForProduct empty: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty slice, got %v", none)
	}
}

func TestUpdateComment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	c := makeTestComment("cmt-1", product.ID, user.ID, nil)
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	c.Body = "edited body"
	c.Touch()
	if err := s.UpdateComment(ctx, c); err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}

	got, err := s.GetComment(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetComment: %v", err)
	}
	if got.Body != "edited body" {
		t.Errorf("Body: got %q", got.Body)
	}
}
