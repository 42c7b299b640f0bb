package sqlite

import (
	"context"
	"sync"
	"testing"
)

func TestToggleVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, _, product := seedProductFixtures(t, s)

	// First toggle casts the vote.
	voted, count, err := s.ToggleVote(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("ToggleVote: %v", err)
	}
	if !voted {
		t.Error("first toggle should cast a vote")
	}
	if count != 1 {
		t.Errorf("vote_count: got %d, want 1", count)
	}

	has, err := s.HasVoted(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("HasVoted: %v", err)
	}
	if !has {
		t.Error("HasVoted should report true after casting")
	}

	// Second toggle withdraws it.
	voted, count, err = s.ToggleVote(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("ToggleVote: %v", err)
	}
	if voted {
		t.Error("second toggle should withdraw the vote")
	}
	if count != 0 {
		t.Errorf("vote_count: got %d, want 0", count)
	}

	has, err = s.HasVoted(ctx, user.ID, product.ID)
	if err != nil {
		t.Fatalf("HasVoted: %v", err)
	}
	if has {
		t.Error("HasVoted should report false after withdrawing")
	}
}

func TestToggleVote_CounterMatchesRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, _, product := seedProductFixtures(t, s)

	// Several users voting concurrently; the counter must equal the row
	// count when the dust settles.
	users := []string{"voter-1", "voter-2", "voter-3", "voter-4", "voter-5"}
	for _, uid := range users {
		u := makeTestUser(uid, uid+"@example.com", uid)
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser %s: %v", uid, err)
		}
	}

	var wg sync.WaitGroup
	for _, uid := range users {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			if _, _, err := s.ToggleVote(ctx, uid, product.ID); err != nil {
				t.Errorf("ToggleVote %s: %v", uid, err)
			}
		}(uid)
	}
	wg.Wait()

	var rowCount int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM votes WHERE product_id = ?`, product.ID).Scan(&rowCount); err != nil {
		t.Fatalf("count votes: %v", err)
	}

	got, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.VoteCount != rowCount {
		t.Errorf("vote_count %d does not match vote rows %d", got.VoteCount, rowCount)
	}
	if rowCount != len(users) {
		t.Errorf("expected %d vote rows, got %d", len(users), rowCount)
	}
}

func TestGetVotedProductIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, category, product := seedProductFixtures(t, s)

	p2 := makeTestProduct("prod-2", "beta-board", category.ID, user.ID)
	if err := s.CreateProduct(ctx, p2); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	if _, _, err := s.ToggleVote(ctx, user.ID, product.ID); err != nil {
		t.Fatalf("ToggleVote: %v", err)
	}

	voted, err := s.GetVotedProductIDs(ctx, user.ID, []string{product.ID, p2.ID, "missing"})
	if err != nil {
		t.Fatalf("GetVotedProductIDs: %v", err)
	}
	if !voted[product.ID] {
		t.Error("expected vote on prod-1")
	}
	if voted[p2.ID] {
		t.Error("unexpected vote on prod-2")
	}

	// Empty input short-circuits without touching the database.
	empty, err := s.GetVotedProductIDs(ctx, user.ID, nil)
	if err != nil {
		t.Fatalf("GetVotedProductIDs empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty map, got %v", empty)
	}
}
