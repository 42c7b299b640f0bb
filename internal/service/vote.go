package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/metrics"
	"github.com/nichehunt/nichehunt-server/internal/store"
)

// VoteService toggles product votes and fans out notifications.
type VoteService struct {
	store         store.Store
	notifications *NotificationService
	logger        *slog.Logger
}

// NewVoteService creates a new vote service.
func NewVoteService(store store.Store, notifications *NotificationService, logger *slog.Logger) *VoteService {
	return &VoteService{
		store:         store,
		notifications: notifications,
		logger:        logger,
	}
}

// VoteResult reports the state after a toggle.
type VoteResult struct {
	Voted     bool `json:"voted"`
	VoteCount int  `json:"vote_count"`
}

// Toggle casts or withdraws the user's vote on a product. The insert or
// delete and the counter update happen in one store transaction, so
// concurrent toggles cannot skew the count.
func (s *VoteService) Toggle(ctx context.Context, userID, productID string) (*VoteResult, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("product not found")
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if !product.VisibleTo(userID) {
		return nil, domainerrors.NotFound("product not found")
	}

	voted, voteCount, err := s.store.ToggleVote(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("toggle vote: %w", err)
	}

	if voted {
		metrics.VotesToggled.WithLabelValues("cast").Inc()
		s.notifications.NotifyVote(ctx, product.UserID, userID, productID)
	} else {
		metrics.VotesToggled.WithLabelValues("withdrawn").Inc()
	}

	return &VoteResult{Voted: voted, VoteCount: voteCount}, nil
}

// HasVoted reports whether the user currently has a vote on the product.
func (s *VoteService) HasVoted(ctx context.Context, userID, productID string) (bool, error) {
	voted, err := s.store.HasVoted(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return voted, nil
}
