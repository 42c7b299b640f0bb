package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerVoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleVote",
		Method:      http.MethodPost,
		Path:        "/api/v1/products/{id}/vote",
		Summary:     "Toggle vote",
		Description: "Casts or withdraws the caller's vote on a product",
		Tags:        []string{"Votes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleVote)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVoteState",
		Method:      http.MethodGet,
		Path:        "/api/v1/products/{id}/vote",
		Summary:     "Get vote state",
		Description: "Reports whether the caller has voted on a product",
		Tags:        []string{"Votes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetVoteState)
}

// VoteStateResponse reports the vote state after a toggle or lookup.
type VoteStateResponse struct {
	Voted     bool `json:"voted" doc:"Whether the caller's vote is currently cast"`
	VoteCount int  `json:"vote_count,omitempty" doc:"Product vote count after the change"`
}

// VoteStateOutput wraps the vote state for Huma.
type VoteStateOutput struct {
	Body VoteStateResponse
}

func (s *Server) handleToggleVote(ctx context.Context, input *ProductIDInput) (*VoteStateOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Vote.Toggle(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &VoteStateOutput{Body: VoteStateResponse{
		Voted:     result.Voted,
		VoteCount: result.VoteCount,
	}}, nil
}

func (s *Server) handleGetVoteState(ctx context.Context, input *ProductIDInput) (*VoteStateOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	voted, err := s.services.Vote.HasVoted(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &VoteStateOutput{Body: VoteStateResponse{Voted: voted}}, nil
}
