package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	"github.com/nichehunt/nichehunt-server/internal/http/response"
	"github.com/nichehunt/nichehunt-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account and profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update current user",
		Description: "Updates the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profiles/{username}",
		Summary:     "Get profile",
		Description: "Returns a public profile by username",
		Tags:        []string{"Profiles"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "mirrorAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/profiles/avatar",
		Summary:     "Set avatar from URL",
		Description: "Fetches a remote image, stores a local copy, and updates the profile",
		Tags:        []string{"Profiles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMirrorAvatar)
}

// === DTOs ===

// ProfileResponse is a public profile.
type ProfileResponse struct {
	ID             string    `json:"id" doc:"Profile ID (same as user ID)"`
	Username       string    `json:"username" doc:"Unique handle"`
	DisplayName    string    `json:"display_name" doc:"Public display name"`
	Bio            string    `json:"bio,omitempty" doc:"Short biography"`
	WebsiteURL     string    `json:"website_url,omitempty" doc:"Personal website"`
	AvatarURL      string    `json:"avatar_url,omitempty" doc:"Avatar image URL"`
	AvatarBlurhash string    `json:"avatar_blurhash,omitempty" doc:"Blurhash placeholder"`
	CreatedAt      time.Time `json:"created_at" doc:"Creation timestamp"`
}

// ProfileOutput wraps a profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// CurrentUserResponse combines account and profile data.
type CurrentUserResponse struct {
	User    UserResponse    `json:"user" doc:"Account data"`
	Profile ProfileResponse `json:"profile" doc:"Profile data"`
}

// CurrentUserOutput wraps the current-user response for Huma.
type CurrentUserOutput struct {
	Body CurrentUserResponse
}

// UpdateProfileRequest carries a partial profile update.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" doc:"Public display name"`
	Bio         *string `json:"bio,omitempty" doc:"Short biography"`
	WebsiteURL  *string `json:"website_url,omitempty" doc:"Personal website"`
}

// UpdateCurrentUserInput wraps the profile update for Huma.
type UpdateCurrentUserInput struct {
	Body UpdateProfileRequest
}

// GetProfileInput identifies a profile by username.
type GetProfileInput struct {
	Username string `path:"username" doc:"Profile username"`
}

// MirrorAvatarRequest points at a remote image to mirror.
type MirrorAvatarRequest struct {
	SourceURL string `json:"source_url" validate:"required,url" doc:"Remote image URL"`
}

// MirrorAvatarInput wraps the avatar mirror request for Huma.
type MirrorAvatarInput struct {
	Body MirrorAvatarRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*CurrentUserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &CurrentUserOutput{Body: CurrentUserResponse{
		User:    mapUserResponse(user),
		Profile: mapProfileResponse(profile),
	}}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateCurrentUserInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.UpdateMine(ctx, userID, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
		Bio:         input.Body.Bio,
		WebsiteURL:  input.Body.WebsiteURL,
	})
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(profile)}, nil
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Profile.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(profile)}, nil
}

func (s *Server) handleMirrorAvatar(ctx context.Context, input *MirrorAvatarInput) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.services.Profile.MirrorAvatar(ctx, userID, input.Body.SourceURL)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: mapProfileResponse(profile)}, nil
}

// handleGetAvatarFile serves the stored avatar image with an ETag.
func (s *Server) handleGetAvatarFile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, "User ID is required", s.logger)
		return
	}

	data, hash, err := s.services.Profile.GetAvatar(userID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Binary(w, r, "image/jpeg", hash, data)
}

// === Helpers ===

func mapProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:             p.ID,
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		Bio:            p.Bio,
		WebsiteURL:     p.WebsiteURL,
		AvatarURL:      p.AvatarURL,
		AvatarBlurhash: p.AvatarBlurhash,
		CreatedAt:      p.CreatedAt,
	}
}
