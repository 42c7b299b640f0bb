package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/media/images"
	"github.com/nichehunt/nichehunt-server/internal/metrics"
	"github.com/nichehunt/nichehunt-server/internal/store"
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

// ProfileService manages public display profiles and mirrored avatars.
type ProfileService struct {
	store     store.Store
	mirror    *images.Mirror
	avatars   *images.Storage
	baseURL   string // Public server base URL for building avatar URLs
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	store store.Store,
	mirror *images.Mirror,
	avatars *images.Storage,
	baseURL string,
	validator *validation.Validator,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		store:     store,
		mirror:    mirror,
		avatars:   avatars,
		baseURL:   baseURL,
		validator: validator,
		logger:    logger,
	}
}

// EnsureProfile creates the user's profile if it doesn't exist yet, and
// backfills display name and avatar on an existing row when those fields
// are still empty. Called on every authentication so accounts whose
// profile write once failed heal themselves.
func (s *ProfileService) EnsureProfile(ctx context.Context, user *domain.User, displayName, avatarURL string) error {
	if displayName == "" {
		displayName = user.Username
	}

	profile, err := s.store.GetProfile(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup profile: %w", err)
		}
		profile = &domain.Profile{
			UserID:      user.ID,
			Username:    user.Username,
			DisplayName: displayName,
			AvatarURL:   avatarURL,
		}
		profile.ID = user.ID
		profile.InitTimestamps()
		if err := s.store.SaveProfile(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		s.logger.Info("created profile", "user_id", user.ID, "username", user.Username)
		return nil
	}

	changed := false
	if profile.DisplayName == "" {
		profile.DisplayName = displayName
		changed = true
	}
	if profile.AvatarURL == "" && avatarURL != "" {
		profile.AvatarURL = avatarURL
		changed = true
	}
	if profile.Username != user.Username {
		profile.Username = user.Username
		changed = true
	}
	if !changed {
		return nil
	}

	profile.Touch()
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// GetByUsername returns a profile by its public username.
func (s *ProfileService) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	profile, err := s.store.GetProfileByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("profile %q not found", username)
		}
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	return profile, nil
}

// GetMine returns the caller's own profile.
func (s *ProfileService) GetMine(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("profile not found")
		}
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	return profile, nil
}

// UpdateProfileRequest carries partial profile updates. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	WebsiteURL  *string `json:"website_url,omitempty" validate:"omitempty,url"`
}

// UpdateMine applies a partial update to the caller's profile.
func (s *ProfileService) UpdateMine(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.Profile, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.WebsiteURL != nil {
		profile.WebsiteURL = *req.WebsiteURL
	}
	profile.Touch()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

// MirrorAvatar fetches a remote image, stores a local copy, and points the
// caller's profile at the served copy. Returns the updated profile.
func (s *ProfileService) MirrorAvatar(ctx context.Context, userID, sourceURL string) (*domain.Profile, error) {
	profile, err := s.GetMine(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.mirror.MirrorAvatar(ctx, userID, sourceURL)
	if err != nil {
		metrics.AvatarsMirrored.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.AvatarsMirrored.WithLabelValues("ok").Inc()

	profile.AvatarURL = s.baseURL + "/api/v1/avatars/" + userID
	profile.AvatarBlurhash = result.BlurHash
	profile.Touch()

	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("avatar mirrored",
		"user_id", userID,
		"size", result.Size,
	)

	return profile, nil
}

// GetAvatar returns the stored avatar bytes and a content hash for ETag use.
func (s *ProfileService) GetAvatar(userID string) ([]byte, string, error) {
	if !s.avatars.Exists(userID) {
		return nil, "", domainerrors.NotFound("avatar not found")
	}
	data, err := s.avatars.Get(userID)
	if err != nil {
		return nil, "", fmt.Errorf("read avatar: %w", err)
	}
	hash, err := s.avatars.Hash(userID)
	if err != nil {
		return nil, "", fmt.Errorf("hash avatar: %w", err)
	}
	return data, hash, nil
}
