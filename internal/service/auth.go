package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/nichehunt/nichehunt-server/internal/auth"
	"github.com/nichehunt/nichehunt-server/internal/domain"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
	"github.com/nichehunt/nichehunt-server/internal/id"
	"github.com/nichehunt/nichehunt-server/internal/store"
	"github.com/nichehunt/nichehunt-server/internal/validation"
)

// AuthService handles registration, login, token refresh, and OAuth sign-in.
// Session lifecycle is delegated to SessionService, profile upkeep to
// ProfileService.
type AuthService struct {
	store          store.Store
	sessionService *SessionService
	profileService *ProfileService
	validator      *validation.Validator
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	sessionService *SessionService,
	profileService *ProfileService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		sessionService: sessionService,
		profileService: profileService,
		validator:      validator,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	Username    string `json:"username" validate:"required,username"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required"`
	Client   auth.ClientInfo `json:"-"` // Extracted from the request by the handler
}

// AuthResponse contains authentication tokens and the authenticated user.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new account with email/password credentials.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, client auth.ClientInfo) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		LastLoginAt:  time.Now(),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("email or username already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.profileService.EnsureProfile(ctx, user, req.DisplayName, ""); err != nil {
		// The account exists; a missing profile heals on next login.
		s.logger.Warn("profile creation failed during registration",
			"user_id", userID,
			"error", err,
		)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", userID,
		"username", user.Username,
	)

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Login authenticates email/password credentials and creates a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client auth.ClientInfo) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.HasPassword() {
		return nil, domainerrors.InvalidCredentials("this account uses social sign-in")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	// Self-healing: accounts predating profiles get one on login.
	if err := s.profileService.EnsureProfile(ctx, user, user.Username, ""); err != nil {
		s.logger.Warn("profile heal failed during login", "user_id", user.ID, "error", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Refresh rotates an existing session's tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client auth.ClientInfo) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, domainerrors.Validation("refresh_token is required")
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, refreshToken, client)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// Logout revokes the session holding the given refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessionService.RevokeByRefreshToken(ctx, refreshToken)
}

// OAuthLogin signs a user in from a verified OAuth provider profile,
// creating or linking the local account as needed.
//
// Matching order: provider subject first, then verified email (links the
// subject onto the existing account), then a fresh account with a
// generated username.
func (s *AuthService) OAuthLogin(ctx context.Context, provider string, profile *auth.OAuthProfile, client auth.ClientInfo) (*AuthResponse, error) {
	subject := provider + ":" + profile.Subject

	user, err := s.store.GetUserByOAuthSubject(ctx, subject)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup by oauth subject: %w", err)
	}

	if user == nil {
		user, err = s.linkOrCreateOAuthUser(ctx, subject, profile)
		if err != nil {
			return nil, err
		}
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	if err := s.profileService.EnsureProfile(ctx, user, profile.Name, profile.AvatarURL); err != nil {
		s.logger.Warn("profile heal failed during oauth login", "user_id", user.ID, "error", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, client)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{User: user, SessionResponse: *sessionResp}, nil
}

// linkOrCreateOAuthUser attaches the subject to an existing account with
// the same email, or creates a new account.
func (s *AuthService) linkOrCreateOAuthUser(ctx context.Context, subject string, profile *auth.OAuthProfile) (*domain.User, error) {
	existing, err := s.store.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		existing.OAuthSubject = subject
		existing.Touch()
		if err := s.store.UpdateUser(ctx, existing); err != nil {
			return nil, fmt.Errorf("link oauth subject: %w", err)
		}
		s.logger.Info("linked oauth identity to existing account",
			"user_id", existing.ID,
		)
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	username, err := s.availableUsername(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Email:        profile.Email,
		Username:     username,
		OAuthSubject: subject,
		LastLoginAt:  time.Now(),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create oauth user: %w", err)
	}

	s.logger.Info("created account from oauth sign-in",
		"user_id", userID,
		"username", username,
	)

	return user, nil
}

// availableUsername derives a username from the email local part,
// suffixing with random characters until it is free.
func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := domain.NormalizeTagSlug(local)
	if len(base) < 2 {
		base = "user"
	}
	if len(base) > 30 {
		base = base[:30]
	}

	candidate := base
	for range 5 {
		_, err := s.store.GetUserByUsername(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 6)
		if err != nil {
			return "", fmt.Errorf("generate username suffix: %w", err)
		}
		candidate = base + "-" + suffix
	}
	return "", domainerrors.Internal("could not allocate a username")
}
