package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichehunt/nichehunt-server/internal/auth"
	domainerrors "github.com/nichehunt/nichehunt-server/internal/errors"
)

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp := env.registerUser(t, "alice@example.com", "alice")

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "alice@example.com", resp.User.Email)

	// Registration also creates the profile.
	profile, err := env.profiles.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.ID)
	assert.Equal(t, "alice", profile.DisplayName)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "alice@example.com", "alice")

	_, err := env.auth.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "another-password",
		Username:    "alice2",
		DisplayName: "Alice Again",
	}, auth.ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "long-enough", Username: "alice", DisplayName: "Alice"}},
		{"short password", RegisterRequest{Email: "a@example.com", Password: "short", Username: "alice", DisplayName: "Alice"}},
		{"bad username", RegisterRequest{Email: "a@example.com", Password: "long-enough", Username: "Not Valid!", DisplayName: "Alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.req, auth.ClientInfo{})
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "alice@example.com", "alice")

	resp, err := env.auth.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	}, auth.ClientInfo{UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.registerUser(t, "alice@example.com", "alice")

	_, err := env.auth.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	}, auth.ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Unknown accounts and bad passwords answer identically.
	_, err := env.auth.Login(ctx, LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	}, auth.ClientInfo{})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered := env.registerUser(t, "alice@example.com", "alice")

	refreshed, err := env.auth.Refresh(ctx, registered.RefreshToken, auth.ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.SessionID, refreshed.SessionID)

	// The old refresh token was rotated out.
	_, err = env.auth.Refresh(ctx, registered.RefreshToken, auth.ClientInfo{})
	assert.Error(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered := env.registerUser(t, "alice@example.com", "alice")

	require.NoError(t, env.auth.Logout(ctx, registered.RefreshToken))

	_, err := env.auth.Refresh(ctx, registered.RefreshToken, auth.ClientInfo{})
	assert.Error(t, err)

	// Logging out an already-revoked token is a no-op.
	assert.NoError(t, env.auth.Logout(ctx, registered.RefreshToken))
}

func TestAuthService_OAuthLoginCreatesAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.auth.OAuthLogin(ctx, "google", &auth.OAuthProfile{
		Subject: "google-sub-123",
		Email:   "bob@example.com",
		Name:    "Bob Builder",
	}, auth.ClientInfo{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bob@example.com", resp.User.Email)
	assert.Equal(t, "google:google-sub-123", resp.User.OAuthSubject)

	// Signing in again reuses the same account.
	again, err := env.auth.OAuthLogin(ctx, "google", &auth.OAuthProfile{
		Subject: "google-sub-123",
		Email:   "bob@example.com",
		Name:    "Bob Builder",
	}, auth.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
}

func TestAuthService_OAuthLoginLinksExistingEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered := env.registerUser(t, "alice@example.com", "alice")

	resp, err := env.auth.OAuthLogin(ctx, "google", &auth.OAuthProfile{
		Subject: "google-sub-alice",
		Email:   "alice@example.com",
		Name:    "Alice",
	}, auth.ClientInfo{})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.Equal(t, "google:google-sub-alice", resp.User.OAuthSubject)

	// The password still works after linking.
	_, err = env.auth.Login(ctx, LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse-battery",
	}, auth.ClientInfo{})
	assert.NoError(t, err)
}
