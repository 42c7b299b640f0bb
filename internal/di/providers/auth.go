package providers

import (
	"encoding/hex"

	"github.com/samber/do/v2"

	"github.com/nichehunt/nichehunt-server/internal/auth"
	"github.com/nichehunt/nichehunt-server/internal/config"
	"github.com/nichehunt/nichehunt-server/internal/logger"
)

// AuthKey is the PASETO symmetric key used for access tokens.
type AuthKey []byte

// ProvideAuthKey loads or generates the token signing key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Auth key loaded", "bytes", len(key))

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(
		hex.EncodeToString(key),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
}

// OAuthProviderHandle holds the optional Google OAuth provider.
// Provider is nil when no client ID is configured, which disables
// the OAuth routes entirely.
type OAuthProviderHandle struct {
	Provider *auth.OAuthProvider
}

// ProvideOAuthProvider provides the Google OAuth provider when configured.
func ProvideOAuthProvider(i do.Injector) (*OAuthProviderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.OAuth.GoogleClientID == "" {
		log.Info("OAuth disabled, no Google client ID configured")
		return &OAuthProviderHandle{}, nil
	}

	provider := auth.NewGoogleProvider(
		cfg.OAuth.GoogleClientID,
		cfg.OAuth.GoogleClientSecret,
		cfg.OAuth.RedirectBaseURL,
	)

	log.Info("OAuth provider configured", "provider", provider.Name())

	return &OAuthProviderHandle{Provider: provider}, nil
}
