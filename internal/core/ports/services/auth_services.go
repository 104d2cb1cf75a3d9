package services

import (
	"context"
	"time"

	"github.com/momotrack/momo_tracker_app/internal/core/domain"
)

// TokenSvcFacade handles access and refresh token lifecycle.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a signed JWT access token for the user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// GenerateRefreshToken creates a new opaque refresh token and its expiry.
	// The raw token is returned once; only its hash is persisted.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAndParseRefreshToken validates a raw refresh token against the
	// stored hash and returns the owning user.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshToken string) (*domain.User, error)
}

// GoogleOAuthSvcFacade handles the Google sign-in flow, the external
// identity provider for agents who do not use local credentials.
type GoogleOAuthSvcFacade interface {
	// IsEnabled reports whether Google OAuth is configured.
	IsEnabled() bool

	// GetLoginURL builds the consent-page redirect URL for the given state.
	GetLoginURL(state string) string

	// HandleCallback exchanges the authorization code, validates the ID token
	// and returns the (possibly newly provisioned) user.
	HandleCallback(ctx context.Context, code string) (*domain.User, error)
}
