package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/middleware"
	"github.com/momotrack/momo_tracker_app/internal/utils"
	"golang.org/x/crypto/bcrypt"

	"github.com/google/uuid"
)

// apiTokenService implements device API token management.
type apiTokenService struct {
	tokenRepo portsrepo.APITokenRepository
}

// NewAPITokenService creates a new instance of apiTokenService.
func NewAPITokenService(tokenRepo portsrepo.APITokenRepository) portssvc.APITokenSvc {
	return &apiTokenService{tokenRepo: tokenRepo}
}

var _ portssvc.APITokenSvc = (*apiTokenService)(nil)

// CreateToken generates a new API token for the user. The plaintext token
// is returned exactly once; only the bcrypt hash is stored.
func (s *apiTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	if userID == "" {
		return "", nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: token name is required", apperrors.ErrValidation)
	}

	rawToken, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	tokenHash, err := bcrypt.GenerateFromPassword([]byte(rawToken), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash token: %w", err)
	}

	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := time.Now().Add(*expiresIn)
		expiresAt = &expiry
	}

	now := time.Now().UTC()
	apiToken := &domain.APIToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		TokenHash: string(tokenHash),
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tokenRepo.Create(ctx, apiToken); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}
	return rawToken, apiToken, nil
}

// ListTokens returns all API tokens for a user.
func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	tokens, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return tokens, nil
}

// RevokeToken deletes a specific API token, verifying ownership first.
func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return fmt.Errorf("%w: user ID and token ID are required", apperrors.ErrValidation)
	}

	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to find token: %w", err)
	}
	if token.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.tokenRepo.Delete(ctx, tokenID)
}

// RevokeAllTokens deletes all API tokens for a user.
func (s *apiTokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user ID is required", apperrors.ErrValidation)
	}
	return s.tokenRepo.DeleteByUserID(ctx, userID)
}

// ValidateToken checks a plaintext token against the stored hashes of all
// non-expired tokens, records its use and returns the owning user's ID.
// Bcrypt hashes are not directly indexable, so validation compares against
// each candidate; token counts per deployment are small.
func (s *apiTokenService) ValidateToken(ctx context.Context, tokenString string) (string, error) {
	if tokenString == "" {
		return "", apperrors.ErrUnauthorized
	}

	candidates, err := s.tokenRepo.FindActive(ctx, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to load tokens for validation: %w", err)
	}

	for i := range candidates {
		token := &candidates[i]
		if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(tokenString)) != nil {
			continue
		}
		token.UpdateLastUsed()
		if err := s.tokenRepo.Update(ctx, token); err != nil {
			middleware.GetLoggerFromCtx(ctx).Warn("Failed to record API token use", slog.String("token_id", token.ID), slog.String("error", err.Error()))
		}
		return token.UserID, nil
	}
	return "", apperrors.ErrUnauthorized
}
