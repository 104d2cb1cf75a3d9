package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
)

// MemoryLedgerRepository keeps ledgers in process memory. Used for local
// development and tests; data does not survive a restart.
type MemoryLedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[string][]domain.Transaction
}

func newMemoryLedgerRepository() portsrepo.LedgerRepositoryFacade {
	return &MemoryLedgerRepository{ledgers: make(map[string][]domain.Transaction)}
}

var _ portsrepo.LedgerRepositoryFacade = (*MemoryLedgerRepository)(nil)

func (r *MemoryLedgerRepository) LoadLedger(ctx context.Context, userID string) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.ledgers[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := make([]domain.Transaction, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *MemoryLedgerRepository) SaveLedger(ctx context.Context, userID string, transactions []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]domain.Transaction, len(transactions))
	copy(stored, transactions)
	r.ledgers[userID] = stored
	return nil
}

// MemoryUserRepository keeps user accounts in process memory.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func newMemoryUserRepository() portsrepo.UserRepositoryFacade {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

var _ portsrepo.UserRepositoryFacade = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

func (r *MemoryUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok || user.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) && user.DeletedAt == nil {
			u := user
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.UserID]
	if !ok || existing.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	existing.Name = user.Name
	existing.LastUpdatedAt = user.LastUpdatedAt
	r.users[user.UserID] = existing
	return nil
}

func (r *MemoryUserRepository) UpdateRefreshTokenDetails(ctx context.Context, userID string, tokenHash string, expiryTime *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok || user.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	user.RefreshTokenHash = tokenHash
	user.RefreshTokenExpiryTime = expiryTime
	user.LastUpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

func (r *MemoryUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok || user.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	user.DeletedAt = &deletedAt
	user.LastUpdatedAt = deletedAt
	r.users[userID] = user
	return nil
}

// MemoryAPITokenRepository keeps device API tokens in process memory.
type MemoryAPITokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.APIToken
}

func newMemoryAPITokenRepository() portsrepo.APITokenRepository {
	return &MemoryAPITokenRepository{tokens: make(map[string]domain.APIToken)}
}

var _ portsrepo.APITokenRepository = (*MemoryAPITokenRepository)(nil)

func (r *MemoryAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = *token
	return nil
}

func (r *MemoryAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &token, nil
}

func (r *MemoryAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.APIToken{}
	for _, token := range r.tokens {
		if token.UserID == userID {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *MemoryAPITokenRepository) FindActive(ctx context.Context, now time.Time) ([]domain.APIToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.APIToken{}
	for _, token := range r.tokens {
		if token.ExpiresAt == nil || token.ExpiresAt.After(now) {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *MemoryAPITokenRepository) Update(ctx context.Context, token *domain.APIToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.tokens[token.ID] = *token
	return nil
}

func (r *MemoryAPITokenRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.tokens, id)
	return nil
}

func (r *MemoryAPITokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, token := range r.tokens {
		if token.UserID == userID {
			delete(r.tokens, id)
		}
	}
	return nil
}

// NewRepositoryProvider builds the full in-memory backend.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:   newMemoryLedgerRepository(),
		UserRepo:     newMemoryUserRepository(),
		APITokenRepo: newMemoryAPITokenRepository(),
	}
}
