package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
)

type SQLiteAPITokenRepository struct {
	db *sql.DB
}

func newSQLiteAPITokenRepository(db *sql.DB) portsrepo.APITokenRepository {
	return &SQLiteAPITokenRepository{db: db}
}

var _ portsrepo.APITokenRepository = (*SQLiteAPITokenRepository)(nil)

const apiTokenColumns = `id, user_id, name, token_hash, last_used_at, expires_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIToken(row rowScanner) (*domain.APIToken, error) {
	var (
		token       domain.APIToken
		lastUsedRaw sql.NullString
		expiresRaw  sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.TokenHash,
		&lastUsedRaw,
		&expiresRaw,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if token.LastUsedAt, err = decodeNullTime(lastUsedRaw); err != nil {
		return nil, err
	}
	if token.ExpiresAt, err = decodeNullTime(expiresRaw); err != nil {
		return nil, err
	}
	if token.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if token.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *SQLiteAPITokenRepository) collectAPITokens(ctx context.Context, query string, args ...any) ([]domain.APIToken, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query api tokens: %w", err)
	}
	defer rows.Close()

	tokens := []domain.APIToken{}
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api token row: %w", err)
		}
		tokens = append(tokens, *token)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating api token rows: %w", rows.Err())
	}
	return tokens, nil
}

func (r *SQLiteAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	query := `
		INSERT INTO api_tokens (id, user_id, name, token_hash, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Name,
		token.TokenHash,
		encodeNullTime(token.ExpiresAt),
		encodeTime(token.CreatedAt),
		encodeTime(token.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create api token: %w", err)
	}
	return nil
}

func (r *SQLiteAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE id = ?;`
	token, err := scanAPIToken(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find api token by ID %s: %w", id, err)
	}
	return token, nil
}

func (r *SQLiteAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE user_id = ? ORDER BY created_at DESC;`
	return r.collectAPITokens(ctx, query, userID)
}

func (r *SQLiteAPITokenRepository) FindActive(ctx context.Context, now time.Time) ([]domain.APIToken, error) {
	query := `SELECT ` + apiTokenColumns + ` FROM api_tokens WHERE expires_at IS NULL OR expires_at > ?;`
	return r.collectAPITokens(ctx, query, encodeTime(now))
}

func (r *SQLiteAPITokenRepository) Update(ctx context.Context, token *domain.APIToken) error {
	query := `UPDATE api_tokens SET name = ?, last_used_at = ?, updated_at = ? WHERE id = ?;`
	res, err := r.db.ExecContext(ctx, query, token.Name, encodeNullTime(token.LastUsedAt), encodeTime(time.Now()), token.ID)
	if err != nil {
		return fmt.Errorf("failed to update api token: %w", err)
	}
	return requireRowsAffected(res)
}

func (r *SQLiteAPITokenRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	return requireRowsAffected(res)
}

func (r *SQLiteAPITokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE user_id = ?;`, userID); err != nil {
		return fmt.Errorf("failed to delete api tokens for user: %w", err)
	}
	return nil
}
