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

type SQLiteUserRepository struct {
	db *sql.DB
}

func newSQLiteUserRepository(db *sql.DB) portsrepo.UserRepositoryFacade {
	return &SQLiteUserRepository{db: db}
}

var _ portsrepo.UserRepositoryFacade = (*SQLiteUserRepository)(nil)

const userColumns = `user_id, email, name, password_hash, auth_provider, refresh_token_hash, refresh_token_expiry, created_at, last_updated_at, deleted_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user         domain.User
		refreshExp   sql.NullString
		createdAt    string
		lastUpdated  string
		deletedAtRaw sql.NullString
	)
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.AuthProvider,
		&user.RefreshTokenHash,
		&refreshExp,
		&createdAt,
		&lastUpdated,
		&deletedAtRaw,
	)
	if err != nil {
		return nil, err
	}

	if user.RefreshTokenExpiryTime, err = decodeNullTime(refreshExp); err != nil {
		return nil, err
	}
	if user.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, err
	}
	if user.LastUpdatedAt, err = decodeTime(lastUpdated); err != nil {
		return nil, err
	}
	if user.DeletedAt, err = decodeNullTime(deletedAtRaw); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SQLiteUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	query := `
		INSERT INTO users (user_id, email, name, password_hash, auth_provider, created_at, last_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, query,
		user.UserID,
		user.Email,
		user.Name,
		user.PasswordHash,
		string(user.AuthProvider),
		encodeTime(user.CreatedAt),
		encodeTime(user.LastUpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *SQLiteUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ? AND deleted_at IS NULL;`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID %s: %w", userID, err)
	}
	return user, nil
}

func (r *SQLiteUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL;`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

func (r *SQLiteUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	query := `UPDATE users SET name = ?, last_updated_at = ? WHERE user_id = ? AND deleted_at IS NULL;`
	res, err := r.db.ExecContext(ctx, query, user.Name, encodeTime(user.LastUpdatedAt), user.UserID)
	if err != nil {
		return fmt.Errorf("failed to execute update user query: %w", err)
	}
	return requireRowsAffected(res)
}

func (r *SQLiteUserRepository) UpdateRefreshTokenDetails(ctx context.Context, userID string, tokenHash string, expiryTime *time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = ?, refresh_token_expiry = ?, last_updated_at = ?
		WHERE user_id = ? AND deleted_at IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query, tokenHash, encodeNullTime(expiryTime), encodeTime(time.Now()), userID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token details: %w", err)
	}
	return requireRowsAffected(res)
}

func (r *SQLiteUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time) error {
	query := `UPDATE users SET deleted_at = ?, last_updated_at = ? WHERE user_id = ? AND deleted_at IS NULL;`
	res, err := r.db.ExecContext(ctx, query, encodeTime(deletedAt), encodeTime(deletedAt), userID)
	if err != nil {
		return fmt.Errorf("failed to mark user as deleted: %w", err)
	}
	return requireRowsAffected(res)
}

func requireRowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
