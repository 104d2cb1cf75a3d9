package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
)

// SQLiteLedgerRepository stores each user's ledger as a JSON document in a
// single row, mirroring the write-through full-document persistence model.
type SQLiteLedgerRepository struct {
	db *sql.DB
}

func newSQLiteLedgerRepository(db *sql.DB) portsrepo.LedgerRepositoryFacade {
	return &SQLiteLedgerRepository{db: db}
}

var _ portsrepo.LedgerRepositoryFacade = (*SQLiteLedgerRepository)(nil)

func (r *SQLiteLedgerRepository) LoadLedger(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM ledgers WHERE user_id = ?;`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ledger for user %s: %w", userID, err)
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal([]byte(raw), &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode ledger document for user %s: %w", userID, err)
	}
	return transactions, nil
}

func (r *SQLiteLedgerRepository) SaveLedger(ctx context.Context, userID string, transactions []domain.Transaction) error {
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	raw, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("failed to encode ledger document for user %s: %w", userID, err)
	}

	query := `
		INSERT INTO ledgers (user_id, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at;
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(raw), encodeTime(time.Now())); err != nil {
		return fmt.Errorf("failed to save ledger for user %s: %w", userID, err)
	}
	return nil
}
