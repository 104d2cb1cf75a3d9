package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
)

// PgxLedgerRepository stores each user's ledger as a single JSONB document.
// Writes replace the whole document, matching the write-through model where
// every mutation persists the full ordered sequence.
type PgxLedgerRepository struct {
	db *pgxpool.Pool
}

func newPgxLedgerRepository(db *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{db: db}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func (r *PgxLedgerRepository) LoadLedger(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `
		SELECT document
		FROM ledgers
		WHERE user_id = $1;
	`
	var raw []byte
	err := r.db.QueryRow(ctx, query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load ledger for user %s: %w", userID, err)
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal(raw, &transactions); err != nil {
		return nil, fmt.Errorf("failed to decode ledger document for user %s: %w", userID, err)
	}
	return transactions, nil
}

func (r *PgxLedgerRepository) SaveLedger(ctx context.Context, userID string, transactions []domain.Transaction) error {
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	raw, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("failed to encode ledger document for user %s: %w", userID, err)
	}

	query := `
		INSERT INTO ledgers (user_id, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = r.db.Exec(ctx, query, userID, raw, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save ledger for user %s: %w", userID, err)
	}
	return nil
}
