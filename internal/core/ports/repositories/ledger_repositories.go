package repositories

import (
	"context"

	"github.com/momotrack/momo_tracker_app/internal/core/domain"
)

// LedgerReader defines read operations for per-user ledger documents.
type LedgerReader interface {
	// LoadLedger retrieves the full ordered transaction sequence for a user.
	// Returns apperrors.ErrNotFound when the user has no prior data; callers
	// treat that as an empty ledger, not a failure.
	LoadLedger(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// LedgerWriter defines write operations for per-user ledger documents.
type LedgerWriter interface {
	// SaveLedger overwrites the user's stored sequence with the given one.
	// Each save is a full-document overwrite; a failed save must leave the
	// previously stored sequence intact.
	SaveLedger(ctx context.Context, userID string, transactions []domain.Transaction) error
}

// LedgerRepositoryFacade combines all ledger persistence operations.
// SaveLedger followed by LoadLedger for the same user must round-trip the
// sequence exactly: same order, same fields.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
