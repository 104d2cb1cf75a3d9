package services

import (
	"context"

	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	"github.com/momotrack/momo_tracker_app/internal/dto"
)

// LedgerReaderSvc defines read-only operations over a user's ledger.
type LedgerReaderSvc interface {
	// ListTransactions returns the user's full ledger, newest first.
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)

	// ListTransactionsForDate returns all transactions (active and cancelled)
	// whose derived date equals the given YYYY-MM-DD date, in ledger order.
	ListTransactionsForDate(ctx context.Context, userID string, date string) ([]domain.Transaction, error)

	// SummaryForDate computes the daily summary for the given date.
	SummaryForDate(ctx context.Context, userID string, date string) (*domain.DailySummary, error)
}

// LedgerWriterSvc defines the mutating ledger operations. Every mutation is
// write-through persisted; the returned persisted flag is false when the
// in-memory change applied but the storage write failed.
type LedgerWriterSvc interface {
	// AddTransaction creates a new active transaction at the head of the ledger.
	AddTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, bool, error)

	// CancelTransaction marks a transaction cancelled with an audit reason.
	// Returns apperrors.ErrNotFound for unknown ids and
	// apperrors.ErrAlreadyCancelled when the transition already happened.
	CancelTransaction(ctx context.Context, userID string, transactionID string, reason string) (*domain.Transaction, bool, error)

	// DeleteTransaction permanently removes a transaction regardless of status.
	DeleteTransaction(ctx context.Context, userID string, transactionID string) (bool, error)
}

// LedgerSessionSvc ties the in-memory ledger to the session lifecycle.
type LedgerSessionSvc interface {
	// UnloadLedger drops the user's in-memory sequence without persisting.
	// Called when the session ends so nothing is ever saved under a stale key.
	UnloadLedger(userID string)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerSessionSvc
}
