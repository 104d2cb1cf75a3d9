package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/momotrack/momo_tracker_app/internal/apperrors"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	portsrepo "github.com/momotrack/momo_tracker_app/internal/core/ports/repositories"
	portssvc "github.com/momotrack/momo_tracker_app/internal/core/ports/services"
	"github.com/momotrack/momo_tracker_app/internal/dto"
	"github.com/momotrack/momo_tracker_app/internal/events"
	"github.com/momotrack/momo_tracker_app/internal/middleware"
	"github.com/momotrack/momo_tracker_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// userLedger is the in-memory state for one user's ledger. Operations on a
// single ledger are serialized by its mutex; each user has exactly one
// writer at a time.
type userLedger struct {
	mu     sync.Mutex
	loaded bool
	// transactions is the authoritative ordered sequence, newest first.
	transactions []domain.Transaction
	// dirty means the last save failed and storage lags the in-memory
	// state. The next save rewrites the whole sequence, which heals it.
	dirty bool
}

// ledgerService owns the in-memory ledgers for all active users and
// write-through persists every mutation via the ledger repository.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	publisher  events.Publisher // nil when eventing is disabled

	mu      sync.Mutex
	ledgers map[string]*userLedger
}

// NewLedgerService creates a new ledger service. publisher may be nil.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, publisher events.Publisher) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
		ledgers:    make(map[string]*userLedger),
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// ledgerFor returns the in-memory ledger for the user, creating the entry
// on first touch. The entry's own mutex serializes operations on it.
func (s *ledgerService) ledgerFor(userID string) *userLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ledgers[userID]
	if !ok {
		l = &userLedger{}
		s.ledgers[userID] = l
	}
	return l
}

// ensureLoaded populates the sequence from storage on first use.
// A missing document is an empty ledger, not an error. Caller holds l.mu.
func (s *ledgerService) ensureLoaded(ctx context.Context, userID string, l *userLedger) error {
	if l.loaded {
		return nil
	}
	txns, err := s.ledgerRepo.LoadLedger(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			l.transactions = []domain.Transaction{}
			l.loaded = true
			return nil
		}
		return fmt.Errorf("failed to load ledger for user %s: %w", userID, err)
	}
	l.transactions = txns
	l.loaded = true
	return nil
}

// persist write-through saves the full sequence. A storage fault never
// rolls back the in-memory mutation; it is reported as persisted=false and
// logged, and the ledger is marked dirty until a save succeeds.
func (s *ledgerService) persist(ctx context.Context, userID string, l *userLedger) bool {
	if err := s.ledgerRepo.SaveLedger(ctx, userID, l.transactions); err != nil {
		l.dirty = true
		middleware.GetLoggerFromCtx(ctx).Warn("Ledger save failed; in-memory state is ahead of storage",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return false
	}
	if l.dirty {
		middleware.GetLoggerFromCtx(ctx).Info("Ledger save recovered after earlier failure", slog.String("user_id", userID))
	}
	l.dirty = false
	return true
}

// publish emits a lifecycle event; delivery is best-effort.
func (s *ledgerService) publish(ctx context.Context, name string, userID string, txn domain.Transaction) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(events.TransactionEvent{
		Event:         name,
		UserID:        userID,
		TransactionID: txn.TransactionID,
		Type:          string(txn.Type),
		Amount:        txn.Amount,
		Date:          txn.Date,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish ledger event",
			slog.String("event", name),
			slog.String("transaction_id", txn.TransactionID),
			slog.String("error", err.Error()),
		)
	}
}

// AddTransaction validates the request, stamps identity fields and prepends
// the new record so the ledger stays ordered newest first.
func (s *ledgerService) AddTransaction(ctx context.Context, userID string, req dto.CreateTransactionRequest) (*domain.Transaction, bool, error) {
	if !req.Type.IsValid() {
		return nil, false, fmt.Errorf("%w: unknown transaction type '%s'", apperrors.ErrValidation, req.Type)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, false, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrValidation, req.Amount)
	}
	if req.CustomerName == "" || req.CustomerPhone == "" {
		return nil, false, fmt.Errorf("%w: customer name and phone are required", apperrors.ErrValidation)
	}

	l := s.ledgerFor(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := s.ensureLoaded(ctx, userID, l); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          req.Type,
		Amount:        req.Amount,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Reference:     req.Reference,
		Timestamp:     now,
		Date:          domain.DateOf(now),
		Status:        domain.StatusActive,
	}

	l.transactions = append([]domain.Transaction{txn}, l.transactions...)
	persisted := s.persist(ctx, userID, l)
	if persisted {
		s.publish(ctx, events.TransactionRecorded, userID, txn)
	}
	return &txn, persisted, nil
}

// CancelTransaction performs the one-way ACTIVE -> CANCELLED transition.
// Re-cancelling is rejected so the first cancellation's audit fields stand.
func (s *ledgerService) CancelTransaction(ctx context.Context, userID string, transactionID string, reason string) (*domain.Transaction, bool, error) {
	if reason == "" {
		return nil, false, fmt.Errorf("%w: cancel reason is required", apperrors.ErrValidation)
	}

	l := s.ledgerFor(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := s.ensureLoaded(ctx, userID, l); err != nil {
		return nil, false, err
	}

	idx := indexOf(l.transactions, transactionID)
	if idx < 0 {
		return nil, false, apperrors.ErrNotFound
	}
	if l.transactions[idx].IsCancelled() {
		return nil, false, apperrors.ErrAlreadyCancelled
	}

	now := time.Now().UTC()
	l.transactions[idx].Status = domain.StatusCancelled
	l.transactions[idx].CancelledAt = &now
	l.transactions[idx].CancelReason = reason

	txn := l.transactions[idx]
	persisted := s.persist(ctx, userID, l)
	if persisted {
		s.publish(ctx, events.TransactionCancelled, userID, txn)
	}
	return &txn, persisted, nil
}

// DeleteTransaction permanently removes the record regardless of status.
func (s *ledgerService) DeleteTransaction(ctx context.Context, userID string, transactionID string) (bool, error) {
	l := s.ledgerFor(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := s.ensureLoaded(ctx, userID, l); err != nil {
		return false, err
	}

	idx := indexOf(l.transactions, transactionID)
	if idx < 0 {
		return false, apperrors.ErrNotFound
	}

	txn := l.transactions[idx]
	l.transactions = append(l.transactions[:idx], l.transactions[idx+1:]...)
	persisted := s.persist(ctx, userID, l)
	if persisted {
		s.publish(ctx, events.TransactionDeleted, userID, txn)
	}
	return persisted, nil
}

// ListTransactions returns a copy of the full sequence, newest first.
func (s *ledgerService) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	l := s.ledgerFor(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := s.ensureLoaded(ctx, userID, l); err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out, nil
}

// ListTransactionsForDate returns the daily partition in ledger order,
// including cancelled transactions.
func (s *ledgerService) ListTransactionsForDate(ctx context.Context, userID string, date string) ([]domain.Transaction, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD, got '%s'", apperrors.ErrValidation, date)
	}

	l := s.ledgerFor(userID)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := s.ensureLoaded(ctx, userID, l); err != nil {
		return nil, err
	}

	out := make([]domain.Transaction, 0)
	for _, txn := range l.transactions {
		if txn.Date == date {
			out = append(out, txn)
		}
	}
	return out, nil
}

// SummaryForDate recomputes the daily totals from the date partition.
func (s *ledgerService) SummaryForDate(ctx context.Context, userID string, date string) (*domain.DailySummary, error) {
	txns, err := s.ListTransactionsForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	summary := accounting.Summarize(date, txns)
	return &summary, nil
}

// UnloadLedger drops the in-memory sequence when the session ends. Nothing
// is persisted here; pending dirty state is abandoned rather than risking a
// write under a stale identity.
func (s *ledgerService) UnloadLedger(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledgers, userID)
}

func indexOf(txns []domain.Transaction, transactionID string) int {
	for i := range txns {
		if txns[i].TransactionID == transactionID {
			return i
		}
	}
	return -1
}
