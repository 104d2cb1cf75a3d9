package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event names for transaction lifecycle notifications.
const (
	TransactionRecorded  = "transaction.recorded"
	TransactionCancelled = "transaction.cancelled"
	TransactionDeleted   = "transaction.deleted"
)

// TransactionEvent is emitted after a ledger mutation has been persisted.
type TransactionEvent struct {
	Event         string          `json:"event"`
	UserID        string          `json:"user_id"`
	TransactionID string          `json:"transaction_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher sends ledger events to an external broker. Implementations must
// tolerate failure: event delivery is best-effort and never blocks the
// ledger operation's outcome.
type Publisher interface {
	Publish(event TransactionEvent) error
	Close() error
}
