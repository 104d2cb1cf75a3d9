package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a merchant ledger entry.
type TransactionType string

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
	Airtime    TransactionType = "AIRTIME"
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Deposit, Withdrawal, Airtime:
		return true
	}
	return false
}

// TransactionStatus is the lifecycle state of a transaction.
// The only transition is ACTIVE -> CANCELLED.
type TransactionStatus string

const (
	StatusActive    TransactionStatus = "ACTIVE"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// DateLayout is the calendar-date format used as the partition key for
// daily aggregation and display.
const DateLayout = "2006-01-02"

// Transaction is a single entry in a merchant's ledger. Identity fields are
// assigned by the ledger engine at creation and never change; only the
// cancellation fields are mutable afterwards.
type Transaction struct {
	TransactionID string            `json:"transactionID"` // UUID, unique within a user's ledger
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"` // Strictly positive
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Reference     string            `json:"reference,omitempty"`
	Timestamp     time.Time         `json:"timestamp"` // Creation instant, UTC
	Date          string            `json:"date"`      // Derived from Timestamp, UTC calendar date
	Status        TransactionStatus `json:"status"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty"`
	CancelReason  string            `json:"cancelReason,omitempty"`
}

// IsCancelled reports whether the transaction has been cancelled.
func (t Transaction) IsCancelled() bool {
	return t.Status == StatusCancelled
}

// DateOf derives the calendar-date partition key from a creation instant.
// The UTC date is used so the derivation is independent of server locale.
func DateOf(ts time.Time) string {
	return ts.UTC().Format(DateLayout)
}
