package dto

import (
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is the payload for recording a new ledger entry.
// Amount positivity is re-checked by the ledger engine; binding validation
// here is the first line of defence.
type CreateTransactionRequest struct {
	Type          domain.TransactionType `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL AIRTIME"`
	Amount        decimal.Decimal        `json:"amount" binding:"required"`
	CustomerName  string                 `json:"customerName" binding:"required"`
	CustomerPhone string                 `json:"customerPhone" binding:"required"`
	Reference     string                 `json:"reference"`
}

// CancelTransactionRequest carries the audit reason for a cancellation.
type CancelTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	domain.Transaction
	// Persisted is false when the in-memory mutation applied but the
	// write-through save failed; the next successful save heals the gap.
	Persisted *bool `json:"persisted,omitempty"`
}

// ToTransactionResponse converts a domain transaction for a read path.
func ToTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{Transaction: txn}
}

// ToMutatedTransactionResponse converts a domain transaction for a mutation
// response, including the persistence outcome.
func ToMutatedTransactionResponse(txn domain.Transaction, persisted bool) TransactionResponse {
	return TransactionResponse{Transaction: txn, Persisted: &persisted}
}

// ListTransactionsResponse wraps an ordered transaction list.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ToListTransactionsResponse converts a domain slice, preserving order.
func ToListTransactionsResponse(txns []domain.Transaction) ListTransactionsResponse {
	out := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		out[i] = ToTransactionResponse(txn)
	}
	return ListTransactionsResponse{Transactions: out}
}

// DeleteTransactionResponse reports the outcome of a permanent deletion.
type DeleteTransactionResponse struct {
	TransactionID string `json:"transactionID"`
	Persisted     bool   `json:"persisted"`
}
