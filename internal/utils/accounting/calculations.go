package accounting

import (
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TotalByType sums the amounts of active transactions of the given type.
// Cancelled transactions are always excluded from monetary totals.
// This is used in both services and handlers to keep the figures consistent.
func TotalByType(transactions []domain.Transaction, txnType domain.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		if txn.Status != domain.StatusActive || txn.Type != txnType {
			continue
		}
		total = total.Add(txn.Amount)
	}
	return total
}

// NetBalance computes deposits minus withdrawals over active transactions.
// Airtime sales are a separate revenue stream and do not move the balance.
func NetBalance(transactions []domain.Transaction) decimal.Decimal {
	return TotalByType(transactions, domain.Deposit).Sub(TotalByType(transactions, domain.Withdrawal))
}

// ActiveCount counts transactions with status ACTIVE, regardless of type.
func ActiveCount(transactions []domain.Transaction) int {
	count := 0
	for _, txn := range transactions {
		if txn.Status == domain.StatusActive {
			count++
		}
	}
	return count
}

// CancelledCount counts transactions with status CANCELLED, regardless of type.
func CancelledCount(transactions []domain.Transaction) int {
	count := 0
	for _, txn := range transactions {
		if txn.Status == domain.StatusCancelled {
			count++
		}
	}
	return count
}

// Summarize computes the full daily summary for an already date-filtered
// transaction list. It is recomputed on every read; the per-day list is
// small enough that caching would not pay for itself.
func Summarize(date string, transactions []domain.Transaction) domain.DailySummary {
	return domain.DailySummary{
		Date:           date,
		Deposits:       TotalByType(transactions, domain.Deposit),
		Withdrawals:    TotalByType(transactions, domain.Withdrawal),
		Airtime:        TotalByType(transactions, domain.Airtime),
		NetBalance:     NetBalance(transactions),
		ActiveCount:    ActiveCount(transactions),
		CancelledCount: CancelledCount(transactions),
	}
}
