package accounting_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	"github.com/momotrack/momo_tracker_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func makeTxn(txnType domain.TransactionType, amount int64, status domain.TransactionStatus) domain.Transaction {
	now := time.Now().UTC()
	return domain.Transaction{
		TransactionID: uuid.NewString(),
		Type:          txnType,
		Amount:        decimal.NewFromInt(amount),
		CustomerName:  "Customer",
		CustomerPhone: "555-0000",
		Timestamp:     now,
		Date:          domain.DateOf(now),
		Status:        status,
	}
}

func TestTotalByType_ExcludesCancelled(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Deposit, 50, domain.StatusCancelled),
	}

	total := accounting.TotalByType(txns, domain.Deposit)

	assert.True(t, total.Equal(decimal.NewFromInt(100)), "cancelled deposits must not count, got %s", total)
}

func TestTotalByType_FiltersType(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Withdrawal, 40, domain.StatusActive),
		makeTxn(domain.Airtime, 20, domain.StatusActive),
	}

	assert.True(t, accounting.TotalByType(txns, domain.Deposit).Equal(decimal.NewFromInt(100)))
	assert.True(t, accounting.TotalByType(txns, domain.Withdrawal).Equal(decimal.NewFromInt(40)))
	assert.True(t, accounting.TotalByType(txns, domain.Airtime).Equal(decimal.NewFromInt(20)))
}

func TestNetBalance_DepositsMinusWithdrawals(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Withdrawal, 40, domain.StatusActive),
	}

	assert.True(t, accounting.NetBalance(txns).Equal(decimal.NewFromInt(60)))
}

func TestNetBalance_AirtimeDoesNotMoveBalance(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Airtime, 20, domain.StatusActive),
	}

	assert.True(t, accounting.NetBalance(txns).Equal(decimal.NewFromInt(100)))
	assert.True(t, accounting.TotalByType(txns, domain.Airtime).Equal(decimal.NewFromInt(20)))
}

func TestNetBalance_CancelledWithdrawalRestoresBalance(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Withdrawal, 40, domain.StatusCancelled),
	}

	assert.True(t, accounting.NetBalance(txns).Equal(decimal.NewFromInt(100)))
}

func TestNetBalance_CanGoNegative(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Withdrawal, 75, domain.StatusActive),
	}

	assert.True(t, accounting.NetBalance(txns).Equal(decimal.NewFromInt(-75)))
}

func TestCounts(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Withdrawal, 40, domain.StatusCancelled),
		makeTxn(domain.Airtime, 20, domain.StatusCancelled),
	}

	assert.Equal(t, 1, accounting.ActiveCount(txns))
	assert.Equal(t, 2, accounting.CancelledCount(txns))
}

func TestSummarize(t *testing.T) {
	txns := []domain.Transaction{
		makeTxn(domain.Deposit, 100, domain.StatusActive),
		makeTxn(domain.Withdrawal, 40, domain.StatusActive),
		makeTxn(domain.Airtime, 20, domain.StatusActive),
		makeTxn(domain.Deposit, 55, domain.StatusCancelled),
	}

	summary := accounting.Summarize("2024-03-01", txns)

	assert.Equal(t, "2024-03-01", summary.Date)
	assert.True(t, summary.Deposits.Equal(decimal.NewFromInt(100)))
	assert.True(t, summary.Withdrawals.Equal(decimal.NewFromInt(40)))
	assert.True(t, summary.Airtime.Equal(decimal.NewFromInt(20)))
	assert.True(t, summary.NetBalance.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 3, summary.ActiveCount)
	assert.Equal(t, 1, summary.CancelledCount)
}

func TestSummarize_Empty(t *testing.T) {
	summary := accounting.Summarize("2024-03-01", nil)

	assert.True(t, summary.Deposits.IsZero())
	assert.True(t, summary.NetBalance.IsZero())
	assert.Equal(t, 0, summary.ActiveCount)
	assert.Equal(t, 0, summary.CancelledCount)
}
