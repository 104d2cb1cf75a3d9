package domain_test

import (
	"testing"
	"time"

	"github.com/momotrack/momo_tracker_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestTransactionTypeIsValid(t *testing.T) {
	assert.True(t, domain.Deposit.IsValid())
	assert.True(t, domain.Withdrawal.IsValid())
	assert.True(t, domain.Airtime.IsValid())
	assert.False(t, domain.TransactionType("TRANSFER").IsValid())
	assert.False(t, domain.TransactionType("").IsValid())
}

func TestDateOf_UsesUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	ts := time.Date(2024, 3, 1, 23, 30, 0, 0, loc)

	assert.Equal(t, "2024-03-02", domain.DateOf(ts))
}

func TestDateOf_Layout(t *testing.T) {
	ts := time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-09", domain.DateOf(ts))
}

func TestIsCancelled(t *testing.T) {
	txn := domain.Transaction{Status: domain.StatusActive}
	assert.False(t, txn.IsCancelled())

	txn.Status = domain.StatusCancelled
	assert.True(t, txn.IsCancelled())
}
