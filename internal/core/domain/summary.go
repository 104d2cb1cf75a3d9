package domain

import "github.com/shopspring/decimal"

// DailySummary holds the derived totals for a single calendar date.
// Cancelled transactions are excluded from every monetary figure; airtime
// sales are a separate revenue stream and never affect the net balance.
type DailySummary struct {
	Date           string          `json:"date"`
	Deposits       decimal.Decimal `json:"deposits"`
	Withdrawals    decimal.Decimal `json:"withdrawals"`
	Airtime        decimal.Decimal `json:"airtime"`
	NetBalance     decimal.Decimal `json:"netBalance"` // Deposits - Withdrawals
	ActiveCount    int             `json:"activeCount"`
	CancelledCount int             `json:"cancelledCount"`
}
