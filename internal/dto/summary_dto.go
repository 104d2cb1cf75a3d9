package dto

import "github.com/momotrack/momo_tracker_app/internal/core/domain"

// DailySummaryResponse mirrors domain.DailySummary on the wire.
type DailySummaryResponse struct {
	Date           string `json:"date"`
	Deposits       string `json:"deposits"`
	Withdrawals    string `json:"withdrawals"`
	Airtime        string `json:"airtime"`
	NetBalance     string `json:"netBalance"`
	ActiveCount    int    `json:"activeCount"`
	CancelledCount int    `json:"cancelledCount"`
}

// ToDailySummaryResponse renders decimal totals as fixed two-place strings,
// the format the merchant dashboard displays.
func ToDailySummaryResponse(s domain.DailySummary) DailySummaryResponse {
	return DailySummaryResponse{
		Date:           s.Date,
		Deposits:       s.Deposits.StringFixed(2),
		Withdrawals:    s.Withdrawals.StringFixed(2),
		Airtime:        s.Airtime.StringFixed(2),
		NetBalance:     s.NetBalance.StringFixed(2),
		ActiveCount:    s.ActiveCount,
		CancelledCount: s.CancelledCount,
	}
}
