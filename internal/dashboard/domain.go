// Package dashboard serves the back-office summary figures.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the headline view of the organization: counts plus the money in
// flight this month.
type Summary struct {
	TotalMembers         int             `json:"total_members"`
	TotalGroups          int             `json:"total_groups"`
	ActiveLoans          int             `json:"active_loans"`
	OutstandingBalance   decimal.Decimal `json:"outstanding_balance"`
	RepaymentsThisMonth  decimal.Decimal `json:"repayments_this_month"`
	CollectionsThisMonth decimal.Decimal `json:"collections_this_month"`
	GeneratedAt          time.Time       `json:"generated_at"`
}
