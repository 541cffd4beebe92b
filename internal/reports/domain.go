// Package reports handles field officer daily reports, including the offline
// sync path used by the mobile app.
package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// FieldOfficerReport is one officer's daily summary across the groups they
// visited. GroupNames, VisitVenues and VisitTimes are comma-joined in visit
// order. TotalSavings and TotalMoney are derived sums, always recomputed
// before the row is written.
type FieldOfficerReport struct {
	ID         int64     `json:"id"`
	ReportDate time.Time `json:"report_date"`
	POName     string    `json:"po_name"`

	GroupNames  string `json:"group_names"`
	VisitVenues string `json:"visit_venues"`
	VisitTimes  string `json:"visit_times"`

	TotalGroups    int `json:"total_groups"`
	TotalAttendees int `json:"total_attendees"`

	AdminForGroup       string `json:"admin_for_group,omitempty"`
	ProjectRegistration string `json:"project_registration,omitempty"`
	MemReg              string `json:"mem_reg,omitempty"`

	LongTermLoan        decimal.Decimal `json:"long_term_loan"`
	ShortTermLoan       decimal.Decimal `json:"short_term_loan"`
	SavingsBefore       decimal.Decimal `json:"savings_before"`
	TotalLoanRepaid     decimal.Decimal `json:"total_loan_repaid"`
	LoanPrinciple       decimal.Decimal `json:"loan_principle"`
	LoanInterest        decimal.Decimal `json:"loan_interest"`
	ShortTermLoanRepaid decimal.Decimal `json:"short_term_loan_repaid"`

	SavingsThisMonth decimal.Decimal `json:"savings_this_month"`
	WelfareForGroup  decimal.Decimal `json:"welfare_for_group"`
	Project          decimal.Decimal `json:"project"`
	FinesAndCharges  decimal.Decimal `json:"fines_and_charges"`

	TotalSavings decimal.Decimal `json:"total_savings"`
	GroupLoans   decimal.Decimal `json:"group_loans"`
	ProjectLoans decimal.Decimal `json:"project_loans"`
	TotalMoney   decimal.Decimal `json:"total_money"`

	CreatedAt time.Time `json:"created_at"`
}

// GroupVisit is one group's figures within a daily report, before
// aggregation.
type GroupVisit struct {
	GroupName  string
	VisitVenue string
	VisitTime  string
	Attendees  int

	AdminForGroup       string
	ProjectRegistration string
	MemReg              string

	LongTermLoan        decimal.Decimal
	ShortTermLoan       decimal.Decimal
	SavingsBefore       decimal.Decimal
	TotalLoanRepaid     decimal.Decimal
	LoanPrinciple       decimal.Decimal
	LoanInterest        decimal.Decimal
	ShortTermLoanRepaid decimal.Decimal

	SavingsThisMonth decimal.Decimal
	WelfareForGroup  decimal.Decimal
	Project          decimal.Decimal
	FinesAndCharges  decimal.Decimal

	GroupLoans   decimal.Decimal
	ProjectLoans decimal.Decimal
}
