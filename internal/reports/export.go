package reports

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Table is the date-ranged report listing with a totals row, amounts
// formatted for display.
type Table struct {
	Rows   []TableRow `json:"rows"`
	Totals TableRow   `json:"totals"`
}

// TableRow is one report, or the totals line, with display-formatted money
// columns.
type TableRow struct {
	ReportDate      string `json:"report_date,omitempty"`
	POName          string `json:"po_name,omitempty"`
	GroupNames      string `json:"group_names,omitempty"`
	TotalGroups     int    `json:"total_groups"`
	TotalAttendees  int    `json:"total_attendees"`
	TotalLoanRepaid string `json:"total_loan_repaid"`
	SavingsBefore   string `json:"savings_before"`
	TotalSavings    string `json:"total_savings"`
	TotalMoney      string `json:"total_money"`
}

var printer = message.NewPrinter(language.English)

// ksh renders an amount as a grouped KSh string, e.g. "KSh 1,234,567.89".
func ksh(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprintf("KSh %v", number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// BuildTable lays out the reports with per-column totals.
func BuildTable(reportsList []FieldOfficerReport) Table {
	t := Table{Rows: make([]TableRow, 0, len(reportsList))}

	var repaid, before, savings, money decimal.Decimal
	for _, r := range reportsList {
		t.Rows = append(t.Rows, TableRow{
			ReportDate:      r.ReportDate.Format("2006-01-02"),
			POName:          r.POName,
			GroupNames:      r.GroupNames,
			TotalGroups:     r.TotalGroups,
			TotalAttendees:  r.TotalAttendees,
			TotalLoanRepaid: ksh(r.TotalLoanRepaid),
			SavingsBefore:   ksh(r.SavingsBefore),
			TotalSavings:    ksh(r.TotalSavings),
			TotalMoney:      ksh(r.TotalMoney),
		})
		t.Totals.TotalGroups += r.TotalGroups
		t.Totals.TotalAttendees += r.TotalAttendees
		repaid = repaid.Add(r.TotalLoanRepaid)
		before = before.Add(r.SavingsBefore)
		savings = savings.Add(r.TotalSavings)
		money = money.Add(r.TotalMoney)
	}

	t.Totals.TotalLoanRepaid = ksh(repaid)
	t.Totals.SavingsBefore = ksh(before)
	t.Totals.TotalSavings = ksh(savings)
	t.Totals.TotalMoney = ksh(money)
	return t
}
