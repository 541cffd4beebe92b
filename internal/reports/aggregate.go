package reports

import (
	"strings"
	"time"

	"github.com/ukombozini/backoffice/internal/shared"
)

// Aggregate folds the day's group visits into one report. Both ingestion
// paths go through this function so a form submission and an offline sync of
// the same visits produce identical rows.
//
// total_savings = savings_this_month + welfare + project + fines_and_charges
// total_money   = total_loan_repaid + total_savings
func Aggregate(reportDate time.Time, poName string, visits []GroupVisit) FieldOfficerReport {
	r := FieldOfficerReport{
		ReportDate:  reportDate,
		POName:      poName,
		TotalGroups: len(visits),
	}

	names := make([]string, 0, len(visits))
	venues := make([]string, 0, len(visits))
	times := make([]string, 0, len(visits))
	admins := make([]string, 0, len(visits))
	projRegs := make([]string, 0, len(visits))
	memRegs := make([]string, 0, len(visits))

	for _, v := range visits {
		names = append(names, v.GroupName)
		venues = append(venues, v.VisitVenue)
		times = append(times, v.VisitTime)
		admins = append(admins, v.AdminForGroup)
		projRegs = append(projRegs, v.ProjectRegistration)
		memRegs = append(memRegs, v.MemReg)
		r.TotalAttendees += v.Attendees

		r.LongTermLoan = r.LongTermLoan.Add(v.LongTermLoan)
		r.ShortTermLoan = r.ShortTermLoan.Add(v.ShortTermLoan)
		r.SavingsBefore = r.SavingsBefore.Add(v.SavingsBefore)
		r.TotalLoanRepaid = r.TotalLoanRepaid.Add(v.TotalLoanRepaid)
		r.LoanPrinciple = r.LoanPrinciple.Add(v.LoanPrinciple)
		r.LoanInterest = r.LoanInterest.Add(v.LoanInterest)
		r.ShortTermLoanRepaid = r.ShortTermLoanRepaid.Add(v.ShortTermLoanRepaid)

		r.SavingsThisMonth = r.SavingsThisMonth.Add(v.SavingsThisMonth)
		r.WelfareForGroup = r.WelfareForGroup.Add(v.WelfareForGroup)
		r.Project = r.Project.Add(v.Project)
		r.FinesAndCharges = r.FinesAndCharges.Add(v.FinesAndCharges)

		r.GroupLoans = r.GroupLoans.Add(v.GroupLoans)
		r.ProjectLoans = r.ProjectLoans.Add(v.ProjectLoans)
	}

	r.GroupNames = strings.Join(names, ", ")
	r.VisitVenues = strings.Join(venues, ", ")
	r.VisitTimes = strings.Join(times, ", ")
	r.AdminForGroup = strings.Join(admins, ", ")
	r.ProjectRegistration = strings.Join(projRegs, ", ")
	r.MemReg = strings.Join(memRegs, ", ")

	r.TotalSavings = shared.Round2(r.SavingsThisMonth.Add(r.WelfareForGroup).Add(r.Project).Add(r.FinesAndCharges))
	r.TotalMoney = shared.Round2(r.TotalLoanRepaid.Add(r.TotalSavings))
	return r
}
