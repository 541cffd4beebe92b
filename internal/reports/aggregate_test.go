package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/shared"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestAggregate(t *testing.T) {
	date := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)
	visits := []GroupVisit{
		{
			GroupName:        "Umoja",
			VisitVenue:       "Chief's Camp",
			VisitTime:        "09:00",
			Attendees:        18,
			TotalLoanRepaid:  d("3000"),
			SavingsThisMonth: d("1200"),
			WelfareForGroup:  d("300"),
			Project:          d("500"),
			FinesAndCharges:  d("50"),
		},
		{
			GroupName:        "Tumaini",
			VisitVenue:       "Market Hall",
			VisitTime:        "14:00",
			Attendees:        12,
			TotalLoanRepaid:  d("2000"),
			SavingsThisMonth: d("800"),
			WelfareForGroup:  d("200"),
		},
	}

	r := Aggregate(date, "Jane Wekesa", visits)
	require.Equal(t, 2, r.TotalGroups)
	require.Equal(t, 30, r.TotalAttendees)
	require.Equal(t, "Umoja, Tumaini", r.GroupNames)
	require.Equal(t, "Chief's Camp, Market Hall", r.VisitVenues)
	require.Equal(t, "09:00, 14:00", r.VisitTimes)

	// total_savings = savings_this_month + welfare + project + fines
	require.True(t, r.TotalSavings.Equal(d("3050")), "total_savings = %s", r.TotalSavings)
	// total_money = total_loan_repaid + total_savings
	require.True(t, r.TotalMoney.Equal(d("8050")), "total_money = %s", r.TotalMoney)
}

func TestAggregateSingleVisit(t *testing.T) {
	r := Aggregate(time.Now(), "Jane Wekesa", []GroupVisit{{GroupName: "Umoja"}})
	require.Equal(t, 1, r.TotalGroups)
	require.True(t, r.TotalSavings.IsZero())
	require.True(t, r.TotalMoney.IsZero())
}

func TestLenientParsingFeedsAggregate(t *testing.T) {
	// Paper forms come back with blanks and stray text in numeric cells.
	values := []string{"5", "3", ""}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(shared.ParseAmount(v))
	}
	require.True(t, sum.Equal(d("8")), "sum = %s", sum)

	require.True(t, shared.ParseAmount("n/a").IsZero())
	require.Equal(t, 0, shared.ParseCount("garbage"))
	require.Equal(t, 17, shared.ParseCount("17"))
}
