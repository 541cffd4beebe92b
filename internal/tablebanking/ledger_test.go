package tablebanking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeTotals(t *testing.T) {
	interest, total, balance := ComputeTotals(d("10000"), d("10"), decimal.Zero)
	require.True(t, interest.Equal(d("1000")), "interest = %s", interest)
	require.True(t, total.Equal(d("11000")), "total = %s", total)
	require.True(t, balance.Equal(d("11000")), "balance = %s", balance)
}

func TestComputeTotalsRounding(t *testing.T) {
	// 3333.33 at 7.5% = 249.99975, rounds to 250.00.
	interest, total, _ := ComputeTotals(d("3333.33"), d("7.5"), decimal.Zero)
	require.True(t, interest.Equal(d("250.00")), "interest = %s", interest)
	require.True(t, total.Equal(d("3583.33")), "total = %s", total)
}

func TestComputeTotalsWithAmountPaid(t *testing.T) {
	_, _, balance := ComputeTotals(d("10000"), d("10"), d("11000"))
	require.True(t, balance.IsZero(), "balance = %s", balance)

	_, _, balance = ComputeTotals(d("10000"), d("10"), d("4000"))
	require.True(t, balance.Equal(d("7000")), "balance = %s", balance)
}

func TestApplyBalanceRule(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	status, completion := ApplyBalanceRule(StatusDisbursed, decimal.Zero, today)
	require.Equal(t, StatusCompleted, status)
	require.NotNil(t, completion)
	require.Equal(t, today, *completion)

	status, completion = ApplyBalanceRule(StatusRepaying, d("-50"), today)
	require.Equal(t, StatusCompleted, status)
	require.NotNil(t, completion)

	status, completion = ApplyBalanceRule(StatusDisbursed, d("7000"), today)
	require.Equal(t, StatusRepaying, status)
	require.Nil(t, completion)
}

func TestApplyBalanceRuleLeavesInactiveStatuses(t *testing.T) {
	today := time.Now()
	for _, st := range []LoanStatus{StatusPending, StatusApproved, StatusCompleted, StatusDefaulted, StatusRejected} {
		status, completion := ApplyBalanceRule(st, decimal.Zero, today)
		require.Equal(t, st, status, "status %s must not transition", st)
		require.Nil(t, completion)
	}
}

func TestApplyRepayment(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	loan := Loan{
		ID:           1,
		Principal:    d("10000"),
		InterestRate: d("10"),
		AmountPaid:   decimal.Zero,
		Status:       StatusDisbursed,
	}

	require.NoError(t, applyRepayment(&loan, Repayment{Amount: d("4000")}, today))
	require.Equal(t, StatusRepaying, loan.Status)
	require.True(t, loan.AmountPaid.Equal(d("4000")))
	require.True(t, loan.Balance.Equal(d("7000")))
	require.Nil(t, loan.CompletionDate)

	require.NoError(t, applyRepayment(&loan, Repayment{Amount: d("7000")}, today))
	require.Equal(t, StatusCompleted, loan.Status)
	require.True(t, loan.Balance.IsZero())
	require.NotNil(t, loan.CompletionDate)
}

func TestApplyRepaymentRejectsInactiveLoan(t *testing.T) {
	today := time.Now()
	for _, st := range []LoanStatus{StatusPending, StatusApproved, StatusCompleted, StatusDefaulted, StatusRejected} {
		loan := Loan{ID: 1, Principal: d("10000"), InterestRate: d("10"), Status: st}
		err := applyRepayment(&loan, Repayment{Amount: d("100")}, today)
		require.Error(t, err, "status %s must reject repayments", st)
		require.True(t, loan.AmountPaid.IsZero())
	}
}

func TestApplyRepaymentRejectsNonPositiveAmount(t *testing.T) {
	loan := Loan{ID: 1, Principal: d("10000"), InterestRate: d("10"), Status: StatusDisbursed}
	require.Error(t, applyRepayment(&loan, Repayment{Amount: decimal.Zero}, time.Now()))
	require.Error(t, applyRepayment(&loan, Repayment{Amount: d("-10")}, time.Now()))
}

func TestApplyTransaction(t *testing.T) {
	acct := SavingsAccount{ID: 1, CurrentBalance: d("500")}

	txn := Transaction{Type: TxDeposit, Amount: d("250")}
	require.NoError(t, applyTransaction(&acct, &txn))
	require.True(t, acct.CurrentBalance.Equal(d("750")))
	require.True(t, txn.BalanceAfter.Equal(d("750")))

	txn = Transaction{Type: TxWithdrawal, Amount: d("750")}
	require.NoError(t, applyTransaction(&acct, &txn))
	require.True(t, acct.CurrentBalance.IsZero())
}

func TestApplyTransactionRejectsOverdraw(t *testing.T) {
	acct := SavingsAccount{ID: 1, CurrentBalance: d("100")}
	txn := Transaction{Type: TxWithdrawal, Amount: d("100.01")}
	require.Error(t, applyTransaction(&acct, &txn))
	require.True(t, acct.CurrentBalance.Equal(d("100")), "balance must be untouched")
}
