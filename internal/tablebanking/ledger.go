package tablebanking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals derives the loan ledger figures from principal, the simple
// (non-compounding) interest rate and the amount paid so far. All three
// results are rounded to two decimal places.
func ComputeTotals(principal, rate, amountPaid decimal.Decimal) (totalInterest, totalAmount, balance decimal.Decimal) {
	totalInterest = shared.Round2(principal.Mul(rate).Div(hundred))
	totalAmount = shared.Round2(principal.Add(totalInterest))
	balance = shared.Round2(totalAmount.Sub(amountPaid))
	return totalInterest, totalAmount, balance
}

// ApplyBalanceRule resolves the status a loan should carry after its balance
// changed. It only acts on loans that are being repaid: a zero or negative
// balance completes the loan and stamps the completion date, a positive
// balance keeps it repaying. PENDING loans never transition here, and
// DEFAULTED and REJECTED are absorbing.
func ApplyBalanceRule(status LoanStatus, balance decimal.Decimal, today time.Time) (LoanStatus, *time.Time) {
	if status != StatusDisbursed && status != StatusRepaying {
		return status, nil
	}
	if balance.LessThanOrEqual(decimal.Zero) {
		return StatusCompleted, &today
	}
	return StatusRepaying, nil
}

// applyRepayment validates a posting against the loan's state and folds the
// amount into the ledger. Called with the loan row locked so the increment is
// race-free.
func applyRepayment(loan *Loan, rep Repayment, today time.Time) error {
	if rep.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: repayment amount must be positive", httpx.ErrValidation)
	}
	if loan.Status != StatusDisbursed && loan.Status != StatusRepaying {
		return fmt.Errorf("%w: loan %d is %s, repayments require a disbursed or repaying loan",
			httpx.ErrValidation, loan.ID, loan.Status)
	}
	loan.AmountPaid = shared.Round2(loan.AmountPaid.Add(rep.Amount))
	loan.TotalInterest, loan.TotalAmount, loan.Balance = ComputeTotals(loan.Principal, loan.InterestRate, loan.AmountPaid)
	status, completion := ApplyBalanceRule(loan.Status, loan.Balance, today)
	loan.Status = status
	if completion != nil {
		loan.CompletionDate = completion
	}
	return nil
}

// applyTransaction adjusts the account balance for a savings movement.
// Deposits, disbursements and interest credit the account; withdrawals,
// repayments and fees debit it, and a debit beyond the balance is rejected.
func applyTransaction(account *SavingsAccount, txn *Transaction) error {
	if txn.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: transaction amount must be positive", httpx.ErrValidation)
	}
	switch txn.Type {
	case TxDeposit, TxLoanDisbursement, TxInterest:
		account.CurrentBalance = shared.Round2(account.CurrentBalance.Add(txn.Amount))
	case TxWithdrawal, TxLoanRepayment, TxFee:
		if txn.Amount.GreaterThan(account.CurrentBalance) {
			return fmt.Errorf("%w: %s of %s exceeds account balance %s",
				httpx.ErrValidation, txn.Type, txn.Amount, account.CurrentBalance)
		}
		account.CurrentBalance = shared.Round2(account.CurrentBalance.Sub(txn.Amount))
	default:
		return fmt.Errorf("%w: unknown transaction type %q", httpx.ErrValidation, txn.Type)
	}
	txn.BalanceAfter = account.CurrentBalance
	return nil
}
