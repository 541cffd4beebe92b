package tablebanking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

type memoryLedgerRepo struct {
	loanTypes    map[int64]*LoanType
	loans        map[int64]*Loan
	repayments   []Repayment
	products     map[int64]*SavingsProduct
	accounts     map[int64]*SavingsAccount
	transactions []Transaction
	nextID       int64
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{
		loanTypes: make(map[int64]*LoanType),
		loans:     make(map[int64]*Loan),
		products:  make(map[int64]*SavingsProduct),
		accounts:  make(map[int64]*SavingsAccount),
	}
}

func (r *memoryLedgerRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryLedgerRepo) ListLoanTypes(ctx context.Context) ([]LoanType, error) {
	var out []LoanType
	for _, lt := range r.loanTypes {
		out = append(out, *lt)
	}
	return out, nil
}

func (r *memoryLedgerRepo) GetLoanType(ctx context.Context, id int64) (LoanType, error) {
	lt, ok := r.loanTypes[id]
	if !ok {
		return LoanType{}, httpx.ErrNotFound
	}
	return *lt, nil
}

func (r *memoryLedgerRepo) CreateLoanType(ctx context.Context, lt LoanType) (LoanType, error) {
	lt.ID = r.id()
	r.loanTypes[lt.ID] = &lt
	return lt, nil
}

func (r *memoryLedgerRepo) ListLoans(ctx context.Context, filters LoanFilters) ([]Loan, int, error) {
	var out []Loan
	for _, l := range r.loans {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (r *memoryLedgerRepo) GetLoan(ctx context.Context, id int64) (Loan, error) {
	l, ok := r.loans[id]
	if !ok {
		return Loan{}, httpx.ErrNotFound
	}
	return *l, nil
}

func (r *memoryLedgerRepo) CreateLoan(ctx context.Context, loan Loan) (Loan, error) {
	loan.ID = r.id()
	r.loans[loan.ID] = &loan
	return loan, nil
}

func (r *memoryLedgerRepo) UpdateLoan(ctx context.Context, loan Loan) error {
	if _, ok := r.loans[loan.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.loans[loan.ID] = &loan
	return nil
}

func (r *memoryLedgerRepo) PostRepayment(ctx context.Context, rep Repayment) (Repayment, Loan, error) {
	l, ok := r.loans[rep.LoanID]
	if !ok {
		return Repayment{}, Loan{}, httpx.ErrNotFound
	}
	loan := *l
	if err := applyRepayment(&loan, rep, time.Now()); err != nil {
		return Repayment{}, Loan{}, err
	}
	rep.ID = r.id()
	r.repayments = append(r.repayments, rep)
	r.loans[loan.ID] = &loan
	return rep, loan, nil
}

func (r *memoryLedgerRepo) ListRepayments(ctx context.Context, loanID int64) ([]Repayment, error) {
	var out []Repayment
	for _, rep := range r.repayments {
		if rep.LoanID == loanID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *memoryLedgerRepo) ListSavingsProducts(ctx context.Context) ([]SavingsProduct, error) {
	var out []SavingsProduct
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memoryLedgerRepo) CreateSavingsProduct(ctx context.Context, p SavingsProduct) (SavingsProduct, error) {
	p.ID = r.id()
	r.products[p.ID] = &p
	return p, nil
}

func (r *memoryLedgerRepo) GetAccount(ctx context.Context, id int64) (SavingsAccount, error) {
	a, ok := r.accounts[id]
	if !ok {
		return SavingsAccount{}, httpx.ErrNotFound
	}
	return *a, nil
}

func (r *memoryLedgerRepo) OpenAccount(ctx context.Context, acct SavingsAccount) (SavingsAccount, error) {
	acct.ID = r.id()
	acct.IsActive = true
	r.accounts[acct.ID] = &acct
	return acct, nil
}

func (r *memoryLedgerRepo) PostTransaction(ctx context.Context, txn Transaction) (Transaction, SavingsAccount, error) {
	a, ok := r.accounts[txn.AccountID]
	if !ok {
		return Transaction{}, SavingsAccount{}, httpx.ErrNotFound
	}
	acct := *a
	if err := applyTransaction(&acct, &txn); err != nil {
		return Transaction{}, SavingsAccount{}, err
	}
	txn.ID = r.id()
	r.transactions = append(r.transactions, txn)
	r.accounts[acct.ID] = &acct
	return txn, acct, nil
}

func (r *memoryLedgerRepo) ListTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	var out []Transaction
	for _, t := range r.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func newTestLedger(t *testing.T) (*Service, *memoryLedgerRepo, Loan) {
	t.Helper()
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil, nil)

	lt, err := svc.CreateLoanType(ctx, LoanType{Name: "Tablebanking", InterestRate: d("10"), RepaymentPeriodMonths: 6})
	require.NoError(t, err)

	loan, err := svc.Apply(ctx, Loan{LoanTypeID: lt.ID, MemberID: 1, Principal: d("10000")})
	require.NoError(t, err)
	return svc, repo, loan
}

func TestApplyLoanComputesLedger(t *testing.T) {
	_, _, loan := newTestLedger(t)
	require.Equal(t, StatusPending, loan.Status)
	require.True(t, loan.TotalInterest.Equal(d("1000")))
	require.True(t, loan.TotalAmount.Equal(d("11000")))
	require.True(t, loan.Balance.Equal(d("11000")))
	require.True(t, loan.AmountPaid.IsZero())
}

func TestLoanLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)

	approved, err := svc.Approve(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovalDate)

	disbursed, err := svc.Disburse(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDisbursed, disbursed.Status)
	require.NotNil(t, disbursed.DisbursementDate)
	require.NotNil(t, disbursed.DueDate)
}

func TestApproveRequiresPending(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)

	_, err := svc.Approve(ctx, loan.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, loan.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDisburseRequiresApproved(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)

	_, err := svc.Disburse(ctx, loan.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPostRepaymentRequiresActiveLoan(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)

	// PENDING loan refuses repayments.
	_, _, err := svc.PostRepayment(ctx, Repayment{LoanID: loan.ID, Amount: d("100")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestPostRepaymentCompletesLoan(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)
	_, err := svc.Approve(ctx, loan.ID)
	require.NoError(t, err)
	_, err = svc.Disburse(ctx, loan.ID)
	require.NoError(t, err)

	_, updated, err := svc.PostRepayment(ctx, Repayment{LoanID: loan.ID, Amount: d("4000")})
	require.NoError(t, err)
	require.Equal(t, StatusRepaying, updated.Status)
	require.True(t, updated.Balance.Equal(d("7000")))

	rep, updated, err := svc.PostRepayment(ctx, Repayment{LoanID: loan.ID, Amount: d("7000")})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)
	require.True(t, updated.Balance.IsZero())
	require.NotNil(t, updated.CompletionDate)
	require.NotEmpty(t, rep.ReceiptNumber, "receipt number is generated when absent")

	// The completed loan no longer accepts repayments.
	_, _, err = svc.PostRepayment(ctx, Repayment{LoanID: loan.ID, Amount: d("1")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDefaultedLoanIsAbsorbing(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)
	_, err := svc.Approve(ctx, loan.ID)
	require.NoError(t, err)
	_, err = svc.Disburse(ctx, loan.ID)
	require.NoError(t, err)

	defaulted, err := svc.MarkDefaulted(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDefaulted, defaulted.Status)

	_, _, err = svc.PostRepayment(ctx, Repayment{LoanID: loan.ID, Amount: d("100")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdatePrincipalRecomputesLedger(t *testing.T) {
	ctx := context.Background()
	svc, _, loan := newTestLedger(t)
	_, err := svc.Approve(ctx, loan.ID)
	require.NoError(t, err)
	_, err = svc.Disburse(ctx, loan.ID)
	require.NoError(t, err)
	_, _, err = svc.PostRepayment(ctx, Repayment{LoanID: loan.ID, Amount: d("5000")})
	require.NoError(t, err)

	// Lowering the principal below what was already paid completes the loan
	// with no further repayment.
	updated, err := svc.UpdatePrincipal(ctx, loan.ID, d("4000"))
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)
	require.True(t, updated.TotalAmount.Equal(d("4400")))
	require.True(t, updated.Balance.Equal(d("-600")))
}

func TestSavingsDepositAndWithdraw(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryLedgerRepo()
	svc := NewService(repo, nil, nil)

	p, err := svc.CreateSavingsProduct(ctx, SavingsProduct{Name: "Ordinary Savings"})
	require.NoError(t, err)

	memberID := int64(1)
	acct, err := svc.OpenAccount(ctx, SavingsAccount{ProductID: p.ID, MemberID: &memberID})
	require.NoError(t, err)
	require.NotEmpty(t, acct.AccountNumber)
	require.True(t, acct.CurrentBalance.IsZero())

	txn, acct, err := svc.Deposit(ctx, acct.ID, d("1500"), "weekly contribution")
	require.NoError(t, err)
	require.Equal(t, TxDeposit, txn.Type)
	require.True(t, acct.CurrentBalance.Equal(d("1500")))
	require.NotEmpty(t, txn.ReferenceNumber)

	_, acct, err = svc.Withdraw(ctx, acct.ID, d("500"), "school fees")
	require.NoError(t, err)
	require.True(t, acct.CurrentBalance.Equal(d("1000")))

	_, _, err = svc.Withdraw(ctx, acct.ID, d("2000"), "too much")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestOpenAccountRequiresSingleHolder(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo(), nil, nil)
	memberID, groupID := int64(1), int64(2)

	_, err := svc.OpenAccount(ctx, SavingsAccount{ProductID: 1})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.OpenAccount(ctx, SavingsAccount{ProductID: 1, MemberID: &memberID, GroupID: &groupID})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryLedgerRepo(), nil, nil)
	_, _, err := svc.Deposit(ctx, 1, decimal.Zero, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}
