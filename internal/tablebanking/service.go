package tablebanking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// AuditPort records ledger mutations for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator bumps derived read models after a ledger write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service handles loan ledger and savings business logic.
type Service struct {
	repo  Repository
	audit AuditPort
	cache CacheInvalidator
	now   func() time.Time
}

// NewService builds a Service instance. The audit and cache ports may be nil.
func NewService(repo Repository, audit AuditPort, cache CacheInvalidator) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// recordAudit is best effort. Audit failures never block a ledger write.
func (s *Service) recordAudit(ctx context.Context, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "loan",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
		At:       s.now(),
	})
}

// LoanTypes lists the configured loan products.
func (s *Service) LoanTypes(ctx context.Context) ([]LoanType, error) {
	return s.repo.ListLoanTypes(ctx)
}

// CreateLoanType registers a new loan product.
func (s *Service) CreateLoanType(ctx context.Context, lt LoanType) (LoanType, error) {
	if lt.Name == "" {
		return LoanType{}, fmt.Errorf("%w: loan type name required", httpx.ErrValidation)
	}
	if lt.InterestRate.IsNegative() {
		return LoanType{}, fmt.Errorf("%w: interest rate cannot be negative", httpx.ErrValidation)
	}
	if lt.RepaymentPeriodMonths <= 0 {
		return LoanType{}, fmt.Errorf("%w: repayment period must be positive", httpx.ErrValidation)
	}
	lt.IsActive = true
	return s.repo.CreateLoanType(ctx, lt)
}

// Loans lists loans matching the filters.
func (s *Service) Loans(ctx context.Context, filters LoanFilters) ([]Loan, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown loan status %q", httpx.ErrValidation, filters.Status)
	}
	return s.repo.ListLoans(ctx, filters)
}

// Loan returns one loan by ID.
func (s *Service) Loan(ctx context.Context, id int64) (Loan, error) {
	if id <= 0 {
		return Loan{}, fmt.Errorf("%w: invalid loan ID", httpx.ErrValidation)
	}
	return s.repo.GetLoan(ctx, id)
}

// Apply creates a PENDING loan application. The interest rate is taken from
// the loan type and the ledger figures are computed up front.
func (s *Service) Apply(ctx context.Context, loan Loan) (Loan, error) {
	if loan.MemberID <= 0 {
		return Loan{}, fmt.Errorf("%w: member required", httpx.ErrValidation)
	}
	if !loan.Principal.IsPositive() {
		return Loan{}, fmt.Errorf("%w: principal must be positive", httpx.ErrValidation)
	}
	lt, err := s.repo.GetLoanType(ctx, loan.LoanTypeID)
	if err != nil {
		return Loan{}, fmt.Errorf("loan type: %w", err)
	}
	if !lt.IsActive {
		return Loan{}, fmt.Errorf("%w: loan type %q is inactive", httpx.ErrValidation, lt.Name)
	}

	loan.InterestRate = lt.InterestRate
	loan.AmountPaid = decimal.Zero
	loan.TotalInterest, loan.TotalAmount, loan.Balance = ComputeTotals(loan.Principal, loan.InterestRate, loan.AmountPaid)
	loan.Status = StatusPending
	if loan.ApplicationDate.IsZero() {
		loan.ApplicationDate = s.now()
	}
	return s.repo.CreateLoan(ctx, loan)
}

// Approve moves a pending loan to APPROVED.
func (s *Service) Approve(ctx context.Context, id int64) (Loan, error) {
	loan, err := s.transition(ctx, id, StatusPending, func(loan *Loan) {
		now := s.now()
		loan.Status = StatusApproved
		loan.ApprovalDate = &now
	})
	if err == nil {
		s.recordAudit(ctx, "loan.approve", id, nil)
	}
	return loan, err
}

// Reject moves a pending loan to REJECTED. Rejection is final.
func (s *Service) Reject(ctx context.Context, id int64) (Loan, error) {
	loan, err := s.transition(ctx, id, StatusPending, func(loan *Loan) {
		loan.Status = StatusRejected
	})
	if err == nil {
		s.recordAudit(ctx, "loan.reject", id, nil)
	}
	return loan, err
}

// Disburse moves an approved loan to DISBURSED and sets the due date from the
// loan type's repayment period.
func (s *Service) Disburse(ctx context.Context, id int64) (Loan, error) {
	loan, err := s.Loan(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if loan.Status != StatusApproved {
		return Loan{}, fmt.Errorf("%w: loan %d is %s, expected %s", httpx.ErrValidation, id, loan.Status, StatusApproved)
	}
	lt, err := s.repo.GetLoanType(ctx, loan.LoanTypeID)
	if err != nil {
		return Loan{}, fmt.Errorf("loan type: %w", err)
	}

	now := s.now()
	due := now.AddDate(0, lt.RepaymentPeriodMonths, 0)
	loan.Status = StatusDisbursed
	loan.DisbursementDate = &now
	loan.DueDate = &due
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return Loan{}, err
	}
	s.recordAudit(ctx, "loan.disburse", id, map[string]any{"due_date": due.Format("2006-01-02")})
	s.invalidateCache(ctx)
	return loan, nil
}

// MarkDefaulted moves a disbursed or repaying loan to DEFAULTED. The status is
// absorbing: no later repayment or balance change leaves it.
func (s *Service) MarkDefaulted(ctx context.Context, id int64) (Loan, error) {
	loan, err := s.Loan(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if loan.Status != StatusDisbursed && loan.Status != StatusRepaying {
		return Loan{}, fmt.Errorf("%w: loan %d is %s, only active loans can default", httpx.ErrValidation, id, loan.Status)
	}
	loan.Status = StatusDefaulted
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return Loan{}, err
	}
	s.recordAudit(ctx, "loan.default", id, map[string]any{"balance": loan.Balance.String()})
	s.invalidateCache(ctx)
	return loan, nil
}

func (s *Service) transition(ctx context.Context, id int64, from LoanStatus, mutate func(*Loan)) (Loan, error) {
	loan, err := s.Loan(ctx, id)
	if err != nil {
		return Loan{}, err
	}
	if loan.Status != from {
		return Loan{}, fmt.Errorf("%w: loan %d is %s, expected %s", httpx.ErrValidation, id, loan.Status, from)
	}
	mutate(&loan)
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return Loan{}, err
	}
	return loan, nil
}

// UpdatePrincipal edits a loan's principal and recomputes the ledger from the
// current amount_paid. The balance rule then runs, so lowering the principal
// below the amount already paid completes the loan.
func (s *Service) UpdatePrincipal(ctx context.Context, id int64, principal decimal.Decimal) (Loan, error) {
	if !principal.IsPositive() {
		return Loan{}, fmt.Errorf("%w: principal must be positive", httpx.ErrValidation)
	}
	loan, err := s.Loan(ctx, id)
	if err != nil {
		return Loan{}, err
	}

	loan.Principal = principal
	loan.TotalInterest, loan.TotalAmount, loan.Balance = ComputeTotals(loan.Principal, loan.InterestRate, loan.AmountPaid)
	status, completion := ApplyBalanceRule(loan.Status, loan.Balance, s.now())
	loan.Status = status
	if completion != nil {
		loan.CompletionDate = completion
	}
	if err := s.repo.UpdateLoan(ctx, loan); err != nil {
		return Loan{}, err
	}
	s.recordAudit(ctx, "loan.update_principal", id, map[string]any{"principal": principal.String()})
	s.invalidateCache(ctx)
	return loan, nil
}

// PostRepayment records money received against a loan. This is the only path
// that changes amount_paid. Validation of the amount and the loan's status
// happens on the locked row inside the repository transaction.
func (s *Service) PostRepayment(ctx context.Context, rep Repayment) (Repayment, Loan, error) {
	if rep.LoanID <= 0 {
		return Repayment{}, Loan{}, fmt.Errorf("%w: invalid loan ID", httpx.ErrValidation)
	}
	if rep.Amount.LessThanOrEqual(decimal.Zero) {
		return Repayment{}, Loan{}, fmt.Errorf("%w: repayment amount must be positive", httpx.ErrValidation)
	}
	if rep.PaymentDate.IsZero() {
		rep.PaymentDate = s.now()
	}
	if rep.ReceiptNumber == "" {
		rep.ReceiptNumber = uuid.NewString()
	}
	posted, loan, err := s.repo.PostRepayment(ctx, rep)
	if err == nil {
		s.recordAudit(ctx, "loan.repayment", rep.LoanID, map[string]any{"amount": rep.Amount.String(), "receipt": posted.ReceiptNumber})
		s.invalidateCache(ctx)
	}
	return posted, loan, err
}

// Repayments lists repayments for a loan in payment order.
func (s *Service) Repayments(ctx context.Context, loanID int64) ([]Repayment, error) {
	if loanID <= 0 {
		return nil, fmt.Errorf("%w: invalid loan ID", httpx.ErrValidation)
	}
	return s.repo.ListRepayments(ctx, loanID)
}

// SavingsProducts lists savings schemes.
func (s *Service) SavingsProducts(ctx context.Context) ([]SavingsProduct, error) {
	return s.repo.ListSavingsProducts(ctx)
}

// CreateSavingsProduct registers a savings scheme.
func (s *Service) CreateSavingsProduct(ctx context.Context, p SavingsProduct) (SavingsProduct, error) {
	if p.Name == "" {
		return SavingsProduct{}, fmt.Errorf("%w: product name required", httpx.ErrValidation)
	}
	p.IsActive = true
	return s.repo.CreateSavingsProduct(ctx, p)
}

// Account returns one savings account.
func (s *Service) Account(ctx context.Context, id int64) (SavingsAccount, error) {
	if id <= 0 {
		return SavingsAccount{}, fmt.Errorf("%w: invalid account ID", httpx.ErrValidation)
	}
	return s.repo.GetAccount(ctx, id)
}

// OpenAccount opens a savings account for a member or a group.
func (s *Service) OpenAccount(ctx context.Context, acct SavingsAccount) (SavingsAccount, error) {
	if acct.ProductID <= 0 {
		return SavingsAccount{}, fmt.Errorf("%w: product required", httpx.ErrValidation)
	}
	if (acct.MemberID == nil) == (acct.GroupID == nil) {
		return SavingsAccount{}, fmt.Errorf("%w: account holder must be exactly one of member or group", httpx.ErrValidation)
	}
	if acct.AccountNumber == "" {
		acct.AccountNumber = uuid.NewString()
	}
	acct.CurrentBalance = decimal.Zero
	return s.repo.OpenAccount(ctx, acct)
}

// Deposit credits a savings account.
func (s *Service) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (Transaction, SavingsAccount, error) {
	return s.postTransaction(ctx, accountID, TxDeposit, amount, description)
}

// Withdraw debits a savings account. Withdrawing beyond the balance is a
// validation error.
func (s *Service) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (Transaction, SavingsAccount, error) {
	return s.postTransaction(ctx, accountID, TxWithdrawal, amount, description)
}

func (s *Service) postTransaction(ctx context.Context, accountID int64, typ TransactionType, amount decimal.Decimal, description string) (Transaction, SavingsAccount, error) {
	if accountID <= 0 {
		return Transaction{}, SavingsAccount{}, fmt.Errorf("%w: invalid account ID", httpx.ErrValidation)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return Transaction{}, SavingsAccount{}, fmt.Errorf("%w: transaction amount must be positive", httpx.ErrValidation)
	}
	return s.repo.PostTransaction(ctx, Transaction{
		AccountID:       accountID,
		Type:            typ,
		Amount:          amount,
		ReferenceNumber: uuid.NewString(),
		Description:     description,
	})
}

// Transactions lists an account's movements in chronological order.
func (s *Service) Transactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	if accountID <= 0 {
		return nil, fmt.Errorf("%w: invalid account ID", httpx.ErrValidation)
	}
	return s.repo.ListTransactions(ctx, accountID)
}
