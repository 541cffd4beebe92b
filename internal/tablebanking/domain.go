// Package tablebanking implements the loan ledger and savings accounts.
package tablebanking

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

// Loan lifecycle states.
const (
	StatusPending   LoanStatus = "PENDING"
	StatusApproved  LoanStatus = "APPROVED"
	StatusDisbursed LoanStatus = "DISBURSED"
	StatusRepaying  LoanStatus = "REPAYING"
	StatusCompleted LoanStatus = "COMPLETED"
	StatusDefaulted LoanStatus = "DEFAULTED"
	StatusRejected  LoanStatus = "REJECTED"
)

// Valid reports whether the status code is known.
func (s LoanStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDisbursed, StatusRepaying,
		StatusCompleted, StatusDefaulted, StatusRejected:
		return true
	}
	return false
}

// LoanType is a loan product with its interest rate and repayment period.
type LoanType struct {
	ID                    int64           `json:"id"`
	Name                  string          `json:"name"`
	InterestRate          decimal.Decimal `json:"interest_rate"`
	RepaymentPeriodMonths int             `json:"repayment_period_months"`
	Description           string          `json:"description,omitempty"`
	IsActive              bool            `json:"is_active"`
	CreatedAt             time.Time       `json:"created_at"`
}

// Loan is a tablebanking loan. TotalInterest, TotalAmount and Balance are
// derived from Principal, InterestRate and AmountPaid and recomputed on every
// write.
type Loan struct {
	ID               int64           `json:"id"`
	LoanTypeID       int64           `json:"loan_type_id"`
	MemberID         int64           `json:"member_id"`
	GroupID          *int64          `json:"group_id,omitempty"`
	MembershipID     *int64          `json:"membership_id,omitempty"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	TotalInterest    decimal.Decimal `json:"total_interest"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	Balance          decimal.Decimal `json:"balance"`
	Purpose          string          `json:"purpose,omitempty"`
	Status           LoanStatus      `json:"status"`
	ApplicationDate  time.Time       `json:"application_date"`
	ApprovalDate     *time.Time      `json:"approval_date,omitempty"`
	DisbursementDate *time.Time      `json:"disbursement_date,omitempty"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	CompletionDate   *time.Time      `json:"completion_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Repayment is an immutable record of money received against a loan. Rows are
// never updated after insert, so each one increments the loan's amount_paid
// exactly once.
type Repayment struct {
	ID               int64           `json:"id"`
	LoanID           int64           `json:"loan_id"`
	Amount           decimal.Decimal `json:"amount"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	PaymentDate      time.Time       `json:"payment_date"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	ReceiptNumber    string          `json:"receipt_number"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionType classifies a savings account movement.
type TransactionType string

// Savings transaction types.
const (
	TxDeposit          TransactionType = "DEPOSIT"
	TxWithdrawal       TransactionType = "WITHDRAWAL"
	TxLoanDisbursement TransactionType = "LOAN_DISBURSEMENT"
	TxLoanRepayment    TransactionType = "LOAN_REPAYMENT"
	TxInterest         TransactionType = "INTEREST"
	TxFee              TransactionType = "FEE"
)

// Valid reports whether the transaction type is known.
func (t TransactionType) Valid() bool {
	switch t {
	case TxDeposit, TxWithdrawal, TxLoanDisbursement, TxLoanRepayment, TxInterest, TxFee:
		return true
	}
	return false
}

// SavingsProduct is a savings scheme (ordinary savings, welfare, project).
type SavingsProduct struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Description  string          `json:"description,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SavingsAccount belongs to either a member or a group, never both.
type SavingsAccount struct {
	ID             int64           `json:"id"`
	ProductID      int64           `json:"product_id"`
	MemberID       *int64          `json:"member_id,omitempty"`
	GroupID        *int64          `json:"group_id,omitempty"`
	AccountNumber  string          `json:"account_number"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	OpenedAt       time.Time       `json:"opened_at"`
}

// Transaction is an immutable savings account movement. BalanceAfter snapshots
// the account balance at commit time.
type Transaction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"account_id"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	ReferenceNumber string          `json:"reference_number"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
