package tablebanking

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ukombozini/backoffice/internal/platform/db"
	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

// LoanFilters narrows loan listings.
type LoanFilters struct {
	Page     int
	Limit    int
	Status   LoanStatus
	MemberID int64
	GroupID  int64
}

// Repository defines data access for the loan ledger and savings accounts.
type Repository interface {
	ListLoanTypes(ctx context.Context) ([]LoanType, error)
	GetLoanType(ctx context.Context, id int64) (LoanType, error)
	CreateLoanType(ctx context.Context, lt LoanType) (LoanType, error)

	ListLoans(ctx context.Context, filters LoanFilters) ([]Loan, int, error)
	GetLoan(ctx context.Context, id int64) (Loan, error)
	CreateLoan(ctx context.Context, loan Loan) (Loan, error)
	UpdateLoan(ctx context.Context, loan Loan) error

	PostRepayment(ctx context.Context, rep Repayment) (Repayment, Loan, error)
	ListRepayments(ctx context.Context, loanID int64) ([]Repayment, error)

	ListSavingsProducts(ctx context.Context) ([]SavingsProduct, error)
	CreateSavingsProduct(ctx context.Context, p SavingsProduct) (SavingsProduct, error)
	GetAccount(ctx context.Context, id int64) (SavingsAccount, error)
	OpenAccount(ctx context.Context, acct SavingsAccount) (SavingsAccount, error)
	PostTransaction(ctx context.Context, txn Transaction) (Transaction, SavingsAccount, error)
	ListTransactions(ctx context.Context, accountID int64) ([]Transaction, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *repository) ListLoanTypes(ctx context.Context) ([]LoanType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, interest_rate, repayment_period_months, COALESCE(description, ''), is_active, created_at
		 FROM loan_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LoanType
	for rows.Next() {
		var lt LoanType
		if err := rows.Scan(&lt.ID, &lt.Name, &lt.InterestRate, &lt.RepaymentPeriodMonths,
			&lt.Description, &lt.IsActive, &lt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

func (r *repository) GetLoanType(ctx context.Context, id int64) (LoanType, error) {
	var lt LoanType
	err := r.db.QueryRow(ctx,
		`SELECT id, name, interest_rate, repayment_period_months, COALESCE(description, ''), is_active, created_at
		 FROM loan_types WHERE id = $1`, id,
	).Scan(&lt.ID, &lt.Name, &lt.InterestRate, &lt.RepaymentPeriodMonths, &lt.Description, &lt.IsActive, &lt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoanType{}, httpx.ErrNotFound
	}
	return lt, err
}

func (r *repository) CreateLoanType(ctx context.Context, lt LoanType) (LoanType, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO loan_types (name, interest_rate, repayment_period_months, description, is_active)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 RETURNING id, created_at`,
		lt.Name, lt.InterestRate, lt.RepaymentPeriodMonths, lt.Description, lt.IsActive,
	).Scan(&lt.ID, &lt.CreatedAt)
	if isUniqueViolation(err) {
		return LoanType{}, httpx.ErrDuplicate
	}
	return lt, err
}

const loanColumns = `id, loan_type_id, member_id, group_id, membership_id, principal, interest_rate,
	total_interest, total_amount, amount_paid, balance, COALESCE(purpose, ''), status,
	application_date, approval_date, disbursement_date, due_date, completion_date, created_at, updated_at`

func scanLoan(row pgx.Row) (Loan, error) {
	var l Loan
	err := row.Scan(&l.ID, &l.LoanTypeID, &l.MemberID, &l.GroupID, &l.MembershipID,
		&l.Principal, &l.InterestRate, &l.TotalInterest, &l.TotalAmount, &l.AmountPaid,
		&l.Balance, &l.Purpose, &l.Status, &l.ApplicationDate, &l.ApprovalDate,
		&l.DisbursementDate, &l.DueDate, &l.CompletionDate, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *repository) ListLoans(ctx context.Context, filters LoanFilters) ([]Loan, int, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM loans WHERE 1=1`
	args := []interface{}{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		cond := ` AND status = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if filters.MemberID > 0 {
		args = append(args, filters.MemberID)
		cond := ` AND member_id = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if filters.GroupID > 0 {
		args = append(args, filters.GroupID)
		cond := ` AND group_id = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY application_date DESC, id DESC`
	if filters.Limit > 0 {
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *repository) GetLoan(ctx context.Context, id int64) (Loan, error) {
	row := r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	l, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, httpx.ErrNotFound
	}
	return l, err
}

func (r *repository) CreateLoan(ctx context.Context, loan Loan) (Loan, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO loans (loan_type_id, member_id, group_id, membership_id, principal, interest_rate,
			total_interest, total_amount, amount_paid, balance, purpose, status, application_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13)
		 RETURNING id, created_at, updated_at`,
		loan.LoanTypeID, loan.MemberID, loan.GroupID, loan.MembershipID, loan.Principal,
		loan.InterestRate, loan.TotalInterest, loan.TotalAmount, loan.AmountPaid, loan.Balance,
		loan.Purpose, loan.Status, loan.ApplicationDate,
	).Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	return loan, err
}

func (r *repository) UpdateLoan(ctx context.Context, loan Loan) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE loans SET principal = $1, interest_rate = $2, total_interest = $3, total_amount = $4,
			amount_paid = $5, balance = $6, purpose = NULLIF($7, ''), status = $8,
			approval_date = $9, disbursement_date = $10, due_date = $11, completion_date = $12,
			updated_at = NOW()
		 WHERE id = $13`,
		loan.Principal, loan.InterestRate, loan.TotalInterest, loan.TotalAmount, loan.AmountPaid,
		loan.Balance, loan.Purpose, loan.Status, loan.ApprovalDate, loan.DisbursementDate,
		loan.DueDate, loan.CompletionDate, loan.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// PostRepayment inserts the repayment and folds it into the loan ledger in one
// transaction. The loan row is locked before the read so two concurrent
// postings serialize instead of both reading the same amount_paid.
func (r *repository) PostRepayment(ctx context.Context, rep Repayment) (Repayment, Loan, error) {
	var loan Loan
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, rep.LoanID)
		l, err := scanLoan(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := applyRepayment(&l, rep, time.Now()); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO loan_repayments (loan_id, amount, principal_portion, interest_portion,
				payment_date, payment_method, receipt_number)
			 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
			 RETURNING id, created_at`,
			rep.LoanID, rep.Amount, rep.PrincipalPortion, rep.InterestPortion,
			rep.PaymentDate, rep.PaymentMethod, rep.ReceiptNumber,
		).Scan(&rep.ID, &rep.CreatedAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE loans SET total_interest = $1, total_amount = $2, amount_paid = $3, balance = $4,
				status = $5, completion_date = $6, updated_at = NOW()
			 WHERE id = $7`,
			l.TotalInterest, l.TotalAmount, l.AmountPaid, l.Balance, l.Status, l.CompletionDate, l.ID)
		if err != nil {
			return err
		}
		loan = l
		return nil
	})
	if isUniqueViolation(err) {
		return Repayment{}, Loan{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Repayment{}, Loan{}, err
	}
	return rep, loan, nil
}

func (r *repository) ListRepayments(ctx context.Context, loanID int64) ([]Repayment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, loan_id, amount, principal_portion, interest_portion, payment_date,
			COALESCE(payment_method, ''), receipt_number, created_at
		 FROM loan_repayments WHERE loan_id = $1 ORDER BY payment_date, id`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Repayment
	for rows.Next() {
		var rep Repayment
		if err := rows.Scan(&rep.ID, &rep.LoanID, &rep.Amount, &rep.PrincipalPortion,
			&rep.InterestPortion, &rep.PaymentDate, &rep.PaymentMethod, &rep.ReceiptNumber,
			&rep.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *repository) ListSavingsProducts(ctx context.Context) ([]SavingsProduct, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, interest_rate, COALESCE(description, ''), is_active, created_at
		 FROM savings_products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavingsProduct
	for rows.Next() {
		var p SavingsProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.InterestRate, &p.Description, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) CreateSavingsProduct(ctx context.Context, p SavingsProduct) (SavingsProduct, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO savings_products (name, interest_rate, description, is_active)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING id, created_at`,
		p.Name, p.InterestRate, p.Description, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return SavingsProduct{}, httpx.ErrDuplicate
	}
	return p, err
}

const accountColumns = `id, product_id, member_id, group_id, account_number, current_balance, is_active, opened_at`

func scanAccount(row pgx.Row) (SavingsAccount, error) {
	var a SavingsAccount
	err := row.Scan(&a.ID, &a.ProductID, &a.MemberID, &a.GroupID, &a.AccountNumber,
		&a.CurrentBalance, &a.IsActive, &a.OpenedAt)
	return a, err
}

func (r *repository) GetAccount(ctx context.Context, id int64) (SavingsAccount, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM savings_accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return SavingsAccount{}, httpx.ErrNotFound
	}
	return a, err
}

func (r *repository) OpenAccount(ctx context.Context, acct SavingsAccount) (SavingsAccount, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO savings_accounts (product_id, member_id, group_id, account_number, current_balance, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, opened_at`,
		acct.ProductID, acct.MemberID, acct.GroupID, acct.AccountNumber, acct.CurrentBalance,
	).Scan(&acct.ID, &acct.OpenedAt)
	if isUniqueViolation(err) {
		return SavingsAccount{}, httpx.ErrDuplicate
	}
	acct.IsActive = true
	return acct, err
}

// PostTransaction applies the movement to the account balance in one
// transaction with the account row locked.
func (r *repository) PostTransaction(ctx context.Context, txn Transaction) (Transaction, SavingsAccount, error) {
	var account SavingsAccount
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM savings_accounts WHERE id = $1 FOR UPDATE`, txn.AccountID)
		a, err := scanAccount(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := applyTransaction(&a, &txn); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO savings_transactions (account_id, type, amount, balance_after, reference_number, description)
			 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			 RETURNING id, created_at`,
			txn.AccountID, txn.Type, txn.Amount, txn.BalanceAfter, txn.ReferenceNumber, txn.Description,
		).Scan(&txn.ID, &txn.CreatedAt); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE savings_accounts SET current_balance = $1 WHERE id = $2`,
			a.CurrentBalance, a.ID)
		if err != nil {
			return err
		}
		account = a
		return nil
	})
	if isUniqueViolation(err) {
		return Transaction{}, SavingsAccount{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Transaction{}, SavingsAccount{}, err
	}
	return txn, account, nil
}

func (r *repository) ListTransactions(ctx context.Context, accountID int64) ([]Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, type, amount, balance_after, reference_number, COALESCE(description, ''), created_at
		 FROM savings_transactions WHERE account_id = $1 ORDER BY created_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.BalanceAfter,
			&t.ReferenceNumber, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
