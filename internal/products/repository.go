package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ukombozini/backoffice/internal/platform/db"
	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Repository defines data access for the product catalogue and projects.
type Repository interface {
	ListProducts(ctx context.Context, filters shared.ListFilters) ([]FinancialProduct, int, error)
	GetProduct(ctx context.Context, id int64) (FinancialProduct, error)
	CreateProduct(ctx context.Context, p FinancialProduct) (FinancialProduct, error)
	DeactivateProduct(ctx context.Context, id int64) error

	ListApplications(ctx context.Context, productID int64) ([]Application, error)
	GetApplication(ctx context.Context, id int64) (Application, error)
	CreateApplication(ctx context.Context, a Application) (Application, error)
	UpdateApplication(ctx context.Context, a Application) error

	ListGroupProjects(ctx context.Context, groupID int64) ([]GroupProject, error)
	GetGroupProject(ctx context.Context, id int64) (GroupProject, error)
	CreateGroupProject(ctx context.Context, p GroupProject) (GroupProject, error)
	UpdateGroupProject(ctx context.Context, p GroupProject) error
	AddExpense(ctx context.Context, e Expense) (Expense, GroupProject, error)
	ListExpenses(ctx context.Context, projectID int64) ([]Expense, error)

	ListIndividualProjects(ctx context.Context, memberID int64) ([]IndividualProject, error)
	GetIndividualProject(ctx context.Context, id int64) (IndividualProject, error)
	CreateIndividualProject(ctx context.Context, p IndividualProject) (IndividualProject, error)
	UpdateIndividualProject(ctx context.Context, p IndividualProject) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, product_type, code, COALESCE(description, ''),
	COALESCE(terms_and_conditions, ''), launch_date, is_active, interest_rate,
	minimum_amount, maximum_amount, application_fee, processing_fee,
	individual_eligible, group_eligible, minimum_membership_months, created_at, updated_at`

func scanProduct(row pgx.Row) (FinancialProduct, error) {
	var p FinancialProduct
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.Code, &p.Description, &p.TermsAndConditions,
		&p.LaunchDate, &p.IsActive, &p.InterestRate, &p.MinimumAmount, &p.MaximumAmount,
		&p.ApplicationFee, &p.ProcessingFee, &p.IndividualEligible, &p.GroupEligible,
		&p.MinimumMembershipMonths, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) ListProducts(ctx context.Context, filters shared.ListFilters) ([]FinancialProduct, int, error) {
	query := `SELECT ` + productColumns + ` FROM financial_products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM financial_products WHERE 1=1`
	args := []interface{}{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $1 OR code ILIKE $1)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name`
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

	var out []FinancialProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) GetProduct(ctx context.Context, id int64) (FinancialProduct, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM financial_products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FinancialProduct{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) CreateProduct(ctx context.Context, p FinancialProduct) (FinancialProduct, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO financial_products (name, product_type, code, description, terms_and_conditions,
			launch_date, is_active, interest_rate, minimum_amount, maximum_amount,
			application_fee, processing_fee, individual_eligible, group_eligible, minimum_membership_months)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Type, p.Code, p.Description, p.TermsAndConditions, p.LaunchDate, p.IsActive,
		p.InterestRate, p.MinimumAmount, p.MaximumAmount, p.ApplicationFee, p.ProcessingFee,
		p.IndividualEligible, p.GroupEligible, p.MinimumMembershipMonths,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return FinancialProduct{}, httpx.ErrDuplicate
	}
	return p, err
}

func (r *repository) DeactivateProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE financial_products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

const applicationColumns = `id, product_id, application_date, member_id, group_id, amount_requested,
	COALESCE(purpose, ''), term_months, status, COALESCE(reviewed_by, ''), review_date,
	approved_amount, COALESCE(notes, ''), COALESCE(rejection_reason, ''), field_officer_id, created_at`

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(&a.ID, &a.ProductID, &a.ApplicationDate, &a.MemberID, &a.GroupID,
		&a.AmountRequested, &a.Purpose, &a.TermMonths, &a.Status, &a.ReviewedBy, &a.ReviewDate,
		&a.ApprovedAmount, &a.Notes, &a.RejectionReason, &a.FieldOfficerID, &a.CreatedAt)
	return a, err
}

func (r *repository) ListApplications(ctx context.Context, productID int64) ([]Application, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicationColumns+` FROM product_applications WHERE product_id = $1 ORDER BY application_date DESC, id DESC`,
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) GetApplication(ctx context.Context, id int64) (Application, error) {
	row := r.db.QueryRow(ctx, `SELECT `+applicationColumns+` FROM product_applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Application{}, httpx.ErrNotFound
	}
	return a, err
}

func (r *repository) CreateApplication(ctx context.Context, a Application) (Application, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO product_applications (product_id, application_date, member_id, group_id,
			amount_requested, purpose, term_months, status, field_officer_id, notes)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, NULLIF($10, ''))
		 RETURNING id, created_at`,
		a.ProductID, a.ApplicationDate, a.MemberID, a.GroupID, a.AmountRequested,
		a.Purpose, a.TermMonths, a.Status, a.FieldOfficerID, a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	return a, err
}

func (r *repository) UpdateApplication(ctx context.Context, a Application) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE product_applications SET status = $1, reviewed_by = NULLIF($2, ''), review_date = $3,
			approved_amount = $4, rejection_reason = NULLIF($5, ''), notes = NULLIF($6, '')
		 WHERE id = $7`,
		a.Status, a.ReviewedBy, a.ReviewDate, a.ApprovedAmount, a.RejectionReason, a.Notes, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

const groupProjectColumns = `id, group_id, title, COALESCE(description, ''), COALESCE(objective, ''),
	proposal_date, approval_date, start_date, expected_end_date, actual_end_date,
	total_budget, group_contribution, ukombozini_contribution, total_spent, status,
	COALESCE(approved_by, ''), COALESCE(location, ''), estimated_beneficiaries, created_at, updated_at`

func scanGroupProject(row pgx.Row) (GroupProject, error) {
	var p GroupProject
	err := row.Scan(&p.ID, &p.GroupID, &p.Title, &p.Description, &p.Objective, &p.ProposalDate,
		&p.ApprovalDate, &p.StartDate, &p.ExpectedEndDate, &p.ActualEndDate, &p.TotalBudget,
		&p.GroupContribution, &p.UkomboziniContribution, &p.TotalSpent, &p.Status, &p.ApprovedBy,
		&p.Location, &p.EstimatedBeneficiaries, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) ListGroupProjects(ctx context.Context, groupID int64) ([]GroupProject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+groupProjectColumns+` FROM group_projects WHERE group_id = $1 ORDER BY proposal_date DESC, id DESC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupProject
	for rows.Next() {
		p, err := scanGroupProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) GetGroupProject(ctx context.Context, id int64) (GroupProject, error) {
	row := r.db.QueryRow(ctx, `SELECT `+groupProjectColumns+` FROM group_projects WHERE id = $1`, id)
	p, err := scanGroupProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return GroupProject{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) CreateGroupProject(ctx context.Context, p GroupProject) (GroupProject, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO group_projects (group_id, title, description, objective, proposal_date,
			total_budget, group_contribution, ukombozini_contribution, total_spent, status,
			location, estimated_beneficiaries)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, 0, $9, NULLIF($10, ''), $11)
		 RETURNING id, created_at, updated_at`,
		p.GroupID, p.Title, p.Description, p.Objective, p.ProposalDate, p.TotalBudget,
		p.GroupContribution, p.UkomboziniContribution, p.Status, p.Location, p.EstimatedBeneficiaries,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) UpdateGroupProject(ctx context.Context, p GroupProject) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE group_projects SET status = $1, approval_date = $2, start_date = $3,
			expected_end_date = $4, actual_end_date = $5, approved_by = NULLIF($6, ''), updated_at = NOW()
		 WHERE id = $7`,
		p.Status, p.ApprovalDate, p.StartDate, p.ExpectedEndDate, p.ActualEndDate, p.ApprovedBy, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// AddExpense inserts the expense and recomputes the project's total spent
// from the expense rows, all against a locked project row so concurrent
// postings cannot lose an update.
func (r *repository) AddExpense(ctx context.Context, e Expense) (Expense, GroupProject, error) {
	var project GroupProject
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+groupProjectColumns+` FROM group_projects WHERE id = $1 FOR UPDATE`, e.ProjectID)
		var err error
		project, err = scanGroupProject(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.QueryRow(ctx,
			`INSERT INTO project_expenses (project_id, expense_date, amount, description, category,
				receipt_number, vendor, approved_by, verified_by, has_receipt)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10)
			 RETURNING id, created_at`,
			e.ProjectID, e.ExpenseDate, e.Amount, e.Description, e.Category, e.ReceiptNumber,
			e.Vendor, e.ApprovedBy, e.VerifiedBy, e.HasReceipt,
		).Scan(&e.ID, &e.CreatedAt); err != nil {
			return err
		}

		return tx.QueryRow(ctx,
			`UPDATE group_projects
			 SET total_spent = (SELECT COALESCE(SUM(amount), 0) FROM project_expenses WHERE project_id = $1),
				 updated_at = NOW()
			 WHERE id = $1
			 RETURNING total_spent`,
			e.ProjectID).Scan(&project.TotalSpent)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Expense{}, GroupProject{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Expense{}, GroupProject{}, err
	}
	return e, project, nil
}

func (r *repository) ListExpenses(ctx context.Context, projectID int64) ([]Expense, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, expense_date, amount, COALESCE(description, ''), category,
			COALESCE(receipt_number, ''), vendor, approved_by, COALESCE(verified_by, ''), has_receipt, created_at
		 FROM project_expenses WHERE project_id = $1 ORDER BY expense_date, id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.ExpenseDate, &e.Amount, &e.Description,
			&e.Category, &e.ReceiptNumber, &e.Vendor, &e.ApprovedBy, &e.VerifiedBy, &e.HasReceipt, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const individualProjectColumns = `id, member_id, title, COALESCE(description, ''), project_type,
	proposal_date, approval_date, start_date, expected_end_date, actual_end_date,
	total_budget, member_contribution, ukombozini_contribution, status,
	COALESCE(approved_by, ''), field_officer_id, COALESCE(location, ''),
	COALESCE(expected_impact, ''), created_at, updated_at`

func scanIndividualProject(row pgx.Row) (IndividualProject, error) {
	var p IndividualProject
	err := row.Scan(&p.ID, &p.MemberID, &p.Title, &p.Description, &p.ProjectType, &p.ProposalDate,
		&p.ApprovalDate, &p.StartDate, &p.ExpectedEndDate, &p.ActualEndDate, &p.TotalBudget,
		&p.MemberContribution, &p.UkomboziniContribution, &p.Status, &p.ApprovedBy,
		&p.FieldOfficerID, &p.Location, &p.ExpectedImpact, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) ListIndividualProjects(ctx context.Context, memberID int64) ([]IndividualProject, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+individualProjectColumns+` FROM individual_projects WHERE member_id = $1 ORDER BY proposal_date DESC, id DESC`,
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndividualProject
	for rows.Next() {
		p, err := scanIndividualProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) GetIndividualProject(ctx context.Context, id int64) (IndividualProject, error) {
	row := r.db.QueryRow(ctx, `SELECT `+individualProjectColumns+` FROM individual_projects WHERE id = $1`, id)
	p, err := scanIndividualProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return IndividualProject{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) CreateIndividualProject(ctx context.Context, p IndividualProject) (IndividualProject, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO individual_projects (member_id, title, description, project_type, proposal_date,
			total_budget, member_contribution, ukombozini_contribution, status, field_officer_id,
			location, expected_impact)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''))
		 RETURNING id, created_at, updated_at`,
		p.MemberID, p.Title, p.Description, p.ProjectType, p.ProposalDate, p.TotalBudget,
		p.MemberContribution, p.UkomboziniContribution, p.Status, p.FieldOfficerID,
		p.Location, p.ExpectedImpact,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) UpdateIndividualProject(ctx context.Context, p IndividualProject) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE individual_projects SET status = $1, approval_date = $2, start_date = $3,
			expected_end_date = $4, actual_end_date = $5, approved_by = NULLIF($6, ''), updated_at = NOW()
		 WHERE id = $7`,
		p.Status, p.ApprovalDate, p.StartDate, p.ExpectedEndDate, p.ActualEndDate, p.ApprovedBy, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
