package reports

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

// Filters narrows report listings by officer and date range.
type Filters struct {
	Page   int
	Limit  int
	POName string
	From   time.Time
	To     time.Time
}

// Repository defines data access for field officer reports.
type Repository interface {
	List(ctx context.Context, filters Filters) ([]FieldOfficerReport, int, error)
	Get(ctx context.Context, id int64) (FieldOfficerReport, error)
	Create(ctx context.Context, r FieldOfficerReport) (FieldOfficerReport, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const reportColumns = `id, report_date, po_name, group_names, visit_venues, visit_times,
	total_groups, total_attendees, COALESCE(admin_for_group, ''), COALESCE(project_registration, ''),
	COALESCE(mem_reg, ''), long_term_loan, short_term_loan, savings_before, total_loan_repaid,
	loan_principle, loan_interest, short_term_loan_repaid, savings_this_month, welfare_for_group,
	project, fines_and_charges, total_savings, group_loans, project_loans, total_money, created_at`

func scanReport(row pgx.Row) (FieldOfficerReport, error) {
	var r FieldOfficerReport
	err := row.Scan(&r.ID, &r.ReportDate, &r.POName, &r.GroupNames, &r.VisitVenues, &r.VisitTimes,
		&r.TotalGroups, &r.TotalAttendees, &r.AdminForGroup, &r.ProjectRegistration, &r.MemReg,
		&r.LongTermLoan, &r.ShortTermLoan, &r.SavingsBefore, &r.TotalLoanRepaid,
		&r.LoanPrinciple, &r.LoanInterest, &r.ShortTermLoanRepaid, &r.SavingsThisMonth,
		&r.WelfareForGroup, &r.Project, &r.FinesAndCharges, &r.TotalSavings,
		&r.GroupLoans, &r.ProjectLoans, &r.TotalMoney, &r.CreatedAt)
	return r, err
}

func (r *repository) List(ctx context.Context, filters Filters) ([]FieldOfficerReport, int, error) {
	query := `SELECT ` + reportColumns + ` FROM field_officer_reports WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM field_officer_reports WHERE 1=1`
	args := []interface{}{}

	if filters.POName != "" {
		args = append(args, "%"+filters.POName+"%")
		cond := ` AND po_name ILIKE $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		cond := ` AND report_date >= $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		cond := ` AND report_date <= $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY report_date DESC, id DESC`
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

	var out []FieldOfficerReport
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rep)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (FieldOfficerReport, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reportColumns+` FROM field_officer_reports WHERE id = $1`, id)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FieldOfficerReport{}, httpx.ErrNotFound
	}
	return rep, err
}

func (r *repository) Create(ctx context.Context, rep FieldOfficerReport) (FieldOfficerReport, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO field_officer_reports (report_date, po_name, group_names, visit_venues, visit_times,
			total_groups, total_attendees, admin_for_group, project_registration, mem_reg,
			long_term_loan, short_term_loan, savings_before, total_loan_repaid, loan_principle,
			loan_interest, short_term_loan_repaid, savings_this_month, welfare_for_group, project,
			fines_and_charges, total_savings, group_loans, project_loans, total_money)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''),
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		 RETURNING id, created_at`,
		rep.ReportDate, rep.POName, rep.GroupNames, rep.VisitVenues, rep.VisitTimes,
		rep.TotalGroups, rep.TotalAttendees, rep.AdminForGroup, rep.ProjectRegistration, rep.MemReg,
		rep.LongTermLoan, rep.ShortTermLoan, rep.SavingsBefore, rep.TotalLoanRepaid, rep.LoanPrinciple,
		rep.LoanInterest, rep.ShortTermLoanRepaid, rep.SavingsThisMonth, rep.WelfareForGroup, rep.Project,
		rep.FinesAndCharges, rep.TotalSavings, rep.GroupLoans, rep.ProjectLoans, rep.TotalMoney,
	).Scan(&rep.ID, &rep.CreatedAt)
	return rep, err
}
