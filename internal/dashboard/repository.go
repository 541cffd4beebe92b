package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository computes the summary from the base tables.
type Repository interface {
	Summary(ctx context.Context) (Summary, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Summary(ctx context.Context) (Summary, error) {
	var s Summary

	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM members WHERE is_active),
			(SELECT COUNT(*) FROM groups WHERE is_active),
			(SELECT COUNT(*) FROM loans WHERE status IN ('DISBURSED', 'REPAYING')),
			(SELECT COALESCE(SUM(balance), 0) FROM loans WHERE status IN ('DISBURSED', 'REPAYING')),
			(SELECT COALESCE(SUM(amount), 0) FROM loan_repayments
				WHERE payment_date >= date_trunc('month', NOW())),
			(SELECT COALESCE(SUM(total_value), 0) FROM agriculture_collections
				WHERE collection_date >= date_trunc('month', NOW()))`,
	).Scan(&s.TotalMembers, &s.TotalGroups, &s.ActiveLoans,
		&s.OutstandingBalance, &s.RepaymentsThisMonth, &s.CollectionsThisMonth)
	if err != nil {
		return Summary{}, err
	}
	s.GeneratedAt = time.Now()
	return s, nil
}
