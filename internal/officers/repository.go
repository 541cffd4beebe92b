package officers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Repository defines data access for field officers.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]FieldOfficer, int, error)
	Get(ctx context.Context, id int64) (FieldOfficer, error)
	Create(ctx context.Context, officer FieldOfficer) (FieldOfficer, error)
	Update(ctx context.Context, id int64, officer FieldOfficer) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const officerColumns = `id, first_name, last_name, phone_number, id_number, location, assigned_area, date_joined, is_active, created_at, updated_at`

func scanOfficer(row pgx.Row) (FieldOfficer, error) {
	var o FieldOfficer
	err := row.Scan(&o.ID, &o.FirstName, &o.LastName, &o.PhoneNumber, &o.IDNumber, &o.Location, &o.AssignedArea, &o.DateJoined, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]FieldOfficer, int, error) {
	query := `SELECT ` + officerColumns + ` FROM field_officers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM field_officers WHERE 1=1`
	args := []interface{}{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (first_name ILIKE $1 OR last_name ILIKE $1 OR assigned_area ILIKE $1)`
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY last_name, first_name`
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

	var officers []FieldOfficer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, 0, err
		}
		officers = append(officers, o)
	}
	return officers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (FieldOfficer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+officerColumns+` FROM field_officers WHERE id = $1`, id)
	o, err := scanOfficer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FieldOfficer{}, httpx.ErrNotFound
	}
	return o, err
}

func (r *repository) Create(ctx context.Context, officer FieldOfficer) (FieldOfficer, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO field_officers (first_name, last_name, phone_number, id_number, location, assigned_area, date_joined, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		officer.FirstName, officer.LastName, officer.PhoneNumber, officer.IDNumber,
		officer.Location, officer.AssignedArea, officer.DateJoined, officer.IsActive,
	).Scan(&officer.ID, &officer.CreatedAt, &officer.UpdatedAt)
	if isUniqueViolation(err) {
		return FieldOfficer{}, httpx.ErrDuplicate
	}
	return officer, err
}

func (r *repository) Update(ctx context.Context, id int64, officer FieldOfficer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE field_officers SET first_name = $1, last_name = $2, phone_number = $3, location = $4, assigned_area = $5, is_active = $6, updated_at = NOW() WHERE id = $7`,
		officer.FirstName, officer.LastName, officer.PhoneNumber, officer.Location, officer.AssignedArea, officer.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE field_officers SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
