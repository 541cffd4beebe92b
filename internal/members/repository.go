package members

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

// Repository defines data access for members.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error)
	Get(ctx context.Context, id int64) (Member, error)
	Create(ctx context.Context, member Member) (Member, error)
	Update(ctx context.Context, id int64, member Member) error
	Deactivate(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const memberColumns = `id, first_name, last_name, id_number, gender, date_of_birth, phone_number,
	COALESCE(email, ''), physical_address, registration_date, COALESCE(occupation, ''),
	COALESCE(next_of_kin_name, ''), COALESCE(next_of_kin_phone, ''), COALESCE(next_of_kin_relation, ''),
	field_officer_id, is_active, created_at, updated_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.FirstName, &m.LastName, &m.IDNumber, &m.Gender, &m.DateOfBirth, &m.PhoneNumber,
		&m.Email, &m.PhysicalAddress, &m.RegistrationDate, &m.Occupation,
		&m.NextOfKinName, &m.NextOfKinPhone, &m.NextOfKinRelation,
		&m.FieldOfficerID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Member, int, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM members WHERE 1=1`
	args := []interface{}{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (first_name ILIKE $1 OR last_name ILIKE $1 OR id_number ILIKE $1 OR phone_number ILIKE $1)`
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

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	return members, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Member, error) {
	row := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, httpx.ErrNotFound
	}
	return m, err
}

func (r *repository) Create(ctx context.Context, member Member) (Member, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO members (first_name, last_name, id_number, gender, date_of_birth, phone_number, email,
			physical_address, registration_date, occupation, next_of_kin_name, next_of_kin_phone,
			next_of_kin_relation, field_officer_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), $14, $15)
		 RETURNING id, created_at, updated_at`,
		member.FirstName, member.LastName, member.IDNumber, member.Gender, member.DateOfBirth,
		member.PhoneNumber, member.Email, member.PhysicalAddress, member.RegistrationDate,
		member.Occupation, member.NextOfKinName, member.NextOfKinPhone, member.NextOfKinRelation,
		member.FieldOfficerID, member.IsActive,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Member{}, httpx.ErrDuplicate
	}
	return member, err
}

func (r *repository) Update(ctx context.Context, id int64, member Member) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE members SET first_name = $1, last_name = $2, gender = $3, phone_number = $4,
			email = NULLIF($5, ''), physical_address = $6, occupation = NULLIF($7, ''),
			next_of_kin_name = NULLIF($8, ''), next_of_kin_phone = NULLIF($9, ''),
			next_of_kin_relation = NULLIF($10, ''), field_officer_id = $11, is_active = $12,
			updated_at = NOW()
		 WHERE id = $13`,
		member.FirstName, member.LastName, member.Gender, member.PhoneNumber, member.Email,
		member.PhysicalAddress, member.Occupation, member.NextOfKinName, member.NextOfKinPhone,
		member.NextOfKinRelation, member.FieldOfficerID, member.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE members SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
