package groups

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

// Repository defines data access for groups and memberships.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error)
	Get(ctx context.Context, id int64) (Group, error)
	Create(ctx context.Context, group Group) (Group, error)
	Update(ctx context.Context, id int64, group Group) error
	Deactivate(ctx context.Context, id int64) error

	ListMemberships(ctx context.Context, groupID int64) ([]Membership, error)
	Enroll(ctx context.Context, membership Membership) (Membership, error)
	Exit(ctx context.Context, membershipID int64, exitReason string) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const groupColumns = `id, name, registration_number, formation_date, meeting_schedule, meeting_location,
	COALESCE(description, ''), chairperson_id, secretary_id, treasurer_id, field_officer_id,
	is_active, created_at, updated_at`

func scanGroup(row pgx.Row) (Group, error) {
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.RegistrationNumber, &g.FormationDate, &g.MeetingSchedule,
		&g.MeetingLocation, &g.Description, &g.ChairpersonID, &g.SecretaryID, &g.TreasurerID,
		&g.FieldOfficerID, &g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Group, int, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM groups WHERE 1=1`
	args := []interface{}{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		cond := ` AND (name ILIKE $1 OR registration_number ILIKE $1)`
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

	var out []Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Group, error) {
	row := r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
	g, err := scanGroup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, httpx.ErrNotFound
	}
	return g, err
}

func (r *repository) Create(ctx context.Context, group Group) (Group, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO groups (name, registration_number, formation_date, meeting_schedule, meeting_location,
			description, chairperson_id, secretary_id, treasurer_id, field_officer_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		group.Name, group.RegistrationNumber, group.FormationDate, group.MeetingSchedule,
		group.MeetingLocation, group.Description, group.ChairpersonID, group.SecretaryID,
		group.TreasurerID, group.FieldOfficerID, group.IsActive,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Group{}, httpx.ErrDuplicate
	}
	return group, err
}

func (r *repository) Update(ctx context.Context, id int64, group Group) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE groups SET name = $1, meeting_schedule = $2, meeting_location = $3,
			description = NULLIF($4, ''), chairperson_id = $5, secretary_id = $6, treasurer_id = $7,
			field_officer_id = $8, is_active = $9, updated_at = NOW()
		 WHERE id = $10`,
		group.Name, group.MeetingSchedule, group.MeetingLocation, group.Description,
		group.ChairpersonID, group.SecretaryID, group.TreasurerID, group.FieldOfficerID,
		group.IsActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE groups SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListMemberships(ctx context.Context, groupID int64) ([]Membership, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, member_id, group_id, join_date, exit_date, COALESCE(exit_reason, ''), member_number, position, is_active
		 FROM group_memberships WHERE group_id = $1 ORDER BY member_number`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.MemberID, &m.GroupID, &m.JoinDate, &m.ExitDate, &m.ExitReason, &m.MemberNumber, &m.Position, &m.IsActive); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Enroll inserts the membership, assigning the next member number when the
// caller left it at zero. The group row is locked so two concurrent
// enrollments cannot pick the same number.
func (r *repository) Enroll(ctx context.Context, membership Membership) (Membership, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var groupID int64
		if err := tx.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, membership.GroupID).Scan(&groupID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return httpx.ErrNotFound
			}
			return err
		}

		if membership.MemberNumber == 0 {
			if err := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(member_number), 0) + 1 FROM group_memberships WHERE group_id = $1`,
				membership.GroupID).Scan(&membership.MemberNumber); err != nil {
				return err
			}
		}

		return tx.QueryRow(ctx,
			`INSERT INTO group_memberships (member_id, group_id, join_date, member_number, position, is_active)
			 VALUES ($1, $2, $3, $4, $5, TRUE)
			 RETURNING id`,
			membership.MemberID, membership.GroupID, membership.JoinDate,
			membership.MemberNumber, membership.Position,
		).Scan(&membership.ID)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Membership{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Membership{}, err
	}
	membership.IsActive = true
	return membership, nil
}

func (r *repository) Exit(ctx context.Context, membershipID int64, exitReason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE group_memberships SET is_active = FALSE, exit_date = NOW(), exit_reason = NULLIF($1, '') WHERE id = $2 AND is_active`,
		exitReason, membershipID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
