package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ukombozini/backoffice/internal/platform/db"
	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

// Filters narrows meeting listings.
type Filters struct {
	Page    int
	Limit   int
	Status  Status
	GroupID int64
	From    time.Time
	To      time.Time
}

// RescheduleInput carries the new slot for a rescheduled meeting.
type RescheduleInput struct {
	NewDate   time.Time
	NewStart  time.Time
	NewEnd    time.Time
	Reason    string
	Organizer int64
}

// Repository defines data access for meetings and attendance.
type Repository interface {
	List(ctx context.Context, filters Filters) ([]Meeting, int, error)
	Get(ctx context.Context, id int64) (Meeting, error)
	Create(ctx context.Context, m Meeting) (Meeting, error)
	UpdateStatus(ctx context.Context, id int64, status Status, minutes string) error
	Reschedule(ctx context.Context, id int64, in RescheduleInput) (Meeting, error)

	RecordAttendance(ctx context.Context, a Attendance) (Attendance, error)
	ListAttendance(ctx context.Context, meetingID int64) ([]Attendance, error)
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

const meetingColumns = `id, title, type, scheduled_date, start_time, end_time, COALESCE(location, ''),
	COALESCE(description, ''), status, recurrence, next_meeting_date, organizer_id, group_id,
	previous_meeting_id, COALESCE(minutes, ''), agenda, created_at, updated_at`

func scanMeeting(row pgx.Row) (Meeting, error) {
	var m Meeting
	var agenda []byte
	err := row.Scan(&m.ID, &m.Title, &m.Type, &m.ScheduledDate, &m.StartTime, &m.EndTime,
		&m.Location, &m.Description, &m.Status, &m.Recurrence, &m.NextMeetingDate,
		&m.OrganizerID, &m.GroupID, &m.PreviousMeetingID, &m.Minutes, &agenda,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Meeting{}, err
	}
	if len(agenda) > 0 {
		if err := json.Unmarshal(agenda, &m.Agenda); err != nil {
			return Meeting{}, err
		}
	}
	return m, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]Meeting, int, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM meetings WHERE 1=1`
	args := []interface{}{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		cond := ` AND status = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if filters.GroupID > 0 {
		args = append(args, filters.GroupID)
		cond := ` AND group_id = $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		cond := ` AND scheduled_date >= $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		cond := ` AND scheduled_date <= $` + strconv.Itoa(len(args))
		query += cond
		countQuery += cond
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY scheduled_date, start_time`
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

	var out []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Meeting, error) {
	row := r.db.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Meeting{}, httpx.ErrNotFound
	}
	if err != nil {
		return Meeting{}, err
	}
	if err := r.loadParticipants(ctx, &m); err != nil {
		return Meeting{}, err
	}
	return m, nil
}

func (r *repository) loadParticipants(ctx context.Context, m *Meeting) error {
	rows, err := r.db.Query(ctx, `SELECT member_id FROM meeting_members WHERE meeting_id = $1 ORDER BY member_id`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		m.ParticipantMemberIDs = append(m.ParticipantMemberIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.db.Query(ctx, `SELECT officer_id FROM meeting_officers WHERE meeting_id = $1 ORDER BY officer_id`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		m.ParticipantOfficerIDs = append(m.ParticipantOfficerIDs, id)
	}
	return rows.Err()
}

func (r *repository) Create(ctx context.Context, m Meeting) (Meeting, error) {
	agenda, err := json.Marshal(m.Agenda)
	if err != nil {
		return Meeting{}, err
	}
	err = db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO meetings (title, type, scheduled_date, start_time, end_time, location, description,
				status, recurrence, next_meeting_date, organizer_id, group_id, previous_meeting_id, minutes, agenda)
			 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, $12, $13, NULLIF($14, ''), $15)
			 RETURNING id, created_at, updated_at`,
			m.Title, m.Type, m.ScheduledDate, m.StartTime, m.EndTime, m.Location, m.Description,
			m.Status, m.Recurrence, m.NextMeetingDate, m.OrganizerID, m.GroupID,
			m.PreviousMeetingID, m.Minutes, agenda,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return err
		}
		return insertParticipants(ctx, tx, m.ID, m.ParticipantMemberIDs, m.ParticipantOfficerIDs)
	})
	if err != nil {
		return Meeting{}, err
	}
	return m, nil
}

func insertParticipants(ctx context.Context, tx pgx.Tx, meetingID int64, memberIDs, officerIDs []int64) error {
	for _, id := range memberIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_members (meeting_id, member_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			meetingID, id); err != nil {
			return err
		}
	}
	for _, id := range officerIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_officers (meeting_id, officer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			meetingID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, minutes string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE meetings SET status = $1, minutes = COALESCE(NULLIF($2, ''), minutes), updated_at = NOW()
		 WHERE id = $3`, status, minutes, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Reschedule marks the source meeting RESCHEDULED and inserts a clone at the
// new slot, linked back via previous_meeting_id. Both participant sets are
// copied row by row. Everything happens in one transaction so a failure
// leaves the source meeting untouched.
func (r *repository) Reschedule(ctx context.Context, id int64, in RescheduleInput) (Meeting, error) {
	var clone Meeting
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1 FOR UPDATE`, id)
		src, err := scanMeeting(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE meetings SET status = $1, updated_at = NOW() WHERE id = $2`,
			StatusRescheduled, id); err != nil {
			return err
		}

		clone = src
		clone.ScheduledDate = in.NewDate
		clone.StartTime = in.NewStart
		clone.EndTime = in.NewEnd
		clone.Status = StatusScheduled
		clone.PreviousMeetingID = &src.ID
		clone.Minutes = ""
		if in.Reason != "" {
			clone.Description = in.Reason
		}

		agenda, err := json.Marshal(clone.Agenda)
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx,
			`INSERT INTO meetings (title, type, scheduled_date, start_time, end_time, location, description,
				status, recurrence, next_meeting_date, organizer_id, group_id, previous_meeting_id, agenda)
			 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, $12, $13, $14)
			 RETURNING id, created_at, updated_at`,
			clone.Title, clone.Type, clone.ScheduledDate, clone.StartTime, clone.EndTime,
			clone.Location, clone.Description, clone.Status, clone.Recurrence, clone.NextMeetingDate,
			clone.OrganizerID, clone.GroupID, clone.PreviousMeetingID, agenda,
		).Scan(&clone.ID, &clone.CreatedAt, &clone.UpdatedAt); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO meeting_members (meeting_id, member_id)
			 SELECT $1, member_id FROM meeting_members WHERE meeting_id = $2`,
			clone.ID, id); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO meeting_officers (meeting_id, officer_id)
			 SELECT $1, officer_id FROM meeting_officers WHERE meeting_id = $2`,
			clone.ID, id)
		return err
	})
	if err != nil {
		return Meeting{}, err
	}
	return r.Get(ctx, clone.ID)
}

func (r *repository) RecordAttendance(ctx context.Context, a Attendance) (Attendance, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO meeting_attendance (meeting_id, member_id, status, notes)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 ON CONFLICT (meeting_id, member_id)
		 DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes
		 RETURNING id, created_at`,
		a.MeetingID, a.MemberID, a.Status, a.Notes,
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return Attendance{}, httpx.ErrDuplicate
	}
	return a, err
}

func (r *repository) ListAttendance(ctx context.Context, meetingID int64) ([]Attendance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, meeting_id, member_id, status, COALESCE(notes, ''), created_at
		 FROM meeting_attendance WHERE meeting_id = $1 ORDER BY member_id`, meetingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.ID, &a.MeetingID, &a.MemberID, &a.Status, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
