package meetings

import (
	"context"
	"fmt"
	"time"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

// Service handles meeting business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns meetings matching the filters.
func (s *Service) List(ctx context.Context, filters Filters) ([]Meeting, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown meeting status %q", httpx.ErrValidation, filters.Status)
	}
	return s.repo.List(ctx, filters)
}

// Get returns one meeting with its participant sets.
func (s *Service) Get(ctx context.Context, id int64) (Meeting, error) {
	if id <= 0 {
		return Meeting{}, fmt.Errorf("%w: invalid meeting ID", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Schedule creates a meeting. The next occurrence is derived from the
// recurrence pattern before anything is persisted.
func (s *Service) Schedule(ctx context.Context, m Meeting) (Meeting, error) {
	if m.Title == "" {
		return Meeting{}, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	if m.Type == "" {
		m.Type = TypeGeneral
	}
	if !m.Type.Valid() {
		return Meeting{}, fmt.Errorf("%w: unknown meeting type %q", httpx.ErrValidation, m.Type)
	}
	if m.Recurrence == "" {
		m.Recurrence = RecurNone
	}
	if !m.Recurrence.Valid() {
		return Meeting{}, fmt.Errorf("%w: unknown recurrence %q", httpx.ErrValidation, m.Recurrence)
	}
	if m.OrganizerID <= 0 {
		return Meeting{}, fmt.Errorf("%w: organizer required", httpx.ErrValidation)
	}
	if m.ScheduledDate.IsZero() {
		return Meeting{}, fmt.Errorf("%w: scheduled date required", httpx.ErrValidation)
	}
	if !m.EndTime.After(m.StartTime) {
		return Meeting{}, fmt.Errorf("%w: end time must be after start time", httpx.ErrValidation)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if m.ScheduledDate.Before(today) {
		return Meeting{}, fmt.Errorf("%w: cannot schedule a meeting in the past", httpx.ErrValidation)
	}

	m.Status = StatusScheduled
	if next, ok := NextMeetingDate(m.ScheduledDate, m.Recurrence); ok {
		m.NextMeetingDate = &next
	}
	return s.repo.Create(ctx, m)
}

// Start marks a scheduled meeting in progress.
func (s *Service) Start(ctx context.Context, id int64) error {
	return s.updateStatus(ctx, id, StatusInProgress, "", StatusScheduled)
}

// Complete closes a meeting and records the minutes.
func (s *Service) Complete(ctx context.Context, id int64, minutes string) error {
	return s.updateStatus(ctx, id, StatusCompleted, minutes, StatusScheduled, StatusInProgress)
}

// Cancel calls off a meeting that has not happened yet.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	return s.updateStatus(ctx, id, StatusCancelled, "", StatusScheduled, StatusPostponed)
}

// Postpone parks a scheduled meeting without picking a new date.
func (s *Service) Postpone(ctx context.Context, id int64) error {
	return s.updateStatus(ctx, id, StatusPostponed, "", StatusScheduled)
}

func (s *Service) updateStatus(ctx context.Context, id int64, to Status, minutes string, from ...Status) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	allowed := false
	for _, st := range from {
		if m.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: meeting %d is %s", httpx.ErrValidation, id, m.Status)
	}
	return s.repo.UpdateStatus(ctx, id, to, minutes)
}

// Reschedule moves a meeting to a caller-supplied slot. The source is marked
// RESCHEDULED and a linked clone takes its place. The new date is whatever
// the caller picked, not the next recurrence.
func (s *Service) Reschedule(ctx context.Context, id int64, in RescheduleInput) (Meeting, error) {
	if id <= 0 {
		return Meeting{}, fmt.Errorf("%w: invalid meeting ID", httpx.ErrValidation)
	}
	if in.NewDate.IsZero() {
		return Meeting{}, fmt.Errorf("%w: new date required", httpx.ErrValidation)
	}
	if !in.NewEnd.After(in.NewStart) {
		return Meeting{}, fmt.Errorf("%w: end time must be after start time", httpx.ErrValidation)
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return Meeting{}, err
	}
	if m.Status != StatusScheduled && m.Status != StatusPostponed {
		return Meeting{}, fmt.Errorf("%w: meeting %d is %s, only scheduled or postponed meetings can move", httpx.ErrValidation, id, m.Status)
	}
	return s.repo.Reschedule(ctx, id, in)
}

// RecordAttendance marks a member's attendance for a meeting. Recording twice
// for the same member overwrites the earlier status.
func (s *Service) RecordAttendance(ctx context.Context, a Attendance) (Attendance, error) {
	if a.MeetingID <= 0 || a.MemberID <= 0 {
		return Attendance{}, fmt.Errorf("%w: meeting and member required", httpx.ErrValidation)
	}
	if a.Status == "" {
		a.Status = AttendancePresent
	}
	if !a.Status.Valid() {
		return Attendance{}, fmt.Errorf("%w: unknown attendance status %q", httpx.ErrValidation, a.Status)
	}
	return s.repo.RecordAttendance(ctx, a)
}

// Attendance lists the attendance roll for a meeting.
func (s *Service) Attendance(ctx context.Context, meetingID int64) ([]Attendance, error) {
	if meetingID <= 0 {
		return nil, fmt.Errorf("%w: invalid meeting ID", httpx.ErrValidation)
	}
	return s.repo.ListAttendance(ctx, meetingID)
}
