package meetings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

type memoryMeetingRepo struct {
	meetings   map[int64]*Meeting
	attendance map[int64]*Attendance
	nextID     int64
}

func newMemoryMeetingRepo() *memoryMeetingRepo {
	return &memoryMeetingRepo{
		meetings:   make(map[int64]*Meeting),
		attendance: make(map[int64]*Attendance),
	}
}

func (r *memoryMeetingRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryMeetingRepo) List(ctx context.Context, filters Filters) ([]Meeting, int, error) {
	var out []Meeting
	for _, m := range r.meetings {
		out = append(out, *m)
	}
	return out, len(out), nil
}

func (r *memoryMeetingRepo) Get(ctx context.Context, id int64) (Meeting, error) {
	m, ok := r.meetings[id]
	if !ok {
		return Meeting{}, httpx.ErrNotFound
	}
	return *m, nil
}

func (r *memoryMeetingRepo) Create(ctx context.Context, m Meeting) (Meeting, error) {
	m.ID = r.id()
	r.meetings[m.ID] = &m
	return m, nil
}

func (r *memoryMeetingRepo) UpdateStatus(ctx context.Context, id int64, status Status, minutes string) error {
	m, ok := r.meetings[id]
	if !ok {
		return httpx.ErrNotFound
	}
	m.Status = status
	if minutes != "" {
		m.Minutes = minutes
	}
	return nil
}

func (r *memoryMeetingRepo) Reschedule(ctx context.Context, id int64, in RescheduleInput) (Meeting, error) {
	src, ok := r.meetings[id]
	if !ok {
		return Meeting{}, httpx.ErrNotFound
	}
	src.Status = StatusRescheduled

	clone := *src
	clone.ID = r.id()
	clone.ScheduledDate = in.NewDate
	clone.StartTime = in.NewStart
	clone.EndTime = in.NewEnd
	clone.Status = StatusScheduled
	clone.PreviousMeetingID = &src.ID
	clone.Minutes = ""
	clone.ParticipantMemberIDs = append([]int64(nil), src.ParticipantMemberIDs...)
	clone.ParticipantOfficerIDs = append([]int64(nil), src.ParticipantOfficerIDs...)
	r.meetings[clone.ID] = &clone
	return clone, nil
}

func (r *memoryMeetingRepo) RecordAttendance(ctx context.Context, a Attendance) (Attendance, error) {
	for _, existing := range r.attendance {
		if existing.MeetingID == a.MeetingID && existing.MemberID == a.MemberID {
			existing.Status = a.Status
			existing.Notes = a.Notes
			return *existing, nil
		}
	}
	a.ID = r.id()
	r.attendance[a.ID] = &a
	return a, nil
}

func (r *memoryMeetingRepo) ListAttendance(ctx context.Context, meetingID int64) ([]Attendance, error) {
	var out []Attendance
	for _, a := range r.attendance {
		if a.MeetingID == meetingID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
}

func validMeeting() Meeting {
	date := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	return Meeting{
		Title:                "Monthly Tablebanking",
		Type:                 TypeGeneral,
		ScheduledDate:        date,
		StartTime:            date.Add(9 * time.Hour),
		EndTime:              date.Add(11 * time.Hour),
		Recurrence:           RecurMonthly,
		OrganizerID:          1,
		ParticipantMemberIDs: []int64{1, 2, 3},
	}
}

func newTestService() (*Service, *memoryMeetingRepo) {
	repo := newMemoryMeetingRepo()
	svc := NewService(repo)
	svc.now = fixedNow
	return svc, repo
}

func TestScheduleMeeting(t *testing.T) {
	svc, _ := newTestService()

	m, err := svc.Schedule(context.Background(), validMeeting())
	require.NoError(t, err)
	require.Equal(t, StatusScheduled, m.Status)
	require.NotNil(t, m.NextMeetingDate)
	require.Equal(t, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), *m.NextMeetingDate)
}

func TestScheduleNonRecurringHasNoNextDate(t *testing.T) {
	svc, _ := newTestService()

	in := validMeeting()
	in.Recurrence = RecurNone
	m, err := svc.Schedule(context.Background(), in)
	require.NoError(t, err)
	require.Nil(t, m.NextMeetingDate)
}

func TestScheduleRejectsEndBeforeStart(t *testing.T) {
	svc, repo := newTestService()

	in := validMeeting()
	in.EndTime = in.StartTime.Add(-time.Hour)
	_, err := svc.Schedule(context.Background(), in)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.meetings, "nothing must be persisted on validation failure")
}

func TestScheduleRejectsPastDate(t *testing.T) {
	svc, _ := newTestService()

	in := validMeeting()
	in.ScheduledDate = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	in.StartTime = in.ScheduledDate.Add(9 * time.Hour)
	in.EndTime = in.ScheduledDate.Add(11 * time.Hour)
	_, err := svc.Schedule(context.Background(), in)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestScheduleAllowsTodayInLocalTime(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	svc, _ := newTestService()
	svc.now = func() time.Time {
		return time.Date(2026, 6, 1, 23, 0, 0, 0, nairobi)
	}

	// Midnight local time is still "today" even though it falls on the
	// previous day in UTC.
	in := validMeeting()
	in.ScheduledDate = time.Date(2026, 6, 1, 0, 0, 0, 0, nairobi)
	in.StartTime = in.ScheduledDate.Add(23*time.Hour + 30*time.Minute)
	in.EndTime = in.StartTime.Add(30 * time.Minute)
	in.Recurrence = RecurNone
	_, err := svc.Schedule(context.Background(), in)
	require.NoError(t, err)
}

func TestRescheduleClonesMeeting(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	src, err := svc.Schedule(ctx, validMeeting())
	require.NoError(t, err)

	newDate := time.Date(2026, 6, 17, 0, 0, 0, 0, time.UTC)
	clone, err := svc.Reschedule(ctx, src.ID, RescheduleInput{
		NewDate:  newDate,
		NewStart: newDate.Add(9 * time.Hour),
		NewEnd:   newDate.Add(11 * time.Hour),
		Reason:   "venue unavailable",
	})
	require.NoError(t, err)

	require.Equal(t, StatusRescheduled, repo.meetings[src.ID].Status)
	require.Equal(t, StatusScheduled, clone.Status)
	require.Equal(t, newDate, clone.ScheduledDate)
	require.NotNil(t, clone.PreviousMeetingID)
	require.Equal(t, src.ID, *clone.PreviousMeetingID)
	require.Equal(t, src.ParticipantMemberIDs, clone.ParticipantMemberIDs)

	// The original cannot be rescheduled again.
	_, err = svc.Reschedule(ctx, src.ID, RescheduleInput{
		NewDate:  newDate,
		NewStart: newDate.Add(9 * time.Hour),
		NewEnd:   newDate.Add(11 * time.Hour),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestMeetingStatusTransitions(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	m, err := svc.Schedule(ctx, validMeeting())
	require.NoError(t, err)

	require.NoError(t, svc.Start(ctx, m.ID))
	require.Equal(t, StatusInProgress, repo.meetings[m.ID].Status)

	require.NoError(t, svc.Complete(ctx, m.ID, "minutes recorded"))
	require.Equal(t, StatusCompleted, repo.meetings[m.ID].Status)
	require.Equal(t, "minutes recorded", repo.meetings[m.ID].Minutes)

	// A completed meeting cannot be cancelled.
	require.ErrorIs(t, svc.Cancel(ctx, m.ID), httpx.ErrValidation)
}

func TestRecordAttendanceOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	m, err := svc.Schedule(ctx, validMeeting())
	require.NoError(t, err)

	first, err := svc.RecordAttendance(ctx, Attendance{MeetingID: m.ID, MemberID: 1, Status: AttendanceLate})
	require.NoError(t, err)

	second, err := svc.RecordAttendance(ctx, Attendance{MeetingID: m.ID, MemberID: 1, Status: AttendancePresent})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "same meeting+member updates in place")

	roll, err := svc.Attendance(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, roll, 1)
	require.Equal(t, AttendancePresent, roll[0].Status)
}

func TestRecordAttendanceRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.RecordAttendance(context.Background(), Attendance{MeetingID: 1, MemberID: 1, Status: AttendanceStatus("MAYBE")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
