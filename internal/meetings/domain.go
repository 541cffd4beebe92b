// Package meetings manages group and office meetings, their schedules and
// attendance.
package meetings

import "time"

// Type classifies a meeting.
type Type string

// Meeting types.
const (
	TypeGeneral    Type = "GENERAL"
	TypeExecutive  Type = "EXECUTIVE"
	TypeTraining   Type = "TRAINING"
	TypeFieldVisit Type = "FIELD_VISIT"
	TypeProject    Type = "PROJECT"
	TypeOther      Type = "OTHER"
)

// Valid reports whether the meeting type is known.
func (t Type) Valid() bool {
	switch t {
	case TypeGeneral, TypeExecutive, TypeTraining, TypeFieldVisit, TypeProject, TypeOther:
		return true
	}
	return false
}

// Status is a meeting's lifecycle state.
type Status string

// Meeting states.
const (
	StatusScheduled   Status = "SCHEDULED"
	StatusInProgress  Status = "IN_PROGRESS"
	StatusCompleted   Status = "COMPLETED"
	StatusCancelled   Status = "CANCELLED"
	StatusPostponed   Status = "POSTPONED"
	StatusRescheduled Status = "RESCHEDULED"
)

// Valid reports whether the status code is known.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled, StatusPostponed, StatusRescheduled:
		return true
	}
	return false
}

// Recurrence is how often a meeting repeats.
type Recurrence string

// Recurrence patterns.
const (
	RecurNone      Recurrence = "NONE"
	RecurDaily     Recurrence = "DAILY"
	RecurWeekly    Recurrence = "WEEKLY"
	RecurBiweekly  Recurrence = "BIWEEKLY"
	RecurMonthly   Recurrence = "MONTHLY"
	RecurQuarterly Recurrence = "QUARTERLY"
)

// Valid reports whether the recurrence code is known.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurNone, RecurDaily, RecurWeekly, RecurBiweekly, RecurMonthly, RecurQuarterly:
		return true
	}
	return false
}

// AttendanceStatus records whether a member attended.
type AttendanceStatus string

// Attendance states.
const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	AttendanceLate    AttendanceStatus = "LATE"
)

// Valid reports whether the attendance status is known.
func (a AttendanceStatus) Valid() bool {
	switch a {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused, AttendanceLate:
		return true
	}
	return false
}

// AgendaItem is one item on the meeting agenda, stored as JSONB.
type AgendaItem struct {
	Order     int    `json:"order"`
	Title     string `json:"title"`
	Presenter string `json:"presenter,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Meeting is a scheduled gathering. ParticipantMemberIDs and
// ParticipantOfficerIDs are the invited sets, held in join tables.
type Meeting struct {
	ID                    int64        `json:"id"`
	Title                 string       `json:"title"`
	Type                  Type         `json:"type"`
	ScheduledDate         time.Time    `json:"scheduled_date"`
	StartTime             time.Time    `json:"start_time"`
	EndTime               time.Time    `json:"end_time"`
	Location              string       `json:"location,omitempty"`
	Description           string       `json:"description,omitempty"`
	Status                Status       `json:"status"`
	Recurrence            Recurrence   `json:"recurrence"`
	NextMeetingDate       *time.Time   `json:"next_meeting_date,omitempty"`
	OrganizerID           int64        `json:"organizer_id"`
	GroupID               *int64       `json:"group_id,omitempty"`
	PreviousMeetingID     *int64       `json:"previous_meeting_id,omitempty"`
	Minutes               string       `json:"minutes,omitempty"`
	Agenda                []AgendaItem `json:"agenda,omitempty"`
	ParticipantMemberIDs  []int64      `json:"participant_member_ids,omitempty"`
	ParticipantOfficerIDs []int64      `json:"participant_officer_ids,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// Attendance is one member's attendance record for a meeting.
type Attendance struct {
	ID        int64            `json:"id"`
	MeetingID int64            `json:"meeting_id"`
	MemberID  int64            `json:"member_id"`
	Status    AttendanceStatus `json:"status"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
