// Package groups manages savings groups and their membership rolls.
package groups

import "time"

// Position is the role a member holds within a group.
type Position string

// Group positions.
const (
	PositionMember    Position = "MEMBER"
	PositionChair     Position = "CHAIR"
	PositionSecretary Position = "SEC"
	PositionTreasurer Position = "TREAS"
	PositionVice      Position = "VICE"
)

// Valid reports whether the position code is known.
func (p Position) Valid() bool {
	switch p {
	case PositionMember, PositionChair, PositionSecretary, PositionTreasurer, PositionVice:
		return true
	}
	return false
}

// Group is a self-organized savings collective.
type Group struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	RegistrationNumber string    `json:"registration_number"`
	FormationDate      time.Time `json:"formation_date"`
	MeetingSchedule    string    `json:"meeting_schedule"`
	MeetingLocation    string    `json:"meeting_location"`
	Description        string    `json:"description,omitempty"`
	ChairpersonID      *int64    `json:"chairperson_id,omitempty"`
	SecretaryID        *int64    `json:"secretary_id,omitempty"`
	TreasurerID        *int64    `json:"treasurer_id,omitempty"`
	FieldOfficerID     *int64    `json:"field_officer_id,omitempty"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Membership links a member to a group. MemberNumber is the member's
// sequential number within the group, assigned on enrollment and never reused.
type Membership struct {
	ID           int64      `json:"id"`
	MemberID     int64      `json:"member_id"`
	GroupID      int64      `json:"group_id"`
	JoinDate     time.Time  `json:"join_date"`
	ExitDate     *time.Time `json:"exit_date,omitempty"`
	ExitReason   string     `json:"exit_reason,omitempty"`
	MemberNumber int        `json:"member_number"`
	Position     Position   `json:"position"`
	IsActive     bool       `json:"is_active"`
}
