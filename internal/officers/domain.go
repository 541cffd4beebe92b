// Package officers manages field officer records. Field officers register
// members and groups, record collections and file daily reports.
package officers

import "time"

// FieldOfficer is a staff member working with members and groups in the field.
type FieldOfficer struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	IDNumber     string    `json:"id_number"`
	Location     string    `json:"location"`
	AssignedArea string    `json:"assigned_area"`
	DateJoined   time.Time `json:"date_joined"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the officer's display name.
func (o FieldOfficer) FullName() string {
	return o.FirstName + " " + o.LastName
}
