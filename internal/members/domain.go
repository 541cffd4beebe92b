// Package members manages individual member records.
package members

import "time"

// Gender is the closed set of member gender codes.
type Gender string

// Gender codes.
const (
	GenderFemale Gender = "F"
	GenderMale   Gender = "M"
	GenderOther  Gender = "O"
)

// Valid reports whether the code is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderOther:
		return true
	}
	return false
}

// Member is an individual participant in the savings programme.
type Member struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	IDNumber          string    `json:"id_number"`
	Gender            Gender    `json:"gender"`
	DateOfBirth       time.Time `json:"date_of_birth"`
	PhoneNumber       string    `json:"phone_number"`
	Email             string    `json:"email,omitempty"`
	PhysicalAddress   string    `json:"physical_address"`
	RegistrationDate  time.Time `json:"registration_date"`
	Occupation        string    `json:"occupation,omitempty"`
	NextOfKinName     string    `json:"next_of_kin_name,omitempty"`
	NextOfKinPhone    string    `json:"next_of_kin_phone,omitempty"`
	NextOfKinRelation string    `json:"next_of_kin_relation,omitempty"`
	FieldOfficerID    *int64    `json:"field_officer_id,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FullName returns the member's display name.
func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// AgeAt computes the member's age in whole years on the given date.
func (m Member) AgeAt(on time.Time) int {
	age := on.Year() - m.DateOfBirth.Year()
	if (int(on.Month()) < int(m.DateOfBirth.Month())) ||
		(on.Month() == m.DateOfBirth.Month() && on.Day() < m.DateOfBirth.Day()) {
		age--
	}
	return age
}
