package models

import "time"

// PersonTable names a profile table that stores people.
type PersonTable string

// Profile tables.
const (
	PersonTableTeachers PersonTable = "teachers"
	PersonTableStudents PersonTable = "students"
)

// PersonKeyColumn names a column a person can be keyed by.
type PersonKeyColumn string

// Key columns shared by every profile table.
const (
	PersonKeyRowID     PersonKeyColumn = "id"
	PersonKeyAccountID PersonKeyColumn = "user_id"
)

// UnknownDisplayValue replaces missing profile fields.
const UnknownDisplayValue = "Unknown"

// PersonRow is a raw profile row carrying both key columns.
type PersonRow struct {
	RowID     string  `db:"id"`
	AccountID *string `db:"user_id"`
	FullName  *string `db:"full_name"`
	Email     *string `db:"email"`
	Phone     *string `db:"phone"`
}

// PersonIdentity is a reconciled person with exactly one canonical id.
type PersonIdentity struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ClassTeacher is a teacher resolved for a class roster.
type ClassTeacher struct {
	PersonIdentity
	IsPrimary bool `json:"is_main"`
}

// ClassStudent is an actively enrolled student resolved for a class roster.
type ClassStudent struct {
	PersonIdentity
	EnrollmentID string           `json:"enrollment_id"`
	Status       EnrollmentStatus `json:"status"`
	EnrolledAt   time.Time        `json:"enrolled_at"`
}

// ResolvedPerson is a reconciled identity together with every key the person
// is stored under.
type ResolvedPerson struct {
	Identity PersonIdentity
	Aliases  []string
}
