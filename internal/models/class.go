package models

import "time"

// Class is a tutoring class offered by the center.
type Class struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Fee         float64   `db:"fee" json:"fee"`
	Active      bool      `db:"is_active" json:"is_active"`
	Public      bool      `db:"is_public" json:"is_public"`
	CategoryID  *string   `db:"category_id" json:"category_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RosterOptions selects which optional dimensions are joined into an enriched class.
type RosterOptions struct {
	IncludeStudents bool
	IncludeTeachers bool
}

// EnrichedClass joins a class with its weekly schedule, teachers and students.
// It is rebuilt on every request.
type EnrichedClass struct {
	Class
	Schedules []ScheduleSlot `json:"schedules"`
	Teachers  []ClassTeacher `json:"teachers_list"`
	Students  []ClassStudent `json:"students_list"`
}

// Roster dimensions that may degrade independently. The profile dimensions
// mark people served as unknown after a failed profile lookup.
const (
	DimensionSchedules       = "schedules"
	DimensionTeachers        = "teachers"
	DimensionStudents        = "students"
	DimensionTeacherProfiles = "teachers_profiles"
	DimensionStudentProfiles = "students_profiles"
)

// RosterResult is the output of a roster aggregation. Degraded lists dimensions
// whose side-fetch failed and were returned empty.
type RosterResult struct {
	Classes  []EnrichedClass `json:"classes"`
	Degraded []string        `json:"degraded,omitempty"`
}
