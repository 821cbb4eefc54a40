package models

// ScheduleSlotRow is a weekly meeting row as stored. DayOfWeek is nullable in
// the store and must be validated before use.
type ScheduleSlotRow struct {
	ID        string  `db:"id" validate:"required"`
	ClassID   string  `db:"class_id" validate:"required"`
	DayOfWeek *int    `db:"day_of_week" validate:"required,min=0,max=6"`
	StartTime string  `db:"start_time" validate:"required"`
	EndTime   string  `db:"end_time" validate:"required"`
	Location  *string `db:"location"`
}

// ScheduleSlot is one validated weekly recurring interval at which a class meets.
// Day 0 is the last day of the display week.
type ScheduleSlot struct {
	ID        string  `json:"id"`
	ClassID   string  `json:"class_id"`
	DayOfWeek int     `json:"day_of_week"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Location  *string `json:"location,omitempty"`
}

// ClassSchedule groups the slots of one class.
type ClassSchedule struct {
	ClassID string         `json:"class_id"`
	Slots   []ScheduleSlot `json:"slots"`
}

// OverlapConflict pairs a candidate slot with a competing slot of another class.
type OverlapConflict struct {
	CandidateSlot      ScheduleSlot `json:"candidate_slot"`
	CompetingSlot      ScheduleSlot `json:"competing_slot"`
	CompetingClassID   string       `json:"competing_class_id"`
	CompetingClassName string       `json:"competing_class_name,omitempty"`
}
