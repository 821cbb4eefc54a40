package dto

import "github.com/noah-isme/tutor-schedule-api/internal/models"

// ConflictWarning is the user-facing summary of enrollment conflicts. Messages
// holds at most the configured preview count; Remaining counts the rest.
type ConflictWarning struct {
	Count     int      `json:"count"`
	Messages  []string `json:"messages"`
	Remaining int      `json:"remaining"`
	Summary   string   `json:"summary,omitempty"`
}

// ConflictCheckRequest asks whether enrolling a student would double-book them.
type ConflictCheckRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id" validate:"required"`
}

// ConflictCheckResponse carries raw overlaps plus their rendered messages.
type ConflictCheckResponse struct {
	HasConflicts bool                     `json:"has_conflicts"`
	Conflicts    []models.OverlapConflict `json:"conflicts"`
	Messages     []string                 `json:"messages"`
	Warning      ConflictWarning          `json:"warning"`
}
