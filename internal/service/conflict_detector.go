package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// ParseClock converts "HH:MM" or "HH:MM:SS" to minutes past midnight. Seconds
// are accepted and dropped. "24:00" is accepted as the end of the day.
func ParseClock(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	values := make([]int, len(parts))
	for i, part := range parts {
		if len(part) == 0 || len(part) > 2 {
			return 0, false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		values[i], _ = strconv.Atoi(part)
	}
	hours, minutes := values[0], values[1]
	seconds := 0
	if len(values) == 3 {
		seconds = values[2]
	}
	if minutes > 59 || seconds > 59 {
		return 0, false
	}
	if hours > 24 || (hours == 24 && (minutes > 0 || seconds > 0)) {
		return 0, false
	}
	return hours*60 + minutes, true
}

// SlotsOverlap reports whether two slots meet on the same weekday with
// intersecting half-open ranges. Back-to-back slots do not overlap. Slots
// whose times cannot be parsed never overlap.
func SlotsOverlap(a, b models.ScheduleSlot) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return false
	}
	aStart, ok := ParseClock(a.StartTime)
	if !ok {
		return false
	}
	aEnd, ok := ParseClock(a.EndTime)
	if !ok {
		return false
	}
	bStart, ok := ParseClock(b.StartTime)
	if !ok {
		return false
	}
	bEnd, ok := ParseClock(b.EndTime)
	if !ok {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// DetectConflicts lists every overlapping pair between the candidate class
// slots and the slots of the student's other active classes. The candidate
// class itself is ignored wherever it appears in active. Pairs are emitted in
// input order: class, then competing slot, then candidate slot.
func DetectConflicts(candidateClassID string, candidate []models.ScheduleSlot, active []models.ClassSchedule) []models.OverlapConflict {
	conflicts := make([]models.OverlapConflict, 0)
	if len(candidate) == 0 {
		return conflicts
	}
	for _, other := range active {
		if other.ClassID == candidateClassID {
			continue
		}
		for _, competing := range other.Slots {
			for _, slot := range candidate {
				if !SlotsOverlap(slot, competing) {
					continue
				}
				conflicts = append(conflicts, models.OverlapConflict{
					CandidateSlot:    slot,
					CompetingSlot:    competing,
					CompetingClassID: other.ClassID,
				})
			}
		}
	}
	return conflicts
}
