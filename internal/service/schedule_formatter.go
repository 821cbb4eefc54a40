package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/tutor-schedule-api/internal/dto"
	"github.com/noah-isme/tutor-schedule-api/internal/models"
)

// DayOrder reports whether weekday a is displayed before weekday b.
type DayOrder func(a, b int) bool

// WeekEndsOnZero is the week-start convention of the centre: days 1 through 6
// ascend and day 0 closes the week. With 0 as Sunday this is a Monday-first week.
func WeekEndsOnZero(a, b int) bool {
	return weekEndsOnZeroRank(a) < weekEndsOnZeroRank(b)
}

func weekEndsOnZeroRank(day int) int {
	if day == 0 {
		return 7
	}
	return day
}

type formatterLocale struct {
	days            [7]string
	otherDay        string
	noSchedule      string
	overlapsWith    string
	conflictHeader  string
	andMore         string
	rosterColumns   [5]string
	roleTeacher     string
	roleMainTeacher string
	roleStudent     string
	incomplete      string
}

var formatterLocales = map[string]formatterLocale{
	"en": {
		days:            [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		otherDay:        "Day %d",
		noSchedule:      "No schedule",
		overlapsWith:    "overlaps with",
		conflictHeader:  "%d schedule conflict(s)",
		andMore:         "and %d more",
		rosterColumns:   [5]string{"Role", "Name", "Email", "Phone", "Status"},
		roleTeacher:     "Teacher",
		roleMainTeacher: "Main teacher",
		roleStudent:     "Student",
		incomplete:      "Incomplete: %s",
	},
	"id": {
		days:            [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"},
		otherDay:        "Hari %d",
		noSchedule:      "Belum ada jadwal",
		overlapsWith:    "bentrok dengan",
		conflictHeader:  "%d jadwal bentrok",
		andMore:         "dan %d lainnya",
		rosterColumns:   [5]string{"Peran", "Nama", "Email", "Telepon", "Status"},
		roleTeacher:     "Guru",
		roleMainTeacher: "Guru utama",
		roleStudent:     "Siswa",
		incomplete:      "Tidak lengkap: %s",
	},
}

// ScheduleFormatter renders slot lists and overlap conflicts as display text.
type ScheduleFormatter struct {
	locale formatterLocale
	order  DayOrder
}

// NewScheduleFormatter builds a formatter for locale ("en" or "id"). Unknown
// locales fall back to English.
func NewScheduleFormatter(locale string) *ScheduleFormatter {
	l, ok := formatterLocales[strings.ToLower(strings.TrimSpace(locale))]
	if !ok {
		l = formatterLocales["en"]
	}
	return &ScheduleFormatter{locale: l, order: WeekEndsOnZero}
}

// WithDayOrder returns a copy of the formatter that orders days with order.
func (f *ScheduleFormatter) WithDayOrder(order DayOrder) *ScheduleFormatter {
	clone := *f
	if order != nil {
		clone.order = order
	}
	return &clone
}

// DayLabel returns the localized name of a weekday.
func (f *ScheduleFormatter) DayLabel(day int) string {
	if day < 0 || day > 6 {
		return fmt.Sprintf(f.locale.otherDay, day)
	}
	return f.locale.days[day]
}

// SummarizeSchedule groups slots by weekday, joins each day's time ranges with
// a comma and the days with " | ".
func (f *ScheduleFormatter) SummarizeSchedule(slots []models.ScheduleSlot) string {
	if len(slots) == 0 {
		return f.locale.noSchedule
	}

	ordered := append([]models.ScheduleSlot(nil), slots...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime < ordered[j].StartTime
	})

	ranges := make(map[int][]string)
	days := make([]int, 0, 7)
	for _, slot := range ordered {
		if _, seen := ranges[slot.DayOfWeek]; !seen {
			days = append(days, slot.DayOfWeek)
		}
		ranges[slot.DayOfWeek] = append(ranges[slot.DayOfWeek], timeRange(slot))
	}
	sort.SliceStable(days, func(i, j int) bool {
		return f.order(days[i], days[j])
	})

	groups := make([]string, 0, len(days))
	for _, day := range days {
		groups = append(groups, fmt.Sprintf("%s: %s", f.DayLabel(day), strings.Join(ranges[day], ", ")))
	}
	return strings.Join(groups, " | ")
}

// DescribeConflict renders one overlap as a sentence.
func (f *ScheduleFormatter) DescribeConflict(conflict models.OverlapConflict) string {
	name := conflict.CompetingClassName
	if name == "" {
		name = conflict.CompetingClassID
	}
	return fmt.Sprintf("%s %s %s %s (%s)",
		f.DayLabel(conflict.CandidateSlot.DayOfWeek),
		timeRange(conflict.CandidateSlot),
		f.locale.overlapsWith,
		name,
		timeRange(conflict.CompetingSlot))
}

// SummarizeConflicts describes conflicts ordered by weekday, candidate start
// time and competing class.
func (f *ScheduleFormatter) SummarizeConflicts(conflicts []models.OverlapConflict) []string {
	ordered := append([]models.OverlapConflict(nil), conflicts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.CandidateSlot.DayOfWeek != b.CandidateSlot.DayOfWeek {
			return f.order(a.CandidateSlot.DayOfWeek, b.CandidateSlot.DayOfWeek)
		}
		if a.CandidateSlot.StartTime != b.CandidateSlot.StartTime {
			return a.CandidateSlot.StartTime < b.CandidateSlot.StartTime
		}
		if a.CompetingClassID != b.CompetingClassID {
			return a.CompetingClassID < b.CompetingClassID
		}
		return a.CompetingSlot.StartTime < b.CompetingSlot.StartTime
	})

	messages := make([]string, 0, len(ordered))
	for _, conflict := range ordered {
		messages = append(messages, f.DescribeConflict(conflict))
	}
	return messages
}

// ConflictWarning keeps the first limit messages and folds the rest into a
// remaining count. A non-positive limit shows every message.
func (f *ScheduleFormatter) ConflictWarning(conflicts []models.OverlapConflict, limit int) dto.ConflictWarning {
	messages := f.SummarizeConflicts(conflicts)
	warning := dto.ConflictWarning{Count: len(messages), Messages: messages}
	if len(messages) == 0 {
		return warning
	}
	if limit > 0 && len(messages) > limit {
		warning.Messages = messages[:limit]
		warning.Remaining = len(messages) - limit
	}

	summary := fmt.Sprintf(f.locale.conflictHeader, warning.Count) + ": " + strings.Join(warning.Messages, "; ")
	if warning.Remaining > 0 {
		summary += " " + fmt.Sprintf(f.locale.andMore, warning.Remaining)
	}
	warning.Summary = summary
	return warning
}

// RosterColumns returns the roster export headers in role, name, email,
// phone, status order.
func (f *ScheduleFormatter) RosterColumns() []string {
	return append([]string(nil), f.locale.rosterColumns[:]...)
}

// TeacherRole labels a teacher row.
func (f *ScheduleFormatter) TeacherRole(primary bool) string {
	if primary {
		return f.locale.roleMainTeacher
	}
	return f.locale.roleTeacher
}

// StudentRole labels a student row.
func (f *ScheduleFormatter) StudentRole() string {
	return f.locale.roleStudent
}

// IncompleteNote lists degraded roster dimensions. It is empty when nothing
// degraded.
func (f *ScheduleFormatter) IncompleteNote(dimensions []string) string {
	if len(dimensions) == 0 {
		return ""
	}
	return fmt.Sprintf(f.locale.incomplete, strings.Join(dimensions, ", "))
}

func timeRange(slot models.ScheduleSlot) string {
	return slot.StartTime + "-" + slot.EndTime
}
