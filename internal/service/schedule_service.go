package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type scheduleRepository interface {
	ListByClassIDs(ctx context.Context, classIDs []string) ([]models.ScheduleSlotRow, error)
}

// ScheduleService adapts stored slot rows into validated, grouped and ordered
// weekly schedules.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	formatter *ScheduleFormatter
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, formatter *ScheduleFormatter, metrics *MetricsService, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if formatter == nil {
		formatter = NewScheduleFormatter("en")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, formatter: formatter, metrics: metrics, logger: logger}
}

// FetchSchedulesForClasses returns the slots of every requested class, sorted
// by weekday and then start time. Every requested id is present in the map.
// Rows that fail validation are dropped and logged.
func (s *ScheduleService) FetchSchedulesForClasses(ctx context.Context, classIDs []string) (map[string][]models.ScheduleSlot, error) {
	ids := uniqueStrings(classIDs)
	grouped := make(map[string][]models.ScheduleSlot, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}
	for _, id := range ids {
		grouped[id] = []models.ScheduleSlot{}
	}

	start := time.Now()
	rows, err := s.repo.ListByClassIDs(ctx, ids)
	s.metrics.ObserveDBQuery("schedules_by_class", time.Since(start))
	if err != nil {
		s.logger.Error("fetch schedules failed", zap.Strings("class_ids", ids), zap.Error(err))
		return nil, appErrors.WrapAs(err, appErrors.ErrScheduleUnavailable)
	}

	for _, row := range rows {
		slot, ok := s.toSlot(row)
		if !ok {
			continue
		}
		if _, requested := grouped[slot.ClassID]; !requested {
			continue
		}
		grouped[slot.ClassID] = append(grouped[slot.ClassID], slot)
	}
	for id := range grouped {
		SortSlots(grouped[id])
	}
	return grouped, nil
}

// ListByClass returns the ordered slots of one class.
func (s *ScheduleService) ListByClass(ctx context.Context, classID string) ([]models.ScheduleSlot, error) {
	classID = strings.TrimSpace(classID)
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id is required")
	}
	grouped, err := s.FetchSchedulesForClasses(ctx, []string{classID})
	if err != nil {
		return nil, err
	}
	return grouped[classID], nil
}

// Summary renders the weekly schedule of one class as display text.
func (s *ScheduleService) Summary(ctx context.Context, classID string) (string, error) {
	slots, err := s.ListByClass(ctx, classID)
	if err != nil {
		return "", err
	}
	return s.formatter.SummarizeSchedule(slots), nil
}

func (s *ScheduleService) toSlot(row models.ScheduleSlotRow) (models.ScheduleSlot, bool) {
	row.StartTime = normalizeClock(row.StartTime)
	row.EndTime = normalizeClock(row.EndTime)
	if err := s.validator.Struct(row); err != nil {
		s.logger.Warn("dropping invalid schedule slot",
			zap.String("slot_id", row.ID),
			zap.String("class_id", row.ClassID),
			zap.Error(err))
		return models.ScheduleSlot{}, false
	}
	return models.ScheduleSlot{
		ID:        row.ID,
		ClassID:   row.ClassID,
		DayOfWeek: *row.DayOfWeek,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		Location:  row.Location,
	}, true
}

// SortSlots orders slots by weekday number and then by start time as text.
// Display ordering is left to the formatter.
func SortSlots(slots []models.ScheduleSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// normalizeClock truncates a postgres TIME rendering such as "08:00:00",
// "08:00:30" or "08:00:30.5" to minute precision. Overlap checks ignore
// seconds too, so displayed and compared times agree.
func normalizeClock(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= len("15:04:05") && raw[2] == ':' && raw[5] == ':' {
		return raw[:5]
	}
	return raw
}
