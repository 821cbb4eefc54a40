package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
	"github.com/noah-isme/tutor-schedule-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type rosterProvider interface {
	EnrichedClasses(ctx context.Context, classIDs []string, opts models.RosterOptions) (*models.RosterResult, error)
}

type documentRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// RosterExport is a rendered class roster document.
type RosterExport struct {
	Filename    string
	ContentType string
	Payload     []byte
	Degraded    []string
}

// ExportService renders class rosters together with their weekly timetable.
type ExportService struct {
	roster    rosterProvider
	formatter *ScheduleFormatter
	renderers map[string]documentRenderer
	logger    *zap.Logger
}

// NewExportService wires the CSV and PDF renderers. Nil renderers use the
// defaults from pkg/export.
func NewExportService(roster rosterProvider, formatter *ScheduleFormatter, csvRenderer, pdfRenderer documentRenderer, logger *zap.Logger) *ExportService {
	if csvRenderer == nil {
		csvRenderer = export.NewCSVExporter()
	}
	if pdfRenderer == nil {
		pdfRenderer = export.NewPDFExporter()
	}
	if formatter == nil {
		formatter = NewScheduleFormatter("en")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster:    roster,
		formatter: formatter,
		renderers: map[string]documentRenderer{ExportFormatCSV: csvRenderer, ExportFormatPDF: pdfRenderer},
		logger:    logger,
	}
}

// ExportClassRoster renders teachers and active students of one class.
func (s *ExportService) ExportClassRoster(ctx context.Context, classID, format string) (*RosterExport, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	result, err := s.roster.EnrichedClasses(ctx, []string{classID}, models.RosterOptions{IncludeStudents: true, IncludeTeachers: true})
	if err != nil {
		return nil, err
	}
	if len(result.Classes) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	class := result.Classes[0]

	payload, err := renderer.Render(s.rosterDataset(class, result.Degraded))
	if err != nil {
		s.logger.Error("render roster export failed", zap.String("class_id", class.ID), zap.String("format", format), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	return &RosterExport{
		Filename:    fmt.Sprintf("roster-%s.%s", class.ID, format),
		ContentType: renderer.ContentType(),
		Payload:     payload,
		Degraded:    result.Degraded,
	}, nil
}

func (s *ExportService) rosterDataset(class models.EnrichedClass, degraded []string) export.Dataset {
	columns := s.formatter.RosterColumns()
	data := export.Dataset{
		Title:   class.Name,
		Notes:   []string{s.formatter.SummarizeSchedule(class.Schedules)},
		Headers: columns,
		Rows:    make([]map[string]string, 0, len(class.Teachers)+len(class.Students)),
	}
	if note := s.formatter.IncompleteNote(degraded); note != "" {
		data.Notes = append(data.Notes, note)
	}
	for _, teacher := range class.Teachers {
		data.Rows = append(data.Rows, personRow(columns, s.formatter.TeacherRole(teacher.IsPrimary), teacher.PersonIdentity, ""))
	}
	for _, student := range class.Students {
		data.Rows = append(data.Rows, personRow(columns, s.formatter.StudentRole(), student.PersonIdentity, string(student.Status)))
	}
	return data
}

// personRow keys cells by the localized column headers.
func personRow(columns []string, role string, person models.PersonIdentity, status string) map[string]string {
	values := [5]string{role, person.FullName, person.Email, person.Phone, status}
	row := make(map[string]string, len(columns))
	for i, column := range columns {
		row[column] = values[i]
	}
	return row
}
