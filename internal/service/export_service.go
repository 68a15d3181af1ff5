package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/dates"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
	"github.com/tatweer-edu/visit-plans-api/internal/spreadsheet"
)

// Export is a generated workbook plus its attachment filename.
type Export struct {
	FileName string
	Data     []byte
}

// ExportService produces the Excel downloads: a supervisor's weekly plan, the
// manager's whole-week sheet and the rejected-rows workbook for an import
// submission.
type ExportService interface {
	PlanWorkbook(ctx context.Context, supervisorID uint, weekNo int) (Export, error)
	WeekWorkbook(ctx context.Context, weekNo int) (Export, error)
	RejectedWorkbook(ctx context.Context, submissionID string) (Export, error)
}

type exportService struct {
	plans   repository.PlanRepository
	weeks   repository.PlanWeekRepository
	imports ImportService
	logger  zerolog.Logger
}

// NewExportService builds a new export service.
func NewExportService(plans repository.PlanRepository, weeks repository.PlanWeekRepository, imports ImportService, logger zerolog.Logger) ExportService {
	return &exportService{
		plans:   plans,
		weeks:   weeks,
		imports: imports,
		logger:  logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) PlanWorkbook(ctx context.Context, supervisorID uint, weekNo int) (Export, error) {
	week, err := s.weeks.GetByWeekNo(ctx, weekNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Export{}, ErrWeekNotFound
		}
		return Export{}, err
	}

	plan, err := s.plans.GetOrCreate(ctx, supervisorID, week.ID)
	if err != nil {
		return Export{}, err
	}

	byWeekday := make(map[int]models.PlanDay, len(plan.Days))
	for _, day := range plan.Days {
		byWeekday[day.Weekday] = day
	}

	rows := make([]spreadsheet.PlanExportRow, 0, models.WeekdayCount)
	for _, info := range dates.WeekDays(week.StartSunday) {
		row := spreadsheet.PlanExportRow{
			DayName:   info.Name,
			HijriDate: info.HijriDate,
			GregDate:  info.Date.Format("2006-01-02"),
		}
		if day, ok := byWeekday[info.Weekday]; ok {
			row.VisitType = day.VisitTypeLabel()
			if day.School != nil {
				row.SchoolName = day.School.Name
			} else if day.VisitType == models.VisitTypeNone {
				row.SchoolName = "—"
			}
		}
		rows = append(rows, row)
	}

	data, err := spreadsheet.BuildPlanWorkbook(week.WeekNo, plan.Supervisor.FullName, plan.Supervisor.NationalID, rows)
	if err != nil {
		return Export{}, err
	}

	s.logger.Info().Uint("plan_id", plan.ID).Int("week_no", week.WeekNo).Msg("plan workbook exported")

	return Export{
		FileName: fmt.Sprintf("plan_week_%d_%s.xlsx", week.WeekNo, plan.Supervisor.NationalID),
		Data:     data,
	}, nil
}

func (s *exportService) WeekWorkbook(ctx context.Context, weekNo int) (Export, error) {
	week, err := s.weeks.GetByWeekNo(ctx, weekNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Export{}, ErrWeekNotFound
		}
		return Export{}, err
	}

	days, err := s.plans.ListDaysByWeek(ctx, week.ID)
	if err != nil {
		return Export{}, err
	}

	rows := make([]spreadsheet.WeekExportRow, 0, len(days))
	for _, day := range days {
		row := spreadsheet.WeekExportRow{
			DayName:   models.WeekdayNames[day.Weekday],
			VisitType: day.VisitTypeLabel(),
		}
		if day.Plan != nil {
			row.SupervisorName = day.Plan.Supervisor.FullName
		}
		if day.School != nil {
			row.SchoolName = day.School.Name
		}
		rows = append(rows, row)
	}

	data, err := spreadsheet.BuildWeekWorkbook(week.WeekNo, rows)
	if err != nil {
		return Export{}, err
	}

	s.logger.Info().Int("week_no", week.WeekNo).Int("rows", len(rows)).Msg("week workbook exported")

	return Export{
		FileName: fmt.Sprintf("week_%d_plans.xlsx", week.WeekNo),
		Data:     data,
	}, nil
}

func (s *exportService) RejectedWorkbook(ctx context.Context, submissionID string) (Export, error) {
	rows, err := s.imports.RejectedRows(ctx, submissionID)
	if err != nil {
		return Export{}, err
	}

	entries := make([]spreadsheet.RejectedEntry, 0, len(rows))
	for _, row := range rows {
		entry := spreadsheet.RejectedEntry{
			Importer: row.Importer,
			Reason:   row.Reason,
			Row:      make(map[string]string, len(row.Row)),
		}
		for key, value := range row.Row {
			entry.Row[key] = fmt.Sprint(value)
		}
		entries = append(entries, entry)
	}

	data, err := spreadsheet.BuildRejectedWorkbook(entries)
	if err != nil {
		return Export{}, err
	}

	return Export{
		FileName: fmt.Sprintf("rejected_rows_%s.xlsx", submissionID),
		Data:     data,
	}, nil
}
