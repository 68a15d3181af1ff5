package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/dates"
	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
)

// Plan domain errors. Ownership failures surface as ErrPlanNotFound so a
// supervisor cannot probe other supervisors' plan IDs.
var (
	ErrPlanNotFound         = errors.New("plan not found")
	ErrWeekNotFound         = errors.New("week not found")
	ErrBreakWeek            = errors.New("week is a scheduled break")
	ErrPlanLocked           = errors.New("plan is locked")
	ErrPlanNotApproved      = errors.New("plan is not approved")
	ErrSchoolNotAssigned    = errors.New("school is not assigned to supervisor")
	ErrUnlockAlreadyPending = errors.New("unlock request already pending")
)

// PlanService exposes the supervisor-facing plan use cases.
type PlanService interface {
	GetPlan(ctx context.Context, supervisorID uint, weekNo int) (dto.PlanResponse, error)
	Save(ctx context.Context, supervisorID, planID uint, payload dto.PlanSaveRequest) (dto.PlanResponse, error)
	Approve(ctx context.Context, supervisorID, planID uint) (dto.PlanResponse, error)
	RequestUnlock(ctx context.Context, supervisorID, planID uint, payload dto.UnlockRequestCreate) (dto.PlanResponse, error)
	Weeks(ctx context.Context) ([]dto.WeekResponse, error)
	AssignedSchools(ctx context.Context, supervisorID uint) ([]dto.SchoolResponse, error)
}

type planService struct {
	plans       repository.PlanRepository
	weeks       repository.PlanWeekRepository
	assignments repository.AssignmentRepository
	unlocks     repository.UnlockRequestRepository
	events      NotificationService
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPlanService builds a new plan service.
func NewPlanService(plans repository.PlanRepository, weeks repository.PlanWeekRepository, assignments repository.AssignmentRepository, unlocks repository.UnlockRequestRepository, events NotificationService, validate *validator.Validate, logger zerolog.Logger) PlanService {
	return &planService{
		plans:       plans,
		weeks:       weeks,
		assignments: assignments,
		unlocks:     unlocks,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "plan_service").Logger(),
		now:         time.Now,
	}
}

func (s *planService) GetPlan(ctx context.Context, supervisorID uint, weekNo int) (dto.PlanResponse, error) {
	week, err := s.resolveWeek(ctx, weekNo)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	if week.IsBreak {
		return dto.PlanResponse{}, ErrBreakWeek
	}

	plan, err := s.plans.GetOrCreate(ctx, supervisorID, week.ID)
	if err != nil {
		return dto.PlanResponse{}, err
	}

	return s.buildResponse(ctx, plan)
}

func (s *planService) Save(ctx context.Context, supervisorID, planID uint, payload dto.PlanSaveRequest) (dto.PlanResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlanResponse{}, err
	}

	plan, err := s.ownedPlan(ctx, supervisorID, planID)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	if plan.IsLocked() {
		return dto.PlanResponse{}, ErrPlanLocked
	}

	seen := make(map[int]bool, models.WeekdayCount)
	for _, entry := range payload.Days {
		if seen[entry.Weekday] {
			return dto.PlanResponse{}, fmt.Errorf("duplicate weekday %d in payload", entry.Weekday)
		}
		seen[entry.Weekday] = true

		day := models.PlanDay{
			PlanID:    plan.ID,
			Weekday:   entry.Weekday,
			VisitType: entry.VisitType,
			Note:      strings.TrimSpace(s.sanitizer.Sanitize(entry.Note)),
		}

		if entry.VisitType == models.VisitTypeNone {
			if !models.ValidNoVisitReason(entry.NoVisitReason) {
				return dto.PlanResponse{}, fmt.Errorf("no-visit reason required for weekday %d", entry.Weekday)
			}
			day.NoVisitReason = entry.NoVisitReason
		} else {
			if entry.SchoolID == nil {
				return dto.PlanResponse{}, fmt.Errorf("school required for weekday %d", entry.Weekday)
			}
			assigned, err := s.assignments.IsAssigned(ctx, supervisorID, *entry.SchoolID)
			if err != nil {
				return dto.PlanResponse{}, err
			}
			if !assigned {
				return dto.PlanResponse{}, ErrSchoolNotAssigned
			}
			day.SchoolID = entry.SchoolID
		}

		if err := s.plans.UpsertDay(ctx, &day); err != nil {
			return dto.PlanResponse{}, err
		}
	}

	// Weekdays omitted from the payload go back to unfilled.
	for wd := 0; wd < models.WeekdayCount; wd++ {
		if seen[wd] {
			continue
		}
		if err := s.plans.DeleteDay(ctx, plan.ID, wd); err != nil {
			return dto.PlanResponse{}, err
		}
	}

	savedAt := s.now()
	plan.SavedAt = &savedAt
	plan.Status = models.PlanStatusDraft
	if err := s.plans.Update(ctx, &plan); err != nil {
		return dto.PlanResponse{}, err
	}

	s.logger.Info().Uint("plan_id", plan.ID).Int("days", len(payload.Days)).Msg("plan saved")

	refreshed, err := s.plans.GetByID(ctx, plan.ID)
	if err != nil {
		return dto.PlanResponse{}, err
	}

	return s.buildResponse(ctx, refreshed)
}

func (s *planService) Approve(ctx context.Context, supervisorID, planID uint) (dto.PlanResponse, error) {
	plan, err := s.ownedPlan(ctx, supervisorID, planID)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	if plan.IsLocked() {
		return dto.PlanResponse{}, ErrPlanLocked
	}
	if !plan.IsFullyFilled() {
		return dto.PlanResponse{}, ErrPlanNotFull
	}

	approvedAt := s.now()
	plan.Status = models.PlanStatusApproved
	plan.ApprovedAt = &approvedAt
	if err := s.plans.Update(ctx, &plan); err != nil {
		return dto.PlanResponse{}, err
	}

	s.logger.Info().Uint("plan_id", plan.ID).Bool("fully_filled", plan.IsFullyFilled()).Msg("plan approved")

	s.publishEvent(ctx, models.NotificationPlanApproved, fmt.Sprintf("اعتمد %s خطة %s", plan.Supervisor.FullName, plan.Week.Label()), plan.ID, map[string]any{
		"week_no":      plan.Week.WeekNo,
		"fully_filled": plan.IsFullyFilled(),
	})

	return s.buildResponse(ctx, plan)
}

func (s *planService) RequestUnlock(ctx context.Context, supervisorID, planID uint, payload dto.UnlockRequestCreate) (dto.PlanResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PlanResponse{}, err
	}

	plan, err := s.ownedPlan(ctx, supervisorID, planID)
	if err != nil {
		return dto.PlanResponse{}, err
	}
	if plan.Status == models.PlanStatusUnlockRequested {
		return dto.PlanResponse{}, ErrUnlockAlreadyPending
	}
	if plan.Status != models.PlanStatusApproved {
		return dto.PlanResponse{}, ErrPlanNotApproved
	}

	// A plan keeps a single unlock request row; a new request after a
	// manager decision resets the existing row back to pending.
	request, err := s.unlocks.GetByPlanID(ctx, plan.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlanResponse{}, err
		}
		request = models.UnlockRequest{PlanID: plan.ID}
	}
	request.Status = models.UnlockStatusPending
	request.Reason = strings.TrimSpace(s.sanitizer.Sanitize(payload.Reason))
	request.ResolvedAt = nil
	if err := s.unlocks.Save(ctx, &request); err != nil {
		return dto.PlanResponse{}, err
	}

	plan.Status = models.PlanStatusUnlockRequested
	if err := s.plans.Update(ctx, &plan); err != nil {
		return dto.PlanResponse{}, err
	}

	s.logger.Info().Uint("plan_id", plan.ID).Msg("unlock requested")

	s.publishEvent(ctx, models.NotificationUnlockRequested, fmt.Sprintf("طلب %s فتح خطة %s للتعديل", plan.Supervisor.FullName, plan.Week.Label()), plan.ID, map[string]any{
		"week_no": plan.Week.WeekNo,
		"reason":  request.Reason,
	})

	return s.buildResponse(ctx, plan)
}

func (s *planService) Weeks(ctx context.Context) ([]dto.WeekResponse, error) {
	weeks, err := s.weeks.List(ctx, false)
	if err != nil {
		return nil, err
	}

	return dto.NewWeekResponseSlice(weeks), nil
}

func (s *planService) AssignedSchools(ctx context.Context, supervisorID uint) ([]dto.SchoolResponse, error) {
	schools, err := s.assignments.ListActiveSchools(ctx, supervisorID)
	if err != nil {
		return nil, err
	}

	return dto.NewSchoolResponseSlice(schools), nil
}

func (s *planService) resolveWeek(ctx context.Context, weekNo int) (models.PlanWeek, error) {
	if weekNo == 0 {
		week, err := s.weeks.FirstSchedulable(ctx)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.PlanWeek{}, ErrWeekNotFound
			}
			return models.PlanWeek{}, err
		}
		return week, nil
	}

	week, err := s.weeks.GetByWeekNo(ctx, weekNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PlanWeek{}, ErrWeekNotFound
		}
		return models.PlanWeek{}, err
	}
	return week, nil
}

func (s *planService) ownedPlan(ctx context.Context, supervisorID, planID uint) (models.Plan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Plan{}, ErrPlanNotFound
		}
		return models.Plan{}, err
	}
	if plan.SupervisorID != supervisorID {
		return models.Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (s *planService) buildResponse(ctx context.Context, plan models.Plan) (dto.PlanResponse, error) {
	unlockPending := false
	if plan.Status == models.PlanStatusUnlockRequested {
		request, err := s.unlocks.GetByPlanID(ctx, plan.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlanResponse{}, err
		}
		unlockPending = err == nil && request.IsPending()
	}

	return buildPlanResponse(plan, unlockPending), nil
}

// buildPlanResponse merges the stored day rows into the five-weekday grid.
// Unfilled weekdays appear with an empty visit type.
func buildPlanResponse(plan models.Plan, unlockPending bool) dto.PlanResponse {
	byWeekday := make(map[int]models.PlanDay, len(plan.Days))
	for _, day := range plan.Days {
		byWeekday[day.Weekday] = day
	}

	grid := dates.WeekDays(plan.Week.StartSunday)
	days := make([]dto.PlanDayResponse, 0, models.WeekdayCount)
	for _, info := range grid {
		entry := dto.PlanDayResponse{
			Weekday:     info.Weekday,
			WeekdayName: info.Name,
			Date:        info.Date.Format("2006-01-02"),
			HijriDate:   info.HijriDate,
		}
		if day, ok := byWeekday[info.Weekday]; ok {
			entry.VisitType = day.VisitType
			entry.VisitTypeLabel = day.VisitTypeLabel()
			entry.NoVisitReason = day.NoVisitReason
			entry.Note = day.Note
			if day.School != nil {
				school := dto.NewSchoolResponse(*day.School)
				entry.School = &school
			}
		}
		days = append(days, entry)
	}

	return dto.PlanResponse{
		ID:            plan.ID,
		Week:          dto.NewWeekResponse(plan.Week),
		Status:        plan.Status,
		StatusLabel:   plan.StatusLabel(),
		Locked:        plan.IsLocked(),
		FullyFilled:   plan.IsFullyFilled(),
		FilledCount:   plan.FilledCount(),
		SavedAt:       plan.SavedAt,
		ApprovedAt:    plan.ApprovedAt,
		UnlockPending: unlockPending,
		Days:          days,
	}
}

func (s *planService) publishEvent(ctx context.Context, eventType, message string, planID uint, metadata map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, message, &planID, metadata); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish plan event")
	}
}
