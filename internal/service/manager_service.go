package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/dates"
	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
)

// Manager domain errors.
var (
	ErrPlanNotFull           = errors.New("plan is not fully filled")
	ErrUnlockRequestNotFound = errors.New("unlock request not found")
	ErrUnlockAlreadyResolved = errors.New("unlock request already resolved")
	ErrStartNotSunday        = errors.New("start date must be a sunday")
)

const defaultDashboardPageSize = 20

// ManagerService exposes the manager console use cases: the weekly dashboard,
// plan overrides, unlock resolution and the term calendar.
type ManagerService interface {
	Dashboard(ctx context.Context, query dto.DashboardQuery) (dto.DashboardResponse, error)
	PlanDetail(ctx context.Context, planID uint) (dto.PlanResponse, error)
	ForceApprove(ctx context.Context, planID uint) (dto.PlanResponse, error)
	BackToDraft(ctx context.Context, planID uint) (dto.PlanResponse, error)
	ResolveUnlock(ctx context.Context, requestID uint, payload dto.UnlockResolveRequest) (dto.UnlockRequestResponse, error)
	PendingUnlocks(ctx context.Context) ([]dto.UnlockRequestResponse, error)
	GenerateWeeks(ctx context.Context, payload dto.WeekGenerateRequest) ([]dto.WeekResponse, error)
}

type managerService struct {
	plans       repository.PlanRepository
	weeks       repository.PlanWeekRepository
	supervisors repository.SupervisorRepository
	unlocks     repository.UnlockRequestRepository
	events      NotificationService
	cache       *redis.Client
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewManagerService builds a new manager service. cache may be nil; KPIs are
// then recomputed on every dashboard load.
func NewManagerService(plans repository.PlanRepository, weeks repository.PlanWeekRepository, supervisors repository.SupervisorRepository, unlocks repository.UnlockRequestRepository, events NotificationService, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) ManagerService {
	return &managerService{
		plans:       plans,
		weeks:       weeks,
		supervisors: supervisors,
		unlocks:     unlocks,
		events:      events,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger.With().Str("component", "manager_service").Logger(),
		now:         time.Now,
	}
}

func (s *managerService) Dashboard(ctx context.Context, query dto.DashboardQuery) (dto.DashboardResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.DashboardResponse{}, err
	}

	tracer := otel.Tracer("github.com/tatweer-edu/visit-plans-api/internal/service/manager")
	ctx, span := tracer.Start(ctx, "dashboard.build")
	defer span.End()

	week, err := s.resolveWeek(ctx, query.Week)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	span.SetAttributes(attribute.Int("dashboard.week_no", week.WeekNo))

	// the week selector; all=true widens it to break weeks
	selectableWeeks, err := s.weeks.List(ctx, query.All)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	rows, err := s.collectRows(ctx, week, query.Search)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	kpis, err := s.kpis(ctx, week)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	filtered := filterRows(rows, query.Status)

	pageSize := query.PageSize
	if pageSize == 0 {
		pageSize = defaultDashboardPageSize
	}
	page := query.Page
	if page == 0 {
		page = 1
	}

	total := len(filtered)
	totalPages := 1
	if !query.NoPaging {
		totalPages = (total + pageSize - 1) / pageSize
		if totalPages == 0 {
			totalPages = 1
		}
		if page > totalPages {
			page = totalPages
		}
		start := (page - 1) * pageSize
		end := start + pageSize
		if end > total {
			end = total
		}
		filtered = filtered[start:end]
	} else {
		pageSize = total
	}

	return dto.DashboardResponse{
		Week:       dto.NewWeekResponse(week),
		Weeks:      dto.NewWeekResponseSlice(selectableWeeks),
		KPIs:       kpis,
		Rows:       filtered,
		Page:       page,
		PageSize:   pageSize,
		TotalRows:  total,
		TotalPages: totalPages,
	}, nil
}

func (s *managerService) PlanDetail(ctx context.Context, planID uint) (dto.PlanResponse, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlanResponse{}, ErrPlanNotFound
		}
		return dto.PlanResponse{}, err
	}

	unlockPending := false
	if request, err := s.unlocks.GetByPlanID(ctx, plan.ID); err == nil {
		unlockPending = request.IsPending()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PlanResponse{}, err
	}

	return buildPlanResponse(plan, unlockPending), nil
}

func (s *managerService) ForceApprove(ctx context.Context, planID uint) (dto.PlanResponse, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlanResponse{}, ErrPlanNotFound
		}
		return dto.PlanResponse{}, err
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

	// A pending unlock request is superseded by the manager's decision.
	if err := s.unlocks.DeleteByPlanID(ctx, plan.ID); err != nil {
		return dto.PlanResponse{}, err
	}

	s.invalidateKPIs(ctx, plan.WeekID)
	s.logger.Info().Uint("plan_id", plan.ID).Msg("plan force approved")

	s.publishEvent(ctx, models.NotificationPlanApproved, fmt.Sprintf("اعتمد المدير خطة %s للمشرف %s", plan.Week.Label(), plan.Supervisor.FullName), plan.ID, map[string]any{
		"week_no": plan.Week.WeekNo,
		"forced":  true,
	})

	return buildPlanResponse(plan, false), nil
}

func (s *managerService) BackToDraft(ctx context.Context, planID uint) (dto.PlanResponse, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PlanResponse{}, ErrPlanNotFound
		}
		return dto.PlanResponse{}, err
	}

	// Idempotent: returning an already-draft plan is not an error.
	if plan.Status != models.PlanStatusDraft {
		plan.Status = models.PlanStatusDraft
		plan.ApprovedAt = nil
		if err := s.plans.Update(ctx, &plan); err != nil {
			return dto.PlanResponse{}, err
		}
		if err := s.unlocks.DeleteByPlanID(ctx, plan.ID); err != nil {
			return dto.PlanResponse{}, err
		}

		s.invalidateKPIs(ctx, plan.WeekID)
		s.logger.Info().Uint("plan_id", plan.ID).Msg("plan returned to draft")

		s.publishEvent(ctx, models.NotificationPlanDrafted, fmt.Sprintf("أعاد المدير خطة %s للمشرف %s إلى مسودة", plan.Week.Label(), plan.Supervisor.FullName), plan.ID, map[string]any{
			"week_no": plan.Week.WeekNo,
		})
	}

	return buildPlanResponse(plan, false), nil
}

func (s *managerService) ResolveUnlock(ctx context.Context, requestID uint, payload dto.UnlockResolveRequest) (dto.UnlockRequestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UnlockRequestResponse{}, err
	}

	request, err := s.unlocks.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UnlockRequestResponse{}, ErrUnlockRequestNotFound
		}
		return dto.UnlockRequestResponse{}, err
	}
	if !request.IsPending() {
		return dto.UnlockRequestResponse{}, ErrUnlockAlreadyResolved
	}

	plan := request.Plan
	resolvedAt := s.now()
	request.ResolvedAt = &resolvedAt

	if payload.Decision == "approve" {
		request.Status = models.UnlockStatusApproved
		plan.Status = models.PlanStatusDraft
		plan.ApprovedAt = nil
	} else {
		request.Status = models.UnlockStatusRejected
		plan.Status = models.PlanStatusApproved
	}

	if err := s.unlocks.Save(ctx, &request); err != nil {
		return dto.UnlockRequestResponse{}, err
	}
	if err := s.plans.Update(ctx, &plan); err != nil {
		return dto.UnlockRequestResponse{}, err
	}

	s.invalidateKPIs(ctx, plan.WeekID)
	s.logger.Info().
		Uint("request_id", request.ID).
		Str("decision", payload.Decision).
		Msg("unlock request resolved")

	s.publishEvent(ctx, models.NotificationUnlockResolved, fmt.Sprintf("تم البت في طلب فتح خطة %s للمشرف %s", plan.Week.Label(), plan.Supervisor.FullName), plan.ID, map[string]any{
		"week_no":  plan.Week.WeekNo,
		"decision": payload.Decision,
	})

	request.Plan = plan

	return dto.NewUnlockRequestResponse(request), nil
}

func (s *managerService) PendingUnlocks(ctx context.Context) ([]dto.UnlockRequestResponse, error) {
	requests, err := s.unlocks.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewUnlockRequestResponseSlice(requests), nil
}

func (s *managerService) GenerateWeeks(ctx context.Context, payload dto.WeekGenerateRequest) ([]dto.WeekResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", payload.StartSunday)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	if !dates.IsSunday(start) {
		return nil, ErrStartNotSunday
	}

	breaks := make(map[int]bool, len(payload.BreakWeeks))
	for _, weekNo := range payload.BreakWeeks {
		breaks[weekNo] = true
	}

	generated := make([]models.PlanWeek, 0, payload.Count)
	for i := 0; i < payload.Count; i++ {
		weekNo := i + 1
		week := models.PlanWeek{
			WeekNo:      weekNo,
			StartSunday: start.AddDate(0, 0, i*7),
			IsBreak:     breaks[weekNo],
		}
		if err := s.weeks.Upsert(ctx, &week); err != nil {
			return nil, err
		}
		generated = append(generated, week)
	}

	s.logger.Info().Int("count", len(generated)).Msg("plan weeks generated")

	return dto.NewWeekResponseSlice(generated), nil
}

func (s *managerService) resolveWeek(ctx context.Context, weekNo int) (models.PlanWeek, error) {
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

// collectRows merges active supervisors with their plans for the week.
// Supervisors who have not opened the week yet appear as empty drafts.
func (s *managerService) collectRows(ctx context.Context, week models.PlanWeek, search string) ([]dto.DashboardRow, error) {
	plans, err := s.plans.ListByWeek(ctx, repository.PlanFilter{WeekID: week.ID, Search: search})
	if err != nil {
		return nil, err
	}

	bySupervisor := make(map[uint]models.Plan, len(plans))
	for _, plan := range plans {
		bySupervisor[plan.SupervisorID] = plan
	}

	rows := make([]dto.DashboardRow, 0, len(plans))
	if search == "" {
		supervisors, err := s.supervisors.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		for _, supervisor := range supervisors {
			if plan, ok := bySupervisor[supervisor.ID]; ok {
				rows = append(rows, planRow(plan))
				continue
			}
			rows = append(rows, dto.DashboardRow{
				SupervisorID:   supervisor.ID,
				SupervisorName: supervisor.FullName,
				NationalID:     supervisor.NationalID,
				Department:     supervisor.Department,
				Status:         models.PlanStatusDraft,
				StatusLabel:    models.Plan{Status: models.PlanStatusDraft}.StatusLabel(),
			})
		}
		return rows, nil
	}

	for _, plan := range plans {
		rows = append(rows, planRow(plan))
	}
	return rows, nil
}

func planRow(plan models.Plan) dto.DashboardRow {
	return dto.DashboardRow{
		PlanID:         plan.ID,
		SupervisorID:   plan.SupervisorID,
		SupervisorName: plan.Supervisor.FullName,
		NationalID:     plan.Supervisor.NationalID,
		Department:     plan.Supervisor.Department,
		Status:         plan.Status,
		StatusLabel:    plan.StatusLabel(),
		FilledCount:    plan.FilledCount(),
		FullyFilled:    plan.IsFullyFilled(),
		SavedAt:        plan.SavedAt,
		ApprovedAt:     plan.ApprovedAt,
	}
}

func filterRows(rows []dto.DashboardRow, status string) []dto.DashboardRow {
	if status == "" || status == "all" {
		return rows
	}

	filtered := make([]dto.DashboardRow, 0, len(rows))
	for _, row := range rows {
		switch status {
		case "not_full":
			if !row.FullyFilled {
				filtered = append(filtered, row)
			}
		default:
			if row.Status == status {
				filtered = append(filtered, row)
			}
		}
	}
	return filtered
}

func (s *managerService) kpis(ctx context.Context, week models.PlanWeek) (dto.DashboardKPIs, error) {
	cacheKey := kpiCacheKey(week.ID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var kpis dto.DashboardKPIs
			if unmarshalErr := json.Unmarshal([]byte(cached), &kpis); unmarshalErr == nil {
				return kpis, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read kpi cache")
		}
	}

	rows, err := s.collectRows(ctx, week, "")
	if err != nil {
		return dto.DashboardKPIs{}, err
	}

	kpis := dto.DashboardKPIs{Supervisors: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case models.PlanStatusApproved:
			kpis.Approved++
		case models.PlanStatusUnlockRequested:
			kpis.UnlockPending++
		default:
			kpis.Draft++
		}
		if !row.FullyFilled {
			kpis.NotFull++
		}
	}

	if s.cache != nil {
		payload, err := json.Marshal(kpis)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store kpi cache")
			}
		}
	}

	return kpis, nil
}

func (s *managerService) invalidateKPIs(ctx context.Context, weekID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, kpiCacheKey(weekID)).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate kpi cache")
	}
}

func kpiCacheKey(weekID uint) string {
	return fmt.Sprintf("dashboard:kpis:week:%d", weekID)
}

func (s *managerService) publishEvent(ctx context.Context, eventType, message string, planID uint, metadata map[string]any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, eventType, message, &planID, metadata); err != nil {
		s.logger.Warn().Err(err).Str("type", eventType).Msg("failed to publish plan event")
	}
}
