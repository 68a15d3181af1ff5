package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

type managerFixture struct {
	svc         ManagerService
	plans       *memoryPlanRepo
	weeks       *memoryWeekRepo
	supervisors *memorySupervisorRepo
	unlocks     *memoryUnlockRepo
	events      *stubEvents
}

func newManagerFixture(t *testing.T, withCache bool) managerFixture {
	t.Helper()

	var cache *redis.Client
	if withCache {
		server, err := miniredis.Run()
		require.NoError(t, err)
		t.Cleanup(server.Close)
		cache = redis.NewClient(&redis.Options{Addr: server.Addr()})
		t.Cleanup(func() { _ = cache.Close() })
	}

	weeks := testWeeks()
	plans := newMemoryPlanRepo(weeks...)
	weekRepo := newMemoryWeekRepo(weeks...)
	supervisors := newMemorySupervisorRepo(
		models.Supervisor{ID: 1, NationalID: "1020103717", FullName: "مشرف أول", IsActive: true},
		models.Supervisor{ID: 2, NationalID: "1034567890", FullName: "مشرف ثان", IsActive: true},
	)
	unlocks := newMemoryUnlockRepo()
	events := &stubEvents{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	return managerFixture{
		svc:         NewManagerService(plans, weekRepo, supervisors, unlocks, events, cache, time.Minute, validate, testLogger()),
		plans:       plans,
		weeks:       weekRepo,
		supervisors: supervisors,
		unlocks:     unlocks,
		events:      events,
	}
}

func seedFullPlan(f managerFixture, supervisorID, weekID uint, status string) models.Plan {
	supervisor := f.supervisors.supervisors[supervisorID]
	plan := models.Plan{
		SupervisorID: supervisorID,
		WeekID:       weekID,
		Status:       status,
		Supervisor:   supervisor,
	}
	for wd := 0; wd < models.WeekdayCount; wd++ {
		schoolID := uint(100 + wd)
		plan.Days = append(plan.Days, models.PlanDay{Weekday: wd, SchoolID: &schoolID, VisitType: models.VisitTypeInPerson})
	}
	return f.plans.seed(plan)
}

func TestManagerDashboardCountsAndFilters(t *testing.T) {
	f := newManagerFixture(t, true)
	seedFullPlan(f, 1, 2, models.PlanStatusApproved)

	result, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2})
	require.NoError(t, err)
	require.Equal(t, 2, result.Week.WeekNo)
	require.Equal(t, 2, result.KPIs.Supervisors)
	require.Equal(t, 1, result.KPIs.Approved)
	require.Equal(t, 1, result.KPIs.Draft)
	require.Equal(t, 1, result.KPIs.NotFull)
	require.Len(t, result.Rows, 2)

	approvedOnly, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2, Status: "approved"})
	require.NoError(t, err)
	require.Len(t, approvedOnly.Rows, 1)
	require.Equal(t, "مشرف أول", approvedOnly.Rows[0].SupervisorName)

	notFull, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2, Status: "not_full"})
	require.NoError(t, err)
	require.Len(t, notFull.Rows, 1)
	require.Equal(t, "مشرف ثان", notFull.Rows[0].SupervisorName)
}

func TestManagerDashboardServesCachedKPIs(t *testing.T) {
	f := newManagerFixture(t, true)
	seedFullPlan(f, 1, 2, models.PlanStatusApproved)

	first, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2})
	require.NoError(t, err)

	// mutate behind the cache; KPIs must come from the cached copy
	seedFullPlan(f, 2, 2, models.PlanStatusApproved)

	second, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2})
	require.NoError(t, err)
	require.Equal(t, first.KPIs, second.KPIs)
}

func TestManagerDashboardPagination(t *testing.T) {
	f := newManagerFixture(t, false)

	result, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2, PageSize: 10, Page: 1})
	require.NoError(t, err)
	require.Equal(t, 2, result.TotalRows)
	require.Equal(t, 1, result.TotalPages)

	unpaged, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2, NoPaging: true})
	require.NoError(t, err)
	require.Len(t, unpaged.Rows, 2)
}

func TestManagerDashboardWeekSelectorIncludesBreaksOnAll(t *testing.T) {
	f := newManagerFixture(t, false)

	result, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2})
	require.NoError(t, err)
	require.Len(t, result.Weeks, 2)
	for _, week := range result.Weeks {
		require.False(t, week.IsBreak)
	}

	widened, err := f.svc.Dashboard(context.Background(), dto.DashboardQuery{Week: 2, All: true})
	require.NoError(t, err)
	require.Len(t, widened.Weeks, 3)
	require.True(t, widened.Weeks[0].IsBreak)
}

func TestManagerPlanDetail(t *testing.T) {
	f := newManagerFixture(t, false)
	plan := seedFullPlan(f, 1, 2, models.PlanStatusUnlockRequested)

	require.NoError(t, f.unlocks.Save(context.Background(), &models.UnlockRequest{
		PlanID: plan.ID,
		Reason: "تعديل",
		Status: models.UnlockStatusPending,
	}))

	detail, err := f.svc.PlanDetail(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, plan.ID, detail.ID)
	require.Equal(t, 2, detail.Week.WeekNo)
	require.True(t, detail.UnlockPending)
	require.True(t, detail.FullyFilled)

	_, err = f.svc.PlanDetail(context.Background(), 999)
	require.ErrorIs(t, err, ErrPlanNotFound)
}

func TestManagerForceApproveRequiresFullPlan(t *testing.T) {
	f := newManagerFixture(t, false)
	partial := f.plans.seed(models.Plan{SupervisorID: 1, WeekID: 2, Status: models.PlanStatusDraft})

	_, err := f.svc.ForceApprove(context.Background(), partial.ID)
	require.ErrorIs(t, err, ErrPlanNotFull)

	full := seedFullPlan(f, 2, 2, models.PlanStatusDraft)
	approved, err := f.svc.ForceApprove(context.Background(), full.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
}

func TestManagerBackToDraftIsIdempotent(t *testing.T) {
	f := newManagerFixture(t, false)
	plan := seedFullPlan(f, 1, 2, models.PlanStatusApproved)

	require.NoError(t, f.unlocks.Save(context.Background(), &models.UnlockRequest{
		PlanID: plan.ID,
		Reason: "تعديل",
		Status: models.UnlockStatusPending,
	}))

	drafted, err := f.svc.BackToDraft(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanStatusDraft, drafted.Status)
	require.Nil(t, drafted.ApprovedAt)

	pending, err := f.unlocks.ListPending(context.Background())
	require.NoError(t, err)
	require.Empty(t, pending)

	events := len(f.events.published)
	again, err := f.svc.BackToDraft(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanStatusDraft, again.Status)
	require.Len(t, f.events.published, events)
}

func TestManagerResolveUnlock(t *testing.T) {
	f := newManagerFixture(t, false)
	plan := seedFullPlan(f, 1, 2, models.PlanStatusUnlockRequested)

	request := models.UnlockRequest{PlanID: plan.ID, Reason: "تعديل", Status: models.UnlockStatusPending, Plan: f.plans.plans[plan.ID]}
	require.NoError(t, f.unlocks.Save(context.Background(), &request))

	resolved, err := f.svc.ResolveUnlock(context.Background(), request.ID, dto.UnlockResolveRequest{Decision: "approve"})
	require.NoError(t, err)
	require.Equal(t, models.UnlockStatusApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	updated, err := f.plans.GetByID(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanStatusDraft, updated.Status)

	_, err = f.svc.ResolveUnlock(context.Background(), request.ID, dto.UnlockResolveRequest{Decision: "reject"})
	require.ErrorIs(t, err, ErrUnlockAlreadyResolved)
}

func TestManagerResolveUnlockReject(t *testing.T) {
	f := newManagerFixture(t, false)
	plan := seedFullPlan(f, 1, 2, models.PlanStatusUnlockRequested)

	request := models.UnlockRequest{PlanID: plan.ID, Reason: "تعديل", Status: models.UnlockStatusPending, Plan: f.plans.plans[plan.ID]}
	require.NoError(t, f.unlocks.Save(context.Background(), &request))

	resolved, err := f.svc.ResolveUnlock(context.Background(), request.ID, dto.UnlockResolveRequest{Decision: "reject"})
	require.NoError(t, err)
	require.Equal(t, models.UnlockStatusRejected, resolved.Status)

	updated, err := f.plans.GetByID(context.Background(), plan.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanStatusApproved, updated.Status)
}

func TestManagerGenerateWeeks(t *testing.T) {
	f := newManagerFixture(t, false)

	weeks, err := f.svc.GenerateWeeks(context.Background(), dto.WeekGenerateRequest{
		StartSunday: "2025-08-24",
		Count:       4,
		BreakWeeks:  []int{3},
	})
	require.NoError(t, err)
	require.Len(t, weeks, 4)
	require.True(t, weeks[2].IsBreak)
	require.Equal(t, "2025-08-31", weeks[1].StartSunday)

	_, err = f.svc.GenerateWeeks(context.Background(), dto.WeekGenerateRequest{
		StartSunday: "2025-08-25",
		Count:       2,
	})
	require.ErrorIs(t, err, ErrStartNotSunday)
}
