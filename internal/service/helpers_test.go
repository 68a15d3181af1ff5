package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type memorySupervisorRepo struct {
	supervisors map[uint]models.Supervisor
}

func newMemorySupervisorRepo(supervisors ...models.Supervisor) *memorySupervisorRepo {
	repo := &memorySupervisorRepo{supervisors: make(map[uint]models.Supervisor)}
	for _, supervisor := range supervisors {
		repo.supervisors[supervisor.ID] = supervisor
	}
	return repo
}

func (m *memorySupervisorRepo) GetByID(_ context.Context, id uint) (models.Supervisor, error) {
	supervisor, ok := m.supervisors[id]
	if !ok {
		return models.Supervisor{}, gorm.ErrRecordNotFound
	}
	return supervisor, nil
}

func (m *memorySupervisorRepo) FindActiveByNationalID(_ context.Context, nationalID string) (models.Supervisor, error) {
	for _, supervisor := range m.supervisors {
		if supervisor.NationalID == nationalID && supervisor.IsActive {
			return supervisor, nil
		}
	}
	return models.Supervisor{}, gorm.ErrRecordNotFound
}

func (m *memorySupervisorRepo) ListActive(_ context.Context) ([]models.Supervisor, error) {
	results := make([]models.Supervisor, 0, len(m.supervisors))
	for _, supervisor := range m.supervisors {
		if supervisor.IsActive {
			results = append(results, supervisor)
		}
	}
	return results, nil
}

type memoryPlanRepo struct {
	plans  map[uint]models.Plan
	days   map[uint]map[int]models.PlanDay
	weeks  map[uint]models.PlanWeek
	nextID uint
}

func newMemoryPlanRepo(weeks ...models.PlanWeek) *memoryPlanRepo {
	repo := &memoryPlanRepo{
		plans:  make(map[uint]models.Plan),
		days:   make(map[uint]map[int]models.PlanDay),
		weeks:  make(map[uint]models.PlanWeek),
		nextID: 1,
	}
	for _, week := range weeks {
		repo.weeks[week.ID] = week
	}
	return repo
}

func (m *memoryPlanRepo) seed(plan models.Plan) models.Plan {
	if plan.ID == 0 {
		plan.ID = m.nextID
		m.nextID++
	} else if plan.ID >= m.nextID {
		m.nextID = plan.ID + 1
	}
	m.plans[plan.ID] = plan
	if m.days[plan.ID] == nil {
		m.days[plan.ID] = make(map[int]models.PlanDay)
	}
	for _, day := range plan.Days {
		m.days[plan.ID][day.Weekday] = day
	}
	return plan
}

func (m *memoryPlanRepo) withDays(plan models.Plan) models.Plan {
	plan.Days = plan.Days[:0]
	for wd := 0; wd < models.WeekdayCount; wd++ {
		if day, ok := m.days[plan.ID][wd]; ok {
			plan.Days = append(plan.Days, day)
		}
	}
	if week, ok := m.weeks[plan.WeekID]; ok {
		plan.Week = week
	}
	return plan
}

func (m *memoryPlanRepo) GetByID(_ context.Context, id uint) (models.Plan, error) {
	plan, ok := m.plans[id]
	if !ok {
		return models.Plan{}, gorm.ErrRecordNotFound
	}
	return m.withDays(plan), nil
}

func (m *memoryPlanRepo) GetOrCreate(_ context.Context, supervisorID, weekID uint) (models.Plan, error) {
	for _, plan := range m.plans {
		if plan.SupervisorID == supervisorID && plan.WeekID == weekID {
			return m.withDays(plan), nil
		}
	}
	plan := models.Plan{
		ID:           m.nextID,
		SupervisorID: supervisorID,
		WeekID:       weekID,
		Status:       models.PlanStatusDraft,
	}
	m.nextID++
	m.plans[plan.ID] = plan
	m.days[plan.ID] = make(map[int]models.PlanDay)
	return m.withDays(plan), nil
}

func (m *memoryPlanRepo) ListByWeek(_ context.Context, filter repository.PlanFilter) ([]models.Plan, error) {
	results := make([]models.Plan, 0, len(m.plans))
	for _, plan := range m.plans {
		if plan.WeekID == filter.WeekID {
			results = append(results, m.withDays(plan))
		}
	}
	return results, nil
}

func (m *memoryPlanRepo) ListDaysByWeek(_ context.Context, weekID uint) ([]models.PlanDay, error) {
	var results []models.PlanDay
	for _, plan := range m.plans {
		if plan.WeekID != weekID {
			continue
		}
		for _, day := range m.withDays(plan).Days {
			results = append(results, day)
		}
	}
	return results, nil
}

func (m *memoryPlanRepo) Update(_ context.Context, plan *models.Plan) error {
	stored, ok := m.plans[plan.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = plan.Status
	stored.SavedAt = plan.SavedAt
	stored.ApprovedAt = plan.ApprovedAt
	m.plans[plan.ID] = stored
	return nil
}

func (m *memoryPlanRepo) UpsertDay(_ context.Context, day *models.PlanDay) error {
	if m.days[day.PlanID] == nil {
		m.days[day.PlanID] = make(map[int]models.PlanDay)
	}
	if existing, ok := m.days[day.PlanID][day.Weekday]; ok {
		day.ID = existing.ID
	}
	m.days[day.PlanID][day.Weekday] = *day
	return nil
}

func (m *memoryPlanRepo) DeleteDay(_ context.Context, planID uint, weekday int) error {
	delete(m.days[planID], weekday)
	return nil
}

type memoryWeekRepo struct {
	weeks map[int]models.PlanWeek
}

func newMemoryWeekRepo(weeks ...models.PlanWeek) *memoryWeekRepo {
	repo := &memoryWeekRepo{weeks: make(map[int]models.PlanWeek)}
	for _, week := range weeks {
		repo.weeks[week.WeekNo] = week
	}
	return repo
}

func (m *memoryWeekRepo) List(_ context.Context, includeBreaks bool) ([]models.PlanWeek, error) {
	results := make([]models.PlanWeek, 0, len(m.weeks))
	for weekNo := models.PlanWeekMin; weekNo <= models.PlanWeekMax; weekNo++ {
		week, ok := m.weeks[weekNo]
		if !ok {
			continue
		}
		if week.IsBreak && !includeBreaks {
			continue
		}
		results = append(results, week)
	}
	return results, nil
}

func (m *memoryWeekRepo) GetByWeekNo(_ context.Context, weekNo int) (models.PlanWeek, error) {
	week, ok := m.weeks[weekNo]
	if !ok {
		return models.PlanWeek{}, gorm.ErrRecordNotFound
	}
	return week, nil
}

func (m *memoryWeekRepo) FirstSchedulable(_ context.Context) (models.PlanWeek, error) {
	for weekNo := models.PlanWeekMin; weekNo <= models.PlanWeekMax; weekNo++ {
		if week, ok := m.weeks[weekNo]; ok && !week.IsBreak {
			return week, nil
		}
	}
	return models.PlanWeek{}, gorm.ErrRecordNotFound
}

func (m *memoryWeekRepo) Upsert(_ context.Context, week *models.PlanWeek) error {
	if existing, ok := m.weeks[week.WeekNo]; ok {
		week.ID = existing.ID
	} else if week.ID == 0 {
		week.ID = uint(len(m.weeks) + 1)
	}
	m.weeks[week.WeekNo] = *week
	return nil
}

type memoryAssignmentRepo struct {
	schools map[uint][]models.School
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{schools: make(map[uint][]models.School)}
}

func (m *memoryAssignmentRepo) assign(supervisorID uint, school models.School) {
	m.schools[supervisorID] = append(m.schools[supervisorID], school)
}

func (m *memoryAssignmentRepo) ListActiveSchools(_ context.Context, supervisorID uint) ([]models.School, error) {
	return m.schools[supervisorID], nil
}

func (m *memoryAssignmentRepo) IsAssigned(_ context.Context, supervisorID, schoolID uint) (bool, error) {
	for _, school := range m.schools[supervisorID] {
		if school.ID == schoolID {
			return true, nil
		}
	}
	return false, nil
}

type memoryUnlockRepo struct {
	requests map[uint]models.UnlockRequest
	nextID   uint
}

func newMemoryUnlockRepo() *memoryUnlockRepo {
	return &memoryUnlockRepo{requests: make(map[uint]models.UnlockRequest), nextID: 1}
}

func (m *memoryUnlockRepo) GetByID(_ context.Context, id uint) (models.UnlockRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return models.UnlockRequest{}, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (m *memoryUnlockRepo) GetByPlanID(_ context.Context, planID uint) (models.UnlockRequest, error) {
	for _, request := range m.requests {
		if request.PlanID == planID {
			return request, nil
		}
	}
	return models.UnlockRequest{}, gorm.ErrRecordNotFound
}

func (m *memoryUnlockRepo) Save(_ context.Context, request *models.UnlockRequest) error {
	// Mirrors the uniqueIndex on plan_id.
	for id, existing := range m.requests {
		if existing.PlanID == request.PlanID && id != request.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	if request.ID == 0 {
		request.ID = m.nextID
		request.CreatedAt = time.Now()
		m.nextID++
	}
	m.requests[request.ID] = *request
	return nil
}

func (m *memoryUnlockRepo) DeleteByPlanID(_ context.Context, planID uint) error {
	for id, request := range m.requests {
		if request.PlanID == planID {
			delete(m.requests, id)
		}
	}
	return nil
}

func (m *memoryUnlockRepo) ListPending(_ context.Context) ([]models.UnlockRequest, error) {
	results := make([]models.UnlockRequest, 0, len(m.requests))
	for _, request := range m.requests {
		if request.IsPending() {
			results = append(results, request)
		}
	}
	return results, nil
}

type recordedEvent struct {
	eventType string
	message   string
	planID    *uint
	metadata  map[string]any
}

type stubEvents struct {
	published []recordedEvent
}

func (s *stubEvents) Publish(_ context.Context, eventType, message string, planID *uint, metadata map[string]any) error {
	s.published = append(s.published, recordedEvent{eventType: eventType, message: message, planID: planID, metadata: metadata})
	return nil
}

func (s *stubEvents) List(context.Context, int, int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (s *stubEvents) Subscribe() (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() { close(ch) }
}

func (s *stubEvents) Start(context.Context) {}
