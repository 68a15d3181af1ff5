package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// PlanFilter narrows the manager's per-week plan listing.
type PlanFilter struct {
	WeekID uint
	Search string
}

// PlanRepository defines persistence operations for plans and their days.
type PlanRepository interface {
	GetByID(ctx context.Context, id uint) (models.Plan, error)
	GetOrCreate(ctx context.Context, supervisorID, weekID uint) (models.Plan, error)
	ListByWeek(ctx context.Context, filter PlanFilter) ([]models.Plan, error)
	ListDaysByWeek(ctx context.Context, weekID uint) ([]models.PlanDay, error)
	Update(ctx context.Context, plan *models.Plan) error
	UpsertDay(ctx context.Context, day *models.PlanDay) error
	DeleteDay(ctx context.Context, planID uint, weekday int) error
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository instantiates a GORM-backed repository.
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).
		Preload("Supervisor").
		Preload("Week").
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("weekday ASC") }).
		Preload("Days.School").
		First(&plan, id).Error
	if err != nil {
		return models.Plan{}, err
	}
	return plan, nil
}

func (r *planRepository) GetOrCreate(ctx context.Context, supervisorID, weekID uint) (models.Plan, error) {
	var plan models.Plan
	err := r.db.WithContext(ctx).
		Preload("Week").
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("weekday ASC") }).
		Preload("Days.School").
		Where("supervisor_id = ? AND week_id = ?", supervisorID, weekID).
		First(&plan).Error
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Plan{}, err
	}

	plan = models.Plan{SupervisorID: supervisorID, WeekID: weekID, Status: models.PlanStatusDraft}
	if err := r.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return models.Plan{}, err
	}
	return r.GetByID(ctx, plan.ID)
}

func (r *planRepository) ListByWeek(ctx context.Context, filter PlanFilter) ([]models.Plan, error) {
	query := r.db.WithContext(ctx).
		Joins("JOIN supervisors ON supervisors.id = plans.supervisor_id").
		Where("plans.week_id = ?", filter.WeekID).
		Preload("Supervisor").
		Preload("Week").
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("weekday ASC") }).
		Preload("Days.School").
		Order("supervisors.full_name ASC")

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(supervisors.full_name) LIKE ? OR supervisors.national_id LIKE ?", pattern, pattern)
	}

	var plans []models.Plan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) ListDaysByWeek(ctx context.Context, weekID uint) ([]models.PlanDay, error) {
	var days []models.PlanDay
	err := r.db.WithContext(ctx).
		Joins("JOIN plans ON plans.id = plan_days.plan_id").
		Joins("JOIN supervisors ON supervisors.id = plans.supervisor_id").
		Where("plans.week_id = ?", weekID).
		Preload("School").
		Preload("Plan.Supervisor").
		Order("supervisors.full_name ASC, plan_days.weekday ASC").
		Find(&days).Error
	if err != nil {
		return nil, err
	}
	return days, nil
}

func (r *planRepository) Update(ctx context.Context, plan *models.Plan) error {
	return r.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ?", plan.ID).
		Updates(map[string]interface{}{
			"status":      plan.Status,
			"saved_at":    plan.SavedAt,
			"approved_at": plan.ApprovedAt,
		}).Error
}

func (r *planRepository) UpsertDay(ctx context.Context, day *models.PlanDay) error {
	var existing models.PlanDay
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND weekday = ?", day.PlanID, day.Weekday).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(day).Error
	}
	if err != nil {
		return err
	}

	existing.SchoolID = day.SchoolID
	existing.VisitType = day.VisitType
	existing.NoVisitReason = day.NoVisitReason
	existing.Note = day.Note
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}
	day.ID = existing.ID
	return nil
}

func (r *planRepository) DeleteDay(ctx context.Context, planID uint, weekday int) error {
	return r.db.WithContext(ctx).
		Where("plan_id = ? AND weekday = ?", planID, weekday).
		Delete(&models.PlanDay{}).Error
}
