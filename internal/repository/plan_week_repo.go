package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// PlanWeekRepository defines persistence operations for the week calendar.
type PlanWeekRepository interface {
	List(ctx context.Context, includeBreaks bool) ([]models.PlanWeek, error)
	GetByWeekNo(ctx context.Context, weekNo int) (models.PlanWeek, error)
	FirstSchedulable(ctx context.Context) (models.PlanWeek, error)
	Upsert(ctx context.Context, week *models.PlanWeek) error
}

type planWeekRepository struct {
	db *gorm.DB
}

// NewPlanWeekRepository instantiates a GORM-backed repository.
func NewPlanWeekRepository(db *gorm.DB) PlanWeekRepository {
	return &planWeekRepository{db: db}
}

func (r *planWeekRepository) List(ctx context.Context, includeBreaks bool) ([]models.PlanWeek, error) {
	query := r.db.WithContext(ctx).Order("week_no ASC")
	if !includeBreaks {
		query = query.Where("is_break = ?", false)
	}
	var weeks []models.PlanWeek
	if err := query.Find(&weeks).Error; err != nil {
		return nil, err
	}
	return weeks, nil
}

func (r *planWeekRepository) GetByWeekNo(ctx context.Context, weekNo int) (models.PlanWeek, error) {
	var week models.PlanWeek
	if err := r.db.WithContext(ctx).Where("week_no = ?", weekNo).First(&week).Error; err != nil {
		return models.PlanWeek{}, err
	}
	return week, nil
}

func (r *planWeekRepository) FirstSchedulable(ctx context.Context) (models.PlanWeek, error) {
	var week models.PlanWeek
	err := r.db.WithContext(ctx).
		Where("is_break = ?", false).
		Order("week_no ASC").
		First(&week).Error
	if err != nil {
		return models.PlanWeek{}, err
	}
	return week, nil
}

func (r *planWeekRepository) Upsert(ctx context.Context, week *models.PlanWeek) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "week_no"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_sunday", "title", "is_break", "updated_at"}),
	}).Create(week).Error
}
