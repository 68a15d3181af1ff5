package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// UnlockRequestRepository defines persistence operations for unlock requests.
type UnlockRequestRepository interface {
	GetByID(ctx context.Context, id uint) (models.UnlockRequest, error)
	GetByPlanID(ctx context.Context, planID uint) (models.UnlockRequest, error)
	Save(ctx context.Context, request *models.UnlockRequest) error
	DeleteByPlanID(ctx context.Context, planID uint) error
	ListPending(ctx context.Context) ([]models.UnlockRequest, error)
}

type unlockRequestRepository struct {
	db *gorm.DB
}

// NewUnlockRequestRepository instantiates a GORM-backed repository.
func NewUnlockRequestRepository(db *gorm.DB) UnlockRequestRepository {
	return &unlockRequestRepository{db: db}
}

func (r *unlockRequestRepository) GetByID(ctx context.Context, id uint) (models.UnlockRequest, error) {
	var request models.UnlockRequest
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Preload("Plan.Week").
		Preload("Plan.Supervisor").
		First(&request, id).Error
	if err != nil {
		return models.UnlockRequest{}, err
	}
	return request, nil
}

func (r *unlockRequestRepository) GetByPlanID(ctx context.Context, planID uint) (models.UnlockRequest, error) {
	var request models.UnlockRequest
	if err := r.db.WithContext(ctx).Where("plan_id = ?", planID).First(&request).Error; err != nil {
		return models.UnlockRequest{}, err
	}
	return request, nil
}

func (r *unlockRequestRepository) Save(ctx context.Context, request *models.UnlockRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *unlockRequestRepository) DeleteByPlanID(ctx context.Context, planID uint) error {
	return r.db.WithContext(ctx).Where("plan_id = ?", planID).Delete(&models.UnlockRequest{}).Error
}

func (r *unlockRequestRepository) ListPending(ctx context.Context) ([]models.UnlockRequest, error) {
	var requests []models.UnlockRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.UnlockStatusPending).
		Preload("Plan").
		Preload("Plan.Week").
		Preload("Plan.Supervisor").
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
