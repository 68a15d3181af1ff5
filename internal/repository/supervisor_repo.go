package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// SupervisorRepository defines persistence operations for supervisors.
type SupervisorRepository interface {
	GetByID(ctx context.Context, id uint) (models.Supervisor, error)
	FindActiveByNationalID(ctx context.Context, nationalID string) (models.Supervisor, error)
	ListActive(ctx context.Context) ([]models.Supervisor, error)
}

type supervisorRepository struct {
	db *gorm.DB
}

// NewSupervisorRepository instantiates a GORM-backed repository.
func NewSupervisorRepository(db *gorm.DB) SupervisorRepository {
	return &supervisorRepository{db: db}
}

func (r *supervisorRepository) GetByID(ctx context.Context, id uint) (models.Supervisor, error) {
	var supervisor models.Supervisor
	if err := r.db.WithContext(ctx).First(&supervisor, id).Error; err != nil {
		return models.Supervisor{}, err
	}
	return supervisor, nil
}

func (r *supervisorRepository) FindActiveByNationalID(ctx context.Context, nationalID string) (models.Supervisor, error) {
	var supervisor models.Supervisor
	err := r.db.WithContext(ctx).
		Where("national_id = ? AND is_active = ?", nationalID, true).
		First(&supervisor).Error
	if err != nil {
		return models.Supervisor{}, err
	}
	return supervisor, nil
}

func (r *supervisorRepository) ListActive(ctx context.Context) ([]models.Supervisor, error) {
	var supervisors []models.Supervisor
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&supervisors).Error
	if err != nil {
		return nil, err
	}
	return supervisors, nil
}
