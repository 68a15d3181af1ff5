package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// AssignmentRepository defines persistence operations for supervisor-school
// assignments.
type AssignmentRepository interface {
	ListActiveSchools(ctx context.Context, supervisorID uint) ([]models.School, error)
	IsAssigned(ctx context.Context, supervisorID, schoolID uint) (bool, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListActiveSchools(ctx context.Context, supervisorID uint) ([]models.School, error) {
	var schools []models.School
	err := r.db.WithContext(ctx).
		Joins("JOIN assignments ON assignments.school_id = schools.id").
		Where("assignments.supervisor_id = ? AND assignments.is_active = ? AND schools.is_active = ?", supervisorID, true, true).
		Order("schools.name ASC").
		Find(&schools).Error
	if err != nil {
		return nil, err
	}
	return schools, nil
}

func (r *assignmentRepository) IsAssigned(ctx context.Context, supervisorID, schoolID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("supervisor_id = ? AND school_id = ? AND is_active = ?", supervisorID, schoolID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
