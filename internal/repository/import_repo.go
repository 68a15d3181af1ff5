package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// ImportRepository groups the upserts performed during a spreadsheet import
// submission. InTransaction yields a repository bound to one database
// transaction so a whole submission commits or rolls back as a unit.
type ImportRepository interface {
	InTransaction(ctx context.Context, fn func(tx ImportRepository) error) error

	UpsertSchool(ctx context.Context, statCode string, attrs models.School) (bool, error)
	FindSchoolByStatCode(ctx context.Context, statCode string) (models.School, error)
	UpsertSupervisor(ctx context.Context, nationalID string, attrs models.Supervisor) (bool, error)
	FindSupervisorByNationalID(ctx context.Context, nationalID string) (models.Supervisor, error)
	UpsertPrincipal(ctx context.Context, schoolID uint, attrs models.Principal) (bool, error)
	UpsertAssignment(ctx context.Context, supervisorID, schoolID uint, active bool) (bool, error)

	CreateBatch(ctx context.Context, batch *models.ImportBatch) error
	ListBatchesBySubmission(ctx context.Context, submissionID string) ([]models.ImportBatch, error)
	ListRejectedBySubmission(ctx context.Context, submissionID string) ([]models.RejectedRow, error)
}

type importRepository struct {
	db *gorm.DB
}

// NewImportRepository instantiates a GORM-backed repository.
func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) InTransaction(ctx context.Context, fn func(tx ImportRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&importRepository{db: tx})
	})
}

func (r *importRepository) UpsertSchool(ctx context.Context, statCode string, attrs models.School) (bool, error) {
	var school models.School
	err := r.db.WithContext(ctx).Where("stat_code = ?", statCode).First(&school).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		attrs.StatCode = statCode
		return true, r.db.WithContext(ctx).Create(&attrs).Error
	}
	if err != nil {
		return false, err
	}

	school.Name = attrs.Name
	school.Gender = attrs.Gender
	school.EducationType = attrs.EducationType
	school.Stage = attrs.Stage
	school.IsActive = attrs.IsActive
	return false, r.db.WithContext(ctx).Save(&school).Error
}

func (r *importRepository) FindSchoolByStatCode(ctx context.Context, statCode string) (models.School, error) {
	var school models.School
	if err := r.db.WithContext(ctx).Where("stat_code = ?", statCode).First(&school).Error; err != nil {
		return models.School{}, err
	}
	return school, nil
}

func (r *importRepository) UpsertSupervisor(ctx context.Context, nationalID string, attrs models.Supervisor) (bool, error) {
	var supervisor models.Supervisor
	err := r.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&supervisor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		attrs.NationalID = nationalID
		return true, r.db.WithContext(ctx).Create(&attrs).Error
	}
	if err != nil {
		return false, err
	}

	supervisor.FullName = attrs.FullName
	supervisor.Department = attrs.Department
	supervisor.IsActive = attrs.IsActive
	if attrs.Mobile != "" {
		supervisor.Mobile = attrs.Mobile
	}
	return false, r.db.WithContext(ctx).Save(&supervisor).Error
}

func (r *importRepository) FindSupervisorByNationalID(ctx context.Context, nationalID string) (models.Supervisor, error) {
	var supervisor models.Supervisor
	if err := r.db.WithContext(ctx).Where("national_id = ?", nationalID).First(&supervisor).Error; err != nil {
		return models.Supervisor{}, err
	}
	return supervisor, nil
}

func (r *importRepository) UpsertPrincipal(ctx context.Context, schoolID uint, attrs models.Principal) (bool, error) {
	var principal models.Principal
	err := r.db.WithContext(ctx).Where("school_id = ?", schoolID).First(&principal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		attrs.SchoolID = schoolID
		return true, r.db.WithContext(ctx).Create(&attrs).Error
	}
	if err != nil {
		return false, err
	}

	principal.FullName = attrs.FullName
	principal.Mobile = attrs.Mobile
	principal.NationalID = attrs.NationalID
	principal.Sector = attrs.Sector
	return false, r.db.WithContext(ctx).Save(&principal).Error
}

func (r *importRepository) UpsertAssignment(ctx context.Context, supervisorID, schoolID uint, active bool) (bool, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Where("supervisor_id = ? AND school_id = ?", supervisorID, schoolID).
		First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		assignment = models.Assignment{SupervisorID: supervisorID, SchoolID: schoolID, IsActive: active}
		return true, r.db.WithContext(ctx).Create(&assignment).Error
	}
	if err != nil {
		return false, err
	}

	// reactivate rather than duplicate
	assignment.IsActive = active
	return false, r.db.WithContext(ctx).Save(&assignment).Error
}

func (r *importRepository) CreateBatch(ctx context.Context, batch *models.ImportBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *importRepository) ListBatchesBySubmission(ctx context.Context, submissionID string) ([]models.ImportBatch, error) {
	var batches []models.ImportBatch
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("id ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *importRepository) ListRejectedBySubmission(ctx context.Context, submissionID string) ([]models.RejectedRow, error) {
	var rows []models.RejectedRow
	err := r.db.WithContext(ctx).
		Joins("JOIN import_batches ON import_batches.id = rejected_rows.import_batch_id").
		Where("import_batches.submission_id = ?", submissionID).
		Order("rejected_rows.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
