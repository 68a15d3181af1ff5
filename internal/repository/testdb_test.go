package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.School{},
		&models.Principal{},
		&models.Supervisor{},
		&models.Assignment{},
		&models.PlanWeek{},
		&models.Plan{},
		&models.PlanDay{},
		&models.UnlockRequest{},
		&models.ImportBatch{},
		&models.RejectedRow{},
		&models.Notification{},
	))
	return db
}
