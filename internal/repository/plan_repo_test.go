package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

func TestPlanRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)

	supervisor := models.Supervisor{NationalID: "1020103717", FullName: "سالم العتيبي", IsActive: true}
	week := models.PlanWeek{WeekNo: 3, StartSunday: time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&supervisor).Error)
	require.NoError(t, db.Create(&week).Error)

	first, err := repo.GetOrCreate(context.Background(), supervisor.ID, week.ID)
	require.NoError(t, err)
	require.Equal(t, models.PlanStatusDraft, first.Status)

	second, err := repo.GetOrCreate(context.Background(), supervisor.ID, week.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestPlanRepositoryUpsertDayReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)

	supervisor := models.Supervisor{NationalID: "1000000001", FullName: "مشرف", IsActive: true}
	week := models.PlanWeek{WeekNo: 1, StartSunday: time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)}
	school := models.School{StatCode: "70228", Name: "مدرسة الأمل", Gender: models.SchoolGenderBoys, IsActive: true}
	require.NoError(t, db.Create(&supervisor).Error)
	require.NoError(t, db.Create(&week).Error)
	require.NoError(t, db.Create(&school).Error)

	plan, err := repo.GetOrCreate(context.Background(), supervisor.ID, week.ID)
	require.NoError(t, err)

	day := models.PlanDay{PlanID: plan.ID, Weekday: 0, SchoolID: &school.ID, VisitType: models.VisitTypeInPerson}
	require.NoError(t, repo.UpsertDay(context.Background(), &day))

	// same weekday switches to an explicit no-visit entry
	replacement := models.PlanDay{
		PlanID:        plan.ID,
		Weekday:       0,
		VisitType:     models.VisitTypeNone,
		NoVisitReason: models.NoVisitReasonTraining,
		Note:          "دورة تدريبية",
	}
	require.NoError(t, repo.UpsertDay(context.Background(), &replacement))

	var days []models.PlanDay
	require.NoError(t, db.Where("plan_id = ?", plan.ID).Find(&days).Error)
	require.Len(t, days, 1)
	require.Nil(t, days[0].SchoolID)
	require.Equal(t, models.VisitTypeNone, days[0].VisitType)
	require.Equal(t, models.NoVisitReasonTraining, days[0].NoVisitReason)
}

func TestPlanRepositoryListByWeekFiltersBySearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanRepository(db)

	week := models.PlanWeek{WeekNo: 2, StartSunday: time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&week).Error)

	alpha := models.Supervisor{NationalID: "1000000001", FullName: "أحمد الزهراني", IsActive: true}
	beta := models.Supervisor{NationalID: "1000000002", FullName: "بدر الشمري", IsActive: true}
	require.NoError(t, db.Create(&alpha).Error)
	require.NoError(t, db.Create(&beta).Error)

	_, err := repo.GetOrCreate(context.Background(), alpha.ID, week.ID)
	require.NoError(t, err)
	_, err = repo.GetOrCreate(context.Background(), beta.ID, week.ID)
	require.NoError(t, err)

	plans, err := repo.ListByWeek(context.Background(), PlanFilter{WeekID: week.ID})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	plans, err = repo.ListByWeek(context.Background(), PlanFilter{WeekID: week.ID, Search: "الزهراني"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, alpha.ID, plans[0].SupervisorID)

	plans, err = repo.ListByWeek(context.Background(), PlanFilter{WeekID: week.ID, Search: "1000000002"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, beta.ID, plans[0].SupervisorID)
}
