package dto

import (
	"time"

	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

// SupervisorResponse is the serialized supervisor profile.
type SupervisorResponse struct {
	ID         uint   `json:"id"`
	NationalID string `json:"national_id"`
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

// NewSupervisorResponse converts a model into a DTO.
func NewSupervisorResponse(model models.Supervisor) SupervisorResponse {
	return SupervisorResponse{
		ID:         model.ID,
		NationalID: model.NationalID,
		FullName:   model.FullName,
		Department: model.Department,
	}
}

// PlanDayRequest describes a single weekday entry in a plan save payload.
// Exactly one of SchoolID or NoVisitReason must be meaningful: when VisitType
// is "none" the school is ignored, otherwise the school must be assigned to
// the supervisor.
type PlanDayRequest struct {
	Weekday       int    `form:"weekday" json:"weekday" validate:"min=0,max=4"`
	SchoolID      *uint  `form:"school_id" json:"school_id"`
	VisitType     string `form:"visit_type" json:"visit_type" validate:"required,oneof=in remote none"`
	NoVisitReason string `form:"no_visit_reason" json:"no_visit_reason" validate:"omitempty,oneof=meeting training event office other"`
	Note          string `form:"note" json:"note" validate:"max=500"`
}

// PlanSaveRequest carries the full set of weekday entries for a plan. Action
// selects between a plain save and a save-then-approve submission.
type PlanSaveRequest struct {
	Action string           `json:"action" validate:"omitempty,oneof=save approve"`
	Days   []PlanDayRequest `json:"days" validate:"required,max=5,dive"`
}

// SchoolResponse is the serialized school used in day entries and pickers.
type SchoolResponse struct {
	ID       uint   `json:"id"`
	StatCode string `json:"stat_code"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Stage    string `json:"stage"`
}

// NewSchoolResponse converts a model into a DTO.
func NewSchoolResponse(model models.School) SchoolResponse {
	return SchoolResponse{
		ID:       model.ID,
		StatCode: model.StatCode,
		Name:     model.Name,
		Gender:   model.Gender,
		Stage:    model.Stage,
	}
}

// NewSchoolResponseSlice converts a slice of models into DTOs.
func NewSchoolResponseSlice(schools []models.School) []SchoolResponse {
	responses := make([]SchoolResponse, 0, len(schools))
	for _, school := range schools {
		responses = append(responses, NewSchoolResponse(school))
	}

	return responses
}

// PlanDayResponse is a single weekday entry enriched with calendar dates.
type PlanDayResponse struct {
	Weekday        int             `json:"weekday"`
	WeekdayName    string          `json:"weekday_name"`
	Date           string          `json:"date"`
	HijriDate      string          `json:"hijri_date"`
	School         *SchoolResponse `json:"school"`
	VisitType      string          `json:"visit_type"`
	VisitTypeLabel string          `json:"visit_type_label"`
	NoVisitReason  string          `json:"no_visit_reason"`
	Note           string          `json:"note"`
}

// WeekResponse is the serialized plan week.
type WeekResponse struct {
	ID          uint   `json:"id"`
	WeekNo      int    `json:"week_no"`
	StartSunday string `json:"start_sunday"`
	Title       string `json:"title"`
	IsBreak     bool   `json:"is_break"`
}

// NewWeekResponse converts a model into a DTO.
func NewWeekResponse(model models.PlanWeek) WeekResponse {
	return WeekResponse{
		ID:          model.ID,
		WeekNo:      model.WeekNo,
		StartSunday: model.StartSunday.Format("2006-01-02"),
		Title:       model.Title,
		IsBreak:     model.IsBreak,
	}
}

// NewWeekResponseSlice converts a slice of models into DTOs.
func NewWeekResponseSlice(weeks []models.PlanWeek) []WeekResponse {
	responses := make([]WeekResponse, 0, len(weeks))
	for _, week := range weeks {
		responses = append(responses, NewWeekResponse(week))
	}

	return responses
}

// PlanResponse is the full plan view returned to supervisors.
type PlanResponse struct {
	ID            uint              `json:"id"`
	Week          WeekResponse      `json:"week"`
	Status        string            `json:"status"`
	StatusLabel   string            `json:"status_label"`
	Locked        bool              `json:"locked"`
	FullyFilled   bool              `json:"fully_filled"`
	FilledCount   int               `json:"filled_count"`
	SavedAt       *time.Time        `json:"saved_at"`
	ApprovedAt    *time.Time        `json:"approved_at"`
	UnlockPending bool              `json:"unlock_pending"`
	Days          []PlanDayResponse `json:"days"`
}

// UnlockRequestCreate carries the supervisor's reason for requesting an edit
// window on an approved plan.
type UnlockRequestCreate struct {
	Reason string `form:"reason" json:"reason" validate:"required,min=5,max=500"`
}

// UnlockRequestResponse is the serialized unlock request for the manager queue.
type UnlockRequestResponse struct {
	ID             uint       `json:"id"`
	PlanID         uint       `json:"plan_id"`
	WeekNo         int        `json:"week_no"`
	SupervisorName string     `json:"supervisor_name"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

// NewUnlockRequestResponse converts a model into a DTO. Plan, Plan.Week and
// Plan.Supervisor must be preloaded.
func NewUnlockRequestResponse(model models.UnlockRequest) UnlockRequestResponse {
	return UnlockRequestResponse{
		ID:             model.ID,
		PlanID:         model.PlanID,
		WeekNo:         model.Plan.Week.WeekNo,
		SupervisorName: model.Plan.Supervisor.FullName,
		Reason:         model.Reason,
		Status:         model.Status,
		CreatedAt:      model.CreatedAt,
		ResolvedAt:     model.ResolvedAt,
	}
}

// NewUnlockRequestResponseSlice converts a slice of models into DTOs.
func NewUnlockRequestResponseSlice(requests []models.UnlockRequest) []UnlockRequestResponse {
	responses := make([]UnlockRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, NewUnlockRequestResponse(request))
	}

	return responses
}
