package dto

import "time"

// DashboardQuery describes the manager dashboard filters. Values arrive as
// query parameters; the service clamps page size to the allowed steps.
type DashboardQuery struct {
	Week     int    `query:"week" json:"week" validate:"omitempty,min=1,max=60"`
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=all approved draft unlock not_full"`
	Search   string `query:"q" json:"q" validate:"max=100"`
	Page     int    `query:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"ps" json:"ps" validate:"omitempty,oneof=10 20 30 50"`
	// All widens the selectable week list to break weeks.
	All bool `query:"all" json:"all"`
	// NoPaging returns every matching row in one page.
	NoPaging bool `query:"no_paging" json:"no_paging"`
}

// DashboardKPIs aggregates the headline counters for one week.
type DashboardKPIs struct {
	Supervisors   int `json:"supervisors"`
	Approved      int `json:"approved"`
	Draft         int `json:"draft"`
	UnlockPending int `json:"unlock_pending"`
	NotFull       int `json:"not_full"`
}

// DashboardRow is one supervisor's plan state in the dashboard table.
type DashboardRow struct {
	PlanID         uint       `json:"plan_id"`
	SupervisorID   uint       `json:"supervisor_id"`
	SupervisorName string     `json:"supervisor_name"`
	NationalID     string     `json:"national_id"`
	Department     string     `json:"department"`
	Status         string     `json:"status"`
	StatusLabel    string     `json:"status_label"`
	FilledCount    int        `json:"filled_count"`
	FullyFilled    bool       `json:"fully_filled"`
	SavedAt        *time.Time `json:"saved_at"`
	ApprovedAt     *time.Time `json:"approved_at"`
}

// DashboardResponse is the full manager dashboard payload.
type DashboardResponse struct {
	Week       WeekResponse   `json:"week"`
	Weeks      []WeekResponse `json:"weeks"`
	KPIs       DashboardKPIs  `json:"kpis"`
	Rows       []DashboardRow `json:"rows"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalRows  int            `json:"total_rows"`
	TotalPages int            `json:"total_pages"`
}

// PlanActionResponse is the compact acknowledgment returned by manager plan
// mutations and by the supervisor save/approve flow.
type PlanActionResponse struct {
	OK          bool   `json:"ok"`
	Message     string `json:"message"`
	StatusCode  string `json:"status_code"`
	StatusLabel string `json:"status_label"`
	Filled      int    `json:"filled"`
	IsFull      bool   `json:"is_full"`
	WeekNo      int    `json:"week_no"`
}

// NewPlanActionResponse summarizes a plan snapshot after a mutation.
func NewPlanActionResponse(plan PlanResponse, ok bool, message string) PlanActionResponse {
	return PlanActionResponse{
		OK:          ok,
		Message:     message,
		StatusCode:  plan.Status,
		StatusLabel: plan.StatusLabel,
		Filled:      plan.FilledCount,
		IsFull:      plan.FullyFilled,
		WeekNo:      plan.Week.WeekNo,
	}
}

// UnlockResolveRequest carries the manager's decision on an unlock request.
type UnlockResolveRequest struct {
	Decision string `form:"decision" json:"decision" validate:"required,oneof=approve reject"`
}

// WeekGenerateRequest describes the term calendar to materialize. StartSunday
// must fall on a Sunday; BreakWeeks lists week numbers skipped for holidays.
type WeekGenerateRequest struct {
	StartSunday string `form:"start_sunday" json:"start_sunday" validate:"required,datetime=2006-01-02"`
	Count       int    `form:"count" json:"count" validate:"required,min=1,max=60"`
	BreakWeeks  []int  `form:"break_weeks" json:"break_weeks" validate:"omitempty,dive,min=1,max=60"`
}
