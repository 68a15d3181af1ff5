package models

import "time"

// Plan statuses. The lifecycle is cyclic: approved plans can return to draft
// through an unlock request or a manager back-to-draft action.
const (
	PlanStatusDraft           = "draft"
	PlanStatusApproved        = "approved"
	PlanStatusUnlockRequested = "unlock"
)

// WeekdayCount is the number of schedulable days per week (Sunday..Thursday).
const WeekdayCount = 5

// Plan is one supervisor's visit schedule for one plan week.
type Plan struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SupervisorID uint       `gorm:"not null;uniqueIndex:uniq_plan_supervisor_week" json:"supervisor_id"`
	WeekID       uint       `gorm:"not null;uniqueIndex:uniq_plan_supervisor_week" json:"week_id"`
	Status       string     `gorm:"size:20;default:draft;index" json:"status"`
	SavedAt      *time.Time `json:"saved_at"`
	ApprovedAt   *time.Time `json:"approved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Supervisor   Supervisor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Week         PlanWeek   `gorm:"foreignKey:WeekID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Days         []PlanDay  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"days"`
}

// IsLocked reports whether day mutations must be rejected. This is a hard
// precondition on every write path, not an advisory check.
func (p Plan) IsLocked() bool {
	return p.Status == PlanStatusApproved || p.Status == PlanStatusUnlockRequested
}

// IsFullyFilled reports whether every weekday carries either a school or an
// explicit no-visit marking. Only fully filled plans may be approved.
func (p Plan) IsFullyFilled() bool {
	filled := make(map[int]bool, WeekdayCount)
	for _, d := range p.Days {
		if d.SchoolID != nil || d.VisitType == VisitTypeNone {
			filled[d.Weekday] = true
		}
	}
	for wd := 0; wd < WeekdayCount; wd++ {
		if !filled[wd] {
			return false
		}
	}
	return true
}

// FilledCount returns how many weekdays are filled (school or no-visit).
func (p Plan) FilledCount() int {
	filled := make(map[int]bool, WeekdayCount)
	for _, d := range p.Days {
		if d.SchoolID != nil || d.VisitType == VisitTypeNone {
			filled[d.Weekday] = true
		}
	}
	return len(filled)
}

// StatusLabel is the Arabic display name for the plan status.
func (p Plan) StatusLabel() string {
	switch p.Status {
	case PlanStatusApproved:
		return "معتمدة"
	case PlanStatusUnlockRequested:
		return "طلب فك اعتماد"
	default:
		return "مسودة"
	}
}
