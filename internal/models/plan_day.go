package models

import "time"

// Visit types for a plan day.
const (
	VisitTypeInPerson = "in"
	VisitTypeRemote   = "remote"
	VisitTypeNone     = "none"
)

// No-visit reason codes, required when VisitType is "none".
const (
	NoVisitReasonMeeting  = "meeting"
	NoVisitReasonTraining = "training"
	NoVisitReasonEvent    = "event"
	NoVisitReasonOffice   = "office"
	NoVisitReasonOther    = "other"
)

// WeekdayNames maps weekday indexes (0=Sunday .. 4=Thursday) to their
// Arabic display names.
var WeekdayNames = [WeekdayCount]string{"الأحد", "الإثنين", "الثلاثاء", "الأربعاء", "الخميس"}

// PlanDay is one weekday's entry inside a plan: either a school visit or an
// explicit no-visit marking with a reason.
type PlanDay struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PlanID        uint      `gorm:"not null;uniqueIndex:uniq_planday_plan_weekday" json:"plan_id"`
	Weekday       int       `gorm:"not null;uniqueIndex:uniq_planday_plan_weekday" json:"weekday"`
	SchoolID      *uint     `json:"school_id"`
	VisitType     string    `gorm:"size:10;default:in" json:"visit_type"`
	NoVisitReason string    `gorm:"size:20" json:"no_visit_reason"`
	Note          string    `gorm:"size:120" json:"note"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	School        *School   `json:"school,omitempty"`
	Plan          *Plan     `json:"-"`
}

// VisitTypeLabel is the Arabic display name for the visit type.
func (d PlanDay) VisitTypeLabel() string {
	switch d.VisitType {
	case VisitTypeRemote:
		return "عن بعد"
	case VisitTypeNone:
		return "بدون زيارة مدرسية"
	default:
		return "حضوري"
	}
}

// ValidVisitType reports whether v is a recognized visit type.
func ValidVisitType(v string) bool {
	return v == VisitTypeInPerson || v == VisitTypeRemote || v == VisitTypeNone
}

// ValidNoVisitReason reports whether r is a recognized no-visit reason code.
func ValidNoVisitReason(r string) bool {
	switch r {
	case NoVisitReasonMeeting, NoVisitReasonTraining, NoVisitReasonEvent, NoVisitReasonOffice, NoVisitReasonOther:
		return true
	}
	return false
}
