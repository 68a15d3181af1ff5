package models

import (
	"strconv"
	"time"
)

// PlanWeek bounds for WeekNo.
const (
	PlanWeekMin = 1
	PlanWeekMax = 60
)

// PlanWeek is a manually curated calendar week that plans are filed against.
// StartSunday is expected to be a Sunday; break weeks accept no plans.
type PlanWeek struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	WeekNo      int       `gorm:"uniqueIndex;not null" json:"week_no"`
	StartSunday time.Time `gorm:"not null" json:"start_sunday"`
	Title       string    `gorm:"size:120" json:"title"`
	IsBreak     bool      `gorm:"default:false;index" json:"is_break"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Label renders the human-facing week name used in selectors and exports.
func (w PlanWeek) Label() string {
	label := "الأسبوع " + strconv.Itoa(w.WeekNo)
	if w.Title != "" {
		label += " — " + w.Title
	}
	if w.IsBreak {
		label += " (إجازة)"
	}
	return label
}
