package models

import "time"

// Assignment authorizes a supervisor to schedule visits to a school.
// The (supervisor, school) pair is unique; re-imports reactivate a
// deactivated assignment instead of duplicating it.
type Assignment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SupervisorID uint       `gorm:"not null;uniqueIndex:uniq_assignment_sup_school" json:"supervisor_id"`
	SchoolID     uint       `gorm:"not null;uniqueIndex:uniq_assignment_sup_school" json:"school_id"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Supervisor   Supervisor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	School       School     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
