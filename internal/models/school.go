package models

import "time"

// School gender categories as stored in the source spreadsheets.
const (
	SchoolGenderBoys  = "boys"
	SchoolGenderGirls = "girls"
)

// School is an educational institution identified by its statistical code.
type School struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StatCode      string    `gorm:"size:32;uniqueIndex;not null" json:"stat_code"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Gender        string    `gorm:"size:10;not null" json:"gender"`
	EducationType string    `gorm:"size:64" json:"education_type"`
	Stage         string    `gorm:"size:64" json:"stage"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
