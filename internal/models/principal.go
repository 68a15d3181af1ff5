package models

import "time"

// Principal is the head of a school. Each school has at most one.
type Principal struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SchoolID   uint      `gorm:"uniqueIndex;not null" json:"school_id"`
	FullName   string    `gorm:"size:255;not null" json:"full_name"`
	Mobile     string    `gorm:"size:20" json:"mobile"`
	NationalID string    `gorm:"size:20" json:"national_id"`
	Sector     string    `gorm:"size:64" json:"sector"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	School     School    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
