package models

import (
	"time"
	"unicode"
)

// Supervisor is a school supervisor who files weekly visit plans.
// National IDs are stored digit-only.
type Supervisor struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NationalID string    `gorm:"size:20;uniqueIndex;not null" json:"national_id"`
	FullName   string    `gorm:"size:255;not null" json:"full_name"`
	Mobile     string    `gorm:"size:20" json:"mobile"`
	Department string    `gorm:"size:64" json:"department"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MobileLast4 returns the last four digits of the registered mobile number,
// or an empty string when fewer than four digits are on record. It is the
// secondary verification factor at login.
func (s Supervisor) MobileLast4() string {
	digits := make([]rune, 0, len(s.Mobile))
	for _, r := range s.Mobile {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
