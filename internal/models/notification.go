package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification event types emitted on plan lifecycle changes.
const (
	NotificationPlanApproved    = "plan_approved"
	NotificationPlanDrafted     = "plan_drafted"
	NotificationUnlockRequested = "unlock_requested"
	NotificationUnlockResolved  = "unlock_resolved"
	NotificationImportCompleted = "import_completed"
)

// Notification is a plan lifecycle event surfaced on the manager live feed.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Type      string            `gorm:"size:32;not null;index" json:"type"`
	Message   string            `gorm:"size:255;not null" json:"message"`
	PlanID    *uint             `json:"plan_id"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}
