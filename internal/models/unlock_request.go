package models

import "time"

// Unlock request statuses.
const (
	UnlockStatusPending  = "pending"
	UnlockStatusApproved = "approved"
	UnlockStatusRejected = "rejected"
)

// UnlockRequest is a supervisor's request to revert an approved plan back to
// an editable draft, subject to a manager decision. One per plan.
type UnlockRequest struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PlanID     uint       `gorm:"uniqueIndex;not null" json:"plan_id"`
	Status     string     `gorm:"size:20;default:pending;index" json:"status"`
	Reason     string     `gorm:"size:500" json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Plan       Plan       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsPending reports whether the request still awaits a manager decision.
func (r UnlockRequest) IsPending() bool {
	return r.Status == UnlockStatusPending
}
