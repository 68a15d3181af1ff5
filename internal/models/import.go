package models

import (
	"time"

	"gorm.io/datatypes"
)

// Import source labels, one per upload slot on the import form.
const (
	ImportSourceSchoolsBoys  = "schools_boys"
	ImportSourceSchoolsGirls = "schools_girls"
	ImportSourcePrincipals   = "principals"
	ImportSourceSupervisors  = "supervisors"
	ImportSourceAssignments  = "assignments"
)

// ImportBatch records the outcome of one file within an import submission.
type ImportBatch struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	SubmissionID string        `gorm:"size:36;index;not null" json:"submission_id"`
	Source       string        `gorm:"size:32;not null" json:"source"`
	FileName     string        `gorm:"size:255" json:"file_name"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	Skipped      int           `json:"skipped"`
	CreatedAt    time.Time     `json:"created_at"`
	RejectedRows []RejectedRow `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// RejectedRow preserves a spreadsheet row that failed validation or lookup,
// together with the reason, so the manager can download and fix the source.
type RejectedRow struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ImportBatchID uint              `gorm:"index;not null" json:"import_batch_id"`
	Importer      string            `gorm:"size:32;not null" json:"importer"`
	Reason        string            `gorm:"size:255;not null" json:"reason"`
	Row           datatypes.JSONMap `gorm:"type:json" json:"row"`
	CreatedAt     time.Time         `json:"created_at"`
}
