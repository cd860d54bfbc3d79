package models

import "time"

// Requirement statuses.
const (
	RequirementPending    = "pending"
	RequirementImported   = "imported"
	RequirementInProgress = "in_progress"
	RequirementCompleted  = "completed"
)

// Requirement is an upstream work item that can be imported into a test plan.
type Requirement struct {
	ID          string     `gorm:"primaryKey;size:32" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	System      string     `gorm:"size:64;index" json:"system"`
	Module      string     `gorm:"size:64;index" json:"module"`
	Priority    string     `gorm:"size:16;default:medium" json:"priority"`
	Status      string     `gorm:"size:16;default:pending;index" json:"status"`
	ImportedAt  *time.Time `json:"importedAt,omitempty"`
	TestPlanID  *string    `gorm:"size:32;index" json:"testPlanId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
