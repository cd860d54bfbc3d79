package models

import "time"

// Test plan statuses.
const (
	PlanDraft      = "draft"
	PlanInProgress = "in_progress"
	PlanCompleted  = "completed"
	PlanCancelled  = "cancelled"
)

// TestPlan groups requirements and selected test cases over a date window.
// RowID is the surrogate key; ID is the business key shown to users.
type TestPlan struct {
	RowID          uint                `gorm:"primaryKey;autoIncrement" json:"-"`
	ID             string              `gorm:"column:plan_id;size:32;uniqueIndex;not null" json:"id"`
	Name           string              `gorm:"size:128;not null" json:"name"`
	Description    string              `gorm:"type:text" json:"description"`
	Status         string              `gorm:"size:16;default:draft;index" json:"status"`
	StartDate      time.Time           `json:"startDate"`
	EndDate        time.Time           `json:"endDate"`
	AssignedTo     []string            `gorm:"serializer:json;type:text" json:"assignedTo"`
	Requirements   []string            `gorm:"serializer:json;type:text" json:"requirements"`
	TestCases      []TestCaseSelection `gorm:"serializer:json;type:text" json:"testCases"`
	Progress       int                 `gorm:"default:0" json:"progress"`
	BurndownData   []BurndownPoint     `gorm:"serializer:json;type:text" json:"burndownData"`
	Priority       string              `gorm:"size:16;default:medium" json:"priority"`
	EstimatedHours float64             `json:"estimatedHours"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// TestCaseSelection is a test case scheduled inside a plan.
type TestCaseSelection struct {
	TestCaseID            string   `json:"testCaseId"`
	Priority              string   `json:"priority"`
	ExpectedExecutionTime float64  `json:"expectedExecutionTime"`
	ActualExecutionTime   *float64 `json:"actualExecutionTime,omitempty"`
	Status                string   `json:"status"`
	Assignee              string   `json:"assignee"`
}

// BurndownPoint is one day of a plan's workload curve, in hours.
type BurndownPoint struct {
	Date              time.Time `json:"date"`
	PlannedWorkload   float64   `json:"plannedWorkload"`
	ActualWorkload    float64   `json:"actualWorkload"`
	CompletedWorkload float64   `json:"completedWorkload"`
	RemainingWorkload float64   `json:"remainingWorkload"`
}

// TestCaseExecution records one execution slot of a test case within a plan.
type TestCaseExecution struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TestPlanID            string    `gorm:"size:32;index;not null" json:"testPlanId"`
	TestCaseID            string    `gorm:"size:32;not null" json:"testCaseId"`
	Priority              string    `gorm:"size:16;default:medium" json:"priority"`
	ExpectedExecutionTime float64   `json:"expectedExecutionTime"`
	ActualExecutionTime   *float64  `json:"actualExecutionTime,omitempty"`
	Status                string    `gorm:"size:16;default:planned;index" json:"status"`
	Assignee              string    `gorm:"size:64" json:"assignee"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}
