package models

import "time"

// Test case categories.
const (
	CategoryNormal        = "normal"
	CategoryException     = "exception"
	CategoryBoundary      = "boundary"
	CategoryErrorHandling = "error_handling"
)

// TestCase is an executable check attached to a function submission.
// ExecutionCount and LastExecutionResult are reported, never recomputed.
type TestCase struct {
	ID                  string    `json:"id"`
	FunctionID          string    `json:"functionId"`
	TestCaseID          string    `json:"testCaseId"`
	Description         string    `json:"description"`
	Steps               []string  `json:"steps"`
	ExpectedResult      string    `json:"expectedResult"`
	Priority            string    `json:"priority"`
	Status              string    `json:"status"`
	ExecutionCount      int       `json:"executionCount"`
	LastExecutionResult string    `json:"lastExecutionResult,omitempty"`
	Category            string    `json:"category,omitempty"`
	AIGenerated         bool      `json:"aiGenerated,omitempty"`
	TemplateID          string    `json:"templateId,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
