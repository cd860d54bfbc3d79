package models

import "time"

// TestReport summarises one execution run. PassRate is stored as reported.
type TestReport struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SystemName    string    `json:"systemName"`
	ModuleName    string    `json:"moduleName"`
	TotalCases    int       `json:"totalCases"`
	PassedCases   int       `json:"passedCases"`
	FailedCases   int       `json:"failedCases"`
	PassRate      float64   `json:"passRate"`
	ExecutionDate time.Time `json:"executionDate"`
	Status        string    `json:"status"`
	Summary       string    `json:"summary"`
	Defects       []Defect  `json:"defects"`
}

// Defect is a bug found during a test run.
type Defect struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	Assignee    string    `json:"assignee"`
	Description string    `json:"description"`
	TestCaseID  string    `json:"testCaseId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
