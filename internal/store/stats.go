package store

import "github.com/zulandar/qadesk/internal/models"

// Stats is the dashboard summary of all persisted collections.
type Stats struct {
	Requirements RequirementStats `json:"requirements"`
	Plans        PlanStats        `json:"testPlans"`
	Executions   ExecutionStats   `json:"executions"`
}

// RequirementStats counts requirements by status.
type RequirementStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Imported   int `json:"imported"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// PlanStats counts plans by status and averages their progress.
type PlanStats struct {
	Total       int     `json:"total"`
	Draft       int     `json:"draft"`
	InProgress  int     `json:"inProgress"`
	Completed   int     `json:"completed"`
	Cancelled   int     `json:"cancelled"`
	AvgProgress float64 `json:"avgProgress"`
}

// ExecutionStats counts executions by status.
type ExecutionStats struct {
	Total      int `json:"total"`
	Planned    int `json:"planned"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Skipped    int `json:"skipped"`
}

// ComputeStats summarises already-loaded collections.
func ComputeStats(reqs []models.Requirement, plans []models.TestPlan, execs []models.TestCaseExecution) *Stats {
	var s Stats

	s.Requirements.Total = len(reqs)
	for _, r := range reqs {
		switch r.Status {
		case models.RequirementPending:
			s.Requirements.Pending++
		case models.RequirementImported:
			s.Requirements.Imported++
		case models.RequirementInProgress:
			s.Requirements.InProgress++
		case models.RequirementCompleted:
			s.Requirements.Completed++
		}
	}

	s.Plans.Total = len(plans)
	progress := 0
	for _, p := range plans {
		progress += p.Progress
		switch p.Status {
		case models.PlanDraft:
			s.Plans.Draft++
		case models.PlanInProgress:
			s.Plans.InProgress++
		case models.PlanCompleted:
			s.Plans.Completed++
		case models.PlanCancelled:
			s.Plans.Cancelled++
		}
	}
	if len(plans) > 0 {
		s.Plans.AvgProgress = float64(progress) / float64(len(plans))
	}

	s.Executions.Total = len(execs)
	for _, e := range execs {
		switch e.Status {
		case "planned":
			s.Executions.Planned++
		case "in_progress":
			s.Executions.InProgress++
		case "completed":
			s.Executions.Completed++
		case "skipped":
			s.Executions.Skipped++
		}
	}
	return &s
}

// ExecutionsFromPlans flattens plan test-case selections into execution
// rows, for computing stats without a backend.
func ExecutionsFromPlans(plans []models.TestPlan) []models.TestCaseExecution {
	var out []models.TestCaseExecution
	for _, p := range plans {
		for _, tc := range p.TestCases {
			out = append(out, models.TestCaseExecution{
				TestPlanID:            p.ID,
				TestCaseID:            tc.TestCaseID,
				Priority:              tc.Priority,
				ExpectedExecutionTime: tc.ExpectedExecutionTime,
				ActualExecutionTime:   tc.ActualExecutionTime,
				Status:                tc.Status,
				Assignee:              tc.Assignee,
			})
		}
	}
	return out
}
