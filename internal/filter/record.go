// Package filter narrows view lists by keyword and navigation selection and
// counts records per system and module for the navigation tree.
package filter

import (
	"fmt"

	"github.com/zulandar/qadesk/internal/models"
)

// View names a list the dashboard can show.
type View string

const (
	ViewSubmissions  View = "function-submissions"
	ViewTestCases    View = "test-cases"
	ViewReports      View = "test-reports"
	ViewRequirements View = "requirements"
	ViewPlans        View = "test-plans"
)

// Views lists every view in navigation order.
var Views = []View{ViewSubmissions, ViewTestCases, ViewReports, ViewRequirements, ViewPlans}

// ParseView validates a view name. Empty selects function submissions.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewSubmissions, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("filter: unknown view %q", s)
}

// Title returns the Chinese heading of the view.
func (v View) Title() string {
	switch v {
	case ViewSubmissions:
		return "功能提测"
	case ViewTestCases:
		return "测试用例"
	case ViewReports:
		return "测试报告"
	case ViewRequirements:
		return "需求管理"
	case ViewPlans:
		return "测试计划"
	}
	return string(v)
}

// Record is one row of a view. The set of implementations is closed.
type Record interface {
	RecordID() string
	record()
}

// SubmissionRecord wraps a function submission.
type SubmissionRecord struct{ models.FunctionSubmission }

// TestCaseRecord wraps a test case.
type TestCaseRecord struct{ models.TestCase }

// ReportRecord wraps a test report.
type ReportRecord struct{ models.TestReport }

// RequirementRecord wraps a requirement.
type RequirementRecord struct{ models.Requirement }

// PlanRecord wraps a test plan.
type PlanRecord struct{ models.TestPlan }

func (r SubmissionRecord) RecordID() string  { return r.ID }
func (r TestCaseRecord) RecordID() string    { return r.ID }
func (r ReportRecord) RecordID() string      { return r.ID }
func (r RequirementRecord) RecordID() string { return r.ID }
func (r PlanRecord) RecordID() string        { return r.ID }

func (SubmissionRecord) record()  {}
func (TestCaseRecord) record()    {}
func (ReportRecord) record()      {}
func (RequirementRecord) record() {}
func (PlanRecord) record()        {}

// Submissions wraps a submission list.
func Submissions(list []models.FunctionSubmission) []Record {
	out := make([]Record, len(list))
	for i, x := range list {
		out[i] = SubmissionRecord{x}
	}
	return out
}

// TestCases wraps a test case list.
func TestCases(list []models.TestCase) []Record {
	out := make([]Record, len(list))
	for i, x := range list {
		out[i] = TestCaseRecord{x}
	}
	return out
}

// Reports wraps a report list.
func Reports(list []models.TestReport) []Record {
	out := make([]Record, len(list))
	for i, x := range list {
		out[i] = ReportRecord{x}
	}
	return out
}

// Requirements wraps a requirement list.
func Requirements(list []models.Requirement) []Record {
	out := make([]Record, len(list))
	for i, x := range list {
		out[i] = RequirementRecord{x}
	}
	return out
}

// Plans wraps a plan list.
func Plans(list []models.TestPlan) []Record {
	out := make([]Record, len(list))
	for i, x := range list {
		out[i] = PlanRecord{x}
	}
	return out
}
