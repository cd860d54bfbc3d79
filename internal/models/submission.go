package models

import "time"

// Function submission statuses.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// MaxSubmissionImages caps the number of inline images per submission.
const MaxSubmissionImages = 5

// FunctionSubmission is a feature handed to QA for testing.
type FunctionSubmission struct {
	ID                 string      `json:"id"`
	FunctionID         string      `json:"functionId"`
	SystemName         string      `json:"systemName"`
	ModuleName         string      `json:"moduleName"`
	Description        string      `json:"description"`
	AcceptanceCriteria string      `json:"acceptanceCriteria"`
	UsageProcess       string      `json:"usageProcess"`
	Status             string      `json:"status"`
	AIAnalysis         *AIAnalysis `json:"aiAnalysis,omitempty"`
	Images             []string    `json:"images,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

// AIAnalysis scores a submission's description. Scores are 0-100.
type AIAnalysis struct {
	Completeness    int      `json:"completeness"`
	Clarity         int      `json:"clarity"`
	Suggestions     []string `json:"suggestions"`
	TestScenarios   []string `json:"testScenarios"`
	PotentialIssues []string `json:"potentialIssues"`
	Confidence      int      `json:"confidence"`
}
