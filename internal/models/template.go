package models

import "time"

// Template categories.
const (
	TemplateFunctional  = "functional"
	TemplatePerformance = "performance"
	TemplateSecurity    = "security"
	TemplateAPI         = "api"
)

// TestTemplate is a reusable sequence of test steps.
type TestTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Steps       []TemplateStep `json:"steps"`
	Tags        []string       `json:"tags"`
	IsPublic    bool           `json:"isPublic"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TemplateStep is one numbered step of a template.
type TemplateStep struct {
	ID             string   `json:"id"`
	StepNumber     int      `json:"stepNumber"`
	Description    string   `json:"description"`
	ExpectedResult string   `json:"expectedResult"`
	Preconditions  []string `json:"preconditions,omitempty"`
}
