package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/qadesk/internal/metrics"
	"github.com/zulandar/qadesk/internal/models"
)

// TemplateExport is a template stamped with its export time.
type TemplateExport struct {
	models.TestTemplate
	ExportedAt time.Time `json:"exportedAt"`
}

// TemplateJSON encodes a template for download.
func TemplateJSON(t models.TestTemplate, at time.Time) (string, []byte, error) {
	body, err := json.MarshalIndent(TemplateExport{TestTemplate: t, ExportedAt: at}, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("export: template %s: %w", t.ID, err)
	}
	metrics.Export("template")
	return fmt.Sprintf("template-%s_%s.json", Slug(t.Name), at.Format("2006-01-02")), body, nil
}

// Output formats of generated test cases.
const (
	FormatFunction = "function"
	FormatAPI      = "api"
)

// GeneratedCases is the export of one generation run.
type GeneratedCases struct {
	FunctionDescription string            `json:"functionDescription"`
	AcceptanceCriteria  string            `json:"acceptanceCriteria"`
	UsageProcess        string            `json:"usageProcess"`
	TestCases           []models.TestCase `json:"testCases"`
	GeneratedAt         time.Time         `json:"generatedAt"`
	Format              string            `json:"format"`
}

// GeneratedCasesJSON encodes generated test cases for download.
func GeneratedCasesJSON(functionID string, g GeneratedCases) (string, []byte, error) {
	if g.Format == "" {
		g.Format = FormatFunction
	}
	body, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("export: generated cases: %w", err)
	}
	name := Slug(functionID)
	if name == "" {
		name = "generated"
	}
	metrics.Export("test_cases")
	return fmt.Sprintf("test-cases-%s_%s.json", name, g.GeneratedAt.Format("2006-01-02")), body, nil
}

// Slug joins the words of s with hyphens and drops path separators.
func Slug(s string) string {
	return strings.Join(strings.Fields(safeName(s)), "-")
}
