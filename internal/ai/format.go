package ai

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/zulandar/qadesk/internal/models"
)

// Gherkin renders cases as one Feature/Scenario block each.
func Gherkin(cases []models.TestCase) string {
	blocks := make([]string, len(cases))
	for i, tc := range cases {
		var b strings.Builder
		fmt.Fprintf(&b, "Feature: %s\n\n", tc.Description)
		fmt.Fprintf(&b, "  Scenario: %s\n", tc.Description)
		b.WriteString("    Given 准备测试环境\n")
		first := "执行测试步骤"
		if len(tc.Steps) > 0 {
			first = tc.Steps[0]
		}
		fmt.Fprintf(&b, "    When  %s\n", first)
		for _, step := range tc.Steps[min(1, len(tc.Steps)):] {
			fmt.Fprintf(&b, "    And   %s\n", step)
		}
		fmt.Fprintf(&b, "    Then  验证结果: %s", tc.ExpectedResult)
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n\n")
}

var tableHeader = []string{"测试用例ID", "描述", "测试步骤", "期望结果", "优先级"}

// Table renders cases as tab-separated rows under a header row. Steps
// share one cell, separated by newlines, and such cells are quoted.
func Table(cases []models.TestCase) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	if err := w.Write(tableHeader); err != nil {
		return "", fmt.Errorf("ai: table: %w", err)
	}
	for _, tc := range cases {
		row := []string{tc.TestCaseID, tc.Description, strings.Join(tc.Steps, "\n"), tc.ExpectedResult, tc.Priority}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("ai: table: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("ai: table: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
