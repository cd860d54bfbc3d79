package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zulandar/qadesk/internal/models"
)

// UnknownFunction is the function ID given to generated cases that were
// not produced for a specific submission.
const UnknownFunction = "FUNC-UNKNOWN"

// TestCaseEdit is the content of the edit dialog.
type TestCaseEdit struct {
	Description    string   `json:"description"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expectedResult"`
	Priority       string   `json:"priority"`
	Status         string   `json:"status"`
	Category       string   `json:"category"`
}

// StepsFromText splits a newline-separated step list, dropping blanks.
func StepsFromText(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// TestCases owns the test case collection.
type TestCases struct {
	opts    Opts
	mu      sync.RWMutex
	records []models.TestCase
}

// List returns all test cases.
func (t *TestCases) List() []models.TestCase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.records)
}

// Get returns one test case by ID.
func (t *TestCases) Get(id string) (models.TestCase, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, x := range t.records {
		if x.ID == id {
			return x, nil
		}
	}
	return models.TestCase{}, ErrNotFound
}

// Update replaces the editable fields of a test case. Execution counters
// are left as they are.
func (t *TestCases) Update(id string, e TestCaseEdit) (models.TestCase, error) {
	if strings.TrimSpace(e.Description) == "" {
		return models.TestCase{}, invalid("description", "请输入用例描述")
	}
	category := e.Category
	if category == "" {
		category = models.CategoryNormal
	}
	var steps []string
	for _, s := range e.Steps {
		steps = append(steps, StepsFromText(s)...)
	}

	t.mu.Lock()
	i := slices.IndexFunc(t.records, func(x models.TestCase) bool { return x.ID == id })
	if i < 0 {
		t.mu.Unlock()
		return models.TestCase{}, ErrNotFound
	}
	rec := t.records[i]
	rec.Description = e.Description
	rec.Steps = steps
	rec.ExpectedResult = e.ExpectedResult
	if e.Priority != "" {
		rec.Priority = e.Priority
	}
	if e.Status != "" {
		rec.Status = e.Status
	}
	rec.Category = category
	rec.UpdatedAt = t.opts.Now()
	t.records[i] = rec
	t.mu.Unlock()

	t.opts.OnChange()
	return rec, nil
}

// AddGenerated prepends generated cases for functionID, filling in the
// defaults of a freshly added case.
func (t *TestCases) AddGenerated(functionID string, generated []models.TestCase) []models.TestCase {
	if functionID == "" {
		functionID = UnknownFunction
	}
	now := t.opts.Now()
	added := make([]models.TestCase, len(generated))
	for i, g := range generated {
		tc := g
		if tc.ID == "" {
			tc.ID = uuid.NewString()
		}
		if tc.TestCaseID == "" {
			tc.TestCaseID = fmt.Sprintf("TC-%06d", now.UnixMilli()%1_000_000)
		}
		if tc.Priority == "" {
			tc.Priority = "medium"
		}
		if tc.Status == "" {
			tc.Status = "draft"
		}
		tc.FunctionID = functionID
		tc.Steps = slices.Clone(g.Steps)
		tc.ExecutionCount = 0
		tc.LastExecutionResult = "pending"
		tc.AIGenerated = true
		tc.CreatedAt = now
		tc.UpdatedAt = now
		added[i] = tc
	}

	t.mu.Lock()
	t.records = append(slices.Clone(added), t.records...)
	t.mu.Unlock()
	t.opts.OnChange()
	return added
}
