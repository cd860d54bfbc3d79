// Package catalog holds the collections that live only in memory: function
// submissions, test cases, reports and templates. They start from the
// built-in fixtures.
package catalog

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/zulandar/qadesk/internal/ai"
	"github.com/zulandar/qadesk/internal/fixtures"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/state"
)

// ErrNotFound is returned for unknown IDs.
var ErrNotFound = errors.New("catalog: not found")

func invalid(field, msg string) error {
	return &state.ValidationError{Field: field, Message: msg}
}

// Opts configures a Catalog.
type Opts struct {
	Analyzer ai.Analyzer
	// OnChange is called after every mutation.
	OnChange func()
	// Now overrides the clock for tests.
	Now func() time.Time
}

// Catalog groups the in-memory collections.
type Catalog struct {
	Submissions *Submissions
	TestCases   *TestCases
	Reports     *Reports
	Templates   *Templates
}

// New returns a catalog seeded from fixtures.
func New(opts Opts) *Catalog {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.OnChange == nil {
		opts.OnChange = func() {}
	}
	return &Catalog{
		Submissions: &Submissions{opts: opts, records: fixtures.Submissions()},
		TestCases:   &TestCases{opts: opts, records: fixtures.TestCases()},
		Reports:     &Reports{records: fixtures.Reports()},
		Templates:   &Templates{opts: opts, records: fixtures.Templates()},
	}
}

// Reports is the read-only report collection.
type Reports struct {
	mu      sync.RWMutex
	records []models.TestReport
}

// List returns all reports.
func (r *Reports) List() []models.TestReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

// Get returns one report.
func (r *Reports) Get(id string) (models.TestReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, x := range r.records {
		if x.ID == id {
			return x, nil
		}
	}
	return models.TestReport{}, ErrNotFound
}
