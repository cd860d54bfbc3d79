package state

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/fixtures"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/notify"
	"github.com/zulandar/qadesk/internal/store"
)

const entityPlans = "test_plans"

// PlanDraft is the input for a new test plan.
type PlanDraft struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	AssignedTo     []string  `json:"assignedTo"`
	Requirements   []string  `json:"requirements"`
	Priority       string    `json:"priority"`
	EstimatedHours float64   `json:"estimatedHours"`
}

func (d PlanDraft) validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return invalid("name", "请输入计划名称")
	case d.StartDate.IsZero() || d.EndDate.IsZero():
		return invalid("startDate", "请选择开始和结束日期")
	case !d.EndDate.After(d.StartDate):
		return invalid("endDate", "结束日期必须晚于开始日期")
	case d.EstimatedHours < 0:
		return invalid("estimatedHours", "预估工时不能为负数")
	}
	return nil
}

// PlanPatch holds the fields to change; nil fields are untouched.
type PlanPatch struct {
	Name           *string                     `json:"name,omitempty"`
	Description    *string                     `json:"description,omitempty"`
	Status         *string                     `json:"status,omitempty"`
	StartDate      *time.Time                  `json:"startDate,omitempty"`
	EndDate        *time.Time                  `json:"endDate,omitempty"`
	AssignedTo     *[]string                   `json:"assignedTo,omitempty"`
	Requirements   *[]string                   `json:"requirements,omitempty"`
	TestCases      *[]models.TestCaseSelection `json:"testCases,omitempty"`
	Progress       *int                        `json:"progress,omitempty"`
	Priority       *string                     `json:"priority,omitempty"`
	EstimatedHours *float64                    `json:"estimatedHours,omitempty"`
}

func validProgress(p int) error {
	if p < 0 || p > 100 {
		return invalid("progress", "进度必须在 0 到 100 之间")
	}
	return nil
}

func (p PlanPatch) validate(current models.TestPlan) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "请输入计划名称")
	}
	if p.Progress != nil {
		if err := validProgress(*p.Progress); err != nil {
			return err
		}
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return invalid("estimatedHours", "预估工时不能为负数")
	}
	if p.StartDate != nil || p.EndDate != nil {
		merged := current
		p.apply(&merged)
		if !merged.EndDate.After(merged.StartDate) {
			return invalid("endDate", "结束日期必须晚于开始日期")
		}
	}
	return nil
}

func (p PlanPatch) apply(t *models.TestPlan) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.AssignedTo != nil {
		t.AssignedTo = slices.Clone(*p.AssignedTo)
	}
	if p.Requirements != nil {
		t.Requirements = slices.Clone(*p.Requirements)
	}
	if p.TestCases != nil {
		t.TestCases = slices.Clone(*p.TestCases)
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
}

// Plans owns the test plan collection.
type Plans struct {
	backend store.PlanBackend
	d       *deps

	mu      sync.RWMutex
	records []models.TestPlan
	loading bool
	err     string
}

// NewPlans returns an empty holder backed by b.
func NewPlans(b store.PlanBackend, opts Opts) *Plans {
	return &Plans{backend: b, d: newDeps(opts)}
}

// Fetch reloads from the backend, substituting fixtures on failure.
func (p *Plans) Fetch(ctx context.Context) error {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	list, err := p.backend.ListPlans(ctx)

	p.mu.Lock()
	p.loading = false
	if err != nil {
		p.records = fixtures.Plans()
		p.err = store.Message(err)
	} else {
		p.records = list
		p.err = ""
	}
	p.mu.Unlock()

	if err != nil {
		p.d.fellBack(ctx, entityPlans, err)
	}
	p.d.changed()
	return err
}

// SetRecords replaces the collection.
func (p *Plans) SetRecords(list []models.TestPlan) {
	p.mu.Lock()
	p.records = slices.Clone(list)
	p.mu.Unlock()
	p.d.changed()
}

// Records returns a snapshot of the collection.
func (p *Plans) Records() []models.TestPlan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.records)
}

// Get returns the plan with the given ID.
func (p *Plans) Get(id string) (models.TestPlan, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i := p.indexLocked(id)
	if i < 0 {
		return models.TestPlan{}, false
	}
	return p.records[i], true
}

// Status reports load state.
func (p *Plans) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Status{Loading: p.loading, Error: p.err, Count: len(p.records)}
}

func (p *Plans) indexLocked(id string) int {
	return slices.IndexFunc(p.records, func(x models.TestPlan) bool { return x.ID == id })
}

// Create validates the draft and adds a draft-status plan with a freshly
// generated burndown. A backend failure is reported through an alert as
// well as RemoteErr; the plan is kept locally either way.
func (p *Plans) Create(ctx context.Context, draft PlanDraft) (Result[models.TestPlan], error) {
	if err := draft.validate(); err != nil {
		return Result[models.TestPlan]{}, err
	}
	now := p.d.now()
	priority := draft.Priority
	if priority == "" {
		priority = "medium"
	}

	rec := models.TestPlan{
		Name:           strings.TrimSpace(draft.Name),
		Description:    draft.Description,
		Status:         models.PlanDraft,
		StartDate:      draft.StartDate,
		EndDate:        draft.EndDate,
		AssignedTo:     cleanList(draft.AssignedTo),
		Requirements:   cleanList(draft.Requirements),
		TestCases:      []models.TestCaseSelection{},
		Progress:       0,
		BurndownData:   chart.Burndown(draft.StartDate, draft.EndDate, draft.EstimatedHours),
		Priority:       priority,
		EstimatedHours: draft.EstimatedHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The ID is reserved by inserting under the same lock that picks it.
	p.mu.Lock()
	rec.ID = nextID("PLAN", now, func(id string) bool { return p.indexLocked(id) >= 0 })
	p.records = append([]models.TestPlan{rec}, p.records...)
	p.mu.Unlock()
	id := rec.ID

	remote := rec
	remoteErr := p.backend.CreatePlan(ctx, &remote)
	if remoteErr != nil {
		p.d.remoteFailed(entityPlans, "create", id, remoteErr)
		p.d.alert(ctx, notify.Alert{
			Title:    "测试计划保存到后端失败",
			Body:     fmt.Sprintf("%s 已保存在本地: %s", rec.Name, store.Message(remoteErr)),
			Severity: notify.SeverityError,
			Fields: []notify.Field{
				{Name: "plan", Value: id, Short: true},
				{Name: "name", Value: rec.Name, Short: true},
			},
		})
	} else {
		rec = remote
		p.mu.Lock()
		if i := p.indexLocked(id); i >= 0 {
			p.records[i] = rec
		}
		p.mu.Unlock()
	}

	p.d.changed()
	return Result[models.TestPlan]{Value: rec, RemoteErr: remoteErr}, nil
}

// Update applies patch to the plan with the given ID.
func (p *Plans) Update(ctx context.Context, id string, patch PlanPatch) (Result[models.TestPlan], error) {
	current, ok := p.Get(id)
	if !ok {
		return Result[models.TestPlan]{}, ErrNotFound
	}
	if err := patch.validate(current); err != nil {
		return Result[models.TestPlan]{}, err
	}

	remote, remoteErr := p.backend.UpdatePlan(ctx, id, patch.apply)
	if remoteErr != nil {
		p.d.remoteFailed(entityPlans, "update", id, remoteErr)
	}
	return p.replace(id, remoteErr, func(rec *models.TestPlan) {
		if remoteErr == nil && remote != nil {
			*rec = *remote
			return
		}
		patch.apply(rec)
		rec.UpdatedAt = p.d.now()
	})
}

// UpdateProgress sets progress to pct, which must be within 0..100.
func (p *Plans) UpdateProgress(ctx context.Context, id string, pct int) (Result[models.TestPlan], error) {
	if err := validProgress(pct); err != nil {
		return Result[models.TestPlan]{}, err
	}
	if _, ok := p.Get(id); !ok {
		return Result[models.TestPlan]{}, ErrNotFound
	}

	remoteErr := p.backend.UpdatePlanProgress(ctx, id, pct)
	if remoteErr != nil {
		p.d.remoteFailed(entityPlans, "update_progress", id, remoteErr)
	}
	return p.replace(id, remoteErr, func(rec *models.TestPlan) {
		rec.Progress = pct
		rec.UpdatedAt = p.d.now()
	})
}

// RegenerateBurndown recomputes the plan's burndown from its current dates
// and estimate. Execution actuals are not taken into account.
func (p *Plans) RegenerateBurndown(ctx context.Context, id string) (Result[models.TestPlan], error) {
	current, ok := p.Get(id)
	if !ok {
		return Result[models.TestPlan]{}, ErrNotFound
	}
	points := chart.Burndown(current.StartDate, current.EndDate, current.EstimatedHours)

	remoteErr := p.backend.UpdateBurndown(ctx, id, points)
	if remoteErr != nil {
		p.d.remoteFailed(entityPlans, "update_burndown", id, remoteErr)
	}
	return p.replace(id, remoteErr, func(rec *models.TestPlan) {
		rec.BurndownData = points
		rec.UpdatedAt = p.d.now()
	})
}

// Delete removes the plan locally and from the backend.
func (p *Plans) Delete(ctx context.Context, id string) (Result[models.TestPlan], error) {
	if _, ok := p.Get(id); !ok {
		return Result[models.TestPlan]{}, ErrNotFound
	}

	remoteErr := p.backend.DeletePlan(ctx, id)
	if remoteErr != nil {
		p.d.remoteFailed(entityPlans, "delete", id, remoteErr)
	}

	p.mu.Lock()
	i := p.indexLocked(id)
	if i < 0 {
		p.mu.Unlock()
		return Result[models.TestPlan]{}, ErrNotFound
	}
	removed := p.records[i]
	p.records = slices.Delete(slices.Clone(p.records), i, i+1)
	p.mu.Unlock()

	p.d.changed()
	return Result[models.TestPlan]{Value: removed, RemoteErr: remoteErr}, nil
}

// replace swaps in a modified copy of the plan with the given ID.
func (p *Plans) replace(id string, remoteErr error, mutate func(*models.TestPlan)) (Result[models.TestPlan], error) {
	p.mu.Lock()
	i := p.indexLocked(id)
	if i < 0 {
		p.mu.Unlock()
		return Result[models.TestPlan]{}, ErrNotFound
	}
	rec := p.records[i]
	mutate(&rec)
	p.records[i] = rec
	p.mu.Unlock()

	p.d.changed()
	return Result[models.TestPlan]{Value: rec, RemoteErr: remoteErr}, nil
}
