package state

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"

	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/store"
	"golang.org/x/sync/errgroup"
)

// Workspace composes the requirement and plan holders over one backend.
type Workspace struct {
	Requirements *Requirements
	Plans        *Plans

	backend store.Backend
	d       *deps
	version atomic.Uint64
}

// NewWorkspace wires both holders to b. Every local mutation bumps Version.
func NewWorkspace(b store.Backend, opts Opts) *Workspace {
	w := &Workspace{backend: b, d: newDeps(opts)}
	w.d.onChange = w.bump
	w.Requirements = NewRequirements(b, opts)
	w.Requirements.d.onChange = w.bump
	w.Plans = NewPlans(b, opts)
	w.Plans.d.onChange = w.bump
	return w
}

func (w *Workspace) bump() { w.version.Add(1) }

// Version increases on every local change. Event streams poll it.
func (w *Workspace) Version() uint64 { return w.version.Load() }

// RefreshAll fetches requirements and plans concurrently. Both holders are
// populated even when the backend fails; the joined fetch errors are
// returned for logging.
func (w *Workspace) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	var reqErr, planErr error
	g.Go(func() error {
		reqErr = w.Requirements.Fetch(ctx)
		return nil
	})
	g.Go(func() error {
		planErr = w.Plans.Fetch(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(reqErr, planErr)
}

// ImportRequirements marks the requirements as imported into the plan and
// appends their IDs to the plan. The two updates are independent: a failure
// in the second leaves the first applied.
func (w *Workspace) ImportRequirements(ctx context.Context, ids []string, planID string) (Result[models.TestPlan], error) {
	ids = cleanList(ids)
	if len(ids) == 0 {
		return Result[models.TestPlan]{}, invalid("requirementIds", "请选择要导入的需求")
	}
	plan, ok := w.Plans.Get(planID)
	if !ok {
		return Result[models.TestPlan]{}, ErrNotFound
	}
	for _, id := range ids {
		if _, ok := w.Requirements.Get(id); !ok {
			return Result[models.TestPlan]{}, ErrNotFound
		}
	}

	at := w.d.now()
	importErr := w.backend.ImportRequirements(ctx, ids, planID, at)
	if importErr != nil {
		w.d.remoteFailed(entityRequirements, "import", planID, importErr)
	}
	w.Requirements.markImported(ids, planID, at)

	merged := slices.Clone(plan.Requirements)
	for _, id := range ids {
		if !slices.Contains(merged, id) {
			merged = append(merged, id)
		}
	}
	res, err := w.Plans.Update(ctx, planID, PlanPatch{Requirements: &merged})
	if err != nil {
		return res, err
	}
	if res.RemoteErr == nil {
		res.RemoteErr = importErr
	}
	return res, nil
}

// Executions lists a plan's executions, falling back to the plan's own
// selections when the backend cannot answer.
func (w *Workspace) Executions(ctx context.Context, planID string) (Result[[]models.TestCaseExecution], error) {
	plan, ok := w.Plans.Get(planID)
	if !ok {
		return Result[[]models.TestCaseExecution]{}, ErrNotFound
	}
	list, err := w.backend.ListExecutions(ctx, planID)
	if err == nil {
		return Result[[]models.TestCaseExecution]{Value: list}, nil
	}
	local := store.ExecutionsFromPlans([]models.TestPlan{plan})
	return Result[[]models.TestCaseExecution]{Value: local, RemoteErr: err}, nil
}

// CreateExecution schedules a test case in a plan. Executions live only in
// the backend, so a backend failure is returned as an error.
func (w *Workspace) CreateExecution(ctx context.Context, e models.TestCaseExecution) (*models.TestCaseExecution, error) {
	if e.TestCaseID == "" {
		return nil, invalid("testCaseId", "请选择测试用例")
	}
	if _, ok := w.Plans.Get(e.TestPlanID); !ok {
		return nil, ErrNotFound
	}
	if e.Status == "" {
		e.Status = "planned"
	}
	if e.Priority == "" {
		e.Priority = "medium"
	}
	if err := w.backend.CreateExecution(ctx, &e); err != nil {
		w.d.remoteFailed("test_case_executions", "create", e.TestPlanID, err)
		return nil, err
	}
	w.bump()
	return &e, nil
}

var executionStatuses = []string{"planned", "in_progress", "completed", "skipped"}

// UpdateExecution sets an execution's status and actual time.
func (w *Workspace) UpdateExecution(ctx context.Context, id uint, status string, actual *float64) (*models.TestCaseExecution, error) {
	if !slices.Contains(executionStatuses, status) {
		return nil, invalid("status", "无效的执行状态")
	}
	if actual != nil && *actual < 0 {
		return nil, invalid("actualExecutionTime", "实际执行时间不能为负数")
	}
	e, err := w.backend.UpdateExecution(ctx, id, status, actual)
	if err != nil {
		w.d.remoteFailed("test_case_executions", "update", "", err)
		return nil, err
	}
	w.bump()
	return e, nil
}

// Stats returns backend statistics, or statistics over local state when the
// backend cannot answer.
func (w *Workspace) Stats(ctx context.Context) Result[*store.Stats] {
	s, err := w.backend.Stats(ctx)
	if err == nil {
		return Result[*store.Stats]{Value: s}
	}
	plans := w.Plans.Records()
	local := store.ComputeStats(w.Requirements.Records(), plans, store.ExecutionsFromPlans(plans))
	return Result[*store.Stats]{Value: local, RemoteErr: err}
}

// Touch bumps Version for changes made outside the workspace.
func (w *Workspace) Touch() { w.bump() }
