package state

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zulandar/qadesk/internal/fixtures"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/store"
)

const entityRequirements = "requirements"

// RequirementDraft is the input for a new requirement.
type RequirementDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	System      string `json:"system"`
	Module      string `json:"module"`
	Priority    string `json:"priority"`
}

func (d RequirementDraft) validate() error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return invalid("title", "请输入需求标题")
	case strings.TrimSpace(d.System) == "":
		return invalid("system", "请选择所属系统")
	case strings.TrimSpace(d.Module) == "":
		return invalid("module", "请选择所属模块")
	}
	return nil
}

// RequirementPatch holds the fields to change; nil fields are untouched.
type RequirementPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	System      *string    `json:"system,omitempty"`
	Module      *string    `json:"module,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	ImportedAt  *time.Time `json:"importedAt,omitempty"`
	TestPlanID  *string    `json:"testPlanId,omitempty"`
}

func (p RequirementPatch) validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title", "请输入需求标题")
	}
	if p.System != nil && strings.TrimSpace(*p.System) == "" {
		return invalid("system", "请选择所属系统")
	}
	if p.Module != nil && strings.TrimSpace(*p.Module) == "" {
		return invalid("module", "请选择所属模块")
	}
	return nil
}

func (p RequirementPatch) apply(r *models.Requirement) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.System != nil {
		r.System = *p.System
	}
	if p.Module != nil {
		r.Module = *p.Module
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ImportedAt != nil {
		at := *p.ImportedAt
		r.ImportedAt = &at
	}
	if p.TestPlanID != nil {
		id := *p.TestPlanID
		r.TestPlanID = &id
	}
}

// Requirements owns the requirement collection.
type Requirements struct {
	backend store.RequirementBackend
	d       *deps

	mu      sync.RWMutex
	records []models.Requirement
	loading bool
	err     string
}

// NewRequirements returns an empty holder backed by b.
func NewRequirements(b store.RequirementBackend, opts Opts) *Requirements {
	return &Requirements{backend: b, d: newDeps(opts)}
}

// Fetch reloads from the backend. On failure the fixture set is used and
// the error message is kept for display; the error is returned for logging
// only, the collection is always usable afterwards.
func (r *Requirements) Fetch(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	list, err := r.backend.ListRequirements(ctx)

	r.mu.Lock()
	r.loading = false
	if err != nil {
		r.records = fixtures.Requirements()
		r.err = store.Message(err)
	} else {
		r.records = list
		r.err = ""
	}
	r.mu.Unlock()

	if err != nil {
		r.d.fellBack(ctx, entityRequirements, err)
	}
	r.d.changed()
	return err
}

// SetRecords replaces the collection.
func (r *Requirements) SetRecords(list []models.Requirement) {
	r.mu.Lock()
	r.records = slices.Clone(list)
	r.mu.Unlock()
	r.d.changed()
}

// Records returns a snapshot of the collection.
func (r *Requirements) Records() []models.Requirement {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

// Get returns the requirement with the given ID.
func (r *Requirements) Get(id string) (models.Requirement, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexLocked(id)
	if i < 0 {
		return models.Requirement{}, false
	}
	return r.records[i], true
}

// Status reports load state.
func (r *Requirements) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Status{Loading: r.loading, Error: r.err, Count: len(r.records)}
}

func (r *Requirements) indexLocked(id string) int {
	return slices.IndexFunc(r.records, func(x models.Requirement) bool { return x.ID == id })
}

// BySystem lists requirements of one system, from the backend when it
// answers and from local state otherwise.
func (r *Requirements) BySystem(ctx context.Context, system string) Result[[]models.Requirement] {
	list, err := r.backend.RequirementsBySystem(ctx, system)
	if err == nil {
		return Result[[]models.Requirement]{Value: list}
	}
	var local []models.Requirement
	for _, x := range r.Records() {
		if x.System == system {
			local = append(local, x)
		}
	}
	return Result[[]models.Requirement]{Value: local, RemoteErr: err}
}

// Create validates the draft, writes it to the backend and prepends it
// locally even when the backend write fails.
func (r *Requirements) Create(ctx context.Context, draft RequirementDraft) (Result[models.Requirement], error) {
	if err := draft.validate(); err != nil {
		return Result[models.Requirement]{}, err
	}
	now := r.d.now()
	priority := draft.Priority
	if priority == "" {
		priority = "medium"
	}

	rec := models.Requirement{
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		System:      draft.System,
		Module:      draft.Module,
		Priority:    priority,
		Status:      models.RequirementPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	rec.ID = nextID("REQ", now, func(id string) bool { return r.indexLocked(id) >= 0 })
	r.records = append([]models.Requirement{rec}, r.records...)
	r.mu.Unlock()
	id := rec.ID

	remote := rec
	remoteErr := r.backend.CreateRequirement(ctx, &remote)
	if remoteErr != nil {
		r.d.remoteFailed(entityRequirements, "create", id, remoteErr)
	} else {
		rec = remote
		r.mu.Lock()
		if i := r.indexLocked(id); i >= 0 {
			r.records[i] = rec
		}
		r.mu.Unlock()
	}
	r.d.changed()
	return Result[models.Requirement]{Value: rec, RemoteErr: remoteErr}, nil
}

// Update applies patch to the requirement with the given ID. Local state
// takes the backend row when the write succeeds and the locally merged
// record otherwise.
func (r *Requirements) Update(ctx context.Context, id string, patch RequirementPatch) (Result[models.Requirement], error) {
	if err := patch.validate(); err != nil {
		return Result[models.Requirement]{}, err
	}
	if _, ok := r.Get(id); !ok {
		return Result[models.Requirement]{}, ErrNotFound
	}

	remote, remoteErr := r.backend.UpdateRequirement(ctx, id, patch.apply)
	if remoteErr != nil {
		r.d.remoteFailed(entityRequirements, "update", id, remoteErr)
	}

	r.mu.Lock()
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return Result[models.Requirement]{}, ErrNotFound
	}
	var rec models.Requirement
	if remoteErr == nil && remote != nil {
		rec = *remote
	} else {
		rec = r.records[i]
		patch.apply(&rec)
		rec.UpdatedAt = r.d.now()
	}
	r.records[i] = rec
	r.mu.Unlock()

	r.d.changed()
	return Result[models.Requirement]{Value: rec, RemoteErr: remoteErr}, nil
}

// markImported is the local half of an import: it flags every known ID as
// imported into planID and returns the IDs that were not found.
func (r *Requirements) markImported(ids []string, planID string, at time.Time) []string {
	var missing []string
	r.mu.Lock()
	for _, id := range ids {
		i := r.indexLocked(id)
		if i < 0 {
			missing = append(missing, id)
			continue
		}
		rec := r.records[i]
		patch := RequirementPatch{
			Status:     ptr(models.RequirementImported),
			ImportedAt: &at,
			TestPlanID: &planID,
		}
		patch.apply(&rec)
		rec.UpdatedAt = at
		r.records[i] = rec
	}
	r.mu.Unlock()
	r.d.changed()
	return missing
}

func ptr[T any](v T) *T { return &v }

// AddExternal inserts requirements that already carry an ID, skipping IDs
// that are present locally. Each record is written to the backend; the last
// backend error, if any, is reported alongside the added records.
func (r *Requirements) AddExternal(ctx context.Context, recs []models.Requirement) (Result[[]models.Requirement], error) {
	for _, rec := range recs {
		if err := (RequirementDraft{Title: rec.Title, System: rec.System, Module: rec.Module}).validate(); err != nil {
			return Result[[]models.Requirement]{}, err
		}
	}
	now := r.d.now()
	var added []models.Requirement
	var remoteErr error
	for _, rec := range recs {
		if _, ok := r.Get(rec.ID); ok {
			continue
		}
		if rec.Priority == "" {
			rec.Priority = "medium"
		}
		if rec.Status == "" {
			rec.Status = models.RequirementPending
		}
		rec.CreatedAt, rec.UpdatedAt = now, now

		remote := rec
		if err := r.backend.CreateRequirement(ctx, &remote); err != nil {
			r.d.remoteFailed(entityRequirements, "sync", rec.ID, err)
			remoteErr = err
		} else {
			rec = remote
		}
		added = append(added, rec)
	}
	if len(added) > 0 {
		r.mu.Lock()
		r.records = append(slices.Clone(added), r.records...)
		r.mu.Unlock()
		r.d.changed()
	}
	return Result[[]models.Requirement]{Value: added, RemoteErr: remoteErr}, nil
}
