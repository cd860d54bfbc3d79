package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zulandar/qadesk/internal/models"
)

var templateCategories = []string{
	models.TemplateFunctional, models.TemplatePerformance, models.TemplateSecurity, models.TemplateAPI,
}

// TemplateDraft is the editable content of a template.
type TemplateDraft struct {
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Steps       []models.TemplateStep `json:"steps"`
	Tags        []string              `json:"tags"`
	IsPublic    bool                  `json:"isPublic"`
}

func (d TemplateDraft) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "请输入模板名称")
	}
	if !slices.Contains(templateCategories, d.Category) {
		return invalid("category", "请选择模板类型")
	}
	return nil
}

// numberSteps assigns step numbers in order and IDs where missing.
func numberSteps(steps []models.TemplateStep) []models.TemplateStep {
	out := make([]models.TemplateStep, len(steps))
	for i, s := range steps {
		s.StepNumber = i + 1
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.Preconditions = slices.Clone(s.Preconditions)
		out[i] = s
	}
	return out
}

// TemplateStats are the counters shown above the template list.
type TemplateStats struct {
	Total      int `json:"total"`
	Functional int `json:"functional"`
	API        int `json:"api"`
	Public     int `json:"public"`
}

// Templates owns test templates.
type Templates struct {
	opts    Opts
	mu      sync.RWMutex
	records []models.TestTemplate
}

// List returns all templates.
func (t *Templates) List() []models.TestTemplate {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.records)
}

// Get returns one template by ID.
func (t *Templates) Get(id string) (models.TestTemplate, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexLocked(id); i >= 0 {
		return t.records[i], nil
	}
	return models.TestTemplate{}, ErrNotFound
}

func (t *Templates) indexLocked(id string) int {
	return slices.IndexFunc(t.records, func(x models.TestTemplate) bool { return x.ID == id })
}

// Create appends a new template.
func (t *Templates) Create(d TemplateDraft) (models.TestTemplate, error) {
	if err := d.validate(); err != nil {
		return models.TestTemplate{}, err
	}
	now := t.opts.Now()
	rec := models.TestTemplate{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(d.Name),
		Category:    d.Category,
		Description: d.Description,
		Steps:       numberSteps(d.Steps),
		Tags:        slices.Clone(d.Tags),
		IsPublic:    d.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.mu.Lock()
	t.records = append(slices.Clone(t.records), rec)
	t.mu.Unlock()
	t.opts.OnChange()
	return rec, nil
}

// Update replaces a template's content.
func (t *Templates) Update(id string, d TemplateDraft) (models.TestTemplate, error) {
	if err := d.validate(); err != nil {
		return models.TestTemplate{}, err
	}
	t.mu.Lock()
	i := t.indexLocked(id)
	if i < 0 {
		t.mu.Unlock()
		return models.TestTemplate{}, ErrNotFound
	}
	rec := t.records[i]
	rec.Name = strings.TrimSpace(d.Name)
	rec.Category = d.Category
	rec.Description = d.Description
	rec.Steps = numberSteps(d.Steps)
	rec.Tags = slices.Clone(d.Tags)
	rec.IsPublic = d.IsPublic
	rec.UpdatedAt = t.opts.Now()
	t.records[i] = rec
	t.mu.Unlock()
	t.opts.OnChange()
	return rec, nil
}

// Delete removes a template.
func (t *Templates) Delete(id string) error {
	t.mu.Lock()
	i := t.indexLocked(id)
	if i < 0 {
		t.mu.Unlock()
		return ErrNotFound
	}
	t.records = slices.Delete(slices.Clone(t.records), i, i+1)
	t.mu.Unlock()
	t.opts.OnChange()
	return nil
}

// Duplicate appends a copy named "<name> (副本)".
func (t *Templates) Duplicate(id string) (models.TestTemplate, error) {
	src, err := t.Get(id)
	if err != nil {
		return models.TestTemplate{}, err
	}
	now := t.opts.Now()
	dup := src
	dup.ID = uuid.NewString()
	dup.Name = src.Name + " (副本)"
	dup.Steps = numberSteps(src.Steps)
	dup.Tags = slices.Clone(src.Tags)
	dup.CreatedAt = now
	dup.UpdatedAt = now

	t.mu.Lock()
	t.records = append(slices.Clone(t.records), dup)
	t.mu.Unlock()
	t.opts.OnChange()
	return dup, nil
}

// Stats counts all, functional, API and public templates.
func (t *Templates) Stats() TemplateStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := TemplateStats{Total: len(t.records)}
	for _, x := range t.records {
		switch x.Category {
		case models.TemplateFunctional:
			s.Functional++
		case models.TemplateAPI:
			s.API++
		}
		if x.IsPublic {
			s.Public++
		}
	}
	return s
}
