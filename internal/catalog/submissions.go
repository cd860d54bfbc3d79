package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zulandar/qadesk/internal/ai"
	"github.com/zulandar/qadesk/internal/models"
)

// SubmissionDraft is the input of the submission form.
type SubmissionDraft struct {
	FunctionID         string   `json:"functionId"`
	SystemName         string   `json:"systemName"`
	ModuleName         string   `json:"moduleName"`
	Description        string   `json:"description"`
	AcceptanceCriteria string   `json:"acceptanceCriteria"`
	UsageProcess       string   `json:"usageProcess"`
	Images             []string `json:"images"`
}

func (d SubmissionDraft) validate() error {
	switch {
	case strings.TrimSpace(d.FunctionID) == "":
		return invalid("functionId", "请输入功能编号")
	case strings.TrimSpace(d.SystemName) == "":
		return invalid("systemName", "请选择系统名称")
	case strings.TrimSpace(d.ModuleName) == "":
		return invalid("moduleName", "请选择模块名称")
	case strings.TrimSpace(d.Description) == "":
		return invalid("description", "请输入功能介绍")
	case len(d.Images) > models.MaxSubmissionImages:
		return invalid("images", fmt.Sprintf("最多只能上传 %d 张图片", models.MaxSubmissionImages))
	}
	return nil
}

// Input returns the text the analyzer and generator work on.
func (d SubmissionDraft) Input() ai.Input {
	return ai.Input{
		Description:        d.Description,
		AcceptanceCriteria: d.AcceptanceCriteria,
		UsageProcess:       d.UsageProcess,
	}
}

// Submissions owns function submissions.
type Submissions struct {
	opts    Opts
	mu      sync.RWMutex
	records []models.FunctionSubmission
}

// List returns all submissions.
func (s *Submissions) List() []models.FunctionSubmission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Get returns one submission by ID.
func (s *Submissions) Get(id string) (models.FunctionSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, x := range s.records {
		if x.ID == id {
			return x, nil
		}
	}
	return models.FunctionSubmission{}, ErrNotFound
}

// ByFunction returns the first submission with the given function ID.
func (s *Submissions) ByFunction(functionID string) (models.FunctionSubmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, x := range s.records {
		if x.FunctionID == functionID {
			return x, nil
		}
	}
	return models.FunctionSubmission{}, ErrNotFound
}

// Create validates the draft, attaches an analysis and prepends the new
// pending submission.
func (s *Submissions) Create(ctx context.Context, d SubmissionDraft) (models.FunctionSubmission, error) {
	d.FunctionID = strings.TrimSpace(d.FunctionID)
	if err := d.validate(); err != nil {
		return models.FunctionSubmission{}, err
	}
	if _, err := s.ByFunction(d.FunctionID); err == nil {
		return models.FunctionSubmission{}, errDuplicateFunction
	}

	var analysis *models.AIAnalysis
	if s.opts.Analyzer != nil {
		a, err := s.opts.Analyzer.Analyze(ctx, d.Input())
		if err != nil {
			return models.FunctionSubmission{}, fmt.Errorf("catalog: analyze %s: %w", d.FunctionID, err)
		}
		analysis = &a
	}

	now := s.opts.Now()
	rec := models.FunctionSubmission{
		ID:                 uuid.NewString(),
		FunctionID:         d.FunctionID,
		SystemName:         d.SystemName,
		ModuleName:         d.ModuleName,
		Description:        d.Description,
		AcceptanceCriteria: d.AcceptanceCriteria,
		UsageProcess:       d.UsageProcess,
		Status:             models.SubmissionPending,
		AIAnalysis:         analysis,
		Images:             slices.Clone(d.Images),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// The analyzer runs unlocked, so the function ID is checked again here.
	s.mu.Lock()
	if slices.ContainsFunc(s.records, func(x models.FunctionSubmission) bool { return x.FunctionID == rec.FunctionID }) {
		s.mu.Unlock()
		return models.FunctionSubmission{}, errDuplicateFunction
	}
	s.records = append([]models.FunctionSubmission{rec}, s.records...)
	s.mu.Unlock()
	s.opts.OnChange()
	return rec, nil
}

var errDuplicateFunction = invalid("functionId", "功能编号已存在")

var submissionStatuses = []string{models.SubmissionPending, models.SubmissionApproved, models.SubmissionRejected}

// SetStatus approves or rejects a submission.
func (s *Submissions) SetStatus(id, status string) (models.FunctionSubmission, error) {
	if !slices.Contains(submissionStatuses, status) {
		return models.FunctionSubmission{}, invalid("status", "无效的提测状态")
	}
	s.mu.Lock()
	i := slices.IndexFunc(s.records, func(x models.FunctionSubmission) bool { return x.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return models.FunctionSubmission{}, ErrNotFound
	}
	rec := s.records[i]
	rec.Status = status
	rec.UpdatedAt = s.opts.Now()
	s.records[i] = rec
	s.mu.Unlock()
	s.opts.OnChange()
	return rec, nil
}
