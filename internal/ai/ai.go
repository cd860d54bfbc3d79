// Package ai scores function descriptions and drafts test cases. The only
// implementation is a seeded stub; callers depend on the interfaces.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/qadesk/internal/models"
)

// ErrEmptyInput is returned when there is nothing to analyse.
var ErrEmptyInput = errors.New("ai: description or acceptance criteria required")

// Input is the text of a function submission.
type Input struct {
	Description        string `json:"description"`
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	UsageProcess       string `json:"usageProcess"`
}

func (in Input) empty() bool {
	return in.Description == "" && in.AcceptanceCriteria == ""
}

// Options selects which kinds of test cases to generate.
type Options struct {
	NegativeTests    bool `json:"includeNegativeTests"`
	EdgeCases        bool `json:"includeEdgeCases"`
	PerformanceTests bool `json:"includePerformanceTests"`
	SecurityTests    bool `json:"includeSecurityTests"`
}

// DefaultOptions enables negative tests and edge cases.
func DefaultOptions() Options {
	return Options{NegativeTests: true, EdgeCases: true}
}

// Analyzer scores a submission.
type Analyzer interface {
	Analyze(ctx context.Context, in Input) (models.AIAnalysis, error)
}

// Generator drafts test cases for a submission.
type Generator interface {
	Generate(ctx context.Context, in Input, opts Options) ([]models.TestCase, error)
}

// Stub produces pseudo-random scores and a fixed catalogue of test cases.
// It is safe for concurrent use.
type Stub struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewStub returns a stub whose output is determined by seed.
func NewStub(seed uint64) *Stub {
	return &Stub{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

var (
	suggestions = []string{
		"建议补充用户角色定义",
		"可以添加异常情况的处理说明",
		"建议明确性能要求",
		"建议增加安全性相关要求",
	}
	scenarios = []string{
		"正常业务场景验证",
		"边界条件测试",
		"异常情况处理",
		"权限验证测试",
		"性能压力测试",
	}
	issues = []string{
		"未明确数据验证规则",
		"缺乏错误处理机制",
		"界面响应时间要求不明确",
		"权限控制描述不够详细",
	}
)

// Analyze scores completeness in [70,100), clarity in [75,100) and
// confidence in [80,100).
func (s *Stub) Analyze(ctx context.Context, in Input) (models.AIAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return models.AIAnalysis{}, err
	}
	if in.empty() {
		return models.AIAnalysis{}, ErrEmptyInput
	}
	s.mu.Lock()
	completeness := s.rng.IntN(30) + 70
	clarity := s.rng.IntN(25) + 75
	confidence := s.rng.IntN(20) + 80
	s.mu.Unlock()

	return models.AIAnalysis{
		Completeness:    completeness,
		Clarity:         clarity,
		Confidence:      confidence,
		Suggestions:     append([]string(nil), suggestions...),
		TestScenarios:   append([]string(nil), scenarios...),
		PotentialIssues: append([]string(nil), issues...),
	}, nil
}

type draft struct {
	description string
	steps       []string
	expected    string
	priority    string
	category    string
}

var (
	caseHappyPath = draft{"正常业务流程验证",
		[]string{"打开功能页面", "输入有效的业务数据", "执行主要操作", "验证操作结果"},
		"功能正常执行，结果符合预期", "high", models.CategoryNormal}
	caseValidation = draft{"数据验证测试",
		[]string{"输入无效或空数据", "尝试提交表单", "查看验证错误提示"},
		"系统应显示明确的错误提示，不允许提交", "high", models.CategoryException}
	caseBoundary = draft{"边界条件测试",
		[]string{"输入最大/最小允许值", "执行操作", "验证结果正确性"},
		"边界值处理正确，无异常", "medium", models.CategoryBoundary}
	caseFailure = draft{"异常情况处理",
		[]string{"模拟网络异常", "执行操作", "验证异常处理机制"},
		"异常情况得到妥善处理，用户体验良好", "medium", models.CategoryErrorHandling}
	caseNegative = draft{"负向测试用例",
		[]string{"输入特殊字符或格式", "尝试绕过验证", "检查安全措施"},
		"系统能够识别并拒绝恶意输入", "high", models.CategoryException}
	casePerformance = draft{"性能压力测试",
		[]string{"模拟并发用户访问", "持续执行核心操作", "监控响应时间和资源占用"},
		"响应时间满足性能要求，系统运行稳定", "medium", models.CategoryNormal}
	caseSecurity = draft{"安全性测试",
		[]string{"使用未授权账号访问功能", "尝试越权操作", "检查敏感数据传输是否加密"},
		"未授权访问被拒绝，敏感数据受到保护", "high", models.CategoryException}
)

// Generate drafts test cases. The happy path, validation and failure
// handling cases are always produced; the rest follow opts.
func (s *Stub) Generate(ctx context.Context, in Input, opts Options) ([]models.TestCase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, ErrEmptyInput
	}

	drafts := []draft{caseHappyPath, caseValidation}
	if opts.EdgeCases {
		drafts = append(drafts, caseBoundary)
	}
	drafts = append(drafts, caseFailure)
	if opts.NegativeTests {
		drafts = append(drafts, caseNegative)
	}
	if opts.PerformanceTests {
		drafts = append(drafts, casePerformance)
	}
	if opts.SecurityTests {
		drafts = append(drafts, caseSecurity)
	}

	now := s.now().UTC()
	stamp := fmt.Sprintf("%06d", now.UnixMilli()%1_000_000)
	out := make([]models.TestCase, len(drafts))
	for i, d := range drafts {
		out[i] = models.TestCase{
			ID:             uuid.NewString(),
			TestCaseID:     fmt.Sprintf("TC-%s-%02d", stamp, i+1),
			Description:    d.description,
			Steps:          append([]string(nil), d.steps...),
			ExpectedResult: d.expected,
			Priority:       d.priority,
			Status:         "draft",
			Category:       d.category,
			AIGenerated:    true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}
	return out, nil
}

var (
	_ Analyzer  = (*Stub)(nil)
	_ Generator = (*Stub)(nil)
)
