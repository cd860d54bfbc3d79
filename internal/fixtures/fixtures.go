// Package fixtures holds the built-in demo data set. Every accessor returns
// a fresh copy so callers may mutate the result.
package fixtures

import (
	"fmt"
	"time"

	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/models"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// Systems returns the system/module navigation tree.
func Systems() []models.SystemModule {
	return []models.SystemModule{
		system("1", "采购系统", 45, module("1-1", "供应商管理", 12), module("1-2", "采购订单", 18), module("1-3", "库存管理", 15)),
		system("2", "订单系统", 32, module("2-1", "订单创建", 10), module("2-2", "订单修改", 8), module("2-3", "订单查询", 14)),
		system("3", "支付系统", 28, module("3-1", "在线支付", 15), module("3-2", "退款处理", 13)),
	}
}

func system(id, name string, count int, children ...models.SystemModule) models.SystemModule {
	for i := range children {
		children[i].ParentID = ptr(id)
	}
	return models.SystemModule{ID: id, Name: name, Count: count, Children: children}
}

func module(id, name string, count int) models.SystemModule {
	return models.SystemModule{ID: id, Name: name, Count: count}
}

// BuildTree assembles a navigation tree from system names and their modules,
// numbering nodes the same way as the built-in tree.
func BuildTree(systems []string, modules map[string][]string) []models.SystemModule {
	out := make([]models.SystemModule, 0, len(systems))
	for i, name := range systems {
		id := fmt.Sprintf("%d", i+1)
		var children []models.SystemModule
		for j, m := range modules[name] {
			children = append(children, module(fmt.Sprintf("%s-%d", id, j+1), m, 0))
		}
		out = append(out, system(id, name, 0, children...))
	}
	return out
}

// ValidateTree checks that the tree is two levels deep, that every module
// points at its enclosing system and that IDs are unique. Node names must be
// unique across the whole tree as well: a selection is a bare name, so a
// module name repeated under two systems could not be told apart.
func ValidateTree(tree []models.SystemModule) error {
	seen := make(map[string]bool)
	names := make(map[string]string)
	for _, s := range tree {
		if err := claimName(names, s); err != nil {
			return err
		}
		if !s.IsSystem() {
			return fmt.Errorf("fixtures: system %q has a parent", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("fixtures: duplicate node id %q", s.ID)
		}
		seen[s.ID] = true
		for _, m := range s.Children {
			if m.ParentID == nil || *m.ParentID != s.ID {
				return fmt.Errorf("fixtures: module %q does not reference system %q", m.ID, s.ID)
			}
			if len(m.Children) > 0 {
				return fmt.Errorf("fixtures: module %q has children", m.ID)
			}
			if seen[m.ID] {
				return fmt.Errorf("fixtures: duplicate node id %q", m.ID)
			}
			seen[m.ID] = true
			if err := claimName(names, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func claimName(names map[string]string, n models.SystemModule) error {
	if other, ok := names[n.Name]; ok {
		return fmt.Errorf("fixtures: node %q reuses name %q of node %q", n.ID, n.Name, other)
	}
	names[n.Name] = n.ID
	return nil
}

func baseAnalysis() models.AIAnalysis {
	return models.AIAnalysis{
		Completeness:    85,
		Clarity:         90,
		Suggestions:     []string{"建议补充异常情况处理说明", "可以添加具体的业务场景示例", "建议明确性能要求"},
		TestScenarios:   []string{"正常业务流程验证", "边界条件测试", "异常情况处理", "权限验证测试"},
		PotentialIssues: []string{"未明确错误处理机制", "缺乏数据验证规则", "界面响应时间要求不明确"},
		Confidence:      88,
	}
}

// Submissions returns the function submissions.
func Submissions() []models.FunctionSubmission {
	second := baseAnalysis()
	second.Completeness, second.Clarity, second.Confidence = 92, 88, 91
	return []models.FunctionSubmission{
		{
			ID: "1", FunctionID: "FUNC-001", SystemName: "采购系统", ModuleName: "供应商管理",
			Description:        "供应商注册功能，支持企业供应商的基本信息录入、资质文件上传和审核流程管理。",
			AcceptanceCriteria: "1. 供应商能够成功提交注册申请；2. 系统能够自动验证必填信息；3. 审核流程能够正常流转；4. 支持多种文件格式上传；5. 审核结果能够及时通知申请人。",
			UsageProcess:       "1. 供应商访问注册页面；2. 填写基本信息和企业资质；3. 上传相关证明文件；4. 提交注册申请；5. 等待审核结果；6. 根据审核反馈进行修改或完成注册。",
			Status:             models.SubmissionPending,
			AIAnalysis:         ptr(baseAnalysis()),
			CreatedAt:          d("2024-12-10"), UpdatedAt: d("2024-12-12"),
		},
		{
			ID: "2", FunctionID: "FUNC-002", SystemName: "订单系统", ModuleName: "订单创建",
			Description:        "客户创建订单功能，支持多种商品类型、促销活动应用和订单金额计算。",
			AcceptanceCriteria: "1. 支持多种商品类型下单；2. 能够正确计算订单总价；3. 促销活动能够正确应用；4. 库存不足时能够正确提示；5. 订单信息能够准确保存。",
			UsageProcess:       "1. 客户浏览商品并添加到购物车；2. 进入购物车确认商品和数量；3. 选择收货地址和支付方式；4. 应用优惠券或促销活动；5. 确认订单信息并提交；6. 系统生成订单号并跳转支付页面。",
			Status:             models.SubmissionApproved,
			AIAnalysis:         &second,
			CreatedAt:          d("2024-12-08"), UpdatedAt: d("2024-12-14"),
		},
		{
			ID: "3", FunctionID: "FUNC-003", SystemName: "支付系统", ModuleName: "在线支付",
			Description:        "在线支付功能，支持支付宝、微信支付、银行卡等多种支付方式。",
			AcceptanceCriteria: "1. 支持多种支付方式；2. 支付过程安全可靠；3. 支付结果能够及时反馈；4. 异常支付能够正确处理；5. 支付数据能够准确记录。",
			UsageProcess:       "1. 选择支付方式；2. 输入支付信息；3. 确认支付金额；4. 跳转第三方支付平台；5. 完成支付或取消支付；6. 返回支付结果页面。",
			Status:             models.SubmissionPending,
			CreatedAt:          d("2024-12-11"), UpdatedAt: d("2024-12-13"),
		},
		{
			ID: "4", FunctionID: "FUNC-004", SystemName: "采购系统", ModuleName: "库存管理",
			Description:        "库存管理功能，支持库存查询、入库出库操作和库存预警。",
			AcceptanceCriteria: "1. 实时查询库存信息；2. 支持批量入库出库操作；3. 库存预警能够及时提醒；4. 库存数据准确无误；5. 支持库存调拨功能。",
			UsageProcess:       "1. 进入库存管理页面；2. 选择要操作的商品；3. 执行入库或出库操作；4. 确认操作数量和原因；5. 系统更新库存数据；6. 发送操作通知。",
			Status:             models.SubmissionRejected,
			CreatedAt:          d("2024-12-09"), UpdatedAt: d("2024-12-11"),
		},
	}
}

// TestCases returns the test cases.
func TestCases() []models.TestCase {
	return []models.TestCase{
		{
			ID: "1", FunctionID: "FUNC-001", TestCaseID: "TC-001-01",
			Description:    "供应商注册-正常流程",
			Steps:          []string{"打开供应商注册页面", "填写企业基本信息", "上传企业资质文件", "提交注册申请", "查看审核状态"},
			ExpectedResult: "注册申请成功提交，状态显示为待审核",
			Priority:       "high", Status: "active", ExecutionCount: 3, LastExecutionResult: "pass",
			AIGenerated: true, CreatedAt: d("2024-12-12"), UpdatedAt: d("2024-12-12"),
		},
		{
			ID: "2", FunctionID: "FUNC-001", TestCaseID: "TC-001-02",
			Description:    "供应商注册-必填字段验证",
			Steps:          []string{"打开供应商注册页面", "不填写企业名称", "尝试提交注册申请", "查看验证提示"},
			ExpectedResult: "系统提示企业名称为必填项，无法提交",
			Priority:       "high", Status: "active", ExecutionCount: 2, LastExecutionResult: "pass",
			CreatedAt: d("2024-12-12"), UpdatedAt: d("2024-12-12"),
		},
		{
			ID: "3", FunctionID: "FUNC-002", TestCaseID: "TC-002-01",
			Description:    "订单创建-正常下单流程",
			Steps:          []string{"登录用户账号", "浏览商品列表", "选择商品并加入购物车", "进入购物车页面", "选择收货地址", "选择支付方式", "确认订单并提交"},
			ExpectedResult: "订单创建成功，生成订单号，跳转支付页面",
			Priority:       "high", Status: "active", ExecutionCount: 5, LastExecutionResult: "pass",
			AIGenerated: true, CreatedAt: d("2024-12-14"), UpdatedAt: d("2024-12-14"),
		},
		{
			ID: "4", FunctionID: "FUNC-002", TestCaseID: "TC-002-02",
			Description:    "订单创建-库存不足处理",
			Steps:          []string{"选择库存不足的商品", "尝试添加到购物车", "输入购买数量", "查看系统提示"},
			ExpectedResult: "系统提示库存不足，无法添加或限制购买数量",
			Priority:       "medium", Status: "active", ExecutionCount: 1, LastExecutionResult: "fail",
			CreatedAt: d("2024-12-14"), UpdatedAt: d("2024-12-14"),
		},
	}
}

// Reports returns the test reports.
func Reports() []models.TestReport {
	return []models.TestReport{
		{
			ID: "1", Name: "供应商管理模块测试报告", SystemName: "采购系统", ModuleName: "供应商管理",
			TotalCases: 12, PassedCases: 10, FailedCases: 2, PassRate: 83.3,
			ExecutionDate: d("2024-12-15"), Status: "completed",
			Summary: "供应商管理模块基本功能正常，发现2个缺陷需要修复",
			Defects: []models.Defect{
				{ID: "DEF-001", Title: "文件上传大小限制不明确", Severity: "medium", Status: "open", Assignee: "张三",
					Description: "上传文件超过5MB时没有明确提示", TestCaseID: "TC-001-03", CreatedAt: d("2024-12-15")},
				{ID: "DEF-002", Title: "审核状态显示延迟", Severity: "low", Status: "in-progress", Assignee: "李四",
					Description: "审核状态更新存在1-2分钟延迟", TestCaseID: "TC-001-01", CreatedAt: d("2024-12-15")},
			},
		},
		{
			ID: "2", Name: "订单创建功能测试报告", SystemName: "订单系统", ModuleName: "订单创建",
			TotalCases: 8, PassedCases: 7, FailedCases: 1, PassRate: 87.5,
			ExecutionDate: d("2024-12-14"), Status: "completed",
			Summary: "订单创建功能基本满足需求，库存验证逻辑需要优化",
			Defects: []models.Defect{
				{ID: "DEF-003", Title: "库存验证延迟", Severity: "high", Status: "open", Assignee: "王五",
					Description: "高并发情况下库存验证存在延迟", TestCaseID: "TC-002-02", CreatedAt: d("2024-12-14")},
			},
		},
	}
}

// Requirements returns the requirements.
func Requirements() []models.Requirement {
	req := func(id, title, desc, sys, mod, prio, day string) models.Requirement {
		return models.Requirement{
			ID: id, Title: title, Description: desc, System: sys, Module: mod,
			Priority: prio, Status: models.RequirementPending,
			CreatedAt: d(day), UpdatedAt: d(day),
		}
	}
	return []models.Requirement{
		req("REQ-001", "供应商信息管理功能", "系统需要支持供应商基本信息的录入、修改、查询和删除功能，包括供应商名称、联系方式、资质证书等信息的维护。", "采购系统", "供应商管理", "high", "2024-12-10"),
		req("REQ-002", "采购订单审批流程", "采购订单需要支持多级审批流程，包括部门审批、财务审批等，支持审批意见的记录和审批历史的查看。", "采购系统", "采购订单", "high", "2024-12-11"),
		req("REQ-003", "库存预警机制", "当库存低于设定阈值时，系统应该自动发送预警通知，支持多种预警方式（邮件、短信、系统内通知）。", "采购系统", "库存管理", "medium", "2024-12-12"),
		req("REQ-004", "订单状态实时追踪", "用户能够实时查看订单的处理状态，包括订单创建、支付确认、物流配送等各个阶段的详细信息。", "订单系统", "订单查询", "high", "2024-12-13"),
		req("REQ-005", "移动端支付适配", "支付系统需要适配各种移动端支付方式，包括微信支付、支付宝、银行卡快捷支付等。", "支付系统", "在线支付", "high", "2024-12-14"),
		req("REQ-006", "退款自动处理", "支持部分退款和全额退款，支持原路退款和手动退款，退款处理过程需要详细记录。", "支付系统", "退款处理", "medium", "2024-12-15"),
	}
}

func sel(id, prio string, expected float64, actual *float64, status, assignee string) models.TestCaseSelection {
	return models.TestCaseSelection{
		TestCaseID: id, Priority: prio, ExpectedExecutionTime: expected,
		ActualExecutionTime: actual, Status: status, Assignee: assignee,
	}
}

// Plans returns the test plans with their burndown curves.
func Plans() []models.TestPlan {
	plan := func(p models.TestPlan, workload float64) models.TestPlan {
		p.BurndownData = chart.Burndown(p.StartDate, p.EndDate, workload)
		if p.Priority == "" {
			p.Priority = "medium"
		}
		return p
	}
	return []models.TestPlan{
		plan(models.TestPlan{
			ID: "PLAN-001", Name: "供应商管理模块测试计划",
			Description: "对采购系统供应商管理功能进行全面测试，包括功能测试、性能测试和用户体验测试。",
			Status:      models.PlanInProgress,
			StartDate:   d("2024-12-16"), EndDate: d("2024-12-23"),
			AssignedTo:   []string{"张三", "李四", "王五"},
			Requirements: []string{"REQ-001"},
			TestCases: []models.TestCaseSelection{
				sel("TC-001-01", "high", 2, ptr(2.5), "completed", "张三"),
				sel("TC-001-02", "high", 1.5, ptr(1.8), "completed", "张三"),
				sel("TC-001-03", "medium", 1, ptr(1.2), "in_progress", "李四"),
				sel("TC-001-04", "medium", 2, nil, "planned", "王五"),
			},
			Progress: 65, Priority: "high", EstimatedHours: 6.5,
			CreatedAt: d("2024-12-15"), UpdatedAt: d("2024-12-18"),
		}, 6.5),
		plan(models.TestPlan{
			ID: "PLAN-002", Name: "订单系统功能测试计划",
			Description: "订单创建、修改、查询等核心功能的测试计划，重点关注业务逻辑和异常处理。",
			Status:      models.PlanDraft,
			StartDate:   d("2024-12-20"), EndDate: d("2024-12-27"),
			AssignedTo:   []string{"赵六", "孙七"},
			Requirements: []string{"REQ-004"},
			TestCases: []models.TestCaseSelection{
				sel("TC-002-01", "high", 3, nil, "planned", "赵六"),
				sel("TC-002-02", "high", 2.5, nil, "planned", "赵六"),
				sel("TC-002-03", "medium", 2, nil, "planned", "孙七"),
			},
			Progress: 0, EstimatedHours: 7.5,
			CreatedAt: d("2024-12-18"), UpdatedAt: d("2024-12-18"),
		}, 7.5),
		plan(models.TestPlan{
			ID: "PLAN-003", Name: "支付系统安全测试计划",
			Description: "对支付系统的安全性进行全面测试，包括支付加密、数据安全、权限控制等。",
			Status:      models.PlanCompleted,
			StartDate:   d("2024-12-10"), EndDate: d("2024-12-15"),
			AssignedTo:   []string{"周八", "吴九"},
			Requirements: []string{"REQ-005", "REQ-006"},
			TestCases: []models.TestCaseSelection{
				sel("TC-003-01", "high", 4, ptr(4.5), "completed", "周八"),
				sel("TC-003-02", "high", 3, ptr(3.2), "completed", "周八"),
				sel("TC-003-03", "medium", 2.5, ptr(2.8), "completed", "吴九"),
			},
			Progress: 100, Priority: "high", EstimatedHours: 9.5,
			CreatedAt: d("2024-12-08"), UpdatedAt: d("2024-12-15"),
		}, 9.5),
	}
}

// Templates returns the test templates.
func Templates() []models.TestTemplate {
	step := func(id string, n int, desc, expected string, pre ...string) models.TemplateStep {
		return models.TemplateStep{ID: id, StepNumber: n, Description: desc, ExpectedResult: expected, Preconditions: pre}
	}
	return []models.TestTemplate{
		{
			ID: "1", Name: "功能测试标准模板", Category: models.TemplateFunctional,
			Description: "标准功能测试用例模板，适用于大部分功能验证",
			Steps: []models.TemplateStep{
				step("step-1", 1, "打开功能页面", "页面正常加载", "用户已登录", "网络连接正常"),
				step("step-2", 2, "执行主要操作", "操作成功执行"),
				step("step-3", 3, "验证操作结果", "结果符合预期"),
			},
			Tags: []string{"标准", "功能测试", "UI"}, IsPublic: true,
			CreatedAt: d("2024-12-01"), UpdatedAt: d("2024-12-01"),
		},
		{
			ID: "2", Name: "API接口测试模板", Category: models.TemplateAPI,
			Description: "API接口测试专用模板，包含请求验证和响应检查",
			Steps: []models.TemplateStep{
				step("step-api-1", 1, "构造API请求", "请求参数正确", "API服务正常", "认证信息有效"),
				step("step-api-2", 2, "发送API请求", "收到响应结果"),
				step("step-api-3", 3, "验证响应状态码", "状态码为200"),
				step("step-api-4", 4, "验证响应数据格式", "数据格式正确"),
			},
			Tags: []string{"API", "接口测试", "后端"}, IsPublic: true,
			CreatedAt: d("2024-12-02"), UpdatedAt: d("2024-12-02"),
		},
		{
			ID: "3", Name: "性能测试模板", Category: models.TemplatePerformance,
			Description: "性能测试专用模板，关注响应时间和系统负载",
			Steps: []models.TemplateStep{
				step("step-perf-1", 1, "准备测试环境", "环境配置完成", "测试环境就绪", "监控工具已部署"),
				step("step-perf-2", 2, "执行性能测试", "测试正常运行", "负载测试工具已配置"),
				step("step-perf-3", 3, "监控性能指标", "收集性能数据", "监控系统正常运行"),
				step("step-perf-4", 4, "分析性能结果", "性能指标符合要求", "性能基准已定义"),
			},
			Tags: []string{"性能", "负载测试", "监控"}, IsPublic: false,
			CreatedAt: d("2024-12-03"), UpdatedAt: d("2024-12-03"),
		},
	}
}
