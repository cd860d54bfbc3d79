package models

var priorityLabels = map[string]string{
	"critical": "严重",
	"high":     "高",
	"medium":   "中",
	"low":      "低",
}

var statusLabels = map[string]string{
	"pending":     "待处理",
	"approved":    "已通过",
	"rejected":    "已拒绝",
	"draft":       "草稿",
	"active":      "活跃",
	"deprecated":  "已废弃",
	"imported":    "已导入",
	"in_progress": "进行中",
	"completed":   "已完成",
	"cancelled":   "已取消",
	"planned":     "计划中",
	"skipped":     "已跳过",
	"open":        "开放",
	"in-progress": "处理中",
	"resolved":    "已解决",
	"closed":      "已关闭",
	"failed":      "失败",
	"pass":        "通过",
	"fail":        "失败",
}

var categoryLabels = map[string]string{
	CategoryNormal:        "正常",
	CategoryException:     "异常",
	CategoryBoundary:      "边界",
	CategoryErrorHandling: "错误处理",
	TemplateFunctional:    "功能测试",
	TemplatePerformance:   "性能测试",
	TemplateSecurity:      "安全测试",
	TemplateAPI:           "API测试",
}

// PriorityLabel returns the display label for a priority or severity,
// falling back to the raw value.
func PriorityLabel(p string) string { return lookup(priorityLabels, p) }

// StatusLabel returns the display label for any entity status.
func StatusLabel(s string) string { return lookup(statusLabels, s) }

// CategoryLabel returns the display label for a test case or template category.
func CategoryLabel(c string) string { return lookup(categoryLabels, c) }

func lookup(m map[string]string, k string) string {
	if v, ok := m[k]; ok {
		return v
	}
	return k
}
