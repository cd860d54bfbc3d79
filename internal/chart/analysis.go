package chart

import "github.com/zulandar/qadesk/internal/models"

// Trend directions for problem patterns.
const (
	TrendUp   = "up"
	TrendDown = "down"
)

// ProblemPattern is a recurring defect theme.
type ProblemPattern struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Trend string `json:"trend"`
}

// Arrow renders the trend as an arrow glyph.
func (p ProblemPattern) Arrow() string {
	if p.Trend == TrendUp {
		return "↑"
	}
	return "↓"
}

// ProblemPatterns returns the fixed pattern analysis shown on every report.
func ProblemPatterns() []ProblemPattern {
	return []ProblemPattern{
		{Name: "文件上传", Count: 15, Trend: TrendUp},
		{Name: "权限验证", Count: 12, Trend: TrendDown},
		{Name: "数据验证", Count: 10, Trend: TrendUp},
		{Name: "UI响应", Count: 8, Trend: TrendDown},
		{Name: "API接口", Count: 6, Trend: TrendUp},
	}
}

// QualityPoint is one week of the quality improvement trend.
type QualityPoint struct {
	Period      string `json:"period"`
	DefectCount int    `json:"defectCount"`
	Regression  int    `json:"regression"`
	NewFeature  int    `json:"newFeature"`
}

// QualityTrend returns the fixed four-week quality series.
func QualityTrend() []QualityPoint {
	return []QualityPoint{
		{Period: "第1周", DefectCount: 25, Regression: 8, NewFeature: 12},
		{Period: "第2周", DefectCount: 22, Regression: 6, NewFeature: 10},
		{Period: "第3周", DefectCount: 18, Regression: 4, NewFeature: 8},
		{Period: "第4周", DefectCount: 15, Regression: 3, NewFeature: 6},
	}
}

// Slice is one segment of a pie chart.
type Slice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// StatusDistribution splits a report into passed and failed cases.
func StatusDistribution(r models.TestReport) []Slice {
	return []Slice{
		{Name: "通过", Value: r.PassedCases, Color: "#22C55E"},
		{Name: "失败", Value: r.FailedCases, Color: "#EF4444"},
	}
}

var severityOrder = []struct {
	key, color string
}{
	{"critical", "#7F1D1D"},
	{"high", "#EF4444"},
	{"medium", "#F59E0B"},
	{"low", "#3B82F6"},
}

// SeverityDistribution counts defects per severity, omitting empty buckets.
func SeverityDistribution(defects []models.Defect) []Slice {
	counts := make(map[string]int, len(severityOrder))
	for _, d := range defects {
		counts[d.Severity]++
	}
	var out []Slice
	for _, s := range severityOrder {
		if n := counts[s.key]; n > 0 {
			out = append(out, Slice{Name: models.PriorityLabel(s.key), Value: n, Color: s.color})
		}
	}
	return out
}

// Pass-rate bands used for colouring.
const (
	BandGood = "good"
	BandWarn = "warn"
	BandBad  = "bad"
)

// PassRateBand classifies a pass rate: >=80 good, >=60 warn, otherwise bad.
func PassRateBand(rate float64) string {
	switch {
	case rate >= 80:
		return BandGood
	case rate >= 60:
		return BandWarn
	default:
		return BandBad
	}
}

// Suggestions is the improvement advice shown beside a report.
type Suggestions struct {
	Optimizations []string `json:"optimizations"`
	Risks         []string `json:"risks"`
	Actions       []string `json:"actions"`
}

// ImprovementSuggestions combines the standing advice with one follow-up
// action per defect that is not yet resolved.
func ImprovementSuggestions(r models.TestReport) Suggestions {
	s := Suggestions{
		Optimizations: []string{"加强文件上传功能的测试覆盖", "完善权限验证机制", "优化API接口响应时间"},
		Risks:         []string{"高并发场景下的性能问题", "数据一致性需要加强验证", "异常处理机制待完善"},
	}
	for _, d := range r.Defects {
		if d.Status == "resolved" || d.Status == "closed" {
			continue
		}
		s.Actions = append(s.Actions, "跟进缺陷 "+d.ID+"："+d.Title+"（"+d.Assignee+"）")
	}
	return s
}
