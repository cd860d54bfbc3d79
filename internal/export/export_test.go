package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/fixtures"
	"github.com/zulandar/qadesk/internal/models"
)

var genAt = time.Date(2024, 12, 19, 9, 30, 0, 0, time.UTC)

func reportData(t *testing.T, r models.TestReport) ReportData {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	return ReportData{
		Report:      r,
		History:     chart.HistoricalTrend(rng, genAt, chart.Range30d),
		Patterns:    chart.ProblemPatterns(),
		GeneratedAt: genAt,
	}
}

func report1(t *testing.T) models.TestReport {
	t.Helper()
	for _, r := range fixtures.Reports() {
		if r.ID == "1" {
			return r
		}
	}
	t.Fatal("fixture report 1 missing")
	return models.TestReport{}
}

func TestLayout_PassRateHeader(t *testing.T) {
	doc := Layout(reportData(t, report1(t)))
	rows := doc.Rows()
	if !slices.Contains(rows, "通过率: 83.3%") {
		t.Errorf("rows missing pass rate line:\n%s", strings.Join(rows, "\n"))
	}
	if rows[0] != "AI辅助测试管理 - 测试报告" || rows[1] != "报告信息" {
		t.Errorf("first rows = %q, %q", rows[0], rows[1])
	}
	if !slices.Contains(rows, "报告名称: 供应商管理模块测试报告") {
		t.Error("report name row missing")
	}
}

func TestLayout_Sections(t *testing.T) {
	doc := Layout(reportData(t, report1(t)))
	rows := doc.Rows()
	order := []string{"执行摘要", "缺陷列表", "1. 文件上传大小限制不明确", "严重程度: 中 状态: 开放", "负责人: 张三",
		"历史数据分析", "最近执行趋势:", "问题模式分析", "文件上传: 15 次 ↑", "权限验证: 12 次 ↓"}
	last := -1
	for _, want := range order {
		i := slices.Index(rows, want)
		if i < 0 {
			t.Errorf("row %q missing", want)
			continue
		}
		if i <= last {
			t.Errorf("row %q out of order", want)
		}
		last = i
	}
	if !slices.Contains(rows, "生成时间: 2024/12/19 09:30:00 AI辅助测试管理系统") {
		t.Error("footer row missing")
	}
}

func TestLayout_HistoryLastFive(t *testing.T) {
	data := reportData(t, report1(t))
	doc := Layout(data)
	rows := doc.Rows()
	last := data.History[len(data.History)-1]
	first := data.History[len(data.History)-5]
	hasPrefix := func(p string) bool {
		return slices.ContainsFunc(rows, func(r string) bool { return strings.HasPrefix(r, p+"    ") })
	}
	if !hasPrefix(last.Date) || !hasPrefix(first.Date) {
		t.Error("last five history rows missing")
	}
	if sixth := data.History[len(data.History)-6]; sixth.Date != first.Date && hasPrefix(sixth.Date) {
		t.Errorf("sixth-from-last point %s printed", sixth.Date)
	}
}

func TestLayout_PageBreaks(t *testing.T) {
	r := report1(t)
	r.Defects = nil
	for i := 0; i < 12; i++ {
		r.Defects = append(r.Defects, models.Defect{
			Title: "缺陷", Severity: "high", Status: "open", Assignee: "张三",
			Description: strings.Repeat("描述文字", 30),
		})
	}
	doc := Layout(reportData(t, r))
	if len(doc.Pages) < 2 {
		t.Fatalf("pages = %d, want a page break", len(doc.Pages))
	}
	for pi, p := range doc.Pages {
		for _, l := range p.Lines {
			if l.Y > PageHeight || l.Y < Margin-1e-9 {
				t.Errorf("page %d: line %q at y=%.1f outside page", pi, l.Text, l.Y)
			}
		}
	}
	for _, l := range doc.Pages[1].Lines[:1] {
		if l.Y != Margin {
			t.Errorf("new page starts at y=%.1f, want %.1f", l.Y, Margin)
		}
	}
}

func TestWrap(t *testing.T) {
	width, size := 50.0, 10.0
	lines := Wrap(strings.Repeat("测", 100), width, size)
	if len(lines) < 2 {
		t.Fatalf("lines = %d, want wrapping", len(lines))
	}
	maxCells := int(width / (size * ptToMM / 2))
	for _, l := range lines {
		if w := runewidth.StringWidth(l); w > maxCells {
			t.Errorf("line width %d > %d", w, maxCells)
		}
	}
	if strings.Join(lines, "") != strings.Repeat("测", 100) {
		t.Error("wrapping lost text")
	}

	words := Wrap("alpha beta gamma delta epsilon zeta eta theta", 20, 10)
	for _, l := range words {
		if strings.HasPrefix(l, " ") || strings.HasSuffix(l, " ") {
			t.Errorf("untrimmed line %q", l)
		}
	}
	if Wrap("", 50, 10) != nil {
		t.Error("Wrap(\"\") should be nil")
	}
}

func TestReportPDF(t *testing.T) {
	name, body, err := ReportPDF(reportData(t, report1(t)), PDFOptions{})
	if err != nil {
		t.Fatalf("ReportPDF: %v", err)
	}
	if name != "供应商管理模块测试报告_2024-12-19.pdf" {
		t.Errorf("name = %q", name)
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		t.Errorf("body does not look like a PDF: %q", body[:min(len(body), 8)])
	}
}

func TestRender_MissingFont(t *testing.T) {
	_, err := Render(Layout(reportData(t, report1(t))), PDFOptions{FontPath: "/nonexistent/font.ttf"})
	if err == nil {
		t.Fatal("expected error for missing font")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
	if !strings.Contains(err.Error(), "load font /nonexistent/font.ttf") {
		t.Errorf("err = %v, want font path named", err)
	}
}

func TestReportFilename(t *testing.T) {
	if got := ReportFilename("a/b 报告", genAt); got != "a-b 报告_2024-12-19.pdf" {
		t.Errorf("ReportFilename = %q", got)
	}
}

func TestTemplateJSON(t *testing.T) {
	tpl := fixtures.Templates()[1]
	name, body, err := TemplateJSON(tpl, genAt)
	if err != nil {
		t.Fatal(err)
	}
	if name != "template-API接口测试模板_2024-12-19.json" {
		t.Errorf("name = %q", name)
	}
	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got["exportedAt"] != "2024-12-19T09:30:00Z" || got["name"] != tpl.Name {
		t.Errorf("exportedAt/name = %v/%v", got["exportedAt"], got["name"])
	}
	if !bytes.Contains(body, []byte("\n  \"id\"")) {
		t.Error("expected two-space indentation")
	}
}

func TestGeneratedCasesJSON(t *testing.T) {
	name, body, err := GeneratedCasesJSON("FUNC-001", GeneratedCases{
		FunctionDescription: "d",
		TestCases:           fixtures.TestCases()[:1],
		GeneratedAt:         genAt,
	})
	if err != nil {
		t.Fatal(err)
	}
	if name != "test-cases-FUNC-001_2024-12-19.json" {
		t.Errorf("name = %q", name)
	}
	var got map[string]any
	json.Unmarshal(body, &got)
	for _, k := range []string{"functionDescription", "acceptanceCriteria", "usageProcess", "testCases", "generatedAt", "format"} {
		if _, ok := got[k]; !ok {
			t.Errorf("key %q missing", k)
		}
	}
	if got["format"] != FormatFunction {
		t.Errorf("format = %v", got["format"])
	}

	name, _, _ = GeneratedCasesJSON("", GeneratedCases{GeneratedAt: genAt})
	if name != "test-cases-generated_2024-12-19.json" {
		t.Errorf("fallback name = %q", name)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"功能测试 标准  模板": "功能测试-标准-模板",
		" a/b ":       "a-b",
		"":            "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
