// Package export builds downloadable artifacts: the report PDF and the JSON
// exports of templates and generated test cases.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/models"
)

// A4 portrait geometry in millimetres.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 20.0
)

// Space that must remain below the cursor before each block, otherwise the
// block starts on a new page.
const (
	reserveSummary  = 60.0
	reserveDefects  = 100.0
	reserveDefect   = 40.0
	reserveHistory  = 80.0
	reservePatterns = 60.0
	reservePattern  = 20.0
)

// historyRows is how many of the most recent history points are printed.
const historyRows = 5

// Text alignments.
const (
	AlignLeft   = ""
	AlignCenter = "C"
)

// Line is one positioned run of text. Y is the baseline.
type Line struct {
	X     float64
	Y     float64
	Text  string
	Size  float64
	Bold  bool
	Align string
}

// Page is the text placed on one page.
type Page struct {
	Lines []Line
}

// Document is a laid-out report, independent of the PDF backend.
type Document struct {
	Pages []Page
}

// Rows returns the document's visual rows: lines sharing a page and
// baseline are joined with a space, in placement order.
func (d *Document) Rows() []string {
	var rows []string
	for _, p := range d.Pages {
		var (
			cur   []string
			lastY = -1.0
		)
		for _, l := range p.Lines {
			if l.Y != lastY && cur != nil {
				rows = append(rows, strings.Join(cur, " "))
				cur = nil
			}
			cur = append(cur, l.Text)
			lastY = l.Y
		}
		if cur != nil {
			rows = append(rows, strings.Join(cur, " "))
		}
	}
	return rows
}

// ReportData is everything printed in a report PDF.
type ReportData struct {
	Report      models.TestReport
	History     []chart.HistoryPoint
	Patterns    []chart.ProblemPattern
	GeneratedAt time.Time
}

type layout struct {
	doc *Document
	y   float64
}

func (l *layout) page() *Page { return &l.doc.Pages[len(l.doc.Pages)-1] }

func (l *layout) newPage() {
	l.doc.Pages = append(l.doc.Pages, Page{})
	l.y = Margin
}

// reserve starts a new page when less than space remains below the cursor.
func (l *layout) reserve(space float64) {
	if l.y > PageHeight-space {
		l.newPage()
	}
}

func (l *layout) text(x float64, s string, size float64, bold bool) {
	p := l.page()
	p.Lines = append(p.Lines, Line{X: x, Y: l.y, Text: s, Size: size, Bold: bold})
}

func (l *layout) heading(s string) {
	l.text(Margin, s, 14, true)
	l.y += 10
}

// Layout places the report on A4 pages.
func Layout(data ReportData) *Document {
	r := data.Report
	l := &layout{doc: &Document{}}
	l.newPage()

	p := l.page()
	p.Lines = append(p.Lines, Line{
		X: PageWidth / 2, Y: l.y, Text: "AI辅助测试管理 - 测试报告",
		Size: 18, Bold: true, Align: AlignCenter,
	})
	l.y += 15

	l.heading("报告信息")
	info := [][2]string{
		{"报告名称:", r.Name},
		{"系统名称:", r.SystemName},
		{"模块名称:", r.ModuleName},
		{"执行时间:", r.ExecutionDate.Format("2006-01-02")},
		{"总用例数:", fmt.Sprint(r.TotalCases)},
		{"通过用例数:", fmt.Sprint(r.PassedCases)},
		{"失败用例数:", fmt.Sprint(r.FailedCases)},
		{"通过率:", fmt.Sprintf("%.1f%%", r.PassRate)},
	}
	for _, kv := range info {
		l.text(Margin, kv[0], 10, false)
		l.text(Margin+40, kv[1], 10, false)
		l.y += 6
	}
	l.y += 10

	l.reserve(reserveSummary)
	l.heading("执行摘要")
	summary := Wrap(r.Summary, PageWidth-2*Margin, 10)
	for i, s := range summary {
		p := l.page()
		p.Lines = append(p.Lines, Line{X: Margin, Y: l.y + float64(i)*5, Text: s, Size: 10})
	}
	l.y += float64(len(summary))*5 + 10

	l.reserve(reserveDefects)
	l.heading("缺陷列表")
	for i, d := range r.Defects {
		l.reserve(reserveDefect)
		l.text(Margin, fmt.Sprintf("%d. %s", i+1, d.Title), 10, true)
		l.y += 6
		l.text(Margin+5, "严重程度: "+models.PriorityLabel(d.Severity), 10, false)
		l.text(Margin+60, "状态: "+models.StatusLabel(d.Status), 10, false)
		l.y += 5
		l.text(Margin+5, "负责人: "+d.Assignee, 10, false)
		l.y += 6
		desc := Wrap(d.Description, PageWidth-2*Margin-10, 10)
		for j, s := range desc {
			p := l.page()
			p.Lines = append(p.Lines, Line{X: Margin + 5, Y: l.y + float64(j)*4, Text: s, Size: 10})
		}
		l.y += float64(len(desc))*4 + 8
	}
	l.y += 10

	l.reserve(reserveHistory)
	l.heading("历史数据分析")
	l.text(Margin, "最近执行趋势:", 10, false)
	l.y += 6
	l.text(Margin, "日期        通过率    总测试    通过    失败    缺陷", 10, false)
	l.y += 5
	for _, h := range chart.Last(data.History, historyRows) {
		l.text(Margin, fmt.Sprintf("%s    %.1f%%    %d    %d    %d    %d",
			h.Date, h.PassRate, h.TotalTests, h.PassedTests, h.FailedTests, h.Defects), 10, false)
		l.y += 5
	}
	l.y += 10

	l.reserve(reservePatterns)
	l.heading("问题模式分析")
	for _, pt := range data.Patterns {
		l.reserve(reservePattern)
		l.text(Margin, fmt.Sprintf("%s: %d 次 %s", pt.Name, pt.Count, pt.Arrow()), 10, false)
		l.y += 6
	}

	footerY := PageHeight - 10
	p = l.page()
	p.Lines = append(p.Lines,
		Line{X: Margin, Y: footerY, Text: "生成时间: " + data.GeneratedAt.Format("2006/1/2 15:04:05"), Size: 8},
		Line{X: PageWidth - Margin - 50, Y: footerY, Text: "AI辅助测试管理系统", Size: 8},
	)
	return l.doc
}
