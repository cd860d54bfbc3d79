// Package render turns view records into display tables shared by the HTML
// dashboard and the CLI.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/models"
)

// cellLimit is the number of characters shown before a cell is cut.
const cellLimit = 20

// Row is one rendered record.
type Row struct {
	ID    string
	Link  string
	Cells []string
	// Full holds untruncated text for cells that were cut, keyed by column.
	Full map[int]string
}

// Table is a rendered view.
type Table struct {
	Columns []string
	Rows    []Row
}

// Header is the line under a view title.
func Header(n int, q filter.Query) string {
	s := fmt.Sprintf("共 %d 条记录", n)
	if !q.IsAll() {
		s += " · 已选择模块: " + q.Selection
	}
	return s
}

// Truncate cuts s to limit characters and appends "...".
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// Steps shows the first two steps joined by arrows.
func Steps(steps []string) string {
	if len(steps) <= 2 {
		return strings.Join(steps, " → ")
	}
	return strings.Join(steps[:2], " → ") + "..."
}

// Percent formats a rate with one decimal.
func Percent(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" }

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var columns = map[filter.View][]string{
	filter.ViewSubmissions:  {"功能编号", "系统名称", "模块名称", "功能介绍", "验收标准", "使用流程描述", "审核状态"},
	filter.ViewTestCases:    {"单元测试编号", "功能编号", "测试用例描述", "测试分类", "测试步骤", "期望结果", "执行次数", "最后执行结果"},
	filter.ViewReports:      {"报告名称", "系统名称", "模块名称", "总用例数", "通过用例数", "失败用例数", "通过率"},
	filter.ViewRequirements: {"需求编号", "需求标题", "系统", "模块", "优先级", "状态", "所属计划"},
	filter.ViewPlans:        {"计划编号", "计划名称", "状态", "开始日期", "结束日期", "进度", "优先级", "预估工时"},
}

// Columns returns the headings of view v.
func Columns(v filter.View) []string { return columns[v] }

// BuildTable renders records of view v.
func BuildTable(v filter.View, records []filter.Record) Table {
	t := Table{Columns: Columns(v), Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		t.Rows = append(t.Rows, buildRow(rec))
	}
	return t
}

func buildRow(rec filter.Record) Row {
	row := Row{ID: rec.RecordID(), Full: map[int]string{}}
	cut := func(s string) string {
		short := Truncate(s, cellLimit)
		if short != s {
			row.Full[len(row.Cells)] = s
		}
		return short
	}
	switch r := rec.(type) {
	case filter.SubmissionRecord:
		row.Cells = append(row.Cells, r.FunctionID, r.SystemName, r.ModuleName)
		row.Cells = append(row.Cells, cut(r.Description))
		row.Cells = append(row.Cells, cut(r.AcceptanceCriteria))
		row.Cells = append(row.Cells, cut(r.UsageProcess))
		row.Cells = append(row.Cells, submissionStatus(r.Status))
	case filter.TestCaseRecord:
		row.Cells = append(row.Cells, r.TestCaseID, r.FunctionID)
		row.Cells = append(row.Cells, cut(r.Description))
		row.Cells = append(row.Cells, orDash(models.CategoryLabel(r.Category)))
		if len(r.Steps) > 2 {
			row.Full[len(row.Cells)] = strings.Join(r.Steps, " → ")
		}
		row.Cells = append(row.Cells, Steps(r.Steps))
		row.Cells = append(row.Cells, cut(r.ExpectedResult))
		row.Cells = append(row.Cells, strconv.Itoa(r.ExecutionCount), orDash(models.StatusLabel(r.LastExecutionResult)))
	case filter.ReportRecord:
		row.Link = "/reports/" + r.ID
		row.Cells = append(row.Cells, r.Name, r.SystemName, r.ModuleName,
			strconv.Itoa(r.TotalCases), strconv.Itoa(r.PassedCases), strconv.Itoa(r.FailedCases), Percent(r.PassRate))
	case filter.RequirementRecord:
		plan := "-"
		if r.TestPlanID != nil {
			plan = *r.TestPlanID
		}
		row.Cells = append(row.Cells, r.ID, cut(r.Title), r.System, r.Module,
			models.PriorityLabel(r.Priority), models.StatusLabel(r.Status), plan)
	case filter.PlanRecord:
		row.Link = "/plans/" + r.ID
		row.Cells = append(row.Cells, r.ID, cut(r.Name), models.StatusLabel(r.Status),
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
			strconv.Itoa(r.Progress)+"%", models.PriorityLabel(r.Priority),
			strconv.FormatFloat(r.EstimatedHours, 'f', -1, 64)+"h")
	}
	return row
}

// submissionStatus labels unknown statuses as awaiting review.
func submissionStatus(s string) string {
	switch s {
	case models.SubmissionApproved, models.SubmissionRejected:
		return models.StatusLabel(s)
	}
	return "待审核"
}

// WriteTable prints t with columns padded to their display width, so
// double-width characters stay aligned.
func WriteTable(w io.Writer, t Table) error {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = runewidth.StringWidth(c)
	}
	for _, r := range t.Rows {
		for i, c := range r.Cells {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(c))
			}
		}
	}
	line := func(cells []string) error {
		var b strings.Builder
		for i, c := range cells {
			if i == len(cells)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
		_, err := io.WriteString(w, b.String())
		return err
	}
	if err := line(t.Columns); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := line(r.Cells); err != nil {
			return err
		}
	}
	return nil
}

// WriteTree prints navigation counts, one node per line.
func WriteTree(w io.Writer, tree filter.Tree) error {
	if _, err := fmt.Fprintf(w, "%s (%d)\n", filter.AllSelection, tree.All); err != nil {
		return err
	}
	for _, s := range tree.Nodes {
		if _, err := fmt.Fprintf(w, "  %s (%d)\n", s.Name, s.Count); err != nil {
			return err
		}
		for _, m := range s.Children {
			if _, err := fmt.Fprintf(w, "    %s (%d)\n", m.Name, m.Count); err != nil {
				return err
			}
		}
	}
	return nil
}
