package dashboard

import (
	"html/template"
	"strconv"
	"time"

	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/render"
	"github.com/zulandar/qadesk/internal/state"
)

// headerLine is the record count under the view title.
func headerLine(n int, q filter.Query) string { return render.Header(n, q) }

var funcMap = template.FuncMap{
	"priority": models.PriorityLabel,
	"status":   models.StatusLabel,
	"category": models.CategoryLabel,
	"date":     func(t time.Time) string { return t.Format("2006-01-02") },
	"pct":      render.Percent,
	"band":     chart.PassRateBand,
	"hours":    func(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) },
	"ptrf": func(f *float64) string {
		if f == nil {
			return "-"
		}
		return strconv.FormatFloat(*f, 'f', 1, 64)
	},
}

// navItem is one entry of the view switcher.
type navItem struct {
	View   filter.View
	Title  string
	Count  int
	Active bool
}

// treeItem is one node of the rendered navigation tree.
type treeItem struct {
	Name     string
	Count    int
	Selected bool
	Children []treeItem
}

// indexPage is everything the three-pane dashboard renders.
type indexPage struct {
	Page      string
	View      filter.View
	Title     string
	Header    string
	Keyword   string
	Selection string
	Nav       []navItem
	All       int
	AllActive bool
	Tree      []treeItem
	Table     render.Table
	Collapsed bool
	Warnings  []string
}

func (s *server) indexData(v filter.View, q filter.Query) indexPage {
	out := s.app.View(v, q)
	p := indexPage{
		Page:      "index",
		View:      v,
		Title:     v.Title(),
		Header:    headerLine(len(out.Records), q),
		Keyword:   q.Keyword,
		Selection: q.Selection,
		All:       out.Tree.All,
		AllActive: q.IsAll(),
		Table:     render.BuildTable(v, out.Records),
		Collapsed: s.app.Prefs.Get().SidebarCollapsed,
	}
	for _, nv := range filter.Views {
		n := out.Tree.All
		if nv != v {
			n = len(s.app.Records(nv))
		}
		p.Nav = append(p.Nav, navItem{View: nv, Title: nv.Title(), Count: n, Active: nv == v})
	}
	for _, sys := range out.Tree.Nodes {
		item := treeItem{Name: sys.Name, Count: sys.Count, Selected: sys.Name == q.Selection}
		for _, m := range sys.Children {
			item.Children = append(item.Children, treeItem{Name: m.Name, Count: m.Count, Selected: m.Name == q.Selection})
		}
		p.Tree = append(p.Tree, item)
	}
	p.Warnings = loadWarnings(s.app.Workspace.Requirements.Status(), s.app.Workspace.Plans.Status())
	return p
}

// loadWarnings reports collections that are showing fixture data.
func loadWarnings(statuses ...state.Status) []string {
	var out []string
	seen := map[string]bool{}
	for _, st := range statuses {
		if st.Error != "" && !seen[st.Error] {
			seen[st.Error] = true
			out = append(out, st.Error)
		}
	}
	return out
}

// planPage is the plan detail view.
type planPage struct {
	Page         string
	Found        bool
	ID           string
	Plan         models.TestPlan
	Requirements []models.Requirement
	Executions   []models.TestCaseExecution
	Warning      string
	Collapsed    bool
}

// reportPage is the report detail view.
type reportPage struct {
	Page      string
	Found     bool
	ID        string
	Report    models.TestReport
	Charts    reportCharts
	Collapsed bool
}
