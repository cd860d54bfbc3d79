package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/filter"
)

func (s *server) handleIndex(c *gin.Context) {
	v, err := filter.ParseView(c.Query("view"))
	if err != nil {
		v = filter.ViewSubmissions
	}
	q := filter.Query{Keyword: c.Query("q"), Selection: c.Query("module")}
	c.HTML(http.StatusOK, "layout.html", s.indexData(v, q))
}

// handlePlanPage renders a plan, or a placeholder when the ID is unknown.
func (s *server) handlePlanPage(c *gin.Context) {
	id := c.Param("id")
	ws := s.app.Workspace
	p := planPage{Page: "plan", ID: id, Collapsed: s.app.Prefs.Get().SidebarCollapsed}

	plan, ok := ws.Plans.Get(id)
	if !ok {
		c.HTML(http.StatusNotFound, "layout.html", p)
		return
	}
	p.Found = true
	p.Plan = plan
	for _, rid := range plan.Requirements {
		if r, ok := ws.Requirements.Get(rid); ok {
			p.Requirements = append(p.Requirements, r)
		}
	}
	if res, err := ws.Executions(c.Request.Context(), id); err == nil {
		p.Executions = res.Value
		p.Warning = res.Warning()
	}
	c.HTML(http.StatusOK, "layout.html", p)
}

// handleReportPage renders a report, or a placeholder when the ID is unknown.
func (s *server) handleReportPage(c *gin.Context) {
	id := c.Param("id")
	p := reportPage{Page: "report", ID: id, Collapsed: s.app.Prefs.Get().SidebarCollapsed}

	r, err := s.app.Catalog.Reports.Get(id)
	if err != nil {
		c.HTML(http.StatusNotFound, "layout.html", p)
		return
	}
	rng, err := chart.ParseRange(c.DefaultQuery("range", s.app.Config.Report.HistoryRange))
	if err != nil {
		rng = chart.Range30d
	}
	p.Found = true
	p.Report = r
	p.Charts = s.buildCharts(r, rng)
	c.HTML(http.StatusOK, "layout.html", p)
}
