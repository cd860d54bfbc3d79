package dashboard

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/qadesk/internal/ai"
	"github.com/zulandar/qadesk/internal/catalog"
	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/export"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/media"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/prefs"
)

// maxUpload caps one image upload request.
const maxUpload = 32 << 20

// attachment sends body as a download named name.
func attachment(c *gin.Context, name, contentType string, body []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, contentType, body)
}

// Reports.

func (s *server) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Catalog.Reports.List())
}

func (s *server) getReport(c *gin.Context) {
	r, err := s.app.Catalog.Reports.Get(c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// reportCharts is every series on the report detail page.
type reportCharts struct {
	Band        string                 `json:"passRateBand"`
	Status      []chart.Slice          `json:"statusDistribution"`
	Severity    []chart.Slice          `json:"severityDistribution"`
	History     []chart.HistoryPoint   `json:"history"`
	Range       chart.Range            `json:"range"`
	Patterns    []chart.ProblemPattern `json:"problemPatterns"`
	Quality     []chart.QualityPoint   `json:"qualityTrend"`
	Suggestions chart.Suggestions      `json:"suggestions"`
}

func (s *server) buildCharts(r models.TestReport, rng chart.Range) reportCharts {
	return reportCharts{
		Band:        chart.PassRateBand(r.PassRate),
		Status:      chart.StatusDistribution(r),
		Severity:    chart.SeverityDistribution(r.Defects),
		History:     s.app.History(r.ID, rng),
		Range:       rng,
		Patterns:    chart.ProblemPatterns(),
		Quality:     chart.QualityTrend(),
		Suggestions: chart.ImprovementSuggestions(r),
	}
}

func (s *server) reportCharts(c *gin.Context) {
	r, err := s.app.Catalog.Reports.Get(c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	rng, err := chart.ParseRange(c.DefaultQuery("range", s.app.Config.Report.HistoryRange))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.buildCharts(r, rng))
}

func (s *server) reportPDF(c *gin.Context) {
	data, err := s.app.ReportData(c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	name, body, err := export.ReportPDF(data, s.app.PDFOptions())
	if err != nil {
		abortError(c, err)
		return
	}
	attachment(c, name, "application/pdf", body)
}

// Submissions.

func (s *server) listSubmissions(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Catalog.Submissions.List())
}

func (s *server) createSubmission(c *gin.Context) {
	var d catalog.SubmissionDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := s.app.Catalog.Submissions.Create(c.Request.Context(), d)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *server) analyzeSubmission(c *gin.Context) {
	var in ai.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	a, err := s.app.AI.Analyze(c.Request.Context(), in)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ingestImages accepts multipart "images" files plus the number of images
// the form already holds in "existing".
func (s *server) ingestImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}
	existing, _ := strconv.Atoi(c.PostForm("existing"))

	var files []media.File
	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			badRequest(c, err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			badRequest(c, err)
			return
		}
		files = append(files, media.File{Name: fh.Filename, Data: data})
	}
	res, err := media.Ingest(existing, files)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *server) setSubmissionStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sub, err := s.app.Catalog.Submissions.SetStatus(c.Param("id"), req.Status)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Test cases.

func (s *server) listTestCases(c *gin.Context) {
	list := s.app.Catalog.TestCases.List()
	if fn := c.Query("functionId"); fn != "" {
		out := make([]models.TestCase, 0, len(list))
		for _, tc := range list {
			if tc.FunctionID == fn {
				out = append(out, tc)
			}
		}
		list = out
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) updateTestCase(c *gin.Context) {
	var e catalog.TestCaseEdit
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, err)
		return
	}
	tc, err := s.app.Catalog.TestCases.Update(c.Param("id"), e)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, tc)
}

// generateRequest is the test-case generator form.
type generateRequest struct {
	ai.Input
	FunctionID string      `json:"functionId"`
	Options    *ai.Options `json:"options"`
	Format     string      `json:"format"`
	// Add prepends the generated cases to the test case list.
	Add bool `json:"add"`
}

func (s *server) generateTestCases(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	opts := ai.DefaultOptions()
	if req.Options != nil {
		opts = *req.Options
	}
	cases, err := s.app.AI.Generate(c.Request.Context(), req.Input, opts)
	if err != nil {
		abortError(c, err)
		return
	}
	if req.Add {
		cases = s.app.Catalog.TestCases.AddGenerated(req.FunctionID, cases)
	}
	format := req.Format
	if format == "" {
		format = export.FormatFunction
	}
	c.JSON(http.StatusOK, gin.H{"testCases": cases, "format": format, "added": req.Add})
}

type exportCasesRequest struct {
	ai.Input
	FunctionID string            `json:"functionId"`
	Format     string            `json:"format"`
	TestCases  []models.TestCase `json:"testCases"`
}

func (s *server) exportTestCases(c *gin.Context) {
	var req exportCasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	name, body, err := export.GeneratedCasesJSON(req.FunctionID, export.GeneratedCases{
		FunctionDescription: req.Description,
		AcceptanceCriteria:  req.AcceptanceCriteria,
		UsageProcess:        req.UsageProcess,
		TestCases:           req.TestCases,
		GeneratedAt:         s.app.Now(),
		Format:              req.Format,
	})
	if err != nil {
		abortError(c, err)
		return
	}
	attachment(c, name, "application/json", body)
}

// formatTestCases renders cases for the clipboard as Gherkin or a
// tab-separated table.
func (s *server) formatTestCases(c *gin.Context) {
	var req struct {
		Format    string            `json:"format"`
		TestCases []models.TestCase `json:"testCases"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	switch req.Format {
	case "gherkin", "":
		c.String(http.StatusOK, ai.Gherkin(req.TestCases))
	case "table":
		out, err := ai.Table(req.TestCases)
		if err != nil {
			abortError(c, err)
			return
		}
		c.String(http.StatusOK, out)
	default:
		badRequest(c, fmt.Errorf("unknown format %q (want gherkin or table)", req.Format))
	}
}

// Templates.

func (s *server) listTemplates(c *gin.Context) {
	t := s.app.Catalog.Templates
	list := filter.Templates(t.List(), c.Query("category"), c.Query("q"))
	if list == nil {
		list = []models.TestTemplate{}
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "stats": t.Stats()})
}

func (s *server) createTemplate(c *gin.Context) {
	var d catalog.TemplateDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}
	t, err := s.app.Catalog.Templates.Create(d)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) updateTemplate(c *gin.Context) {
	var d catalog.TemplateDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, err)
		return
	}
	t, err := s.app.Catalog.Templates.Update(c.Param("id"), d)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) deleteTemplate(c *gin.Context) {
	if err := s.app.Catalog.Templates.Delete(c.Param("id")); err != nil {
		abortError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *server) duplicateTemplate(c *gin.Context) {
	t, err := s.app.Catalog.Templates.Duplicate(c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *server) exportTemplate(c *gin.Context) {
	t, err := s.app.Catalog.Templates.Get(c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	name, body, err := export.TemplateJSON(t, s.app.Now())
	if err != nil {
		abortError(c, err)
		return
	}
	attachment(c, name, "application/json", body)
}

// Preferences.

func (s *server) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, s.app.Prefs.Get())
}

func (s *server) putPreferences(c *gin.Context) {
	var p prefs.Prefs
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.app.Prefs.Set(p); err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
