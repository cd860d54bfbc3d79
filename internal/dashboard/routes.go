package dashboard

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zulandar/qadesk/internal/app"
)

// server carries the services every handler reads.
type server struct {
	app *app.App
}

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pages.
	router.GET("/", s.handleIndex)
	router.GET("/plans/:id", s.handlePlanPage)
	router.GET("/reports/:id", s.handleReportPage)

	api := router.Group("/api")
	api.GET("/events", s.handleSSE)

	api.GET("/views", s.listViews)
	api.GET("/views/:view", s.runView)
	api.GET("/tree", s.getTree)

	api.GET("/requirements", s.listRequirements)
	api.POST("/requirements", s.createRequirement)
	api.PATCH("/requirements/:id", s.updateRequirement)
	api.GET("/requirements/candidates", s.requirementCandidates)
	api.POST("/requirements/import", s.importRequirements)
	api.POST("/requirements/sync", s.syncRequirements)

	api.GET("/plans", s.listPlans)
	api.POST("/plans", s.createPlan)
	api.GET("/plans/:id", s.getPlan)
	api.PATCH("/plans/:id", s.updatePlan)
	api.DELETE("/plans/:id", s.deletePlan)
	api.PUT("/plans/:id/progress", s.updatePlanProgress)
	api.POST("/plans/:id/burndown", s.regenerateBurndown)
	api.GET("/plans/:id/executions", s.listExecutions)
	api.POST("/plans/:id/executions", s.createExecution)
	api.PATCH("/executions/:id", s.updateExecution)
	api.GET("/stats", s.getStats)

	api.GET("/reports", s.listReports)
	api.GET("/reports/:id", s.getReport)
	api.GET("/reports/:id/charts", s.reportCharts)
	api.GET("/reports/:id/pdf", s.reportPDF)

	api.GET("/submissions", s.listSubmissions)
	api.POST("/submissions", s.createSubmission)
	api.POST("/submissions/analyze", s.analyzeSubmission)
	api.POST("/submissions/images", s.ingestImages)
	api.PATCH("/submissions/:id/status", s.setSubmissionStatus)

	api.GET("/testcases", s.listTestCases)
	api.PATCH("/testcases/:id", s.updateTestCase)
	api.POST("/testcases/generate", s.generateTestCases)
	api.POST("/testcases/export", s.exportTestCases)
	api.POST("/testcases/format", s.formatTestCases)

	api.GET("/templates", s.listTemplates)
	api.POST("/templates", s.createTemplate)
	api.PUT("/templates/:id", s.updateTemplate)
	api.DELETE("/templates/:id", s.deleteTemplate)
	api.POST("/templates/:id/duplicate", s.duplicateTemplate)
	api.GET("/templates/:id/export", s.exportTemplate)

	api.GET("/preferences", s.getPreferences)
	api.PUT("/preferences", s.putPreferences)
}
