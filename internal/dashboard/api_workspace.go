package dashboard

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/state"
)

// viewSummary is one entry of the navigation bar.
type viewSummary struct {
	View  filter.View `json:"view"`
	Title string      `json:"title"`
	Count int         `json:"count"`
}

func (s *server) listViews(c *gin.Context) {
	out := make([]viewSummary, 0, len(filter.Views))
	for _, v := range filter.Views {
		out = append(out, viewSummary{View: v, Title: v.Title(), Count: len(s.app.Records(v))})
	}
	c.JSON(http.StatusOK, out)
}

type viewResponse struct {
	filter.Outcome
	Title  string `json:"title"`
	Header string `json:"header"`
}

func (s *server) runView(c *gin.Context) {
	v, err := filter.ParseView(c.Param("view"))
	if err != nil {
		badRequest(c, err)
		return
	}
	q := filter.Query{Keyword: c.Query("q"), Selection: c.Query("module")}
	out := s.app.View(v, q)
	c.JSON(http.StatusOK, viewResponse{Outcome: out, Title: v.Title(), Header: headerLine(len(out.Records), q)})
}

func (s *server) getTree(c *gin.Context) {
	v, err := filter.ParseView(c.Query("view"))
	if err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, filter.Count(s.app.Records(v), s.app.Tree, s.app.Resolver()))
}

// Requirements.

func (s *server) listRequirements(c *gin.Context) {
	ws := s.app.Workspace
	if system := c.Query("system"); system != "" {
		res := ws.Requirements.BySystem(c.Request.Context(), system)
		respond(c, http.StatusOK, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ws.Requirements.Records(), "status": ws.Requirements.Status()})
}

func (s *server) createRequirement(c *gin.Context) {
	var draft state.RequirementDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.app.Workspace.Requirements.Create(c.Request.Context(), draft)
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusCreated, res)
}

func (s *server) updateRequirement(c *gin.Context) {
	var patch state.RequirementPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.app.Workspace.Requirements.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *server) requirementCandidates(c *gin.Context) {
	list := filter.Candidates(s.app.Workspace.Requirements.Records(), c.Query("system"), c.Query("module"), c.Query("q"))
	if list == nil {
		list = []models.Requirement{}
	}
	c.JSON(http.StatusOK, list)
}

type importRequest struct {
	RequirementIDs []string `json:"requirementIds"`
	PlanID         string   `json:"planId"`
}

func (s *server) importRequirements(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.app.Workspace.ImportRequirements(c.Request.Context(), req.RequirementIDs, req.PlanID)
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *server) syncRequirements(c *gin.Context) {
	res, err := s.app.SyncGitHub(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Plans.

// planRequest accepts dates as YYYY-MM-DD as well as RFC 3339.
type planRequest struct {
	state.PlanDraft
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (r planRequest) draft() (state.PlanDraft, error) {
	d := r.PlanDraft
	var err error
	if d.StartDate, err = parseDate(r.StartDate); err != nil {
		return d, err
	}
	if d.EndDate, err = parseDate(r.EndDate); err != nil {
		return d, err
	}
	return d, nil
}

type planPatchRequest struct {
	state.PlanPatch
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

func (r planPatchRequest) patch() (state.PlanPatch, error) {
	p := r.PlanPatch
	for _, f := range []struct {
		in  *string
		out **time.Time
	}{{r.StartDate, &p.StartDate}, {r.EndDate, &p.EndDate}} {
		if f.in == nil {
			continue
		}
		t, err := parseDate(*f.in)
		if err != nil {
			return p, err
		}
		*f.out = &t
	}
	return p, nil
}

// parseDate reads a day or a timestamp. Empty yields the zero time, which
// validation reports.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func (s *server) listPlans(c *gin.Context) {
	p := s.app.Workspace.Plans
	c.JSON(http.StatusOK, gin.H{"data": p.Records(), "status": p.Status()})
}

func (s *server) getPlan(c *gin.Context) {
	plan, ok := s.app.Workspace.Plans.Get(c.Param("id"))
	if !ok {
		abortError(c, state.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (s *server) createPlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.app.Workspace.Plans.Create(c.Request.Context(), draft)
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusCreated, res)
}

func (s *server) updatePlan(c *gin.Context) {
	var req planPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := s.app.Workspace.Plans.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *server) deletePlan(c *gin.Context) {
	res, err := s.app.Workspace.Plans.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *server) updatePlanProgress(c *gin.Context) {
	var req struct {
		Progress *int `json:"progress"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Progress == nil {
		abortError(c, &state.ValidationError{Field: "progress", Message: "请输入进度"})
		return
	}
	res, err := s.app.Workspace.Plans.UpdateProgress(c.Request.Context(), c.Param("id"), *req.Progress)
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *server) regenerateBurndown(c *gin.Context) {
	res, err := s.app.Workspace.Plans.RegenerateBurndown(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// Executions.

func (s *server) listExecutions(c *gin.Context) {
	res, err := s.app.Workspace.Executions(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *server) createExecution(c *gin.Context) {
	var e models.TestCaseExecution
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, err)
		return
	}
	e.ID = 0
	e.TestPlanID = c.Param("id")
	created, err := s.app.Workspace.CreateExecution(c.Request.Context(), e)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *server) updateExecution(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid execution id %q", c.Param("id")))
		return
	}
	var req struct {
		Status              string   `json:"status"`
		ActualExecutionTime *float64 `json:"actualExecutionTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	e, err := s.app.Workspace.UpdateExecution(c.Request.Context(), uint(id), req.Status, req.ActualExecutionTime)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *server) getStats(c *gin.Context) {
	respond(c, http.StatusOK, s.app.Workspace.Stats(c.Request.Context()))
}
