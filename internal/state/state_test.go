package state

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/notify"
	"github.com/zulandar/qadesk/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Requirement{}, &models.TestPlan{}, &models.TestCaseExecution{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func fixedClock() func() time.Time {
	now := time.Date(2024, 12, 19, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

type recorder struct {
	mu  sync.Mutex
	got []notify.Alert
}

func (r *recorder) Notify(_ context.Context, a notify.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, a)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func offlineWorkspace(t *testing.T) (*Workspace, *recorder) {
	t.Helper()
	rec := &recorder{}
	w := NewWorkspace(store.Offline{}, Opts{Now: fixedClock(), Alerts: notify.NewOnce(rec)})
	w.RefreshAll(context.Background())
	return w, rec
}

func TestFetch_FallsBackToFixtures(t *testing.T) {
	w, alerts := offlineWorkspace(t)

	st := w.Requirements.Status()
	if st.Count != 6 || st.Error != store.MsgUnavailable || st.Loading {
		t.Errorf("requirements status = %+v", st)
	}
	if got := w.Plans.Status().Count; got != 3 {
		t.Errorf("plans count = %d, want 3", got)
	}
	if alerts.count() != 2 {
		t.Errorf("alerts = %d, want one per entity", alerts.count())
	}

	w.RefreshAll(context.Background())
	if alerts.count() != 2 {
		t.Errorf("alerts after second refresh = %d, want 2", alerts.count())
	}
}

func TestFetch_FromBackend(t *testing.T) {
	g := store.NewGorm(openTestDB(t))
	ctx := context.Background()
	if err := g.CreateRequirement(ctx, &models.Requirement{ID: "REQ-9", Title: "t", System: "s", Module: "m"}); err != nil {
		t.Fatal(err)
	}
	w := NewWorkspace(g, Opts{})
	if err := w.RefreshAll(ctx); err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if st := w.Requirements.Status(); st.Count != 1 || st.Error != "" {
		t.Errorf("status = %+v", st)
	}
	if w.Plans.Status().Count != 0 {
		t.Errorf("plans should be empty")
	}
}

func TestCreatePlan_RoundTrip(t *testing.T) {
	g := store.NewGorm(openTestDB(t))
	ctx := context.Background()
	w := NewWorkspace(g, Opts{Now: fixedClock()})

	res, err := w.Plans.Create(ctx, PlanDraft{
		Name:           "订单回归",
		StartDate:      day("2024-12-20"),
		EndDate:        day("2024-12-27"),
		AssignedTo:     SplitList(" 赵六, ,孙七 "),
		Requirements:   []string{"REQ-004"},
		EstimatedHours: 10,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.RemoteErr != nil {
		t.Fatalf("RemoteErr: %v", res.RemoteErr)
	}

	p := res.Value
	if p.Progress != 0 || p.Status != models.PlanDraft {
		t.Errorf("progress/status = %d/%s", p.Progress, p.Status)
	}
	if len(p.BurndownData) != 8 {
		t.Fatalf("burndown points = %d, want 8", len(p.BurndownData))
	}
	if first := p.BurndownData[0].PlannedWorkload; first != 10 {
		t.Errorf("first planned = %v, want 10", first)
	}
	if last := p.BurndownData[7].PlannedWorkload; math.Abs(last) > 1e-9 {
		t.Errorf("last planned = %v, want 0", last)
	}
	if strings.Join(p.AssignedTo, "|") != "赵六|孙七" {
		t.Errorf("assignedTo = %v", p.AssignedTo)
	}
	if !strings.HasPrefix(p.ID, "PLAN-") {
		t.Errorf("id = %q", p.ID)
	}

	stored, err := g.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if stored.Progress != 0 || len(stored.BurndownData) != 8 {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	w, _ := offlineWorkspace(t)
	tests := []struct {
		name  string
		draft PlanDraft
		msg   string
	}{
		{"no name", PlanDraft{StartDate: day("2024-12-20"), EndDate: day("2024-12-27")}, "请输入计划名称"},
		{"no dates", PlanDraft{Name: "x"}, "请选择开始和结束日期"},
		{"end before start", PlanDraft{Name: "x", StartDate: day("2024-12-27"), EndDate: day("2024-12-20")}, "结束日期必须晚于开始日期"},
		{"same day", PlanDraft{Name: "x", StartDate: day("2024-12-20"), EndDate: day("2024-12-20")}, "结束日期必须晚于开始日期"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Plans.Create(context.Background(), tt.draft)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Message != tt.msg {
				t.Errorf("err = %v, want %q", err, tt.msg)
			}
			if w.Plans.Status().Count != 3 {
				t.Errorf("state mutated on validation error")
			}
		})
	}
}

func TestCreatePlan_OfflineKeepsLocalAndAlerts(t *testing.T) {
	w, alerts := offlineWorkspace(t)
	before := alerts.count()

	res, err := w.Plans.Create(context.Background(), PlanDraft{
		Name: "离线计划", StartDate: day("2024-12-20"), EndDate: day("2024-12-22"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !errors.Is(res.RemoteErr, store.ErrUnavailable) {
		t.Errorf("RemoteErr = %v", res.RemoteErr)
	}
	if res.Warning() != store.MsgUnavailable {
		t.Errorf("Warning = %q", res.Warning())
	}
	recs := w.Plans.Records()
	if len(recs) != 4 || recs[0].ID != res.Value.ID {
		t.Errorf("new plan not prepended: %d records, first %s", len(recs), recs[0].ID)
	}
	if alerts.count() != before+1 {
		t.Errorf("alerts = %d, want %d", alerts.count(), before+1)
	}
}

func TestCreatePlan_IDCollision(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()
	draft := PlanDraft{Name: "a", StartDate: day("2024-12-20"), EndDate: day("2024-12-21")}
	r1, _ := w.Plans.Create(ctx, draft)
	r2, _ := w.Plans.Create(ctx, draft)
	if r1.Value.ID == r2.Value.ID {
		t.Errorf("duplicate id %s", r1.Value.ID)
	}
}

// slowBackend accepts creates after a delay so concurrent calls overlap.
type slowBackend struct {
	store.Offline
}

func (slowBackend) CreatePlan(context.Context, *models.TestPlan) error {
	time.Sleep(5 * time.Millisecond)
	return nil
}

func (slowBackend) CreateRequirement(context.Context, *models.Requirement) error {
	time.Sleep(5 * time.Millisecond)
	return nil
}

func TestCreate_ConcurrentIDsUnique(t *testing.T) {
	w := NewWorkspace(slowBackend{}, Opts{Now: fixedClock()})
	ctx := context.Background()
	const n = 20

	var wg sync.WaitGroup
	for range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := w.Plans.Create(ctx, PlanDraft{Name: "并发计划", StartDate: day("2024-12-20"), EndDate: day("2024-12-21")}); err != nil {
				t.Errorf("Plans.Create: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := w.Requirements.Create(ctx, RequirementDraft{Title: "并发需求", System: "采购系统", Module: "供应商管理"}); err != nil {
				t.Errorf("Requirements.Create: %v", err)
			}
		}()
	}
	wg.Wait()

	planIDs := map[string]bool{}
	for _, p := range w.Plans.Records() {
		planIDs[p.ID] = true
	}
	if len(w.Plans.Records()) != n || len(planIDs) != n {
		t.Errorf("plans: records=%d unique=%d", len(w.Plans.Records()), len(planIDs))
	}
	reqIDs := map[string]bool{}
	for _, r := range w.Requirements.Records() {
		reqIDs[r.ID] = true
	}
	if len(w.Requirements.Records()) != n || len(reqIDs) != n {
		t.Errorf("requirements: records=%d unique=%d", len(w.Requirements.Records()), len(reqIDs))
	}
}

func TestUpdatePlan_Idempotent(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()
	fifty := 50
	for i := 0; i < 2; i++ {
		res, err := w.Plans.Update(ctx, "PLAN-002", PlanPatch{Progress: &fifty})
		if err != nil {
			t.Fatalf("Update #%d: %v", i, err)
		}
		if res.Value.Progress != 50 {
			t.Errorf("progress #%d = %d", i, res.Value.Progress)
		}
	}
	p, _ := w.Plans.Get("PLAN-002")
	if p.Progress != 50 || p.Name != "订单系统功能测试计划" {
		t.Errorf("plan = %+v", p)
	}
}

func TestUpdatePlan_Backend(t *testing.T) {
	g := store.NewGorm(openTestDB(t))
	ctx := context.Background()
	w := NewWorkspace(g, Opts{Now: fixedClock()})
	res, _ := w.Plans.Create(ctx, PlanDraft{Name: "a", StartDate: day("2024-12-20"), EndDate: day("2024-12-21")})

	status := models.PlanInProgress
	up, err := w.Plans.Update(ctx, res.Value.ID, PlanPatch{Status: &status})
	if err != nil || up.RemoteErr != nil {
		t.Fatalf("Update: %v / %v", err, up.RemoteErr)
	}
	stored, _ := g.GetPlan(ctx, res.Value.ID)
	if stored.Status != models.PlanInProgress {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestUpdatePlan_Errors(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()

	if _, err := w.Plans.Update(ctx, "PLAN-404", PlanPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}
	bad := 101
	if _, err := w.Plans.Update(ctx, "PLAN-001", PlanPatch{Progress: &bad}); !IsValidation(err) {
		t.Errorf("progress 101 err = %v", err)
	}
	early := day("2024-12-01")
	if _, err := w.Plans.Update(ctx, "PLAN-001", PlanPatch{EndDate: &early}); !IsValidation(err) {
		t.Errorf("end before start err = %v", err)
	}
}

func TestUpdateProgress_Bounds(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()
	for _, pct := range []int{-1, 101} {
		if _, err := w.Plans.UpdateProgress(ctx, "PLAN-001", pct); !IsValidation(err) {
			t.Errorf("UpdateProgress(%d) err = %v", pct, err)
		}
	}
	for _, pct := range []int{0, 100} {
		res, err := w.Plans.UpdateProgress(ctx, "PLAN-001", pct)
		if err != nil || res.Value.Progress != pct {
			t.Errorf("UpdateProgress(%d) = %d, %v", pct, res.Value.Progress, err)
		}
	}
}

func TestRegenerateBurndownAndDelete(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()

	hours := 20.0
	if _, err := w.Plans.Update(ctx, "PLAN-001", PlanPatch{EstimatedHours: &hours}); err != nil {
		t.Fatal(err)
	}
	res, err := w.Plans.RegenerateBurndown(ctx, "PLAN-001")
	if err != nil {
		t.Fatalf("RegenerateBurndown: %v", err)
	}
	if res.Value.BurndownData[0].PlannedWorkload != 20 {
		t.Errorf("first planned = %v, want 20", res.Value.BurndownData[0].PlannedWorkload)
	}

	del, err := w.Plans.Delete(ctx, "PLAN-001")
	if err != nil || del.Value.ID != "PLAN-001" {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := w.Plans.Get("PLAN-001"); ok {
		t.Error("plan still present")
	}
	if _, err := w.Plans.Delete(ctx, "PLAN-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestRequirementUpdate_EmptyTitleRejected(t *testing.T) {
	g := store.NewGorm(openTestDB(t))
	ctx := context.Background()
	w := NewWorkspace(g, Opts{Now: fixedClock()})
	res, err := w.Requirements.Create(ctx, RequirementDraft{Title: "导出", System: "订单系统", Module: "订单查询"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	versionBefore := w.Version()

	empty := ""
	_, err = w.Requirements.Update(ctx, res.Value.ID, RequirementPatch{Title: &empty})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("err = %v, want title validation error", err)
	}

	local, _ := w.Requirements.Get(res.Value.ID)
	if local.Title != "导出" {
		t.Errorf("local title = %q", local.Title)
	}
	stored, _ := g.ListRequirements(ctx)
	if len(stored) != 1 || stored[0].Title != "导出" {
		t.Errorf("stored = %+v", stored)
	}
	if w.Version() != versionBefore {
		t.Error("version bumped on rejected update")
	}
}

func TestRequirementCreate_Validation(t *testing.T) {
	w, _ := offlineWorkspace(t)
	tests := []struct {
		draft RequirementDraft
		field string
	}{
		{RequirementDraft{System: "s", Module: "m"}, "title"},
		{RequirementDraft{Title: "t", Module: "m"}, "system"},
		{RequirementDraft{Title: "t", System: "s"}, "module"},
	}
	for _, tt := range tests {
		_, err := w.Requirements.Create(context.Background(), tt.draft)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tt.field {
			t.Errorf("draft %+v: err = %v, want field %s", tt.draft, err, tt.field)
		}
	}
}

func TestRequirementUpdate_OfflineMerges(t *testing.T) {
	w, _ := offlineWorkspace(t)
	prio := "low"
	res, err := w.Requirements.Update(context.Background(), "REQ-003", RequirementPatch{Priority: &prio})
	if err != nil {
		t.Fatal(err)
	}
	if res.RemoteErr == nil {
		t.Error("expected RemoteErr offline")
	}
	if res.Value.Priority != "low" || res.Value.Title != "库存预警机制" {
		t.Errorf("merged = %+v", res.Value)
	}
	if !res.Value.UpdatedAt.Equal(fixedClock()()) {
		t.Errorf("UpdatedAt = %v", res.Value.UpdatedAt)
	}
}

func TestImportRequirements(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()

	res, err := w.ImportRequirements(ctx, []string{"REQ-002", "REQ-001"}, "PLAN-001")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if strings.Join(res.Value.Requirements, ",") != "REQ-001,REQ-002" {
		t.Errorf("plan requirements = %v", res.Value.Requirements)
	}
	r, _ := w.Requirements.Get("REQ-002")
	if r.Status != models.RequirementImported || r.TestPlanID == nil || *r.TestPlanID != "PLAN-001" || r.ImportedAt == nil {
		t.Errorf("requirement = %+v", r)
	}
	if res.RemoteErr == nil {
		t.Error("expected RemoteErr offline")
	}

	if _, err := w.ImportRequirements(ctx, nil, "PLAN-001"); !IsValidation(err) {
		t.Errorf("empty ids err = %v", err)
	}
	if _, err := w.ImportRequirements(ctx, []string{"REQ-001"}, "PLAN-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown plan err = %v", err)
	}
	if _, err := w.ImportRequirements(ctx, []string{"REQ-404"}, "PLAN-001"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown requirement err = %v", err)
	}
}

func TestImportRequirements_Backend(t *testing.T) {
	g := store.NewGorm(openTestDB(t))
	ctx := context.Background()
	w := NewWorkspace(g, Opts{Now: fixedClock()})
	req, _ := w.Requirements.Create(ctx, RequirementDraft{Title: "t", System: "s", Module: "m"})
	plan, _ := w.Plans.Create(ctx, PlanDraft{Name: "p", StartDate: day("2024-12-20"), EndDate: day("2024-12-21")})

	res, err := w.ImportRequirements(ctx, []string{req.Value.ID}, plan.Value.ID)
	if err != nil || res.RemoteErr != nil {
		t.Fatalf("Import: %v / %v", err, res.RemoteErr)
	}
	stored, _ := g.ListRequirements(ctx)
	if stored[0].Status != models.RequirementImported {
		t.Errorf("stored status = %s", stored[0].Status)
	}
	sp, _ := g.GetPlan(ctx, plan.Value.ID)
	if len(sp.Requirements) != 1 || sp.Requirements[0] != req.Value.ID {
		t.Errorf("stored plan requirements = %v", sp.Requirements)
	}
}

func TestExecutionsAndStats_Offline(t *testing.T) {
	w, _ := offlineWorkspace(t)
	ctx := context.Background()

	ex, err := w.Executions(ctx, "PLAN-001")
	if err != nil {
		t.Fatal(err)
	}
	if len(ex.Value) != 4 || ex.RemoteErr == nil {
		t.Errorf("executions = %d, remote %v", len(ex.Value), ex.RemoteErr)
	}
	if _, err := w.CreateExecution(ctx, models.TestCaseExecution{TestPlanID: "PLAN-001", TestCaseID: "TC-1"}); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("CreateExecution offline err = %v", err)
	}
	if _, err := w.UpdateExecution(ctx, 1, "bogus", nil); !IsValidation(err) {
		t.Errorf("bad status err = %v", err)
	}

	st := w.Stats(ctx)
	if st.Value.Requirements.Total != 6 || st.Value.Plans.Total != 3 {
		t.Errorf("stats = %+v", st.Value)
	}
}

func TestExecutions_Backend(t *testing.T) {
	g := store.NewGorm(openTestDB(t))
	ctx := context.Background()
	w := NewWorkspace(g, Opts{Now: fixedClock()})
	plan, _ := w.Plans.Create(ctx, PlanDraft{Name: "p", StartDate: day("2024-12-20"), EndDate: day("2024-12-21")})

	e, err := w.CreateExecution(ctx, models.TestCaseExecution{TestPlanID: plan.Value.ID, TestCaseID: "TC-001-01"})
	if err != nil {
		t.Fatalf("CreateExecution: %v", err)
	}
	if e.Status != "planned" || e.Priority != "medium" {
		t.Errorf("defaults = %s/%s", e.Status, e.Priority)
	}
	actual := 1.5
	up, err := w.UpdateExecution(ctx, e.ID, "completed", &actual)
	if err != nil || up.Status != "completed" || *up.ActualExecutionTime != 1.5 {
		t.Fatalf("UpdateExecution = %+v, %v", up, err)
	}
	list, _ := w.Executions(ctx, plan.Value.ID)
	if len(list.Value) != 1 || list.RemoteErr != nil {
		t.Errorf("executions = %+v", list)
	}
}

func TestVersion_BumpsOnChange(t *testing.T) {
	w, _ := offlineWorkspace(t)
	v := w.Version()
	if _, err := w.Plans.UpdateProgress(context.Background(), "PLAN-002", 10); err != nil {
		t.Fatal(err)
	}
	if w.Version() <= v {
		t.Errorf("version %d did not increase from %d", w.Version(), v)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, b ,,c ")
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("SplitList = %v", got)
	}
	if len(SplitList("")) != 0 {
		t.Error("SplitList(\"\") should be empty")
	}
}

func TestAddExternal_SkipsExisting(t *testing.T) {
	w, _ := offlineWorkspace(t)
	existing := w.Requirements.Records()[0]
	before := len(w.Requirements.Records())

	res, err := w.Requirements.AddExternal(context.Background(), []models.Requirement{
		{ID: existing.ID, Title: "dup", System: "s", Module: "m"},
		{ID: "GH-7", Title: "导出报表", System: "报表系统", Module: "导出"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Value) != 1 || res.Value[0].ID != "GH-7" {
		t.Fatalf("added = %+v", res.Value)
	}
	if res.RemoteErr == nil {
		t.Error("offline backend should report a remote error")
	}
	got, ok := w.Requirements.Get("GH-7")
	if !ok || got.Status != models.RequirementPending || got.Priority != "medium" {
		t.Errorf("GH-7 = %+v", got)
	}
	if n := len(w.Requirements.Records()); n != before+1 {
		t.Errorf("records = %d, want %d", n, before+1)
	}
}

func TestAddExternal_Validation(t *testing.T) {
	w, _ := offlineWorkspace(t)
	_, err := w.Requirements.AddExternal(context.Background(), []models.Requirement{{ID: "GH-1", Title: "x"}})
	if !IsValidation(err) {
		t.Errorf("err = %v, want validation", err)
	}
}
