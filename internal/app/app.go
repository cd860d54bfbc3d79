// Package app assembles the long-lived services shared by the dashboard and
// the CLI from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/zulandar/qadesk/internal/ai"
	"github.com/zulandar/qadesk/internal/catalog"
	"github.com/zulandar/qadesk/internal/chart"
	"github.com/zulandar/qadesk/internal/config"
	"github.com/zulandar/qadesk/internal/db"
	"github.com/zulandar/qadesk/internal/export"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/fixtures"
	"github.com/zulandar/qadesk/internal/ghimport"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/notify"
	"github.com/zulandar/qadesk/internal/notify/discord"
	"github.com/zulandar/qadesk/internal/notify/slack"
	"github.com/zulandar/qadesk/internal/prefs"
	"github.com/zulandar/qadesk/internal/scheduler"
	"github.com/zulandar/qadesk/internal/state"
	"github.com/zulandar/qadesk/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrGitHubDisabled is returned by SyncGitHub when no repository is configured.
var ErrGitHubDisabled = errors.New("app: github sync is not configured")

// Opts overrides pieces of the assembly, mostly for tests.
type Opts struct {
	Logger *zap.Logger
	// Backend replaces the configured backend.
	Backend store.Backend
	// Notifier replaces the configured Slack/Discord notifiers.
	Notifier notify.Notifier
	// GitHub replaces the configured issue syncer.
	GitHub *ghimport.Syncer
	// RequireBackend makes a failed connection fatal instead of falling
	// back to offline mode.
	RequireBackend bool
	Now            func() time.Time
}

// App holds every service built from one configuration.
type App struct {
	Config    *config.Config
	Log       *zap.Logger
	DB        *gorm.DB
	Backend   store.Backend
	Workspace *state.Workspace
	Catalog   *catalog.Catalog
	AI        *ai.Stub
	Prefs     *prefs.Store
	Alerts    *notify.Once
	GitHub    *ghimport.Syncer
	Tree      []models.SystemModule

	now   func() time.Time
	sched *scheduler.Scheduler
}

// New builds the services for cfg. It does not fetch; call Refresh or
// Start for that.
func New(ctx context.Context, cfg *config.Config, opts Opts) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log, now: opts.Now}
	if a.now == nil {
		a.now = func() time.Time { return time.Now().UTC() }
	}

	if err := a.openBackend(ctx, opts); err != nil {
		return nil, err
	}

	next := opts.Notifier
	if next == nil {
		next = buildNotifier(cfg.Notify, log)
	}
	a.Alerts = notify.NewOnce(next)

	a.Workspace = state.NewWorkspace(a.Backend, state.Opts{Logger: log, Alerts: a.Alerts, Now: opts.Now})
	a.AI = ai.NewStub(cfg.AI.Seed)
	a.Catalog = catalog.New(catalog.Opts{Analyzer: a.AI, OnChange: a.Workspace.Touch, Now: opts.Now})

	tree, err := buildTree(cfg.Systems)
	if err != nil {
		return nil, err
	}
	a.Tree = tree

	p, err := prefs.Open(cfg.Preferences.Path, log)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	a.Prefs = p

	a.GitHub = opts.GitHub
	if a.GitHub == nil && cfg.GitHub.Enabled() {
		gh, err := ghimport.New(ghimport.Opts{
			Owner:  cfg.GitHub.Owner,
			Repo:   cfg.GitHub.Repo,
			Token:  os.Getenv(cfg.GitHub.TokenEnv),
			Labels: cfg.GitHub.Labels,
			Logger: log,
		})
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		a.GitHub = gh
	}
	return a, nil
}

func (a *App) openBackend(ctx context.Context, opts Opts) error {
	if opts.Backend != nil {
		a.Backend = opts.Backend
		return nil
	}
	gdb, err := db.Connect(ctx, a.Config.Backend)
	switch {
	case errors.Is(err, db.ErrNoBackend):
		a.Log.Info("no backend configured, running on fixtures")
		a.Backend = store.Offline{}
		return nil
	case err != nil && opts.RequireBackend:
		return err
	case err != nil:
		a.Log.Warn("backend unavailable, running on fixtures",
			zap.String("driver", a.Config.Backend.Driver), zap.Error(err))
		a.Backend = store.Offline{}
		return nil
	}
	a.DB = gdb
	a.Backend = store.NewGorm(gdb)
	a.Log.Info("backend connected", zap.String("driver", a.Config.Backend.Driver))
	return nil
}

// buildNotifier returns the configured alert destinations. A destination
// whose token is missing is skipped with a warning.
func buildNotifier(cfg config.NotifyConfig, log *zap.Logger) notify.Notifier {
	var out notify.Multi
	if cfg.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: os.Getenv(cfg.Slack.BotTokenEnv), ChannelID: cfg.Slack.ChannelID})
		if err != nil {
			log.Warn("slack alerts disabled", zap.Error(err))
		} else {
			out = append(out, n)
		}
	}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: os.Getenv(cfg.Discord.BotTokenEnv), ChannelID: cfg.Discord.ChannelID})
		if err != nil {
			log.Warn("discord alerts disabled", zap.Error(err))
		} else {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return notify.Nop{}
	}
	return out
}

// buildTree returns the configured navigation tree, or the built-in one.
func buildTree(systems []config.SystemConfig) ([]models.SystemModule, error) {
	if len(systems) == 0 {
		return fixtures.Systems(), nil
	}
	names := make([]string, 0, len(systems))
	modules := make(map[string][]string, len(systems))
	for _, s := range systems {
		names = append(names, s.Name)
		modules[s.Name] = s.Modules
	}
	tree := fixtures.BuildTree(names, modules)
	if err := fixtures.ValidateTree(tree); err != nil {
		return nil, fmt.Errorf("app: systems: %w", err)
	}
	return tree, nil
}

// Refresh reloads requirements and plans. Failures leave fixtures in place
// and are only logged.
func (a *App) Refresh(ctx context.Context) {
	if err := a.Workspace.RefreshAll(ctx); err != nil {
		a.Log.Warn("refresh used fixtures", zap.Error(err))
	}
}

// Start performs the first refresh and starts the scheduled refresh when
// one is configured.
func (a *App) Start(ctx context.Context) error {
	a.Refresh(ctx)
	if a.Config.Refresh.Cron == "" {
		return nil
	}
	s, err := scheduler.New(ctx, a.Config.Refresh.Cron, a.Workspace.RefreshAll, a.Log)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	s.Start()
	a.sched = s
	return nil
}

// Close stops the scheduler and releases the database connection.
func (a *App) Close() error {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Now returns the current time from the configured clock.
func (a *App) Now() time.Time { return a.now() }

// SyncResult is the outcome of a GitHub sync.
type SyncResult struct {
	Added   []models.Requirement `json:"added"`
	Skipped []ghimport.Skipped   `json:"skipped"`
	Warning string               `json:"warning,omitempty"`
}

// SyncGitHub imports new open issues as requirements.
func (a *App) SyncGitHub(ctx context.Context) (*SyncResult, error) {
	if a.GitHub == nil {
		return nil, ErrGitHubDisabled
	}
	batch, err := a.GitHub.Fetch(ctx, func(id string) bool {
		_, ok := a.Workspace.Requirements.Get(id)
		return ok
	})
	if err != nil {
		return nil, err
	}
	res, err := a.Workspace.Requirements.AddExternal(ctx, batch.Requirements)
	if err != nil {
		return nil, err
	}
	return &SyncResult{Added: res.Value, Skipped: batch.Skipped, Warning: res.Warning()}, nil
}

// History simulates a report's execution history. The sequence is
// reproducible for a given seed, report and range.
func (a *App) History(reportID string, r chart.Range) []chart.HistoryPoint {
	var h uint64
	for _, c := range reportID {
		h = h*31 + uint64(c)
	}
	rng := rand.New(rand.NewPCG(a.Config.AI.Seed, h))
	return chart.HistoricalTrend(rng, a.now(), r)
}

// ReportData gathers everything printed in a report PDF.
func (a *App) ReportData(id string) (export.ReportData, error) {
	rep, err := a.Catalog.Reports.Get(id)
	if err != nil {
		return export.ReportData{}, err
	}
	r, err := chart.ParseRange(a.Config.Report.HistoryRange)
	if err != nil {
		return export.ReportData{}, err
	}
	return export.ReportData{
		Report:      rep,
		History:     a.History(id, r),
		Patterns:    chart.ProblemPatterns(),
		GeneratedAt: a.now(),
	}, nil
}

// PDFOptions returns the configured PDF rendering options.
func (a *App) PDFOptions() export.PDFOptions {
	return export.PDFOptions{FontPath: a.Config.Report.FontPath}
}

// Records returns the current rows of view v.
func (a *App) Records(v filter.View) []filter.Record {
	switch v {
	case filter.ViewTestCases:
		return filter.TestCases(a.Catalog.TestCases.List())
	case filter.ViewReports:
		return filter.Reports(a.Catalog.Reports.List())
	case filter.ViewRequirements:
		return filter.Requirements(a.Workspace.Requirements.Records())
	case filter.ViewPlans:
		return filter.Plans(a.Workspace.Plans.Records())
	default:
		return filter.Submissions(a.Catalog.Submissions.List())
	}
}

// Resolver returns an owner resolver over the current submissions and
// requirements.
func (a *App) Resolver() *filter.Resolver {
	return filter.NewResolver(a.Catalog.Submissions.List(), a.Workspace.Requirements.Records())
}

// View filters view v by q and counts its navigation tree.
func (a *App) View(v filter.View, q filter.Query) filter.Outcome {
	return filter.Run(v, a.Records(v), a.Tree, q, a.Resolver())
}
