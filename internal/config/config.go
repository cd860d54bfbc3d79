// Package config provides YAML-based configuration loading for qadesk.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Backend drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

// Config is the top-level qadesk configuration, loaded from qadesk.yaml.
type Config struct {
	Name        string            `yaml:"name"`
	Server      ServerConfig      `yaml:"server"`
	Backend     BackendConfig     `yaml:"backend"`
	Log         LogConfig         `yaml:"log"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Report      ReportConfig      `yaml:"report"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	AI          AIConfig          `yaml:"ai"`
	Notify      NotifyConfig      `yaml:"notify"`
	GitHub      GitHubConfig      `yaml:"github"`
	Systems     []SystemConfig    `yaml:"systems"`
}

// ServerConfig holds dashboard listen settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// BackendConfig holds connection settings for the persistence backend.
// The password is never stored in the file; it is read from PasswordEnv.
type BackendConfig struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Database    string `yaml:"database"`
	User        string `yaml:"user"`
	PasswordEnv string `yaml:"password_env"`
	SSLMode     string `yaml:"sslmode"`
	Path        string `yaml:"path"`
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// Password resolves the backend password from the environment.
func (b BackendConfig) Password() string { return os.Getenv(b.PasswordEnv) }

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PreferencesConfig locates the UI preference file.
type PreferencesConfig struct {
	Path string `yaml:"path"`
}

// ReportConfig controls PDF export.
type ReportConfig struct {
	FontPath     string `yaml:"font_path"`
	HistoryRange string `yaml:"history_range"`
}

// RefreshConfig schedules background reloads from the backend.
// An empty cron disables the scheduler.
type RefreshConfig struct {
	Cron string `yaml:"cron"`
}

// AIConfig seeds the analysis and generation stubs.
type AIConfig struct {
	Seed uint64 `yaml:"seed"`
}

// NotifyConfig holds alert destinations. Tokens come from the environment.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig configures Slack alerts.
type SlackConfig struct {
	BotTokenEnv string `yaml:"bot_token_env"`
	ChannelID   string `yaml:"channel_id"`
}

// Enabled reports whether Slack alerts are configured.
func (s SlackConfig) Enabled() bool { return s.ChannelID != "" }

// DiscordConfig configures Discord alerts.
type DiscordConfig struct {
	BotTokenEnv string `yaml:"bot_token_env"`
	ChannelID   string `yaml:"channel_id"`
}

// Enabled reports whether Discord alerts are configured.
func (d DiscordConfig) Enabled() bool { return d.ChannelID != "" }

// GitHubConfig configures requirement sync from GitHub issues.
type GitHubConfig struct {
	Owner    string   `yaml:"owner"`
	Repo     string   `yaml:"repo"`
	TokenEnv string   `yaml:"token_env"`
	Labels   []string `yaml:"labels"`
}

// Enabled reports whether a repository is configured.
func (g GitHubConfig) Enabled() bool { return g.Owner != "" && g.Repo != "" }

// SystemConfig overrides the built-in navigation tree.
type SystemConfig struct {
	Name    string   `yaml:"name"`
	Modules []string `yaml:"modules"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the config is loaded into the environment first;
// variables already set are left alone.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	return Parse(data)
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given: fixture
// data only, no backend.
func Default() *Config {
	cfg := &Config{Name: "qadesk", Backend: BackendConfig{Driver: DriverNone}}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	b := &c.Backend
	if b.Driver == "" {
		b.Driver = DriverPostgres
	}
	switch b.Driver {
	case DriverPostgres:
		if b.Port == 0 {
			b.Port = 5432
		}
		if b.SSLMode == "" {
			b.SSLMode = "disable"
		}
		if b.User == "" {
			b.User = "postgres"
		}
	case DriverMySQL:
		if b.Port == 0 {
			b.Port = 3306
		}
		if b.User == "" {
			b.User = "root"
		}
	case DriverSQLite:
		if b.Path == "" {
			b.Path = "qadesk.db"
		}
	}
	if b.Driver == DriverPostgres || b.Driver == DriverMySQL {
		if b.Host == "" {
			b.Host = "127.0.0.1"
		}
		if b.Database == "" && c.Name != "" {
			b.Database = "qadesk_" + c.Name
		}
	}
	if b.PasswordEnv == "" {
		b.PasswordEnv = "QADESK_DB_PASSWORD"
	}
	if b.TimeoutSec == 0 {
		b.TimeoutSec = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Preferences.Path == "" {
		c.Preferences.Path = "~/.qadesk/prefs.yaml"
	}
	if c.Report.HistoryRange == "" {
		c.Report.HistoryRange = "30d"
	}
	if c.AI.Seed == 0 {
		c.AI.Seed = 42
	}
	if c.Notify.Slack.BotTokenEnv == "" {
		c.Notify.Slack.BotTokenEnv = "SLACK_BOT_TOKEN"
	}
	if c.Notify.Discord.BotTokenEnv == "" {
		c.Notify.Discord.BotTokenEnv = "DISCORD_BOT_TOKEN"
	}
	if c.GitHub.TokenEnv == "" {
		c.GitHub.TokenEnv = "GITHUB_TOKEN"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	switch c.Backend.Driver {
	case DriverPostgres, DriverMySQL:
		if c.Backend.Database == "" {
			errs = append(errs, "backend.database is required")
		}
	case DriverSQLite, DriverNone:
	default:
		errs = append(errs, fmt.Sprintf("backend.driver %q is not one of postgres, mysql, sqlite, none", c.Backend.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format %q must be console or json", c.Log.Format))
	}
	switch c.Report.HistoryRange {
	case "7d", "30d", "90d":
	default:
		errs = append(errs, fmt.Sprintf("report.history_range %q must be 7d, 30d or 90d", c.Report.HistoryRange))
	}
	if c.Refresh.Cron != "" {
		if _, err := cron.ParseStandard(c.Refresh.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("refresh.cron %q: %v", c.Refresh.Cron, err))
		}
	}
	if (c.GitHub.Owner == "") != (c.GitHub.Repo == "") {
		errs = append(errs, "github.owner and github.repo must be set together")
	}
	seen := make(map[string]bool)
	for i, s := range c.Systems {
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("systems[%d].name is required", i))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Sprintf("systems[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
