package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/applog"
	"github.com/zulandar/qadesk/internal/config"
	"github.com/zulandar/qadesk/internal/state"
)

// configFlag registers the shared -c/--config flag.
func configFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", "", "path to qadesk config file (built-in defaults when empty)")
}

// loadConfig reads path, or returns the built-in defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("QADESK_CONFIG"); env != "" {
			path = env
		} else {
			return config.Default(), nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openApp builds the services and fetches requirements and plans. Callers
// must Close the returned app.
func openApp(ctx context.Context, configPath string, opts app.Opts) (*app.App, error) {
	a, err := buildApp(ctx, configPath, opts)
	if err != nil {
		return nil, err
	}
	a.Refresh(ctx)
	return a, nil
}

// buildApp loads the config and builds the services without fetching.
func buildApp(ctx context.Context, configPath string, opts app.Opts) (*app.App, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		log, err := applog.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
		opts.Logger = log
	}
	return app.New(ctx, cfg, opts)
}

// warn prints a backend warning carried by a state result.
func warn[T any](cmd *cobra.Command, res state.Result[T]) {
	if w := res.Warning(); w != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
