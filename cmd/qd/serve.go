package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/dashboard"
)

func newServeCmd() *cobra.Command {
	var (
		configPath     string
		port           int
		requireBackend bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Launches the qadesk dashboard and JSON API. Requirements and plans are
loaded from the configured backend; when it cannot be reached the built-in
sample data is shown instead, unless --require-backend is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, requireBackend)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	cmd.Flags().BoolVar(&requireBackend, "require-backend", false, "fail instead of falling back to sample data")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, requireBackend bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, configPath, app.Opts{RequireBackend: requireBackend})
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.Config.Server.Port
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	if err := a.Start(ctx); err != nil {
		return err
	}
	return dashboard.Start(ctx, dashboard.StartOpts{
		App:  a,
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}
