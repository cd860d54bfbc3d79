package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/render"
	"github.com/zulandar/qadesk/internal/state"
)

func newReqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "req",
		Aliases: []string{"requirement"},
		Short:   "Requirement commands",
	}

	cmd.AddCommand(newReqListCmd())
	cmd.AddCommand(newReqCreateCmd())
	cmd.AddCommand(newReqImportCmd())
	cmd.AddCommand(newReqSyncGitHubCmd())
	return cmd
}

func newReqListCmd() *cobra.Command {
	var (
		configPath            string
		system, module, query string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List requirements",
		Long:  "Lists requirements, optionally narrowed by system, module and a title or description keyword.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			list := filter.Candidates(a.Workspace.Requirements.Records(), system, module, query)
			t := render.BuildTable(filter.ViewRequirements, filter.Requirements(list))
			return render.WriteTable(cmd.OutOrStdout(), t)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&system, "system", "", "only requirements of this system")
	cmd.Flags().StringVar(&module, "module", "", "only requirements of this module")
	cmd.Flags().StringVarP(&query, "query", "q", "", "keyword in title or description")
	return cmd
}

func newReqCreateCmd() *cobra.Command {
	var (
		configPath string
		draft      state.RequirementDraft
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a pending requirement",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Workspace.Requirements.Create(ctx, draft)
			if err != nil {
				return err
			}
			warn(cmd, res)
			fmt.Fprintf(cmd.OutOrStdout(), "Created requirement %s (%s/%s)\n", res.Value.ID, res.Value.System, res.Value.Module)
			return nil
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&draft.Title, "title", "", "requirement title")
	cmd.Flags().StringVar(&draft.Description, "description", "", "requirement description")
	cmd.Flags().StringVar(&draft.System, "system", "", "owning system")
	cmd.Flags().StringVar(&draft.Module, "module", "", "owning module")
	cmd.Flags().StringVar(&draft.Priority, "priority", "medium", "priority (low, medium, high, critical)")
	return cmd
}

func newReqImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <plan-id> <requirement-id>...",
		Short: "Import requirements into a test plan",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Workspace.ImportRequirements(ctx, args[1:], args[0])
			if errors.Is(err, state.ErrNotFound) {
				return fmt.Errorf("plan %q or one of the requirements was not found", args[0])
			}
			if err != nil {
				return err
			}
			warn(cmd, res)
			fmt.Fprintf(cmd.OutOrStdout(), "Plan %s now covers %d requirements\n", res.Value.ID, len(res.Value.Requirements))
			return nil
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newReqSyncGitHubCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sync-github",
		Short: "Import open GitHub issues as requirements",
		Long: `Fetches open issues carrying the configured labels from github.owner/repo.
Issues need "system:<name>" and "module:<name>" labels; "priority:<p>" is
optional. Issues already imported are skipped. The token is read from the
variable named by github.token_env.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.SyncGitHub(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Warning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", res.Warning)
			}
			fmt.Fprintf(out, "Added %d requirements\n", len(res.Added))
			for _, r := range res.Added {
				fmt.Fprintf(out, "  %s  %s\n", r.ID, r.Title)
			}
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "Skipped #%d: %s\n", s.Number, s.Reason)
			}
			return nil
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}
