package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/render"
	"github.com/zulandar/qadesk/internal/state"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Test plan commands",
	}

	cmd.AddCommand(newPlanListCmd())
	cmd.AddCommand(newPlanShowCmd())
	cmd.AddCommand(newPlanCreateCmd())
	cmd.AddCommand(newPlanProgressCmd())
	cmd.AddCommand(newPlanBurndownCmd())
	return cmd
}

func newPlanListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List test plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()
			return render.WriteTable(cmd.OutOrStdout(), render.BuildTable(filter.ViewPlans, a.Records(filter.ViewPlans)))
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newPlanShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a test plan with its test cases and burndown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()
			p, ok := a.Workspace.Plans.Get(args[0])
			if !ok {
				return fmt.Errorf("plan %q not found", args[0])
			}
			return writePlan(cmd.OutOrStdout(), p)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func writePlan(w io.Writer, p models.TestPlan) error {
	fmt.Fprintf(w, "%s  %s\n", p.ID, p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, "%s\n", p.Description)
	}
	fmt.Fprintf(w, "\n状态: %s  优先级: %s  进度: %d%%\n", models.StatusLabel(p.Status), models.PriorityLabel(p.Priority), p.Progress)
	fmt.Fprintf(w, "日期: %s ~ %s  预估工时: %.1fh\n", p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly), p.EstimatedHours)
	if len(p.AssignedTo) > 0 {
		fmt.Fprintf(w, "负责人: %s\n", strings.Join(p.AssignedTo, ", "))
	}
	if len(p.Requirements) > 0 {
		fmt.Fprintf(w, "关联需求: %s\n", strings.Join(p.Requirements, ", "))
	}

	if len(p.TestCases) > 0 {
		fmt.Fprintln(w, "\n测试用例:")
		t := render.Table{Columns: []string{"用例编号", "优先级", "预估", "实际", "状态", "执行人"}}
		for _, tc := range p.TestCases {
			actual := "-"
			if tc.ActualExecutionTime != nil {
				actual = fmt.Sprintf("%.1fh", *tc.ActualExecutionTime)
			}
			t.Rows = append(t.Rows, render.Row{ID: tc.TestCaseID, Cells: []string{
				tc.TestCaseID, models.PriorityLabel(tc.Priority), fmt.Sprintf("%.1fh", tc.ExpectedExecutionTime),
				actual, models.StatusLabel(tc.Status), tc.Assignee,
			}})
		}
		if err := render.WriteTable(w, t); err != nil {
			return err
		}
	}

	if len(p.BurndownData) > 0 {
		fmt.Fprintln(w, "\n燃尽图:")
		return writeBurndown(w, p.BurndownData)
	}
	return nil
}

func writeBurndown(w io.Writer, points []models.BurndownPoint) error {
	t := render.Table{Columns: []string{"日期", "计划剩余", "实际剩余", "已完成"}}
	for _, pt := range points {
		t.Rows = append(t.Rows, render.Row{Cells: []string{
			pt.Date.Format(time.DateOnly),
			strconv.FormatFloat(pt.PlannedWorkload, 'f', 1, 64),
			strconv.FormatFloat(pt.RemainingWorkload, 'f', 1, 64),
			strconv.FormatFloat(pt.CompletedWorkload, 'f', 1, 64),
		}})
	}
	return render.WriteTable(w, t)
}

func newPlanCreateCmd() *cobra.Command {
	var (
		configPath string
		draft      state.PlanDraft
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft test plan",
		Long: `Creates a test plan in draft status with a linear burndown from the
estimated hours down to zero on the end date. Dates are YYYY-MM-DD.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanCreate(cmd, configPath, draft, start, end)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&draft.Name, "name", "", "plan name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "plan description")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&draft.EstimatedHours, "hours", 0, "estimated hours")
	cmd.Flags().StringVar(&draft.Priority, "priority", "medium", "priority (low, medium, high, critical)")
	cmd.Flags().StringSliceVar(&draft.AssignedTo, "assignee", nil, "assignees (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&draft.Requirements, "requirement", nil, "requirement IDs (repeatable or comma-separated)")
	return cmd
}

func parseDay(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}

func runPlanCreate(cmd *cobra.Command, configPath string, draft state.PlanDraft, start, end string) error {
	var err error
	if draft.StartDate, err = parseDay("start", start); err != nil {
		return err
	}
	if draft.EndDate, err = parseDay("end", end); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, configPath, app.Opts{})
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Workspace.Plans.Create(ctx, draft)
	if err != nil {
		return err
	}
	warn(cmd, res)
	fmt.Fprintf(cmd.OutOrStdout(), "Created plan %s (%s), %d burndown points\n", res.Value.ID, res.Value.Name, len(res.Value.BurndownData))
	return nil
}

func newPlanProgressCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "progress <plan-id> <percent>",
		Short: "Set a plan's progress (0-100)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("progress must be an integer, got %q", args[1])
			}
			ctx := context.Background()
			a, err := openApp(ctx, configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Workspace.Plans.UpdateProgress(ctx, args[0], pct)
			if err != nil {
				return planErr(args[0], err)
			}
			warn(cmd, res)
			fmt.Fprintf(cmd.OutOrStdout(), "Plan %s progress set to %d%%\n", res.Value.ID, res.Value.Progress)
			return nil
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newPlanBurndownCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "burndown <plan-id>",
		Short: "Regenerate and print a plan's burndown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Workspace.Plans.RegenerateBurndown(ctx, args[0])
			if err != nil {
				return planErr(args[0], err)
			}
			warn(cmd, res)
			return writeBurndown(cmd.OutOrStdout(), res.Value.BurndownData)
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func planErr(id string, err error) error {
	if errors.Is(err, state.ErrNotFound) {
		return fmt.Errorf("plan %q not found", id)
	}
	return err
}
