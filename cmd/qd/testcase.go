package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/ai"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/export"
)

func newTestCaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "testcase",
		Aliases: []string{"tc"},
		Short:   "Test case commands",
	}

	cmd.AddCommand(newTestCaseGenerateCmd())
	return cmd
}

func newTestCaseGenerateCmd() *cobra.Command {
	var (
		configPath string
		functionID string
		in         ai.Input
		opts       = ai.DefaultOptions()
		format     string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate test cases from a feature description",
		Long: `Generates test cases from a feature description and acceptance criteria
and prints them as Gherkin scenarios or a tab-separated table. With
--format json the cases are written to a file in --output instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			cases, err := a.AI.Generate(context.Background(), in, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "gherkin":
				fmt.Fprint(out, ai.Gherkin(cases))
			case "table":
				s, err := ai.Table(cases)
				if err != nil {
					return err
				}
				fmt.Fprint(out, s)
			case "json":
				name, body, err := export.GeneratedCasesJSON(functionID, export.GeneratedCases{
					FunctionDescription: in.Description,
					AcceptanceCriteria:  in.AcceptanceCriteria,
					UsageProcess:        in.UsageProcess,
					TestCases:           cases,
					GeneratedAt:         a.Now(),
					Format:              export.FormatFunction,
				})
				if err != nil {
					return err
				}
				return writeExport(cmd, outDir, name, body)
			default:
				return fmt.Errorf("unknown format %q (want gherkin, table or json)", format)
			}
			return nil
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&functionID, "function-id", "", "function the cases belong to (used in the export name)")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "feature description")
	cmd.Flags().StringVar(&in.AcceptanceCriteria, "criteria", "", "acceptance criteria")
	cmd.Flags().StringVar(&in.UsageProcess, "process", "", "usage process")
	cmd.Flags().BoolVar(&opts.NegativeTests, "negative", opts.NegativeTests, "include negative tests")
	cmd.Flags().BoolVar(&opts.EdgeCases, "edge", opts.EdgeCases, "include edge cases")
	cmd.Flags().BoolVar(&opts.PerformanceTests, "performance", opts.PerformanceTests, "include performance tests")
	cmd.Flags().BoolVar(&opts.SecurityTests, "security", opts.SecurityTests, "include security tests")
	cmd.Flags().StringVarP(&format, "format", "f", "gherkin", "gherkin, table or json")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory for --format json")
	return cmd
}
