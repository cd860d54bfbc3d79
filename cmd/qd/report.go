package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/export"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/render"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Test report commands",
	}

	cmd.AddCommand(newReportListCmd())
	cmd.AddCommand(newReportExportCmd())
	return cmd
}

func newReportListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List test reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()
			return render.WriteTable(cmd.OutOrStdout(), render.BuildTable(filter.ViewReports, a.Records(filter.ViewReports)))
		},
	}

	configFlag(cmd, &configPath)
	return cmd
}

func newReportExportCmd() *cobra.Command {
	var (
		configPath string
		outDir     string
		fontPath   string
	)

	cmd := &cobra.Command{
		Use:   "export <report-id>",
		Short: "Export a test report as PDF",
		Long: `Renders the report summary, execution history, defects, problem patterns
and improvement suggestions to a PDF named after the report and today's date.
Chinese text needs a TrueType font with CJK coverage (--font or
report.font_path).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.ReportData(args[0])
			if err != nil {
				return fmt.Errorf("report %q: %w", args[0], err)
			}
			opts := a.PDFOptions()
			if fontPath != "" {
				opts.FontPath = fontPath
			}
			name, body, err := export.ReportPDF(data, opts)
			if err != nil {
				return err
			}
			return writeExport(cmd, outDir, name, body)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the file to")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType font path (overrides report.font_path)")
	return cmd
}

// writeExport saves body as dir/name and reports the path.
func writeExport(cmd *cobra.Command, dir, name string, body []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(body))
	return nil
}
