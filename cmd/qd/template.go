package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/export"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/models"
	"github.com/zulandar/qadesk/internal/render"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Test template commands",
	}

	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateExportCmd())
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	var (
		configPath string
		category   string
		query      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List test templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			tpls := a.Catalog.Templates
			t := render.Table{Columns: []string{"编号", "名称", "类型", "步骤数", "公开", "标签"}}
			for _, x := range filter.Templates(tpls.List(), category, query) {
				t.Rows = append(t.Rows, render.Row{ID: x.ID, Cells: []string{
					x.ID, render.Truncate(x.Name, 20), models.CategoryLabel(x.Category),
					fmt.Sprint(len(x.Steps)), yesNo(x.IsPublic), strings.Join(x.Tags, ","),
				}})
			}
			out := cmd.OutOrStdout()
			if err := render.WriteTable(out, t); err != nil {
				return err
			}
			s := tpls.Stats()
			fmt.Fprintf(out, "\n共 %d 个模板 · 功能测试 %d · API测试 %d · 公开 %d\n", s.Total, s.Functional, s.API, s.Public)
			return nil
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVar(&category, "category", "", "functional, performance, security or api")
	cmd.Flags().StringVarP(&query, "query", "q", "", "keyword in name, description or tags")
	return cmd
}

func newTemplateExportCmd() *cobra.Command {
	var (
		configPath string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "export <template-id>",
		Short: "Export a test template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(context.Background(), configPath, app.Opts{})
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.Catalog.Templates.Get(args[0])
			if err != nil {
				return fmt.Errorf("template %q: %w", args[0], err)
			}
			name, body, err := export.TemplateJSON(t, a.Now())
			if err != nil {
				return err
			}
			return writeExport(cmd, outDir, name, body)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the file to")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}
