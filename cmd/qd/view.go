package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/qadesk/internal/app"
	"github.com/zulandar/qadesk/internal/filter"
	"github.com/zulandar/qadesk/internal/render"
)

func viewNames() string {
	names := make([]string, len(filter.Views))
	for i, v := range filter.Views {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

func newViewCmd() *cobra.Command {
	var (
		configPath string
		query      string
		module     string
		tree       bool
	)

	cmd := &cobra.Command{
		Use:   "view <view>",
		Short: "Print a filtered list view",
		Long: fmt.Sprintf(`Prints one dashboard list as a table, narrowed by a keyword and by a
system or module selection, followed by the navigation counts.

Views: %s`, viewNames()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, configPath, args[0], filter.Query{Keyword: query, Selection: module}, tree)
		},
	}

	configFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&query, "q", "q", "", "keyword filter")
	cmd.Flags().StringVarP(&module, "module", "m", "", "system or module selection (全部 for all)")
	cmd.Flags().BoolVar(&tree, "tree", true, "print navigation counts after the table")
	return cmd
}

func runView(cmd *cobra.Command, configPath, name string, q filter.Query, tree bool) error {
	v, err := filter.ParseView(name)
	if err != nil {
		return fmt.Errorf("%w (want one of %s)", err, viewNames())
	}

	a, err := openApp(context.Background(), configPath, app.Opts{})
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	res := a.View(v, q)
	fmt.Fprintf(out, "%s\n%s\n\n", v.Title(), render.Header(len(res.Records), q))
	if err := render.WriteTable(out, render.BuildTable(v, res.Records)); err != nil {
		return err
	}
	if !tree {
		return nil
	}
	fmt.Fprintln(out)
	return render.WriteTree(out, res.Tree)
}
