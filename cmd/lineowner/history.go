package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineowner/internal/drilldown"
)

var (
	historySelect  int
	historyDiff    bool
	historyContext int
)

var historyCmd = &cobra.Command{
	Use:   "history <file> <line>",
	Short: "List the commits that touched a line",
	Long: `List every commit that changed a line, newest first. The oldest commit,
the one that introduced the line, is marked with a crown. Selecting a commit
prepares its before/after diff; --diff also prints it as a unified diff.

Without --select an interactive picker is shown when attached to a terminal.

Examples:
  lineowner history main.go 42
  lineowner history main.go 42 --select 1 --diff
  lineowner history main.go 42 --format json`,
	Args: cobra.ExactArgs(2),
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historySelect, "select", "s", 0, "One-based commit to open")
	historyCmd.Flags().BoolVar(&historyDiff, "diff", false, "Print the selected commit's change as a unified diff")
	historyCmd.Flags().IntVar(&historyContext, "context", drilldown.DefaultDiffContext, "Unchanged lines around each hunk")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	format := outputFormat()
	ctx := newContext()
	defer runCleanups()

	a := mustGetApp(ctx)

	filePath := a.mustResolveFile(args[0])
	line, err := parseLine(args[1])
	if err != nil {
		exitWithError("Error", err)
	}

	picker := newPicker(historySelect, format)
	svc := a.service(picker)

	req, err := svc.ShowHistory(ctx, line, filePath, a.repoRoot)
	if err != nil {
		exitWithError("Error showing history", err)
	}

	resp := &HistoryResponseCLI{
		FilePath: filePath,
		Line:     line + 1,
		Title:    drilldown.HistoryTitle,
		Items:    []ItemView{},
		Diff:     req,
	}
	if picker.last != nil {
		resp.Placeholder = picker.last.placeholder
		resp.Items = newItemViews(picker.last.items, picker.selected())
	}
	if req != nil && historyDiff {
		unified, err := drilldown.RenderUnified(ctx, a.content, *req, historyContext)
		if err != nil {
			exitWithError("Error rendering diff", err)
		}
		resp.UnifiedDiff = unified
	}
	resp.Notices = a.notices.drain()

	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError("Error formatting output", err)
	}
	fmt.Println(output)

	a.logger.Debug("History completed",
		"filePath", filePath,
		"line", line,
		"commits", len(resp.Items),
		"diff", req != nil,
	)
}
