package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineowner/internal/drilldown"
)

var prsOpen int

var prsCmd = &cobra.Command{
	Use:   "prs <file> <line>",
	Short: "List the pull requests that touched a line",
	Long: `List the pull requests referenced by the commits that changed a line.
Selecting one opens it in the browser when the origin remote is known.

Without --open an interactive picker is shown when attached to a terminal.

Examples:
  lineowner prs main.go 42
  lineowner prs main.go 42 --open 1`,
	Args: cobra.ExactArgs(2),
	Run:  runPRs,
}

func init() {
	prsCmd.Flags().IntVarP(&prsOpen, "open", "o", 0, "One-based pull request to open")
	rootCmd.AddCommand(prsCmd)
}

func runPRs(cmd *cobra.Command, args []string) {
	format := outputFormat()
	ctx := newContext()
	defer runCleanups()

	a := mustGetApp(ctx)

	filePath := a.mustResolveFile(args[0])
	line, err := parseLine(args[1])
	if err != nil {
		exitWithError("Error", err)
	}

	picker := newPicker(prsOpen, format)
	svc := a.service(picker)

	pr, err := svc.ShowPRs(ctx, line, filePath, a.repoRoot)
	if err != nil {
		exitWithError("Error showing pull requests", err)
	}

	resp := &PRsResponseCLI{
		FilePath: filePath,
		Line:     line + 1,
		Title:    drilldown.PullRequestsTitle,
		Items:    []ItemView{},
		Selected: pr,
		Opened:   pr != nil && pr.URL != "",
	}
	if picker.last != nil {
		resp.Placeholder = picker.last.placeholder
		resp.Items = newItemViews(picker.last.items, picker.selected())
	}
	resp.Notices = a.notices.drain()

	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError("Error formatting output", err)
	}
	fmt.Println(output)

	a.logger.Debug("PRs completed",
		"filePath", filePath,
		"line", line,
		"prs", len(resp.Items),
		"opened", resp.Opened,
	)
}
