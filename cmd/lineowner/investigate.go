package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var investigateCmd = &cobra.Command{
	Use:   "investigate <file> <line>",
	Short: "Start annotating a line with its provenance",
	Long: `Track a line and show its annotation: the owner, the number of authors,
commits and pull requests that touched it. Lines are one-based.

Examples:
  lineowner investigate main.go 42
  lineowner investigate internal/app.go 7 --format json`,
	Args: cobra.ExactArgs(2),
	Run:  runInvestigate,
}

func init() {
	rootCmd.AddCommand(investigateCmd)
}

func runInvestigate(cmd *cobra.Command, args []string) {
	format := outputFormat()
	ctx := newContext()
	defer runCleanups()

	a := mustGetApp(ctx)

	filePath := a.mustResolveFile(args[0])
	line, err := parseLine(args[1])
	if err != nil {
		exitWithError("Error", err)
	}

	svc := a.service(newPicker(0, format))
	tracked, err := svc.Investigate(ctx, filePath, line, a.repoRoot)
	if err != nil {
		exitWithError("Error investigating line", err)
	}

	resp := &InvestigateResponseCLI{
		FilePath: filePath,
		Line:     line + 1,
		Tracked:  tracked,
	}
	if tracked {
		set := a.aggregator.BuildAnnotations(ctx, filePath, a.tracker.Lines(filePath), a.repoRoot)
		if views := newLineViews(set); len(views) > 0 {
			resp.Annotation = &views[0]
		}
	}
	resp.Notices = a.notices.drain()

	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError("Error formatting output", err)
	}
	fmt.Println(output)

	a.logger.Debug("Investigate completed",
		"filePath", filePath,
		"line", line,
		"tracked", tracked,
	)
}
