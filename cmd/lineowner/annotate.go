package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var annotateLines []int

var annotateCmd = &cobra.Command{
	Use:   "annotate <file>",
	Short: "Annotate one or more lines of a file",
	Long: `Resolve provenance for each --line and print one annotation per line.
Lines without history are left out.

Examples:
  lineowner annotate main.go --line 10 --line 42
  lineowner annotate main.go -l 10,42 --format yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runAnnotate,
}

func init() {
	annotateCmd.Flags().IntSliceVarP(&annotateLines, "line", "l", nil, "One-based line to annotate (repeatable)")
	_ = annotateCmd.MarkFlagRequired("line")
	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) {
	format := outputFormat()
	ctx := newContext()
	defer runCleanups()

	a := mustGetApp(ctx)

	filePath := a.mustResolveFile(args[0])
	lines, err := zeroBasedLines(annotateLines)
	if err != nil {
		exitWithError("Error", err)
	}
	for _, line := range lines {
		a.tracker.Track(filePath, line)
	}

	set := a.aggregator.BuildAnnotations(ctx, filePath, a.tracker.Lines(filePath), a.repoRoot)
	resp := &AnnotateResponseCLI{
		FilePath:    filePath,
		Lines:       newLineViews(set),
		Fingerprint: set.Fingerprint,
		Stats:       a.responseStats(ctx, format),
		Notices:     a.notices.drain(),
	}

	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError("Error formatting output", err)
	}
	fmt.Println(output)

	a.logger.Debug("Annotate completed",
		"filePath", filePath,
		"requested", len(lines),
		"annotated", len(set.Lines),
	)
}
