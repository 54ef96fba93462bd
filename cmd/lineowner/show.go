package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineowner/internal/drilldown"
)

var showCmd = &cobra.Command{
	Use:   "show <git-commit-uri>",
	Short: "Print a file as of a revision",
	Long: `Print the content behind a git-commit identifier, as emitted in the
before/after fields of a history diff. Unreadable revisions print nothing.

Example:
  lineowner show 'git-commit:main.go?ref=abc1234~1&path=cmd%2Fmain.go'`,
	Args: cobra.ExactArgs(1),
	Run:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) {
	format := outputFormat()
	uri := args[0]

	ref, relPath, err := drilldown.ParseContentURI(uri)
	if err != nil {
		exitWithError("Error", err)
	}

	ctx := newContext()
	defer runCleanups()

	a := mustGetApp(ctx)

	resp := &ShowResponseCLI{
		URI:     uri,
		Ref:     ref,
		Path:    relPath,
		Content: a.content.ProvideContext(ctx, uri),
	}

	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError("Error formatting output", err)
	}
	fmt.Print(output)
	if format != FormatHuman {
		fmt.Println()
	}

	a.logger.Debug("Show completed",
		"ref", ref,
		"path", relPath,
		"bytes", len(resp.Content),
	)
}
