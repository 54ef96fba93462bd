package main

import (
	"lineowner/internal/version"

	"github.com/spf13/cobra"
)

var (
	// repoFlag is the CLI --repo flag value
	repoFlag string
	// formatFlag is the CLI --format flag value
	formatFlag string
	verbosity  int
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "lineowner",
	Short: "lineowner - who touched this line, and through which pull requests",
	Long: `lineowner answers "who last touched this line" for a single line of a
git-tracked file. It follows the line through git history, correlates the
commits with pull requests referenced in their messages and renders the result
as compact annotations with drill-down into commits, diffs and pull requests.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate("lineowner version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository working directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman),
		"Output format (json, human, yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"Suppress all log output")
}

// outputFormat returns the validated --format value or exits.
func outputFormat() OutputFormat {
	format, err := ParseOutputFormat(formatFlag)
	if err != nil {
		exitWithError("Error", err)
	}
	return format
}
