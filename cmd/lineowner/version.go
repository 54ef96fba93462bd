package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineowner/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		resp := &VersionResponseCLI{
			Version:   version.Version,
			Commit:    version.Commit,
			BuildDate: version.BuildDate,
		}
		format := outputFormat()
		if format == FormatHuman {
			fmt.Println(version.Full())
			return
		}
		output, err := FormatResponse(resp, format)
		if err != nil {
			exitWithError("Error formatting output", err)
		}
		fmt.Println(output)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
