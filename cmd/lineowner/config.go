package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lineowner/internal/config"
	"lineowner/internal/errors"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lineowner configuration",
	Long:  "View and manage lineowner configuration stored in .lineowner/config.json",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: .lineowner/config.json layered over
defaults and LINEOWNER_* environment variables.

Examples:
  lineowner config show
  LINEOWNER_GIT_TIMEOUTMS=30000 lineowner config show --format yaml`,
	Args: cobra.NoArgs,
	Run:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long:  "Create .lineowner/config.json with default values in the repository root",
	Args:  cobra.NoArgs,
	Run:   runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing configuration")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string         `json:"configPath" yaml:"configPath"`
	UsedDefaults bool           `json:"usedDefaults" yaml:"usedDefaults"`
	Valid        bool           `json:"valid" yaml:"valid"`
	Problem      string         `json:"problem,omitempty" yaml:"problem,omitempty"`
	Config       *config.Config `json:"config" yaml:"config"`
}

func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, config.DirName, "config.json")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	format := outputFormat()
	ctx := newContext()
	defer runCleanups()

	repoRoot, err := findRepoRoot(ctx)
	if err != nil {
		exitWithError("Error", err)
	}

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		exitWithError("Error loading config", err)
	}

	path := configPath(repoRoot)
	_, statErr := os.Stat(path)
	resp := &ConfigShowResponse{
		ConfigPath:   path,
		UsedDefaults: os.IsNotExist(statErr),
		Valid:        true,
		Config:       cfg,
	}
	if err := cfg.Validate(); err != nil {
		resp.Valid = false
		resp.Problem = err.Error()
	}

	// Human output for the config is its JSON form.
	if format == FormatHuman {
		format = FormatJSON
	}
	output, err := FormatResponse(resp, format)
	if err != nil {
		exitWithError("Error formatting output", err)
	}
	fmt.Println(output)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	ctx := newContext()
	defer runCleanups()

	repoRoot, err := findRepoRoot(ctx)
	if err != nil {
		exitWithError("Error", err)
	}

	path := configPath(repoRoot)
	if _, err := os.Stat(path); err == nil && !configInitForce {
		exitWithError("Error", errors.NewOwnerError(errors.InvalidArgument, path+" already exists (use --force to overwrite)", nil, nil))
	}

	if err := config.DefaultConfig().Save(repoRoot); err != nil {
		exitWithError("Error writing config", err)
	}
	fmt.Printf("Wrote %s\n", path)
}
