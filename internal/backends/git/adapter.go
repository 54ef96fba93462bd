package git

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lineowner/internal/config"
	"lineowner/internal/errors"
)

// GitAdapter runs the line-provenance queries against a git working tree.
// It holds no per-repository state: every call names its working directory.
type GitAdapter struct {
	runner Runner
	logger *slog.Logger
}

// NewGitAdapter creates an adapter that shells out to the git binary named in
// cfg.
func NewGitAdapter(cfg *config.Config, logger *slog.Logger) (*GitAdapter, error) {
	if logger == nil {
		return nil, errors.NewOwnerError(
			errors.InternalError,
			"Logger is required for GitAdapter",
			nil,
			nil,
		)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	timeout := time.Duration(cfg.Git.TimeoutMs) * time.Millisecond
	runner := NewExecRunner(cfg.Git.Binary, timeout, cfg.Git.MaxOutputBytes, logger)

	logger.Debug("Git adapter initialized",
		"binary", runner.binary,
		"timeout", runner.queryTimeout.String(),
		"maxOutputBytes", runner.maxOutputBytes,
	)

	return NewGitAdapterWithRunner(runner, logger)
}

// NewGitAdapterWithRunner creates an adapter over an arbitrary Runner.
func NewGitAdapterWithRunner(runner Runner, logger *slog.Logger) (*GitAdapter, error) {
	if logger == nil {
		return nil, errors.NewOwnerError(
			errors.InternalError,
			"Logger is required for GitAdapter",
			nil,
			nil,
		)
	}
	if runner == nil {
		return nil, errors.NewOwnerError(
			errors.InternalError,
			"Runner is required for GitAdapter",
			nil,
			nil,
		)
	}
	return &GitAdapter{runner: runner, logger: logger}, nil
}

// ResolveRepoRoot returns the top level of the working tree containing dir.
func (g *GitAdapter) ResolveRepoRoot(ctx context.Context, dir string) (string, error) {
	output, err := g.runner.Run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// GitDir returns the absolute path of the repository's git directory, which
// the watcher polls for HEAD and index changes.
func (g *GitAdapter) GitDir(ctx context.Context, dir string) (string, error) {
	output, err := g.runner.Run(ctx, dir, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}
