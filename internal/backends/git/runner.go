package git

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"lineowner/internal/errors"
)

//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks

const (
	// DefaultQueryTimeout is the default timeout for git operations
	DefaultQueryTimeout = 10 * time.Second

	// DefaultMaxOutputBytes is large enough for whole-file content at a revision
	DefaultMaxOutputBytes = 10 * 1024 * 1024

	notARepositoryMarker = "not a git repository"
)

// Runner executes a single git invocation in dir and returns its raw stdout.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecRunner runs git as a child process with structured argv.
type ExecRunner struct {
	binary         string
	queryTimeout   time.Duration
	maxOutputBytes int
	logger         *slog.Logger
}

// NewExecRunner creates a runner for the given binary. Zero values fall back
// to the package defaults.
func NewExecRunner(binary string, timeout time.Duration, maxOutputBytes int, logger *slog.Logger) *ExecRunner {
	if binary == "" {
		binary = "git"
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	if maxOutputBytes <= 0 {
		maxOutputBytes = DefaultMaxOutputBytes
	}
	return &ExecRunner{
		binary:         binary,
		queryTimeout:   timeout,
		maxOutputBytes: maxOutputBytes,
		logger:         logger,
	}
}

// Run executes git with args in dir. Output is returned untrimmed.
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = dir

	stdout := &cappedBuffer{limit: r.maxOutputBytes}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Executing git command",
		"args", args,
		"dir", dir,
		"timeout", r.queryTimeout.String(),
	)

	err := cmd.Run()
	if err != nil {
		if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.NewOwnerError(
				errors.Timeout,
				"Git command timed out",
				err,
				errors.GetSuggestedFixes(errors.Timeout),
			).WithDetails(map[string]interface{}{"args": args})
		}
		return "", classifyFailure(args, stderr.String(), err)
	}

	if stdout.overflow {
		return "", errors.NewOwnerError(
			errors.VcsCommandFailed,
			"Git output exceeded buffer limit",
			fmt.Errorf("output larger than %d bytes", r.maxOutputBytes),
			nil,
		).WithDetails(map[string]interface{}{"args": args})
	}

	return stdout.buf.String(), nil
}

// classifyFailure maps a failed invocation onto the error taxonomy.
func classifyFailure(args []string, stderr string, err error) error {
	if strings.Contains(stderr, notARepositoryMarker) {
		return errors.NewOwnerError(
			errors.NotARepository,
			"This file is not in a git repository",
			err,
			errors.GetSuggestedFixes(errors.NotARepository),
		)
	}

	cause := err
	if msg := strings.TrimSpace(stderr); msg != "" {
		cause = stderrors.New(msg)
	}
	return errors.NewOwnerError(
		errors.VcsCommandFailed,
		"Git command failed",
		cause,
		nil,
	).WithDetails(map[string]interface{}{
		"args":   args,
		"stderr": stderr,
	})
}

// cappedBuffer keeps at most limit bytes and records whether more arrived.
// It never returns a write error, so the child is drained and never blocks
// on a full pipe.
type cappedBuffer struct {
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if room := c.limit - c.buf.Len(); room < len(p) {
		c.overflow = true
		if room > 0 {
			c.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return c.buf.Write(p)
}
