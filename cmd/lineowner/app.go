package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"lineowner/internal/annotations"
	"lineowner/internal/backends/git"
	"lineowner/internal/config"
	"lineowner/internal/drilldown"
	"lineowner/internal/errors"
	"lineowner/internal/paths"
	"lineowner/internal/provenance"
	"lineowner/internal/slogutil"
)

// app holds the components one command invocation works with.
type app struct {
	repoRoot string
	cfg      *config.Config
	loggers  *slogutil.LoggerFactory
	logger   *slog.Logger

	git        *git.GitAdapter
	cache      *provenance.Cache
	tracker    *annotations.Tracker
	aggregator *annotations.Aggregator
	content    *drilldown.ContentProvider
	notices    *noticeLog

	meterProvider *sdkmetric.MeterProvider
	metricsReader *sdkmetric.ManualReader
}

// cleanups run newest first when a command returns or exits early.
var cleanups []func()

// atExit registers fn with runCleanups.
func atExit(fn func()) {
	cleanups = append(cleanups, fn)
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// cliLevel returns the level forced by -v or -q, or nil when neither was given.
func cliLevel() *slog.Level {
	if verbosity == 0 && !quiet {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verbosity, quiet)
	return &level
}

// findRepoRoot returns the top level of the working tree named by --repo,
// or containing the current directory. The configuration lives inside the
// repository, so the root is found with default settings.
func findRepoRoot(ctx context.Context) (string, error) {
	dir := repoFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}

	bootstrap := slogutil.NewLoggerFactory(config.DefaultConfig(), cliLevel(), os.Stderr)
	adapter, err := git.NewGitAdapter(config.DefaultConfig(), bootstrap.For(slogutil.SubsystemGit))
	if err != nil {
		return "", err
	}
	return adapter.ResolveRepoRoot(ctx, dir)
}

// newApp resolves the repository root, loads its configuration and wires the
// provenance stack.
func newApp(ctx context.Context) (*app, error) {
	repoRoot, err := findRepoRoot(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		slogutil.NewLoggerFactory(nil, cliLevel(), os.Stderr).For(slogutil.SubsystemGit).Warn("Failed to load config, using defaults",
			"error", err.Error(),
		)
		cfg = config.DefaultConfig()
		cfg.RepoRoot = repoRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewOwnerError(errors.InvalidArgument, "Invalid configuration", err, nil)
	}

	loggers := slogutil.NewLoggerFactory(cfg, cliLevel(), os.Stderr)

	adapter, err := git.NewGitAdapter(cfg, loggers.For(slogutil.SubsystemGit))
	if err != nil {
		return nil, err
	}

	meterProvider, metricsReader := provenance.NewStatsProvider()
	otel.SetMeterProvider(meterProvider)

	cache, err := provenance.NewCache(adapter, loggers.For(slogutil.SubsystemProvenance),
		provenance.WithSweepInterval(time.Duration(cfg.Cache.SweepIntervalSeconds)*time.Second),
		provenance.WithMeterProvider(meterProvider),
	)
	if err != nil {
		return nil, err
	}

	content, err := drilldown.NewContentProvider(cfg.Content.CompressThresholdBytes, loggers.For(slogutil.SubsystemDrilldown))
	if err != nil {
		return nil, err
	}

	annotationsLogger := loggers.For(slogutil.SubsystemAnnotations)
	return &app{
		repoRoot:   repoRoot,
		cfg:        cfg,
		loggers:    loggers,
		logger:     annotationsLogger,
		git:        adapter,
		cache:      cache,
		tracker:    annotations.NewTracker(cache),
		aggregator: annotations.NewAggregator(cache, annotationsLogger, cfg.Annotations.MaxConcurrentLines),
		content:    content.WithFetcher(adapter, repoRoot),
		notices:    &noticeLog{},

		meterProvider: meterProvider,
		metricsReader: metricsReader,
	}, nil
}

// mustGetApp returns the wired app or exits on error. The app is closed by
// runCleanups.
func mustGetApp(ctx context.Context) *app {
	a, err := newApp(ctx)
	if err != nil {
		exitWithError("Error", err)
	}
	atExit(a.close)
	return a
}

// service builds a drilldown service that picks through picker.
func (a *app) service(picker drilldown.Picker) *drilldown.Service {
	svc, err := drilldown.NewService(drilldown.Dependencies{
		Backend:  a.git,
		Content:  a.content,
		Tracker:  a.tracker,
		Picker:   picker,
		Notifier: a.notices,
		Opener:   drilldown.BrowserOpener{},
		Logger:   a.loggers.For(slogutil.SubsystemDrilldown),
	})
	if err != nil {
		exitWithError("Error initializing drilldown", err)
	}
	return svc
}

func (a *app) close() {
	a.content.Close()
	_ = a.meterProvider.Shutdown(context.Background())
}

// responseStats returns the cache counters for machine-readable output, and
// for human output at -v.
func (a *app) responseStats(ctx context.Context, format OutputFormat) *provenance.Stats {
	if format == FormatHuman && verbosity == 0 {
		return nil
	}
	return a.stats(ctx)
}

// stats reads the cache counters recorded so far.
func (a *app) stats(ctx context.Context) *provenance.Stats {
	stats, err := provenance.CollectStats(ctx, a.metricsReader)
	if err != nil {
		a.logger.Debug("Cache stats unavailable", "error", err.Error())
		return nil
	}
	return &stats
}

// resolveFile turns a file argument, relative to the current directory or
// absolute, into the absolute path keys are built from. The file must lie
// inside the repository.
func (a *app) resolveFile(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	if !paths.IsWithinRepo(abs, a.repoRoot) {
		return "", errors.NewOwnerError(errors.InvalidArgument, "File is outside the repository", nil, nil).
			WithDetails(map[string]interface{}{"file": arg, "repoRoot": a.repoRoot})
	}
	rel, err := paths.CanonicalizePath(abs, a.repoRoot)
	if err != nil {
		return "", err
	}
	return paths.JoinRepoPath(a.repoRoot, rel), nil
}

// mustResolveFile returns the absolute path for arg or exits on error.
func (a *app) mustResolveFile(arg string) string {
	filePath, err := a.resolveFile(arg)
	if err != nil {
		exitWithError("Error", err)
	}
	return filePath
}

// parseLine converts a one-based line argument to the zero-based line used
// internally.
func parseLine(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, errors.NewOwnerError(errors.InvalidArgument, fmt.Sprintf("Line must be a positive number, got %q", arg), err, nil)
	}
	return n - 1, nil
}

// zeroBasedLines converts one-based --line values.
func zeroBasedLines(lines []int) ([]int, error) {
	out := make([]int, 0, len(lines))
	for _, n := range lines {
		if n < 1 {
			return nil, errors.NewOwnerError(errors.InvalidArgument, fmt.Sprintf("Line must be a positive number, got %d", n), nil, nil)
		}
		out = append(out, n-1)
	}
	return out, nil
}

// newContext creates a context cancelled on interrupt or by runCleanups.
func newContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	atExit(cancel)
	return ctx
}

// exitWithError prints err with any suggested fixes, runs the cleanups and
// exits.
func exitWithError(prefix string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, errors.UserMessage(err))
	for _, fix := range errors.GetSuggestedFixes(errors.CodeOf(err)) {
		if fix.Command != "" {
			fmt.Fprintf(os.Stderr, "  hint: %s (%s)\n", fix.Command, fix.Description)
		}
	}
	runCleanups()
	os.Exit(1)
}

// noticeLog collects informational messages so they become part of the
// command's response.
type noticeLog struct {
	messages []string
}

func (n *noticeLog) Info(message string) {
	n.messages = append(n.messages, message)
}

func (n *noticeLog) drain() []string {
	out := n.messages
	n.messages = nil
	return out
}
