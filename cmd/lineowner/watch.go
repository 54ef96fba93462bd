package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lineowner/internal/provenance"
	"lineowner/internal/slogutil"
	"lineowner/internal/watcher"
)

var watchLines []int

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Keep annotations for lines up to date",
	Long: `Annotate the given lines and re-print the annotations whenever they change.
Writes to the file invalidate its cached provenance, commits and checkouts
clear the whole cache, and the cache is also swept periodically. Output is
only repeated when the annotations actually differ.

Examples:
  lineowner watch main.go --line 10 --line 42
  lineowner watch main.go -l 10 --format json`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().IntSliceVarP(&watchLines, "line", "l", nil, "One-based line to watch (repeatable)")
	_ = watchCmd.MarkFlagRequired("line")
	rootCmd.AddCommand(watchCmd)
}

// renderGate suppresses renders whose fingerprint matches the previous one.
type renderGate struct {
	last uint64
	seen bool
}

func (g *renderGate) changed(fingerprint uint64) bool {
	if g.seen && g.last == fingerprint {
		return false
	}
	g.last = fingerprint
	g.seen = true
	return true
}

// wakeup is a non-blocking, coalescing signal.
type wakeup chan struct{}

func (w wakeup) notify() {
	select {
	case w <- struct{}{}:
	default:
	}
}

func runWatch(cmd *cobra.Command, args []string) {
	format := outputFormat()
	ctx := newContext()
	defer runCleanups()

	a := mustGetApp(ctx)

	filePath := a.mustResolveFile(args[0])
	lines, err := zeroBasedLines(watchLines)
	if err != nil {
		exitWithError("Error", err)
	}
	for _, line := range lines {
		a.tracker.Track(filePath, line)
	}

	rerender := make(wakeup, 1)
	atExit(a.cache.OnChange(func(change provenance.Change) {
		switch {
		case change.Kind == provenance.ChangeCleared:
			rerender.notify()
		case change.Kind == provenance.ChangeFileInvalidated && change.FilePath == filePath:
			rerender.notify()
		}
	}))
	a.tracker.OnChange(func(changed string) {
		if changed == filePath {
			rerender.notify()
		}
	})

	watchLogger := a.loggers.For(slogutil.SubsystemWatcher)
	w := watcher.New(watcher.ConfigFrom(a.cfg.Watcher), watchLogger, a.cache, func(events []watcher.Event) {
		for _, ev := range events {
			watchLogger.Info("Change detected", "type", ev.Type.String(), "path", ev.Path)
			// A deleted file has no lines left to annotate.
			if ev.Type == watcher.EventDelete && a.tracker.IsTracked(ev.Path) {
				a.tracker.UntrackFile(ev.Path)
			}
		}
	})
	if err := w.Start(); err != nil {
		exitWithError("Error starting watcher", err)
	}
	atExit(func() { _ = w.Stop() })

	if err := w.WatchRepo(a.repoRoot); err != nil {
		exitWithError("Error watching repository", err)
	}
	for _, tracked := range a.tracker.Files() {
		if err := w.WatchFile(tracked); err != nil {
			exitWithError("Error watching file", err)
		}
	}

	go a.cache.RunSweeper(ctx)

	gate := &renderGate{}
	renderWatch(ctx, a, filePath, format, gate)
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped",
				"filePath", filePath,
				"watcher", w.Stats(),
				"cache", a.stats(context.Background()),
			)
			return
		case <-rerender:
			renderWatch(ctx, a, filePath, format, gate)
		}
	}
}

func renderWatch(ctx context.Context, a *app, filePath string, format OutputFormat, gate *renderGate) {
	set := a.aggregator.BuildAnnotations(ctx, filePath, a.tracker.Lines(filePath), a.repoRoot)
	if ctx.Err() != nil || !gate.changed(set.Fingerprint) {
		return
	}

	resp := &AnnotateResponseCLI{
		FilePath:    filePath,
		Lines:       newLineViews(set),
		Fingerprint: set.Fingerprint,
		Stats:       a.responseStats(ctx, format),
		Notices:     a.notices.drain(),
	}
	output, err := FormatResponse(resp, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		return
	}
	if format == FormatYAML {
		fmt.Println("---")
	}
	fmt.Println(output)
}
