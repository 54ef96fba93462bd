// Package watcher invalidates cached provenance when the repository or a
// tracked file changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"lineowner/internal/config"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Repo      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Sink receives the invalidations. *provenance.Cache satisfies it.
type Sink interface {
	ClearAll()
	InvalidateFile(filePath string) int
}

// ChangeHandler is called after the sink has been updated for a batch.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	Enabled      bool
	DebounceMs   int
	PollInterval time.Duration
}

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		DebounceMs:   500,
		PollInterval: 2 * time.Second,
	}
}

// ConfigFrom converts the file configuration.
func ConfigFrom(cfg config.WatcherConfig) Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.DebounceMs > 0 {
		c.DebounceMs = cfg.DebounceMs
	}
	if cfg.PollIntervalMs > 0 {
		c.PollInterval = time.Duration(cfg.PollIntervalMs) * time.Millisecond
	}
	return c
}

// Watcher polls repositories for HEAD and index changes, which clear the
// whole sink, and watches tracked files, whose writes invalidate just that
// file.
type Watcher struct {
	config  Config
	logger  *slog.Logger
	sink    Sink
	handler ChangeHandler

	repos map[string]*repoWatcher // repoPath -> watcher

	fsw        *fsnotify.Watcher
	files      map[string]struct{}
	dirRefs    map[string]int
	fileEvents *PathBatcher

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// repoWatcher watches a single repository
type repoWatcher struct {
	repoPath  string
	gitDir    string
	debouncer *Debouncer
	lastHead  string
	lastIndex time.Time
	stopCh    chan struct{}
}

// New creates a new file system watcher
func New(cfg Config, logger *slog.Logger, sink Sink, handler ChangeHandler) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Watcher{
		config:  cfg,
		logger:  logger,
		sink:    sink,
		handler: handler,
		repos:   make(map[string]*repoWatcher),
		files:   make(map[string]struct{}),
		dirRefs: make(map[string]int),
		ctx:     ctx,
		cancel:  cancel,
	}
	w.fileEvents = NewPathBatcher(w.debounce(), w.applyFileEvents)
	return w
}

func (w *Watcher) debounce() time.Duration {
	return time.Duration(w.config.DebounceMs) * time.Millisecond
}

// Start begins watching
func (w *Watcher) Start() error {
	if !w.config.Enabled {
		w.logger.Info("File watcher is disabled")
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	w.started = true

	w.wg.Add(1)
	go w.processEvents()

	w.logger.Info("Starting file watcher",
		"debounceMs", w.config.DebounceMs,
		"pollInterval", w.config.PollInterval.String(),
	)
	return nil
}

// Stop stops watching
func (w *Watcher) Stop() error {
	w.logger.Info("Stopping file watcher")
	w.cancel()

	w.mu.Lock()
	for path, rw := range w.repos {
		close(rw.stopCh)
		rw.debouncer.Cancel()
		delete(w.repos, path)
	}
	fsw := w.fsw
	w.mu.Unlock()

	// Closed outside the lock: the event loop may be waiting on it.
	var err error
	if fsw != nil {
		err = fsw.Close()
	}

	w.fileEvents.Cancel()
	w.wg.Wait()
	w.logger.Info("File watcher stopped")
	return err
}

// WatchRepo starts polling repoPath's HEAD and index.
func (w *Watcher) WatchRepo(repoPath string) error {
	if !w.config.Enabled {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.repos[repoPath]; exists {
		return nil // Already watching
	}

	gitDir := resolveGitDir(repoPath)
	if gitDir == "" {
		return nil // Not a git repo
	}

	rw := &repoWatcher{
		repoPath:  repoPath,
		gitDir:    gitDir,
		debouncer: NewDebouncer(w.debounce()),
		stopCh:    make(chan struct{}),
	}

	// Read initial HEAD
	rw.lastHead = readHead(gitDir)
	rw.lastIndex = indexModTime(gitDir)

	w.repos[repoPath] = rw

	w.wg.Add(1)
	go w.watchRepo(rw)

	w.logger.Info("Watching repository", "path", repoPath)
	return nil
}

// UnwatchRepo stops watching a repository
func (w *Watcher) UnwatchRepo(repoPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if rw, exists := w.repos[repoPath]; exists {
		close(rw.stopCh)
		rw.debouncer.Cancel()
		delete(w.repos, repoPath)
		w.logger.Info("Stopped watching repository", "path", repoPath)
	}
}

// WatchFile starts watching filePath for writes. The parent directory is
// watched so that editors replacing the file atomically are still seen.
func (w *Watcher) WatchFile(filePath string) error {
	filePath = filepath.Clean(filePath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsw == nil {
		return nil
	}
	if _, exists := w.files[filePath]; exists {
		return nil
	}

	dir := filepath.Dir(filePath)
	if w.dirRefs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirRefs[dir]++
	w.files[filePath] = struct{}{}

	w.logger.Debug("Watching file", "path", filePath)
	return nil
}

// UnwatchFile stops watching filePath.
func (w *Watcher) UnwatchFile(filePath string) {
	filePath = filepath.Clean(filePath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[filePath]; !exists {
		return
	}
	delete(w.files, filePath)

	dir := filepath.Dir(filePath)
	w.dirRefs[dir]--
	if w.dirRefs[dir] <= 0 {
		delete(w.dirRefs, dir)
		if w.fsw != nil {
			_ = w.fsw.Remove(dir)
		}
	}
}

// watchRepo polls for changes in a repository
func (w *Watcher) watchRepo(rw *repoWatcher) {
	defer w.wg.Done()

	pollInterval := w.config.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkRepoChanges(rw)
		case <-rw.stopCh:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// checkRepoChanges checks for git changes in a repository
func (w *Watcher) checkRepoChanges(rw *repoWatcher) {
	var events []Event

	// Check HEAD changes (branch switch, new commit)
	currentHead := readHead(rw.gitDir)
	if currentHead != "" && currentHead != rw.lastHead {
		events = append(events, Event{
			Type:      EventModify,
			Path:      filepath.Join(rw.gitDir, "HEAD"),
			Repo:      rw.repoPath,
			Timestamp: time.Now(),
		})
		rw.lastHead = currentHead
	}

	// Check index changes (staged files, commits)
	currentIndex := indexModTime(rw.gitDir)
	if !currentIndex.IsZero() && currentIndex.After(rw.lastIndex) {
		events = append(events, Event{
			Type:      EventModify,
			Path:      filepath.Join(rw.gitDir, "index"),
			Repo:      rw.repoPath,
			Timestamp: time.Now(),
		})
		rw.lastIndex = currentIndex
	}

	if len(events) > 0 {
		rw.debouncer.Trigger(func() {
			w.logger.Debug("Git changes detected",
				"repoPath", rw.repoPath,
				"eventCount", len(events),
			)
			if w.sink != nil {
				w.sink.ClearAll()
			}
			if w.handler != nil {
				w.handler(events)
			}
		})
	}
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.isTracked(event.Name) {
				continue
			}
			eventType, relevant := convertOp(event.Op)
			if !relevant {
				continue
			}
			w.fileEvents.Add(Event{
				Type:      eventType,
				Path:      event.Name,
				Timestamp: time.Now(),
			})
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("File watcher error", "error", err.Error())
		}
	}
}

// applyFileEvents invalidates each file in a debounced batch. The batcher
// delivers at most one event per path.
func (w *Watcher) applyFileEvents(events []Event) {
	for _, e := range events {
		removed := 0
		if w.sink != nil {
			removed = w.sink.InvalidateFile(e.Path)
		}
		w.logger.Debug("Tracked file changed",
			"path", e.Path,
			"op", e.Type.String(),
			"invalidated", removed,
		)
	}

	if w.handler != nil {
		w.handler(events)
	}
}

func (w *Watcher) isTracked(path string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}

func convertOp(op fsnotify.Op) (EventType, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return EventModify, true
	case op.Has(fsnotify.Create):
		return EventCreate, true
	case op.Has(fsnotify.Remove):
		return EventDelete, true
	case op.Has(fsnotify.Rename):
		return EventRename, true
	default:
		return EventModify, false
	}
}

// resolveGitDir finds the git directory for repoPath, following the
// "gitdir:" pointer file used by worktrees and submodules.
func resolveGitDir(repoPath string) string {
	dotGit := filepath.Join(repoPath, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return ""
	}
	if info.IsDir() {
		return dotGit
	}

	data, err := os.ReadFile(dotGit)
	if err != nil {
		return ""
	}
	target, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !ok {
		return ""
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(repoPath, target)
	}
	return target
}

// readHead reads the current HEAD reference, and the commit it points at
// when HEAD is symbolic, so new commits on the current branch are seen.
func readHead(gitDir string) string {
	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}
	head := strings.TrimSpace(string(data))

	ref, ok := strings.CutPrefix(head, "ref: ")
	if !ok {
		return head
	}
	target, err := os.ReadFile(filepath.Join(gitDir, filepath.FromSlash(ref)))
	if err != nil {
		return head
	}
	return head + "@" + strings.TrimSpace(string(target))
}

// indexModTime returns the modification time of the git index
func indexModTime(gitDir string) time.Time {
	info, err := os.Stat(filepath.Join(gitDir, "index"))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// WatchedRepos returns the list of watched repository paths
func (w *Watcher) WatchedRepos() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	repos := make([]string, 0, len(w.repos))
	for path := range w.repos {
		repos = append(repos, path)
	}
	slices.Sort(repos)
	return repos
}

// WatchedFiles returns the tracked files being watched
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	slices.Sort(files)
	return files
}

// Stats returns watcher statistics
func (w *Watcher) Stats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return map[string]interface{}{
		"enabled":      w.config.Enabled,
		"watchedRepos": len(w.repos),
		"watchedFiles": len(w.files),
		"debounceMs":   w.config.DebounceMs,
	}
}
