package provenance

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"lineowner/internal/backends/git"
	"lineowner/internal/errors"
)

// DefaultSweepInterval is how often the sweeper drops every cached entry.
const DefaultSweepInterval = 5 * time.Minute

const (
	slotHistory      = "history"
	slotPullRequests = "pullRequests"
)

// Resolver performs the uncached lookups. *git.GitAdapter satisfies it.
type Resolver interface {
	LineHistory(ctx context.Context, filePath string, line int, workDir string) ([]git.CommitRecord, error)
	CorrelatePullRequests(ctx context.Context, hashes []string, workDir string) []git.PullRequestRecord
}

// ChangeKind says what mutated the cache.
type ChangeKind string

const (
	ChangeStored          ChangeKind = "stored"
	ChangeInvalidated     ChangeKind = "invalidated"
	ChangeFileInvalidated ChangeKind = "file-invalidated"
	ChangeCleared         ChangeKind = "cleared"
)

// Change describes one cache mutation. Key is set for stored and
// invalidated changes, FilePath for file invalidations.
type Change struct {
	Kind     ChangeKind
	Key      Key
	FilePath string
}

// historySlot and prSlot distinguish "never resolved" from "resolved to
// nothing"; an empty resolved value is still a hit.
type historySlot struct {
	resolved bool
	value    []git.CommitRecord
}

type prSlot struct {
	resolved bool
	value    []git.PullRequestRecord
}

type entry struct {
	history historySlot
	prs     prSlot
}

// Cache memoizes line history and pull requests per Key.
//
// The lock is never held while git runs. A resolution that started before an
// Invalidate may therefore store its result after it; concurrent misses for
// the same key each run their own query.
type Cache struct {
	resolver Resolver
	logger   *slog.Logger

	sweepInterval time.Duration
	newTicker     TickerFactory
	meterProvider metric.MeterProvider
	metrics       *cacheMetrics

	mu        sync.Mutex
	entries   map[Key]*entry
	listeners map[int]func(Change)
	nextID    int
}

// Option configures a Cache.
type Option func(*Cache)

// WithSweepInterval overrides DefaultSweepInterval.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.sweepInterval = d
		}
	}
}

// WithTickerFactory replaces the clock that drives RunSweeper.
func WithTickerFactory(f TickerFactory) Option {
	return func(c *Cache) {
		if f != nil {
			c.newTicker = f
		}
	}
}

// WithMeterProvider records the cache counters on provider instead of the
// global one.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *Cache) {
		c.meterProvider = provider
	}
}

// NewCache creates an empty cache over resolver.
func NewCache(resolver Resolver, logger *slog.Logger, opts ...Option) (*Cache, error) {
	if resolver == nil {
		return nil, errors.NewOwnerError(errors.InternalError, "Resolver is required for Cache", nil, nil)
	}
	if logger == nil {
		return nil, errors.NewOwnerError(errors.InternalError, "Logger is required for Cache", nil, nil)
	}

	c := &Cache{
		resolver:      resolver,
		logger:        logger,
		sweepInterval: DefaultSweepInterval,
		newTicker:     NewSystemTicker,
		entries:       make(map[Key]*entry),
		listeners:     make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics, err := newCacheMetrics(c.meterProvider)
	if err != nil {
		return nil, errors.NewOwnerError(errors.InternalError, "Failed to create cache metrics", err, nil)
	}
	c.metrics = metrics
	return c, nil
}

// GetOrResolveHistory returns the cached history for key, running the line
// log query on a miss. Errors are returned and not cached.
func (c *Cache) GetOrResolveHistory(ctx context.Context, key Key, workDir string) ([]git.CommitRecord, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.history.resolved {
		history := e.history.value
		c.mu.Unlock()
		c.metrics.lookup(ctx, slotHistory, true)
		return history, nil
	}
	c.mu.Unlock()
	c.metrics.lookup(ctx, slotHistory, false)

	history, err := c.resolver.LineHistory(ctx, key.FilePath, key.Line, workDir)
	c.metrics.resolution(ctx, slotHistory, err)
	if err != nil {
		c.logger.Debug("History resolution failed",
			"key", key.String(),
			"error", err.Error(),
		)
		return nil, err
	}
	if history == nil {
		history = []git.CommitRecord{}
	}

	// An Invalidate that ran while the query was in flight does not stop this
	// store; the result lands in a fresh entry.
	c.mu.Lock()
	e := c.entryLocked(key)
	e.history = historySlot{resolved: true, value: history}
	c.mu.Unlock()

	c.logger.Debug("History cached",
		"key", key.String(),
		"commits", len(history),
	)
	c.notify(Change{Kind: ChangeStored, Key: key})
	return history, nil
}

// GetOrResolvePRs returns the cached pull requests for key. On a miss it
// obtains the key's history through the cache and correlates its commits.
func (c *Cache) GetOrResolvePRs(ctx context.Context, key Key, workDir string) ([]git.PullRequestRecord, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.prs.resolved {
		prs := e.prs.value
		c.mu.Unlock()
		c.metrics.lookup(ctx, slotPullRequests, true)
		return prs, nil
	}
	c.mu.Unlock()
	c.metrics.lookup(ctx, slotPullRequests, false)

	history, err := c.GetOrResolveHistory(ctx, key, workDir)
	if err != nil {
		return nil, err
	}

	prs := []git.PullRequestRecord{}
	if len(history) > 0 {
		hashes := make([]string, len(history))
		for i, commit := range history {
			hashes[i] = commit.FullHash
		}
		prs = c.resolver.CorrelatePullRequests(ctx, hashes, workDir)
		if prs == nil {
			prs = []git.PullRequestRecord{}
		}
	}

	// A cancelled correlation stops early; its partial result is not stored.
	if err := ctx.Err(); err != nil {
		c.metrics.resolution(ctx, slotPullRequests, err)
		return nil, err
	}
	c.metrics.resolution(ctx, slotPullRequests, nil)

	c.mu.Lock()
	e := c.entryLocked(key)
	e.prs = prSlot{resolved: true, value: prs}
	c.mu.Unlock()

	c.logger.Debug("Pull requests cached",
		"key", key.String(),
		"pullRequests", len(prs),
	)
	c.notify(Change{Kind: ChangeStored, Key: key})
	return prs, nil
}

// Invalidate drops both slots for key.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.mu.Unlock()

	if existed {
		c.metrics.evicted("invalidate", 1)
	}
	c.logger.Debug("Cache entry invalidated", "key", key.String())
	c.notify(Change{Kind: ChangeInvalidated, Key: key})
}

// InvalidateFile drops every entry whose key names filePath.
func (c *Cache) InvalidateFile(filePath string) int {
	c.mu.Lock()
	removed := 0
	for key := range c.entries {
		if key.FilePath == filePath {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	c.metrics.evicted("file", removed)
	c.logger.Debug("Cache entries invalidated for file",
		"filePath", filePath,
		"removed", removed,
	)
	c.notify(Change{Kind: ChangeFileInvalidated, FilePath: filePath})
	return removed
}

// ClearAll drops every entry.
func (c *Cache) ClearAll() {
	c.clear("clear")
}

func (c *Cache) clear(reason string) {
	c.mu.Lock()
	removed := len(c.entries)
	c.entries = make(map[Key]*entry)
	c.mu.Unlock()

	c.metrics.evicted(reason, removed)
	c.logger.Debug("Cache cleared",
		"reason", reason,
		"removed", removed,
	)
	c.notify(Change{Kind: ChangeCleared})
}

// Len returns the number of keys with at least one resolved slot.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// OnChange registers fn to be called after every mutation. Listeners run
// synchronously, outside the cache lock. The returned func unregisters fn.
func (c *Cache) OnChange(fn func(Change)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify(change Change) {
	c.mu.Lock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}
