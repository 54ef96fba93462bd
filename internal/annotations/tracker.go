package annotations

import (
	"slices"
	"sync"

	"lineowner/internal/provenance"
)

// Invalidator drops memoized state for a key. *provenance.Cache satisfies it.
type Invalidator interface {
	Invalidate(key provenance.Key)
}

// Tracker remembers which lines of which files are annotated.
type Tracker struct {
	invalidator Invalidator

	mu        sync.Mutex
	lines     map[string]map[int]struct{}
	listeners []func(filePath string)
}

// NewTracker creates an empty tracker that invalidates through inv.
func NewTracker(inv Invalidator) *Tracker {
	return &Tracker{
		invalidator: inv,
		lines:       make(map[string]map[int]struct{}),
	}
}

// Track marks line (zero-based) of filePath. Tracking a line again forces
// its provenance to be resolved afresh.
func (t *Tracker) Track(filePath string, line int) {
	t.mu.Lock()
	set, ok := t.lines[filePath]
	if !ok {
		set = make(map[int]struct{})
		t.lines[filePath] = set
	}
	set[line] = struct{}{}
	t.mu.Unlock()

	if t.invalidator != nil {
		t.invalidator.Invalidate(provenance.NewKey(filePath, line))
	}
	t.notify(filePath)
}

// Untrack removes one line.
func (t *Tracker) Untrack(filePath string, line int) {
	t.mu.Lock()
	if set, ok := t.lines[filePath]; ok {
		delete(set, line)
		if len(set) == 0 {
			delete(t.lines, filePath)
		}
	}
	t.mu.Unlock()

	t.notify(filePath)
}

// UntrackFile removes every line of filePath.
func (t *Tracker) UntrackFile(filePath string) {
	t.mu.Lock()
	delete(t.lines, filePath)
	t.mu.Unlock()

	t.notify(filePath)
}

// Lines returns the tracked lines of filePath in ascending order.
func (t *Tracker) Lines(filePath string) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.lines[filePath]
	out := make([]int, 0, len(set))
	for line := range set {
		out = append(out, line)
	}
	slices.Sort(out)
	return out
}

// IsTracked reports whether any line of filePath is tracked.
func (t *Tracker) IsTracked(filePath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lines[filePath]) > 0
}

// Files returns every file with at least one tracked line, sorted.
func (t *Tracker) Files() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, 0, len(t.lines))
	for f := range t.lines {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// OnChange registers fn to run after the tracked set of a file changes.
func (t *Tracker) OnChange(fn func(filePath string)) {
	t.mu.Lock()
	t.listeners = append(t.listeners, fn)
	t.mu.Unlock()
}

func (t *Tracker) notify(filePath string) {
	t.mu.Lock()
	fns := slices.Clone(t.listeners)
	t.mu.Unlock()

	for _, fn := range fns {
		fn(filePath)
	}
}
