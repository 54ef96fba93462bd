package watcher

import (
	"sync"
	"time"
)

// Debouncer delays execution until a quiet period has passed. Only the most
// recently triggered function runs.
type Debouncer struct {
	delay   time.Duration
	timer   *time.Timer
	mu      sync.Mutex
	pending func()
}

// NewDebouncer creates a new debouncer with the specified delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay: delay,
	}
}

// Trigger schedules fn, replacing and postponing anything pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Cancel cancels any pending execution
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// Flush immediately executes any pending function
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.fire()
}

// PathBatcher collects file events and, once no event has arrived for the
// delay, emits the latest event for each path in first-seen order.
type PathBatcher struct {
	delay  time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	order  []string
	latest map[string]Event
	emit   func([]Event)
}

// NewPathBatcher creates a batcher that hands each batch to emit.
func NewPathBatcher(delay time.Duration, emit func([]Event)) *PathBatcher {
	return &PathBatcher{
		delay:  delay,
		latest: make(map[string]Event),
		emit:   emit,
	}
}

// Add records event and restarts the quiet period.
func (b *PathBatcher) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, seen := b.latest[event.Path]; !seen {
		b.order = append(b.order, event.Path)
	}
	b.latest[event.Path] = event

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

func (b *PathBatcher) flush() {
	b.mu.Lock()
	events := make([]Event, 0, len(b.order))
	for _, path := range b.order {
		events = append(events, b.latest[path])
	}
	b.order = nil
	b.latest = make(map[string]Event)
	b.timer = nil
	b.mu.Unlock()

	if len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Cancel drops any pending batch
func (b *PathBatcher) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.order = nil
	b.latest = make(map[string]Event)
}

// Flush immediately emits any pending events
func (b *PathBatcher) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// Len returns the number of distinct paths pending
func (b *PathBatcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}
