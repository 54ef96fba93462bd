package testutil

import (
	"context"
	"strings"
	"sync"
)

// Response is a scripted result for one git invocation.
type Response struct {
	Output string
	Err    error
}

// FakeRunner answers git invocations from a script keyed by the space-joined
// argv. Unscripted invocations return Fallback.
type FakeRunner struct {
	mu       sync.Mutex
	script   map[string]Response
	calls    []string
	Fallback Response
}

// NewFakeRunner creates an empty scripted runner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{script: make(map[string]Response)}
}

// On scripts the response for args.
func (f *FakeRunner) On(output string, err error, args ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.script[strings.Join(args, " ")] = Response{Output: output, Err: err}
	return f
}

// Run implements the git runner contract.
func (f *FakeRunner) Run(_ context.Context, _ string, args ...string) (string, error) {
	key := strings.Join(args, " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if resp, ok := f.script[key]; ok {
		return resp.Output, resp.Err
	}
	return f.Fallback.Output, f.Fallback.Err
}

// Calls returns how many times args was invoked.
func (f *FakeRunner) Calls(args ...string) int {
	key := strings.Join(args, " ")

	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

// TotalCalls returns the number of invocations of any kind.
func (f *FakeRunner) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
