package annotations

import (
	"reflect"
	"testing"

	"lineowner/internal/provenance"
)

type recordingInvalidator struct {
	keys []provenance.Key
}

func (r *recordingInvalidator) Invalidate(key provenance.Key) {
	r.keys = append(r.keys, key)
}

func TestTracker(t *testing.T) {
	inv := &recordingInvalidator{}
	tr := NewTracker(inv)

	var notified []string
	tr.OnChange(func(filePath string) { notified = append(notified, filePath) })

	tr.Track("/repo/a.go", 9)
	tr.Track("/repo/a.go", 2)
	tr.Track("/repo/a.go", 9)
	tr.Track("/repo/b.go", 0)

	if got := tr.Lines("/repo/a.go"); !reflect.DeepEqual(got, []int{2, 9}) {
		t.Errorf("Lines(a.go) = %v, want [2 9]", got)
	}
	if got := tr.Files(); !reflect.DeepEqual(got, []string{"/repo/a.go", "/repo/b.go"}) {
		t.Errorf("Files() = %v, want [/repo/a.go /repo/b.go]", got)
	}
	if len(inv.keys) != 4 {
		t.Fatalf("Invalidate called %d times, want 4", len(inv.keys))
	}
	if inv.keys[2] != provenance.NewKey("/repo/a.go", 9) {
		t.Errorf("keys[2] = %v, want re-track of a.go:9", inv.keys[2])
	}
	want := []string{"/repo/a.go", "/repo/a.go", "/repo/a.go", "/repo/b.go"}
	if !reflect.DeepEqual(notified, want) {
		t.Errorf("notified = %v, want %v", notified, want)
	}

	tr.Untrack("/repo/a.go", 2)
	if got := tr.Lines("/repo/a.go"); !reflect.DeepEqual(got, []int{9}) {
		t.Errorf("Lines(a.go) after Untrack = %v, want [9]", got)
	}

	tr.UntrackFile("/repo/a.go")
	if tr.IsTracked("/repo/a.go") {
		t.Error("a.go should not be tracked after UntrackFile")
	}
	if got := tr.Lines("/repo/a.go"); len(got) != 0 {
		t.Errorf("Lines(a.go) after UntrackFile = %v, want none", got)
	}
	if !tr.IsTracked("/repo/b.go") {
		t.Error("b.go should still be tracked")
	}

	tr.Untrack("/repo/b.go", 0)
	if got := tr.Files(); len(got) != 0 {
		t.Errorf("Files() = %v, want none", got)
	}
}
