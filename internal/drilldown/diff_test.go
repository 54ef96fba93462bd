package drilldown

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestDiffTitle(t *testing.T) {
	want := "main.go (abcd1234) - Fix bug"
	if got := DiffTitle("main.go", "abcd1234", "Fix bug"); got != want {
		t.Errorf("DiffTitle() = %q, want %q", got, want)
	}
}

func TestNewDiffRequest_UniqueIDs(t *testing.T) {
	a := NewDiffRequest("b", "a", "t")
	b := NewDiffRequest("b", "a", "t")
	if a.ID == b.ID {
		t.Errorf("two requests share ID %q", a.ID)
	}
}

func TestRenderUnified(t *testing.T) {
	p := newProvider(t, 0)
	before := ContentURI("f.go", newHash+"~1", "pkg/f.go")
	after := ContentURI("f.go", newHash, "pkg/f.go")
	p.SetContent(before, "a\nb\nc\n")
	p.SetContent(after, "a\nB\nc\n")

	out, err := RenderUnified(context.Background(), p, NewDiffRequest(before, after, "t"), 0)
	if err != nil {
		t.Fatalf("RenderUnified() error = %v", err)
	}

	for _, want := range []string{"--- pkg/f.go (11111111~1)", "+++ pkg/f.go (11111111)", "-b\n", "+B\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestRenderUnified_AddedFile(t *testing.T) {
	p := newProvider(t, 0)
	before := ContentURI("f.go", oldHash+"~1", "f.go")
	after := ContentURI("f.go", oldHash, "f.go")
	p.SetContent(before, "")
	p.SetContent(after, "x\n")

	out, err := RenderUnified(context.Background(), p, NewDiffRequest(before, after, "t"), 0)
	if err != nil {
		t.Fatalf("RenderUnified() error = %v", err)
	}
	if !strings.Contains(out, "+x\n") {
		t.Errorf("diff missing added line:\n%s", out)
	}
}

func TestSplitLinesKeepNL(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a\nb", []string{"a\n", "b"}},
		{"a\nb\n", []string{"a\n", "b\n"}},
	}

	for _, tt := range tests {
		if got := splitLinesKeepNL(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitLinesKeepNL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
