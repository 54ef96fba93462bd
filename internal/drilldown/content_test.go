package drilldown

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"lineowner/internal/errors"
	"lineowner/internal/slogutil"
)

type mapFetcher struct {
	content map[string]string
	calls   int
}

func (m *mapFetcher) FileContentAt(_ context.Context, ref, relPath, _ string) (string, error) {
	m.calls++
	if c, ok := m.content[ref+":"+relPath]; ok {
		return c, nil
	}
	return "", errors.NewOwnerError(errors.ContentUnavailable, "missing", nil, nil)
}

func newProvider(t *testing.T, threshold int) *ContentProvider {
	t.Helper()
	p, err := NewContentProvider(threshold, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewContentProvider() error = %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func TestContentURI(t *testing.T) {
	want := "git-commit:main.go?ref=abc~1&path=cmd%2Fapp%2Fmain.go"
	if got := ContentURI("main.go", "abc~1", "cmd/app/main.go"); got != want {
		t.Errorf("ContentURI() = %q, want %q", got, want)
	}
}

func TestContentURIRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		ref      string
		relPath  string
	}{
		{"plain", "main.go", "abc~1", "cmd/app/main.go"},
		{"hash in name", "a#b.go", "abc", "pkg/a#b.go"},
		{"question mark in name", "q?.md", "abc~1", "docs/q?.md"},
		{"percent in name", "50%.txt", "abc", "50%.txt"},
		{"ampersand in path", "x&y.go", "abc", "x&y.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uri := ContentURI(tt.fileName, tt.ref, tt.relPath)

			ref, relPath, err := ParseContentURI(uri)
			if err != nil {
				t.Fatalf("ParseContentURI(%q) error = %v", uri, err)
			}
			if ref != tt.ref {
				t.Errorf("ref = %q, want %q", ref, tt.ref)
			}
			if relPath != tt.relPath {
				t.Errorf("relPath = %q, want %q", relPath, tt.relPath)
			}

			u, err := url.Parse(uri)
			if err != nil {
				t.Fatalf("url.Parse(%q) error = %v", uri, err)
			}
			if u.Fragment != "" {
				t.Errorf("uri %q parsed with fragment %q", uri, u.Fragment)
			}
			name, err := url.PathUnescape(u.Opaque)
			if err != nil {
				t.Fatalf("PathUnescape(%q) error = %v", u.Opaque, err)
			}
			if name != tt.fileName {
				t.Errorf("display name = %q, want %q", name, tt.fileName)
			}
		})
	}
}

func TestParseContentURI_Rejects(t *testing.T) {
	for _, uri := range []string{"file:main.go?ref=a&path=b", "git-commit:main.go?ref=abc", "git-commit:main.go"} {
		if _, _, err := ParseContentURI(uri); !errors.IsCode(err, errors.InvalidArgument) {
			t.Errorf("ParseContentURI(%q) error = %v, want INVALID_ARGUMENT", uri, err)
		}
	}
}

func TestContentProvider_UnknownIsEmpty(t *testing.T) {
	p := newProvider(t, 0)
	uri := "git-commit:x?ref=a&path=x"

	if got := p.Provide(uri); got != "" {
		t.Errorf("Provide() = %q, want empty", got)
	}
	if p.Has(uri) {
		t.Error("Has() = true for an unknown identifier")
	}
}

func TestContentProvider_SetAndReplace(t *testing.T) {
	p := newProvider(t, 0)
	uri := ContentURI("f.go", "abc", "f.go")

	p.SetContent(uri, "one")
	if got := p.Provide(uri); got != "one" {
		t.Errorf("Provide() = %q, want %q", got, "one")
	}
	p.SetContent(uri, "two")
	if got := p.Provide(uri); got != "two" {
		t.Errorf("Provide() after replace = %q, want %q", got, "two")
	}
}

func TestContentProvider_LargeBodiesCompressed(t *testing.T) {
	p := newProvider(t, 16)
	uri := ContentURI("big.txt", "abc", "big.txt")
	body := strings.Repeat("the same line again\n", 500)

	p.SetContent(uri, body)

	p.mu.RLock()
	stored := p.entries[uri]
	p.mu.RUnlock()
	if !stored.compressed {
		t.Error("body above threshold should be stored compressed")
	}
	if len(stored.data) >= len(body) {
		t.Errorf("stored %d bytes for a %d byte body", len(stored.data), len(body))
	}
	if got := p.Provide(uri); got != body {
		t.Error("Provide() did not return the original body")
	}
}

func TestContentProvider_LazyFetch(t *testing.T) {
	fetcher := &mapFetcher{content: map[string]string{"abc:pkg/f.go": "hello\n"}}
	p := newProvider(t, 0).WithFetcher(fetcher, "/repo")
	uri := ContentURI("f.go", "abc", "pkg/f.go")
	ctx := context.Background()

	if got := p.Provide(uri); got != "" {
		t.Errorf("Provide() = %q, want empty before a fetch", got)
	}
	for i := 0; i < 2; i++ {
		if got := p.ProvideContext(ctx, uri); got != "hello\n" {
			t.Errorf("ProvideContext() = %q, want %q", got, "hello\n")
		}
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}

	if got := p.ProvideContext(ctx, ContentURI("f.go", "abc~1", "pkg/f.go")); got != "" {
		t.Errorf("ProvideContext(missing) = %q, want empty", got)
	}
	if got := p.ProvideContext(ctx, "not-a-uri"); got != "" {
		t.Errorf("ProvideContext(malformed) = %q, want empty", got)
	}
}

func TestContentProvider_CloseTwice(t *testing.T) {
	p, err := NewContentProvider(0, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewContentProvider() error = %v", err)
	}

	// Should not panic
	p.Close()
	p.Close()
}

func TestDisplayRef(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{newHash + "~1", "11111111~1"},
		{newHash, "11111111"},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		if got := displayRef(tt.ref); got != tt.want {
			t.Errorf("displayRef(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
