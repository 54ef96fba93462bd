package git

import (
	"context"
	"reflect"
	"testing"

	"lineowner/internal/errors"
	"lineowner/internal/slogutil"
	"lineowner/internal/testutil"
)

func TestFileContentArgs(t *testing.T) {
	want := []string{"show", "abc~1:dir/f.go"}
	if got := FileContentArgs(ParentRef("abc"), `dir\f.go`); !reflect.DeepEqual(got, want) {
		t.Errorf("FileContentArgs() = %v, want %v", got, want)
	}
}

func TestFileContentAt(t *testing.T) {
	repo := testutil.NewRepo(t)
	root := repo.CommitAs("alice", "dir/f.txt", "first\n", "initial")
	second := repo.CommitAs("bob", "dir/f.txt", "second\n", "edit")

	adapter, err := NewGitAdapter(nil, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	ctx := context.Background()

	after, err := adapter.FileContentAt(ctx, second, "dir/f.txt", repo.Root)
	if err != nil {
		t.Fatalf("FileContentAt(second) error = %v", err)
	}
	if after != "second\n" {
		t.Errorf("FileContentAt(second) = %q, want %q", after, "second\n")
	}

	before, err := adapter.FileContentAt(ctx, ParentRef(second), "dir/f.txt", repo.Root)
	if err != nil {
		t.Fatalf("FileContentAt(second~1) error = %v", err)
	}
	if before != "first\n" {
		t.Errorf("FileContentAt(second~1) = %q, want %q", before, "first\n")
	}

	missing, err := adapter.FileContentAt(ctx, ParentRef(root), "dir/f.txt", repo.Root)
	if missing != "" {
		t.Errorf("FileContentAt(root~1) = %q, want empty", missing)
	}
	if !errors.IsCode(err, errors.ContentUnavailable) {
		t.Errorf("FileContentAt(root~1) error = %v, want CONTENT_UNAVAILABLE", err)
	}
}

func TestResolveRepoRoot(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.WriteFile("sub/keep.txt", "")

	adapter, err := NewGitAdapter(nil, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}

	root, err := adapter.ResolveRepoRoot(context.Background(), repo.Root+"/sub")
	if err != nil {
		t.Fatalf("ResolveRepoRoot() error = %v", err)
	}
	if root != repo.Root {
		t.Errorf("ResolveRepoRoot() = %q, want %q", root, repo.Root)
	}
}

func TestNewGitAdapter_RequiresLogger(t *testing.T) {
	if _, err := NewGitAdapter(nil, nil); !errors.IsCode(err, errors.InternalError) {
		t.Errorf("NewGitAdapter(nil logger) error = %v, want INTERNAL_ERROR", err)
	}
	if _, err := NewGitAdapterWithRunner(nil, slogutil.NewDiscardLogger()); !errors.IsCode(err, errors.InternalError) {
		t.Errorf("NewGitAdapterWithRunner(nil runner) error = %v, want INTERNAL_ERROR", err)
	}
}
