package git

import (
	"context"
	"testing"

	"lineowner/internal/errors"
	"lineowner/internal/testutil"
)

func TestNormalizeRemoteURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"git@github.com:org/repo.git", "https://github.com/org/repo"},
		{"git@github.com:org/repo.git\n", "https://github.com/org/repo"},
		{"https://github.com/org/repo.git", "https://github.com/org/repo"},
		{"https://github.com/org/repo", "https://github.com/org/repo"},
		{"git@gitlab.com:org/repo.git", "git@gitlab.com:org/repo"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeRemoteURL(tt.in); got != tt.want {
				t.Errorf("NormalizeRemoteURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRemoteURL(t *testing.T) {
	runner := testutil.NewFakeRunner().On("git@github.com:org/repo.git\n", nil, RemoteURLArgs()...)
	adapter := newTestAdapter(t, runner)

	url, err := adapter.RemoteURL(context.Background(), "/repo")
	if err != nil {
		t.Fatalf("RemoteURL() error = %v", err)
	}
	if url != "https://github.com/org/repo" {
		t.Errorf("RemoteURL() = %q, want %q", url, "https://github.com/org/repo")
	}
}

func TestRemoteURL_Empty(t *testing.T) {
	adapter := newTestAdapter(t, testutil.NewFakeRunner())

	_, err := adapter.RemoteURL(context.Background(), "/repo")
	if !errors.IsCode(err, errors.VcsCommandFailed) {
		t.Errorf("RemoteURL() error = %v, want VCS_COMMAND_FAILED", err)
	}
}
