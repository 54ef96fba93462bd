// Package testutil provides temporary git repositories and a scripted git
// runner for package tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Repo is a throwaway git repository rooted in a test temp dir.
type Repo struct {
	t    *testing.T
	Root string
}

// RequireGit skips the test when no git binary is on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// NewRepo initializes an empty repository. The test is skipped when git is
// not installed.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	RequireGit(t)

	root := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	r := &Repo{t: t, Root: root}
	r.Git("init", "-q")
	r.Git("config", "user.email", "test@test.com")
	r.Git("config", "user.name", "Test")
	r.Git("config", "commit.gpgsign", "false")
	return r
}

// Git runs git in the repository and returns trimmed combined output.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Root
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
	return strings.TrimSpace(string(output))
}

// WriteFile writes content to rel inside the repository.
func (r *Repo) WriteFile(rel, content string) string {
	r.t.Helper()
	full := filepath.Join(r.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatal(err)
	}
	return full
}

// CommitAs writes content to rel and commits it with the given author name.
// It returns the full hash of the new commit.
func (r *Repo) CommitAs(author, rel, content, message string) string {
	r.t.Helper()
	r.WriteFile(rel, content)
	r.Git("add", filepath.FromSlash(rel))
	r.Git("-c", "user.name="+author, "-c", "user.email="+author+"@example.com",
		"commit", "-q", "-m", message)
	return r.Git("rev-parse", "HEAD")
}

// SetOrigin configures the origin remote URL.
func (r *Repo) SetOrigin(url string) {
	r.t.Helper()
	r.Git("remote", "add", "origin", url)
}

// Lines builds file content of n lines where line i (one-based) is
// "line i", with overrides applied by one-based line number.
func Lines(n int, overrides map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if text, ok := overrides[i]; ok {
			b.WriteString(text)
		} else {
			b.WriteString("line ")
			b.WriteString(strconv.Itoa(i))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
