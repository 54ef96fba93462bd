// Package paths converts between on-disk file paths and the repo-relative,
// forward-slash paths git expects in pathspecs and <rev>:<path> arguments.
package paths

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := evalIfExists(absolutePath)
	if err != nil {
		return "", err
	}
	rootResolved, err := evalIfExists(repoRoot)
	if err != nil {
		return "", err
	}

	relativePath, err := filepath.Rel(rootResolved, resolved)
	if err != nil {
		return "", err
	}

	return NormalizePath(relativePath), nil
}

// RepoRelative accepts either an absolute path or one already relative to
// repoRoot and returns the canonical repo-relative form.
func RepoRelative(filePath string, repoRoot string) (string, error) {
	if filepath.IsAbs(filePath) {
		return CanonicalizePath(filePath, repoRoot)
	}
	return NormalizePath(filepath.Clean(filePath)), nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(p string, repoRoot string) bool {
	canonical, err := RepoRelative(p, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath converts backslashes to forward slashes regardless of the
// host OS, since git pathspecs never use backslash separators.
func NormalizePath(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), "\\", "/")
}

// DisplayName returns the final element of a repo-relative path.
func DisplayName(canonicalPath string) string {
	return path.Base(NormalizePath(canonicalPath))
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	parts := strings.Split(NormalizePath(canonicalPath), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// evalIfExists resolves symlinks in the longest existing prefix of p, so a
// deleted file still canonicalizes against a symlinked root.
func evalIfExists(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err == nil {
		return resolved, nil
	}
	if !os.IsNotExist(err) {
		return "", err
	}
	parent := filepath.Dir(p)
	if parent == p {
		return p, nil
	}
	resolvedParent, err := evalIfExists(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(p)), nil
}
