package git

import (
	"context"
	"strings"

	"lineowner/internal/errors"
)

const (
	githubSSHPrefix   = "git@github.com:"
	githubHTTPSPrefix = "https://github.com/"
	archiveSuffix     = ".git"
)

// RemoteURLArgs builds the argv for reading the origin remote.
func RemoteURLArgs() []string {
	return []string{"config", "--get", "remote.origin.url"}
}

// NormalizeRemoteURL rewrites an SSH-style GitHub remote to its HTTPS form
// and strips a trailing ".git".
//
//	git@github.com:org/repo.git  ->  https://github.com/org/repo
func NormalizeRemoteURL(raw string) string {
	url := strings.TrimSpace(raw)
	if strings.HasPrefix(url, githubSSHPrefix) {
		url = githubHTTPSPrefix + strings.TrimPrefix(url, githubSSHPrefix)
	}
	return strings.TrimSuffix(url, archiveSuffix)
}

// RemoteURL returns the normalized origin URL for the repository at workDir.
func (g *GitAdapter) RemoteURL(ctx context.Context, workDir string) (string, error) {
	output, err := g.runner.Run(ctx, workDir, RemoteURLArgs()...)
	if err != nil {
		return "", err
	}

	url := NormalizeRemoteURL(output)
	if url == "" {
		return "", errors.NewOwnerError(
			errors.VcsCommandFailed,
			"Remote origin has no URL",
			nil,
			nil,
		)
	}
	return url, nil
}
