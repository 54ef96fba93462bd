package git

import (
	"context"

	"lineowner/internal/errors"
	"lineowner/internal/paths"
)

// ParentRef names the first parent of ref.
func ParentRef(ref string) string {
	return ref + "~1"
}

// FileContentArgs builds the argv for reading relPath as of ref.
func FileContentArgs(ref, relPath string) []string {
	return []string{"show", ref + ":" + paths.NormalizePath(relPath)}
}

// FileContentAt returns the full text of relPath at ref. Any failure,
// including a ref with no parent or a path absent at ref, is reported as
// CONTENT_UNAVAILABLE so callers can degrade to empty content.
func (g *GitAdapter) FileContentAt(ctx context.Context, ref, relPath, workDir string) (string, error) {
	output, err := g.runner.Run(ctx, workDir, FileContentArgs(ref, relPath)...)
	if err != nil {
		g.logger.Debug("File content unavailable",
			"ref", ref,
			"path", relPath,
			"error", err.Error(),
		)
		return "", errors.NewOwnerError(
			errors.ContentUnavailable,
			"File content unavailable at revision",
			err,
			nil,
		).WithDetails(map[string]interface{}{
			"ref":  ref,
			"path": relPath,
		})
	}
	return output, nil
}
