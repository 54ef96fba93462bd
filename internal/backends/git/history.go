package git

import (
	"context"
	"fmt"
	"strings"

	"lineowner/internal/errors"
	"lineowner/internal/paths"
)

const (
	// lineHistoryFormat is hash|author|email|date|subject; %ad is rendered
	// relative because of --date=relative.
	lineHistoryFormat = "%H|%an|%ae|%ad|%s"

	fieldSeparator = "|"

	shortHashLength = 8
)

// CommitRecord is one commit that touched the queried line.
type CommitRecord struct {
	ShortHash    string `json:"shortHash" yaml:"shortHash"`
	FullHash     string `json:"fullHash" yaml:"fullHash"`
	Author       string `json:"author" yaml:"author"`
	Email        string `json:"email" yaml:"email"`
	RelativeDate string `json:"relativeDate" yaml:"relativeDate"`
	Message      string `json:"message" yaml:"message"`
}

// LineHistoryArgs builds the argv for a single-line log query.
// line is one-based, as git expects.
func LineHistoryArgs(relPath string, line int) []string {
	return []string{
		"log",
		"-L", fmt.Sprintf("%d,%d:%s", line, line, relPath),
		"--pretty=format:" + lineHistoryFormat,
		"--date=relative",
	}
}

// ParseLineHistory converts raw line-log output into commit records, newest
// first, exactly in the order git emitted them.
//
// `git log -L` interleaves the patch for each commit with the formatted
// header line, so a line is only taken as a record when its first field is a
// full object id. Everything after the fourth separator is the message,
// including any further separators it contains; trailing whitespace is
// trimmed from it.
func ParseLineHistory(raw string) []CommitRecord {
	output := strings.TrimSpace(raw)
	if output == "" {
		return []CommitRecord{}
	}

	lines := strings.Split(output, "\n")
	records := make([]CommitRecord, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, fieldSeparator) {
			continue
		}

		parts := strings.SplitN(line, fieldSeparator, 5)
		if len(parts) < 5 || !isObjectID(parts[0]) {
			continue
		}

		hash := parts[0]
		records = append(records, CommitRecord{
			ShortHash:    shortHash(hash),
			FullHash:     hash,
			Author:       parts[1],
			Email:        parts[2],
			RelativeDate: parts[3],
			Message:      strings.TrimRight(parts[4], " \t\r\n"),
		})
	}

	return records
}

// LineHistory returns the commits that touched line (zero-based) of
// filePath, newest first. filePath may be absolute or relative to workDir.
func (g *GitAdapter) LineHistory(ctx context.Context, filePath string, line int, workDir string) ([]CommitRecord, error) {
	if filePath == "" {
		return nil, errors.NewOwnerError(
			errors.InvalidArgument,
			"File path is required",
			nil,
			nil,
		)
	}
	if line < 0 {
		return nil, errors.NewOwnerError(
			errors.InvalidArgument,
			"Line must not be negative",
			nil,
			nil,
		).WithDetails(map[string]interface{}{"line": line})
	}

	relPath, err := paths.RepoRelative(filePath, workDir)
	if err != nil {
		return nil, errors.NewOwnerError(
			errors.InvalidArgument,
			"File path cannot be made relative to the working directory",
			err,
			nil,
		)
	}

	g.logger.Debug("Getting line history",
		"filePath", relPath,
		"line", line,
	)

	output, err := g.runner.Run(ctx, workDir, LineHistoryArgs(relPath, line+1)...)
	if err != nil {
		return nil, err
	}

	history := ParseLineHistory(output)

	g.logger.Debug("Line history resolved",
		"filePath", relPath,
		"line", line,
		"commits", len(history),
	)

	return history, nil
}

// shortHash abbreviates an id already accepted by isObjectID, which
// guarantees it is longer than shortHashLength.
func shortHash(hash string) string {
	return hash[:shortHashLength]
}

// isObjectID accepts SHA-1 and SHA-256 object ids.
func isObjectID(s string) bool {
	if len(s) != 40 && len(s) != 64 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
