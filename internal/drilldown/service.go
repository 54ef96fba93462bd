// Package drilldown implements the detail views behind actionable
// annotation segments: the commit list with per-commit diffs, the pull
// request list, and the investigate action that starts tracking a line.
package drilldown

import (
	"context"
	"fmt"
	"log/slog"

	"lineowner/internal/backends/git"
	"lineowner/internal/errors"
	"lineowner/internal/paths"
)

// Backend answers detail-view queries uncached. *git.GitAdapter satisfies it.
type Backend interface {
	LineHistory(ctx context.Context, filePath string, line int, workDir string) ([]git.CommitRecord, error)
	CorrelatePullRequests(ctx context.Context, hashes []string, workDir string) []git.PullRequestRecord
	ContentFetcher
}

// Picker lets the user choose one item. ok is false when nothing was chosen.
type Picker interface {
	Pick(ctx context.Context, title, placeholder string, items []Item) (index int, ok bool, err error)
}

// Notifier shows short informational messages.
type Notifier interface {
	Info(message string)
}

// LineTracker starts annotating a line. *annotations.Tracker satisfies it.
type LineTracker interface {
	Track(filePath string, line int)
}

// Dependencies wires a Service.
type Dependencies struct {
	Backend  Backend
	Content  *ContentProvider
	Tracker  LineTracker
	Picker   Picker
	Notifier Notifier
	Opener   Opener
	Logger   *slog.Logger
}

// Service runs the detail-view flows.
type Service struct {
	backend  Backend
	content  *ContentProvider
	tracker  LineTracker
	picker   Picker
	notifier Notifier
	opener   Opener
	logger   *slog.Logger
}

// NewService validates deps and creates a Service. Tracker and Opener may be
// nil when the caller never investigates or opens pull requests.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.NewOwnerError(errors.InternalError, "Logger is required for drilldown", nil, nil)
	case deps.Backend == nil:
		return nil, errors.NewOwnerError(errors.InternalError, "Backend is required for drilldown", nil, nil)
	case deps.Content == nil:
		return nil, errors.NewOwnerError(errors.InternalError, "Content provider is required for drilldown", nil, nil)
	case deps.Picker == nil || deps.Notifier == nil:
		return nil, errors.NewOwnerError(errors.InternalError, "Picker and notifier are required for drilldown", nil, nil)
	}
	return &Service{
		backend:  deps.Backend,
		content:  deps.Content,
		tracker:  deps.Tracker,
		picker:   deps.Picker,
		notifier: deps.Notifier,
		opener:   deps.Opener,
		logger:   deps.Logger,
	}, nil
}

// Investigate starts tracking line (zero-based) of filePath if git has any
// history for it. It reports whether the line is now tracked.
func (s *Service) Investigate(ctx context.Context, filePath string, line int, workDir string) (bool, error) {
	history, err := s.backend.LineHistory(ctx, filePath, line, workDir)
	if err != nil {
		return false, err
	}
	if len(history) == 0 {
		s.notifier.Info(NoHistoryMessage)
		return false, nil
	}
	if s.tracker == nil {
		return false, errors.NewOwnerError(errors.InternalError, "No tracker configured", nil, nil)
	}

	s.tracker.Track(filePath, line)
	s.logger.Info("Line tracked",
		"filePath", filePath,
		"line", line,
		"commits", len(history),
	)
	s.notifier.Info(fmt.Sprintf("Annotation added for line %d. Select the commit count to see history.", line+1))
	return true, nil
}

// ShowHistory lists the commits that touched the line and, once one is
// picked, prepares its before/after diff. A nil request means nothing was
// picked or there was nothing to pick from.
func (s *Service) ShowHistory(ctx context.Context, line int, filePath, workDir string) (*DiffRequest, error) {
	history, err := s.backend.LineHistory(ctx, filePath, line, workDir)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		s.notifier.Info(NoHistoryMessage)
		return nil, nil
	}

	items := HistoryItems(history)
	index, ok, err := s.picker.Pick(ctx, HistoryTitle, HistoryPlaceholder(len(items), line+1), items)
	if err != nil || !ok {
		return nil, err
	}
	if index < 0 || index >= len(history) {
		return nil, selectionError(index, len(history))
	}

	req, err := s.ShowCommitChanges(ctx, history[index], filePath, workDir)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ShowCommitChanges reads filePath at commit and at its parent, registers
// both with the content provider and returns the diff request. Unreadable
// sides, such as the parent of a root commit, are empty.
func (s *Service) ShowCommitChanges(ctx context.Context, commit git.CommitRecord, filePath, workDir string) (DiffRequest, error) {
	relPath, err := paths.RepoRelative(filePath, workDir)
	if err != nil {
		return DiffRequest{}, errors.NewOwnerError(errors.InvalidArgument, "File path cannot be made relative to the working directory", err, nil)
	}
	fileName := paths.DisplayName(relPath)

	afterRef := commit.FullHash
	beforeRef := git.ParentRef(commit.FullHash)

	after, err := s.backend.FileContentAt(ctx, afterRef, relPath, workDir)
	if err != nil {
		after = ""
	}
	before, err := s.backend.FileContentAt(ctx, beforeRef, relPath, workDir)
	if err != nil {
		before = ""
	}

	beforeURI := ContentURI(fileName, beforeRef, relPath)
	afterURI := ContentURI(fileName, afterRef, relPath)
	s.content.SetContent(beforeURI, before)
	s.content.SetContent(afterURI, after)

	req := NewDiffRequest(beforeURI, afterURI, DiffTitle(fileName, commit.ShortHash, commit.Message))
	s.logger.Debug("Diff prepared",
		"id", req.ID,
		"commit", commit.ShortHash,
		"path", relPath,
	)
	return req, nil
}

// ShowPRs lists the pull requests for the line and opens the picked one.
// A picked pull request without a URL is returned without opening anything.
func (s *Service) ShowPRs(ctx context.Context, line int, filePath, workDir string) (*git.PullRequestRecord, error) {
	history, err := s.backend.LineHistory(ctx, filePath, line, workDir)
	if err != nil {
		return nil, err
	}

	var prs []git.PullRequestRecord
	if len(history) > 0 {
		hashes := make([]string, len(history))
		for i, c := range history {
			hashes[i] = c.FullHash
		}
		prs = s.backend.CorrelatePullRequests(ctx, hashes, workDir)
	}
	if len(prs) == 0 {
		s.notifier.Info(NoPullRequestsMessage)
		return nil, nil
	}

	items := PullRequestItems(prs)
	index, ok, err := s.picker.Pick(ctx, PullRequestsTitle, PullRequestsPlaceholder(len(items), line+1), items)
	if err != nil || !ok {
		return nil, err
	}
	if index < 0 || index >= len(prs) {
		return nil, selectionError(index, len(prs))
	}

	pr := prs[index]
	if pr.URL == "" || s.opener == nil {
		return &pr, nil
	}
	if err := s.opener.Open(pr.URL); err != nil {
		return &pr, errors.NewOwnerError(errors.InternalError, "Failed to open pull request", err, nil).
			WithDetails(map[string]interface{}{"url": pr.URL})
	}
	return &pr, nil
}

func selectionError(index, count int) error {
	return errors.NewOwnerError(errors.InvalidArgument, "Selection out of range", nil, nil).
		WithDetails(map[string]interface{}{"index": index, "count": count})
}
