package git

import (
	"context"
	"regexp"
	"strings"
)

// commitMetadataFormat is subject|author|relative date for one commit.
const commitMetadataFormat = "%s|%an|%ar"

// PullRequestRecord is a pull request correlated from a commit message.
// Title carries the full commit subject; there is no separate PR title.
type PullRequestRecord struct {
	Number     string `json:"number" yaml:"number"`
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
	Author     string `json:"author" yaml:"author"`
	MergedDate string `json:"mergedDate" yaml:"mergedDate"`
}

// referenceMatcher extracts a PR number from a commit subject.
type referenceMatcher struct {
	name    string
	pattern *regexp.Regexp
}

// referenceMatchers are tried in order; the first that matches wins.
var referenceMatchers = []referenceMatcher{
	{name: "merge", pattern: regexp.MustCompile(`Merge pull request #(\d+)`)},
	{name: "parenthesized", pattern: regexp.MustCompile(`\(#(\d+)\)`)},
	{name: "bare", pattern: regexp.MustCompile(`#(\d+)`)},
}

// MatchPullRequestNumber returns the PR number referenced by subject and the
// name of the matcher that found it. ok is false when nothing matched.
func MatchPullRequestNumber(subject string) (number string, matcher string, ok bool) {
	for _, m := range referenceMatchers {
		if groups := m.pattern.FindStringSubmatch(subject); groups != nil {
			return groups[1], m.name, true
		}
	}
	return "", "", false
}

// CommitMetadataArgs builds the argv for reading one commit's metadata.
func CommitMetadataArgs(hash string) []string {
	return []string{"show", "-s", "--format=" + commitMetadataFormat, hash}
}

type commitMetadata struct {
	Subject string
	Author  string
	Date    string
}

// parseCommitMetadata splits subject|author|date. The subject may itself
// contain separators, so author and date are taken from the right.
func parseCommitMetadata(raw string) (commitMetadata, bool) {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	dateSep := strings.LastIndex(line, fieldSeparator)
	if dateSep < 0 {
		return commitMetadata{}, false
	}
	authorSep := strings.LastIndex(line[:dateSep], fieldSeparator)
	if authorSep < 0 {
		return commitMetadata{}, false
	}

	return commitMetadata{
		Subject: line[:authorSep],
		Author:  line[authorSep+1 : dateSep],
		Date:    line[dateSep+1:],
	}, true
}

// CorrelatePullRequests finds the pull requests referenced by the given
// commits. Commits are examined one at a time; a commit whose metadata cannot
// be read or whose subject references no PR is skipped. The remote URL is
// looked up at most once per call. Results are unique by number: a later
// commit's metadata replaces an earlier one for the same number, while the
// position of the first occurrence is kept.
func (g *GitAdapter) CorrelatePullRequests(ctx context.Context, hashes []string, workDir string) []PullRequestRecord {
	byNumber := make(map[string]PullRequestRecord)
	order := make([]string, 0)

	remote := &remoteLookup{adapter: g, workDir: workDir}

	for _, hash := range hashes {
		if ctx.Err() != nil {
			break
		}

		output, err := g.runner.Run(ctx, workDir, CommitMetadataArgs(hash)...)
		if err != nil {
			g.logger.Debug("Skipping commit, metadata unavailable",
				"hash", hash,
				"error", err.Error(),
			)
			continue
		}

		meta, ok := parseCommitMetadata(output)
		if !ok {
			continue
		}

		number, matcher, ok := MatchPullRequestNumber(meta.Subject)
		if !ok {
			continue
		}

		url := ""
		if base := remote.get(ctx); base != "" {
			url = base + "/pull/" + number
		}

		if _, seen := byNumber[number]; !seen {
			order = append(order, number)
		}
		byNumber[number] = PullRequestRecord{
			Number:     number,
			Title:      meta.Subject,
			URL:        url,
			Author:     meta.Author,
			MergedDate: meta.Date,
		}

		g.logger.Debug("Correlated commit with pull request",
			"hash", hash,
			"number", number,
			"matcher", matcher,
		)
	}

	prs := make([]PullRequestRecord, 0, len(order))
	for _, number := range order {
		prs = append(prs, byNumber[number])
	}
	return prs
}

// remoteLookup resolves the origin URL lazily and remembers the outcome,
// including failure, for the rest of one correlation.
type remoteLookup struct {
	adapter  *GitAdapter
	workDir  string
	resolved bool
	url      string
}

func (r *remoteLookup) get(ctx context.Context) string {
	if r.resolved {
		return r.url
	}
	r.resolved = true

	url, err := r.adapter.RemoteURL(ctx, r.workDir)
	if err != nil {
		r.adapter.logger.Debug("Remote URL unavailable, PR links will be empty",
			"error", err.Error(),
		)
		return ""
	}
	r.url = url
	return url
}
