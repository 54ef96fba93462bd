package drilldown

import (
	"fmt"

	"lineowner/internal/backends/git"
)

const (
	ownerMarker  = "👑"
	commitMarker = "📝"
	prMarker     = "🔀"

	// HistoryTitle and PullRequestsTitle head the two pickers.
	HistoryTitle      = "🔍 Line History"
	PullRequestsTitle = "🔍 Pull Requests"

	NoHistoryMessage      = "No git history found for this line"
	NoPullRequestsMessage = "No pull requests found for this line"
)

// Item is one selectable row of a picker. Exactly one of Commit and
// PullRequest is set.
type Item struct {
	Label       string                 `json:"label" yaml:"label"`
	Description string                 `json:"description" yaml:"description"`
	Detail      string                 `json:"detail" yaml:"detail"`
	Commit      *git.CommitRecord      `json:"commit,omitempty" yaml:"commit,omitempty"`
	PullRequest *git.PullRequestRecord `json:"pullRequest,omitempty" yaml:"pullRequest,omitempty"`
}

// HistoryItems lists commits newest first. The oldest commit, the one that
// introduced the line, carries the owner marker.
func HistoryItems(history []git.CommitRecord) []Item {
	items := make([]Item, len(history))
	for i := range history {
		commit := history[i]
		marker := commitMarker
		if i == len(history)-1 {
			marker = ownerMarker
		}
		items[i] = Item{
			Label:       marker + " " + commit.Author,
			Description: commit.ShortHash + " • " + commit.RelativeDate,
			Detail:      commit.Message,
			Commit:      &commit,
		}
	}
	return items
}

// PullRequestItems lists pull requests in correlation order.
func PullRequestItems(prs []git.PullRequestRecord) []Item {
	items := make([]Item, len(prs))
	for i := range prs {
		pr := prs[i]
		items[i] = Item{
			Label:       prMarker + " PR #" + pr.Number,
			Description: pr.Author + " • " + pr.MergedDate,
			Detail:      pr.Title,
			PullRequest: &pr,
		}
	}
	return items
}

// HistoryPlaceholder is the picker prompt for the commit list. displayLine
// is one-based.
func HistoryPlaceholder(count, displayLine int) string {
	return fmt.Sprintf("%d commit(s) affected line %d", count, displayLine)
}

// PullRequestsPlaceholder is the picker prompt for the pull request list.
func PullRequestsPlaceholder(count, displayLine int) string {
	return fmt.Sprintf("%d pull request(s) affected line %d", count, displayLine)
}
