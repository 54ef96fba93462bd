package main

import (
	"lineowner/internal/annotations"
	"lineowner/internal/backends/git"
	"lineowner/internal/drilldown"
	"lineowner/internal/provenance"
)

// LineView is one annotated line with a one-based line number.
type LineView struct {
	Line     int                   `json:"line" yaml:"line"`
	Segments []annotations.Segment `json:"segments" yaml:"segments"`
}

// newLineViews converts an annotation set to one-based views.
func newLineViews(set annotations.AnnotationSet) []LineView {
	views := make([]LineView, len(set.Lines))
	for i, la := range set.Lines {
		views[i] = LineView{Line: la.Line + 1, Segments: la.Segments}
	}
	return views
}

// ItemView is one picker row with its one-based position.
type ItemView struct {
	Index          int  `json:"index" yaml:"index"`
	Selected       bool `json:"selected,omitempty" yaml:"selected,omitempty"`
	drilldown.Item `yaml:",inline"`
}

func newItemViews(items []drilldown.Item, selected int) []ItemView {
	views := make([]ItemView, len(items))
	for i, it := range items {
		views[i] = ItemView{Index: i + 1, Selected: i == selected, Item: it}
	}
	return views
}

// AnnotateResponseCLI is the response for annotate and each watch render.
type AnnotateResponseCLI struct {
	FilePath    string            `json:"filePath" yaml:"filePath"`
	Lines       []LineView        `json:"lines" yaml:"lines"`
	Fingerprint uint64            `json:"fingerprint" yaml:"fingerprint"`
	Stats       *provenance.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Notices     []string          `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// InvestigateResponseCLI is the response for investigate.
type InvestigateResponseCLI struct {
	FilePath   string    `json:"filePath" yaml:"filePath"`
	Line       int       `json:"line" yaml:"line"`
	Tracked    bool      `json:"tracked" yaml:"tracked"`
	Annotation *LineView `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Notices    []string  `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// HistoryResponseCLI is the response for history.
type HistoryResponseCLI struct {
	FilePath    string                 `json:"filePath" yaml:"filePath"`
	Line        int                    `json:"line" yaml:"line"`
	Title       string                 `json:"title" yaml:"title"`
	Placeholder string                 `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Items       []ItemView             `json:"items" yaml:"items"`
	Diff        *drilldown.DiffRequest `json:"diff,omitempty" yaml:"diff,omitempty"`
	UnifiedDiff string                 `json:"unifiedDiff,omitempty" yaml:"unifiedDiff,omitempty"`
	Notices     []string               `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// PRsResponseCLI is the response for prs.
type PRsResponseCLI struct {
	FilePath    string                 `json:"filePath" yaml:"filePath"`
	Line        int                    `json:"line" yaml:"line"`
	Title       string                 `json:"title" yaml:"title"`
	Placeholder string                 `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Items       []ItemView             `json:"items" yaml:"items"`
	Selected    *git.PullRequestRecord `json:"selected,omitempty" yaml:"selected,omitempty"`
	Opened      bool                   `json:"opened" yaml:"opened"`
	Notices     []string               `json:"notices,omitempty" yaml:"notices,omitempty"`
}

// ShowResponseCLI is the response for show.
type ShowResponseCLI struct {
	URI     string `json:"uri" yaml:"uri"`
	Ref     string `json:"ref" yaml:"ref"`
	Path    string `json:"path" yaml:"path"`
	Content string `json:"content" yaml:"content"`
}

// VersionResponseCLI is the response for version.
type VersionResponseCLI struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
}
