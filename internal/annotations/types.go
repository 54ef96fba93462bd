// Package annotations turns per-line provenance into inline annotation
// segments for the lines a user has chosen to track.
package annotations

const (
	// CommandShowHistory opens the commit list for a line.
	CommandShowHistory = "lineowner.show-history"
	// CommandShowPRs opens the pull request list for a line.
	CommandShowPRs = "lineowner.show-prs"
)

// Command is a follow-up action attached to a segment. Args are
// [line, filePath, workDir] with a zero-based line.
type Command struct {
	ID   string `json:"id" yaml:"id"`
	Args []any  `json:"args" yaml:"args"`
}

// Segment is one piece of an annotation. A nil Command marks it
// informational.
type Segment struct {
	Title   string   `json:"title" yaml:"title"`
	Tooltip string   `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Command *Command `json:"command,omitempty" yaml:"command,omitempty"`
}

// Actionable reports whether the segment carries a command.
func (s Segment) Actionable() bool {
	return s.Command != nil
}

// LineAnnotation is the ordered segment group for one zero-based line.
type LineAnnotation struct {
	Line     int       `json:"line" yaml:"line"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// AnnotationSet holds every annotation produced for a file in one pass,
// ordered by line.
type AnnotationSet struct {
	FilePath    string           `json:"filePath" yaml:"filePath"`
	Lines       []LineAnnotation `json:"lines" yaml:"lines"`
	Fingerprint uint64           `json:"fingerprint" yaml:"fingerprint"`
}
