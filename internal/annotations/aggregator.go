package annotations

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"lineowner/internal/backends/git"
	"lineowner/internal/provenance"
)

// DefaultMaxConcurrentLines bounds how many lines resolve at once.
const DefaultMaxConcurrentLines = 4

// Source supplies memoized provenance. *provenance.Cache satisfies it.
type Source interface {
	GetOrResolveHistory(ctx context.Context, key provenance.Key, workDir string) ([]git.CommitRecord, error)
	GetOrResolvePRs(ctx context.Context, key provenance.Key, workDir string) ([]git.PullRequestRecord, error)
}

// Aggregator builds annotation sets from a Source.
type Aggregator struct {
	source        Source
	logger        *slog.Logger
	maxConcurrent int
}

// NewAggregator creates an aggregator resolving at most maxConcurrent lines
// in parallel. Non-positive values use DefaultMaxConcurrentLines.
func NewAggregator(source Source, logger *slog.Logger, maxConcurrent int) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLines
	}
	return &Aggregator{
		source:        source,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// BuildAnnotations resolves every line independently. A line whose lookup
// fails, or that has neither history nor pull requests, is left out; the
// rest of the set is unaffected.
func (a *Aggregator) BuildAnnotations(ctx context.Context, filePath string, lines []int, workDir string) AnnotationSet {
	passID := uuid.NewString()
	unique := uniqueSorted(lines)

	a.logger.Debug("Building annotations",
		"pass", passID,
		"filePath", filePath,
		"lines", len(unique),
	)

	results := make([]*LineAnnotation, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)
	for i, line := range unique {
		g.Go(func() error {
			annotation, err := a.annotateLine(gctx, filePath, line, workDir)
			if err != nil {
				a.logger.Debug("Dropping annotation for line",
					"pass", passID,
					"filePath", filePath,
					"line", line,
					"error", err.Error(),
				)
				return nil
			}
			results[i] = annotation
			return nil
		})
	}
	_ = g.Wait()

	set := AnnotationSet{FilePath: filePath, Lines: make([]LineAnnotation, 0, len(unique))}
	for _, r := range results {
		if r != nil {
			set.Lines = append(set.Lines, *r)
		}
	}
	set.Fingerprint = Fingerprint(set)

	a.logger.Debug("Annotations built",
		"pass", passID,
		"filePath", filePath,
		"annotated", len(set.Lines),
	)
	return set
}

func (a *Aggregator) annotateLine(ctx context.Context, filePath string, line int, workDir string) (*LineAnnotation, error) {
	key := provenance.NewKey(filePath, line)

	history, err := a.source.GetOrResolveHistory(ctx, key, workDir)
	if err != nil {
		return nil, err
	}
	prs, err := a.source.GetOrResolvePRs(ctx, key, workDir)
	if err != nil {
		return nil, err
	}

	segments := BuildSegments(history, prs, line, filePath, workDir)
	if len(segments) == 0 {
		return nil, nil
	}
	return &LineAnnotation{Line: line, Segments: segments}, nil
}

// BuildSegments renders the segment group for one line. history is newest
// first. It returns nil when both history and prs are empty.
func BuildSegments(history []git.CommitRecord, prs []git.PullRequestRecord, line int, filePath, workDir string) []Segment {
	var segments []Segment

	if len(history) > 0 {
		newest := history[0]
		oldest := history[len(history)-1]

		segments = append(segments,
			Segment{
				Title: fmt.Sprintf("%s → %s", oldest.Author, newest.Author),
				Tooltip: fmt.Sprintf("First: %s (%s)\nLast: %s (%s): %s",
					oldest.Author, oldest.RelativeDate,
					newest.Author, newest.RelativeDate, newest.Message),
			},
			Segment{
				Title: Pluralize(DistinctAuthors(history), "author"),
			},
			Segment{
				Title:   Pluralize(len(history), "commit"),
				Command: &Command{ID: CommandShowHistory, Args: []any{line, filePath, workDir}},
			},
		)
	}

	if len(prs) > 0 {
		segments = append(segments, Segment{
			Title:   Pluralize(len(prs), "PR"),
			Command: &Command{ID: CommandShowPRs, Args: []any{line, filePath, workDir}},
		})
	}

	return segments
}

// DistinctAuthors counts unique author names.
func DistinctAuthors(history []git.CommitRecord) int {
	seen := make(map[string]struct{}, len(history))
	for _, c := range history {
		seen[c.Author] = struct{}{}
	}
	return len(seen)
}

// Pluralize renders "1 noun" or "N nouns".
func Pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// Fingerprint hashes the rendered content of set so unchanged passes can be
// detected without comparing segment by segment.
func Fingerprint(set AnnotationSet) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(set.FilePath)
	for _, la := range set.Lines {
		_, _ = d.WriteString("\x00" + strconv.Itoa(la.Line))
		for _, s := range la.Segments {
			_, _ = d.WriteString("\x01" + s.Title + "\x02" + s.Tooltip)
			if s.Command != nil {
				_, _ = d.WriteString("\x03" + s.Command.ID)
			}
		}
	}
	return d.Sum64()
}

func uniqueSorted(lines []int) []int {
	out := slices.Clone(lines)
	slices.Sort(out)
	return slices.Compact(out)
}
