package drilldown

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultDiffContext is the number of unchanged lines around each hunk.
const DefaultDiffContext = 3

// DiffRequest asks the presentation layer to show Before and After side by
// side. Both are content identifiers registered with a ContentProvider.
type DiffRequest struct {
	ID     string `json:"id" yaml:"id"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
	Title  string `json:"title" yaml:"title"`
}

// NewDiffRequest stamps a request with a fresh ID.
func NewDiffRequest(before, after, title string) DiffRequest {
	return DiffRequest{
		ID:     uuid.NewString(),
		Before: before,
		After:  after,
		Title:  title,
	}
}

// DiffTitle renders "{fileName} ({shortHash}) - {message}".
func DiffTitle(fileName, shortHash, message string) string {
	return fileName + " (" + shortHash + ") - " + message
}

// RenderUnified produces a unified diff of the two sides of req, reading
// both through provider.
func RenderUnified(ctx context.Context, provider *ContentProvider, req DiffRequest, contextLines int) (string, error) {
	if contextLines <= 0 {
		contextLines = DefaultDiffContext
	}

	before := provider.ProvideContext(ctx, req.Before)
	after := provider.ProvideContext(ctx, req.After)

	u := difflib.UnifiedDiff{
		A:        splitLinesKeepNL(before),
		B:        splitLinesKeepNL(after),
		FromFile: sideName(req.Before),
		ToFile:   sideName(req.After),
		Context:  contextLines,
	}
	return difflib.GetUnifiedDiffString(u)
}

func sideName(uri string) string {
	ref, relPath, err := ParseContentURI(uri)
	if err != nil {
		return uri
	}
	return relPath + " (" + displayRef(ref) + ")"
}

// splitLinesKeepNL splits s into lines, keeping trailing newlines so the
// diff reproduces the input byte for byte.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
