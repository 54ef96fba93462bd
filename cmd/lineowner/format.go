package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"lineowner/internal/annotations"
	"lineowner/internal/provenance"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatHuman, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	lineNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ownerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	actionStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	noticeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	separator       = infoStyle.Render(" · ")
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnnotateResponseCLI:
		return formatAnnotateHuman(v), nil
	case *InvestigateResponseCLI:
		return formatInvestigateHuman(v), nil
	case *HistoryResponseCLI:
		return formatHistoryHuman(v), nil
	case *PRsResponseCLI:
		return formatPRsHuman(v), nil
	case *ShowResponseCLI:
		return v.Content, nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// renderSegments joins a line's segments, highlighting the first (owner)
// segment and marking actionable ones.
func renderSegments(segments []annotations.Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		switch {
		case seg.Actionable():
			parts[i] = actionStyle.Render(seg.Title)
		case i == 0:
			parts[i] = ownerStyle.Render(seg.Title)
		default:
			parts[i] = infoStyle.Render(seg.Title)
		}
	}
	return strings.Join(parts, separator)
}

func renderLine(view LineView) string {
	return lineNumberStyle.Render(fmt.Sprintf("%6d │ ", view.Line)) + renderSegments(view.Segments)
}

func writeNotices(b *strings.Builder, notices []string) {
	for _, n := range notices {
		b.WriteString(noticeStyle.Render(n) + "\n")
	}
}

func formatAnnotateHuman(resp *AnnotateResponseCLI) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(resp.FilePath) + "\n")
	if len(resp.Lines) == 0 {
		b.WriteString(infoStyle.Render("No annotations") + "\n")
	}
	for _, view := range resp.Lines {
		b.WriteString(renderLine(view) + "\n")
	}
	if resp.Stats != nil {
		b.WriteString(infoStyle.Render(formatStats(*resp.Stats)) + "\n")
	}
	writeNotices(&b, resp.Notices)
	return strings.TrimRight(b.String(), "\n")
}

func formatInvestigateHuman(resp *InvestigateResponseCLI) string {
	var b strings.Builder
	writeNotices(&b, resp.Notices)
	if resp.Annotation != nil {
		b.WriteString(headerStyle.Render(resp.FilePath) + "\n")
		b.WriteString(renderLine(*resp.Annotation) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeItems(b *strings.Builder, title string, items []ItemView) {
	b.WriteString(headerStyle.Render(title) + "\n")
	for _, it := range items {
		marker := "  "
		if it.Selected {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%2d. %s  %s\n", marker, it.Index, it.Label, infoStyle.Render(it.Description)))
		if it.Detail != "" {
			b.WriteString("       " + it.Detail + "\n")
		}
	}
}

func formatHistoryHuman(resp *HistoryResponseCLI) string {
	var b strings.Builder
	writeNotices(&b, resp.Notices)
	if len(resp.Items) > 0 {
		writeItems(&b, resp.Title, resp.Items)
	}
	if resp.Diff != nil {
		b.WriteString("\n" + headerStyle.Render(resp.Diff.Title) + "\n")
		b.WriteString(infoStyle.Render("before: "+resp.Diff.Before) + "\n")
		b.WriteString(infoStyle.Render("after:  "+resp.Diff.After) + "\n")
	}
	if resp.UnifiedDiff != "" {
		b.WriteString("\n" + resp.UnifiedDiff)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatPRsHuman(resp *PRsResponseCLI) string {
	var b strings.Builder
	writeNotices(&b, resp.Notices)
	if len(resp.Items) > 0 {
		writeItems(&b, resp.Title, resp.Items)
	}
	if resp.Selected != nil {
		switch {
		case resp.Selected.URL == "":
			b.WriteString(infoStyle.Render("PR #"+resp.Selected.Number+" has no URL, the origin remote is unknown") + "\n")
		case resp.Opened:
			b.WriteString(noticeStyle.Render("Opened "+resp.Selected.URL) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStats(s provenance.Stats) string {
	return fmt.Sprintf("cache: %d hits, %d misses, %d resolutions (%d failed), %d evictions",
		s.Hits, s.Misses, s.Resolutions, s.ResolutionErrors, s.Evictions)
}
