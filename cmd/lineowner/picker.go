package main

import (
	"context"
	stderrors "errors"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"lineowner/internal/drilldown"
	"lineowner/internal/errors"
)

// indexPicker selects a fixed one-based position; zero selects nothing.
type indexPicker struct {
	index int
}

func (p indexPicker) Pick(_ context.Context, _, _ string, items []drilldown.Item) (int, bool, error) {
	if p.index == 0 {
		return 0, false, nil
	}
	if p.index < 0 || p.index > len(items) {
		return 0, false, errors.NewOwnerError(errors.InvalidArgument, "Selection out of range", nil, nil).
			WithDetails(map[string]interface{}{"select": p.index, "count": len(items)})
	}
	return p.index - 1, true, nil
}

// huhPicker asks on the terminal.
type huhPicker struct{}

func (huhPicker) Pick(ctx context.Context, title, placeholder string, items []drilldown.Item) (int, bool, error) {
	options := make([]huh.Option[int], len(items))
	for i, it := range items {
		key := it.Label + "  " + it.Description
		if it.Detail != "" {
			key += "  " + it.Detail
		}
		options[i] = huh.NewOption(key, i)
	}

	choice := -1
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title(title).
			Description(placeholder).
			Options(options...).
			Value(&choice),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
			return 0, false, nil
		}
		return 0, false, err
	}
	return choice, choice >= 0, nil
}

// pickRecord is what a recordingPicker saw.
type pickRecord struct {
	title       string
	placeholder string
	items       []drilldown.Item
	index       int
	ok          bool
}

// recordingPicker remembers the last list offered so it can be included in
// the command output.
type recordingPicker struct {
	inner drilldown.Picker
	last  *pickRecord
}

func (p *recordingPicker) Pick(ctx context.Context, title, placeholder string, items []drilldown.Item) (int, bool, error) {
	index, ok, err := p.inner.Pick(ctx, title, placeholder, items)
	p.last = &pickRecord{title: title, placeholder: placeholder, items: items, index: index, ok: ok && err == nil}
	return index, ok, err
}

func (p *recordingPicker) selected() int {
	if p.last == nil || !p.last.ok {
		return -1
	}
	return p.last.index
}

// interactive reports whether a prompt can be shown.
func interactive(format OutputFormat) bool {
	if format != FormatHuman {
		return false
	}
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// newPicker returns the picker for a command: an explicit one-based
// selection wins, then an interactive prompt, then no selection.
func newPicker(selection int, format OutputFormat) *recordingPicker {
	if selection != 0 || !interactive(format) {
		return &recordingPicker{inner: indexPicker{index: selection}}
	}
	return &recordingPicker{inner: huhPicker{}}
}
