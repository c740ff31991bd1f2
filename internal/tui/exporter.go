package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sprintr/internal/export"
	"github.com/sadopc/sprintr/internal/project"
	"github.com/sadopc/sprintr/internal/store"
)

type exportFormat struct {
	label string
	ext   string
	write func([]store.Run, string) error
}

var exportFormats = []exportFormat{
	{label: "CSV", ext: "csv", write: export.ToCSV},
	{label: "JSON", ext: "json", write: export.ToJSON},
}

// exportSpan limits the export to runs finished in the last days, 0 is all.
type exportSpan struct {
	label string
	days  int
}

var exportSpans = []exportSpan{
	{label: "All runs"},
	{label: "Last 7 days", days: 7},
	{label: "Today", days: 1},
}

// exportPicker is the overlay opened with e. Up and down pick the format,
// tab cycles the span.
type exportPicker struct {
	store  *store.Store
	clock  project.Clock
	open   bool
	format int
	span   int
}

func newExportPicker(s *store.Store, c project.Clock) exportPicker {
	return exportPicker{store: s, clock: c}
}

func (p exportPicker) update(msg tea.KeyMsg, dir string) (exportPicker, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		p.format = max(0, p.format-1)
	case key.Matches(msg, keys.Down):
		p.format = min(len(exportFormats)-1, p.format+1)
	case key.Matches(msg, keys.Tab):
		p.span = (p.span + 1) % len(exportSpans)
	case key.Matches(msg, keys.Enter):
		p.open = false
		return p, p.run(dir)
	case key.Matches(msg, keys.Back):
		p.open = false
	}
	return p, nil
}

func (p exportPicker) filter() store.RunFilter {
	days := exportSpans[p.span].days
	if days == 0 {
		return store.RunFilter{}
	}
	now := p.clock.Now().Local()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1-days)
	return store.RunFilter{From: &from}
}

func (p exportPicker) run(dir string) tea.Cmd {
	f := exportFormats[p.format]
	filter := p.filter()
	date := p.clock.Now().Local().Format("2006-01-02")
	return func() tea.Msg {
		runs, err := p.store.ListRuns(filter)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		if len(runs) == 0 {
			return statusMsg{text: "Nothing to export for " + exportSpans[p.span].label}
		}

		path := filepath.Join(dir, fmt.Sprintf("sprintr-export-%s.%s", date, f.ext))
		if err := f.write(runs, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", f.label, err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func (p exportPicker) view(w int) string {
	rows := []string{titleStyle.Render("Export History"), ""}
	for i, f := range exportFormats {
		if i == p.format {
			rows = append(rows, selectedItemStyle.Render("> "+f.label))
		} else {
			rows = append(rows, normalItemStyle.Render("  "+f.label))
		}
	}
	rows = append(rows,
		"",
		mutedStyle.Render("  Runs: ")+highlightStyle.Render(exportSpans[p.span].label),
		"",
		mutedStyle.Render("  enter: export  tab: change runs  esc: cancel"),
	)
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
