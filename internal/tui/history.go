package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sprintr/internal/store"
)

const historyLimit = 20

type historyModel struct {
	store  *store.Store
	width  int
	height int

	runs   []store.Run
	week   store.RunStats
	cursor int

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, hgt int) {
	h.width = w
	h.height = hgt
}

type historyDataMsg struct {
	runs []store.Run
	week store.RunStats
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		runs, _ := h.store.ListRuns(store.RunFilter{Limit: historyLimit})
		now := time.Now().UTC()
		week, _ := h.store.GetRunStats(now.AddDate(0, 0, -7), now.Add(time.Minute))
		return historyDataMsg{runs: runs, week: week}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.runs = msg.runs
		h.week = msg.week
		if h.cursor >= len(h.runs) {
			h.cursor = max(0, len(h.runs)-1)
		}
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
				h.buildChart()
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.runs)-1 {
				h.cursor++
				h.buildChart()
			}
		}
	}
	return h, nil
}

// buildChart draws estimated and actual minutes side by side for every task
// of the selected run.
func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}

	h.chart = barchart.New(chartWidth, chartHeight)
	if h.cursor >= len(h.runs) {
		return
	}

	estStyle := lipgloss.NewStyle().Foreground(colorBorder)
	actStyle := lipgloss.NewStyle().Foreground(colorBreak)
	overStyle := lipgloss.NewStyle().Foreground(colorOvertime)

	var bars []barchart.BarData
	for i, res := range h.runs[h.cursor].Results {
		actual := float64(res.ActualSeconds) / 60
		style := actStyle
		if actual > float64(res.EstimatedMinutes) {
			style = overStyle
		}
		bars = append(bars,
			barchart.BarData{
				Label:  fmt.Sprintf("%d est", i+1),
				Values: []barchart.BarValue{{Name: "Estimated", Value: float64(res.EstimatedMinutes), Style: estStyle}},
			},
			barchart.BarData{
				Label:  fmt.Sprintf("%d act", i+1),
				Values: []barchart.BarValue{{Name: "Actual", Value: actual, Style: style}},
			},
		)
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ",
		mutedStyle.Render(fmt.Sprintf("last 7 days: %d runs, %d done, %d skipped, %s focused",
			h.week.Runs, h.week.TasksCompleted, h.week.TasksSkipped, formatSeconds(h.week.ActualSeconds))),
	)

	if len(h.runs) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				header, "", mutedStyle.Render("  No finished projects yet"),
			),
		)
	}

	run := h.runs[h.cursor]
	chartTitle := highlightStyle.Render(fmt.Sprintf("  %s: estimated vs actual (min)", run.Name))
	nav := mutedStyle.Render("  ↑/↓: select run  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.renderRunList(w), "", chartTitle, h.chart.View(), "", h.renderResults(run), "", nav,
		),
	)
}

func (h historyModel) renderRunList(w int) string {
	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-16s %-24s %10s %10s", "Finished", "Project", "Estimated", "Actual"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 64))))

	for i, r := range h.runs {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-16s %-24s %10s %10s",
			cursor,
			r.CompletedAt.Local().Format("Jan 02 15:04"),
			r.Name,
			formatSeconds(r.EstimatedSeconds),
			formatSeconds(r.ActualSeconds),
		)))
	}
	return strings.Join(rows, "\n")
}

func (h historyModel) renderResults(run store.Run) string {
	var rows []string
	for i, res := range run.Results {
		mark := successStyle.Render("✓")
		if res.Status == "skipped" {
			mark = warningStyle.Render("»")
		}
		delta := res.ActualSeconds - int64(res.EstimatedMinutes)*60
		deltaStr := successStyle.Render("-" + formatMinutes(-delta))
		if delta > 0 {
			deltaStr = errorStyle.Render("+" + formatMinutes(delta))
		}
		rows = append(rows, fmt.Sprintf("  %d. %s %-24s %3d min  %s  %s",
			i+1, mark, res.Name, res.EstimatedMinutes, formatSeconds(res.ActualSeconds), deltaStr))
	}
	return strings.Join(rows, "\n")
}
