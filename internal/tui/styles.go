package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/sprintr/internal/project"
)

var (
	colorBrand    = lipgloss.Color("#6C63FF")
	colorFocus    = lipgloss.Color("#2ECC71")
	colorBreak    = lipgloss.Color("#2EC4B6")
	colorPaused   = lipgloss.Color("#F39C12")
	colorOvertime = lipgloss.Color("#E74C3C")
	colorCurrent  = lipgloss.Color("#FF6B6B")
	colorText     = lipgloss.Color("#C0CAF5")
	colorDim      = lipgloss.Color("#666666")
	colorBorder   = lipgloss.Color("#414868")
	colorLink     = lipgloss.Color("#7AA2F7")
)

func fg(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

func panelWith(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2)
}

func clockWith(c lipgloss.Color) lipgloss.Style {
	return fg(c).Bold(true).Align(lipgloss.Center)
}

var (
	activeTabStyle = fg(colorBrand).
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)
	inactiveTabStyle = fg(colorDim).Padding(0, 2)

	panelStyle         = panelWith(colorBorder)
	activePanelStyle   = panelWith(colorBrand)
	overtimePanelStyle = panelWith(colorOvertime)

	titleStyle     = fg(colorText).Bold(true)
	accentStyle    = fg(colorCurrent)
	successStyle   = fg(colorFocus)
	warningStyle   = fg(colorPaused)
	errorStyle     = fg(colorOvertime)
	mutedStyle     = fg(colorDim)
	highlightStyle = fg(colorLink)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = fg(colorDim).Padding(0, 1)

	selectedItemStyle = fg(colorBrand).Bold(true)
	normalItemStyle   = fg(colorText)
)

// clockMood picks the look of the big countdown.
type clockMood int

const (
	moodIdle clockMood = iota
	moodFocus
	moodBreak
	moodPaused
	moodOvertime
)

var clockStyles = map[clockMood]lipgloss.Style{
	moodIdle:     clockWith(colorBrand),
	moodFocus:    clockWith(colorFocus),
	moodBreak:    clockWith(colorBreak),
	moodPaused:   clockWith(colorPaused),
	moodOvertime: clockWith(colorOvertime),
}

func moodOf(v project.View) clockMood {
	switch {
	case v.Overtime:
		return moodOvertime
	case v.Status == project.StatusPaused:
		return moodPaused
	case v.Status == project.StatusIdle:
		return moodIdle
	case v.Phase == project.TimerBreak:
		return moodBreak
	}
	return moodFocus
}

var taskMarks = map[project.TaskState]string{
	project.TaskCompleted: successStyle.Render("✓"),
	project.TaskSkipped:   warningStyle.Render("»"),
	project.TaskCurrent:   accentStyle.Render("▶"),
	project.TaskPending:   mutedStyle.Render("○"),
}
