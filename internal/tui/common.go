package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/sprintr/internal/project"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewPlans
	viewHistory
	viewSettings
)

var viewNames = []string{"Timer", "Plans", "History", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// launchMsg asks the timer to set up a project from a plan.
type launchMsg struct {
	name  string
	tasks []project.ProjectTask
}

type runSavedMsg struct {
	runID int64
}

type exportDoneMsg struct {
	path string
}

type settingsChangedMsg struct{}

func errStatus(format string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf(format, err), isError: true}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatClock renders a countdown as mm:ss, growing to h:mm:ss past an hour.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(secs int64) string {
	return fmt.Sprintf("%.1fm", float64(secs)/60)
}
