package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sprintr/internal/log"
	"github.com/sadopc/sprintr/internal/planfile"
	"github.com/sadopc/sprintr/internal/project"
	"github.com/sadopc/sprintr/internal/store"
)

// Config is the configuration of the TUI application.
type Config struct {
	Store  *store.Store
	Clock  project.Clock
	Logger log.Logger
	// Plan is set up as the active project on start, when given.
	Plan *planfile.Plan
	// Bell is where the terminal bell is rung.
	Bell io.Writer
}

func (c *Config) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("store is required")
	}
	if c.Clock == nil {
		c.Clock = project.SystemClock
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Bell == nil {
		c.Bell = os.Stdout
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tui.App"})
	return nil
}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *project.Engine
	logger log.Logger
	plan   *planfile.Plan
	width  int
	height int

	activeView viewState
	showHelp   bool
	exporter   exportPicker

	timer    timerModel
	plans    plansModel
	history  historyModel
	settings settingsModel

	help   help.Model
	status string
}

func NewApp(cfg Config) (App, error) {
	if err := cfg.defaults(); err != nil {
		return App{}, fmt.Errorf("invalid config: %w", err)
	}

	events := &eventQueue{bell: cfg.Bell}
	engine, err := project.NewEngine(project.EngineConfig{
		Store:    cfg.Store.SessionState(),
		Clock:    cfg.Clock,
		Listener: events,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return App{}, fmt.Errorf("could not create engine: %w", err)
	}

	h := help.New()
	h.ShowAll = false

	return App{
		store:      cfg.Store,
		engine:     engine,
		logger:     cfg.Logger,
		plan:       cfg.Plan,
		activeView: viewTimer,
		timer:      newTimerModel(engine, cfg.Store, events),
		plans:      newPlansModel(cfg.Store),
		history:    newHistoryModel(cfg.Store),
		settings:   newSettingsModel(cfg.Store),
		exporter:   newExportPicker(cfg.Store, cfg.Clock),
		help:       h,
	}, nil
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.timer.Init(), a.plans.refresh()}
	if a.plan != nil {
		msg := launchMsg{name: a.plan.Name, tasks: a.plan.ProjectTasks()}
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	return tea.Batch(cmds...)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.plans.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exporter.open {
			home, _ := os.UserHomeDir()
			var cmd tea.Cmd
			a.exporter, cmd = a.exporter.update(msg, home)
			return a, cmd
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exporter.open = true
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, a.timer.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPlans
			return a, a.plans.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewHistory
			return a, a.history.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		// Ticks drive the engine whatever view is shown.
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd

	case launchMsg:
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		a.activeView = viewTimer
		return a, cmd

	case timerDataMsg:
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd

	case runSavedMsg:
		a.status = "Project saved to history"
		a.logger.Debugf("Run %d saved", msg.runID)
		return a, tea.Batch(a.timer.loadData(), a.history.refresh())

	case settingsChangedMsg:
		return a, tea.Batch(a.timer.loadData(), a.plans.refresh())

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.logger.Warningf("%s", msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewPlans:
		a.plans, cmd = a.plans.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.formActive
	case viewPlans:
		return a.plans.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.timer.loadData()
	case viewPlans:
		return a.plans.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.exporter.open:
		content = a.exporter.view(a.width - 4)
	case a.activeView == viewTimer:
		content = a.timer.view()
	case a.activeView == viewPlans:
		content = a.plans.view()
	case a.activeView == viewHistory:
		content = a.history.view()
	case a.activeView == viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))
	content = lipgloss.NewStyle().Width(a.width).Height(contentHeight).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// spread lays left and right out on one line of width w.
func spread(w int, left, right string) string {
	gap := max(1, w-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, strings.Repeat(" ", gap), right)
}

func (a App) renderHeader() string {
	tabs := make([]string, len(viewNames))
	for i, name := range viewNames {
		style := inactiveTabStyle
		if viewState(i) == a.activeView {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}

	title := selectedItemStyle.Render("sprintr")
	if o, ok := a.engine.Outline(); ok {
		v, _ := a.engine.View()
		title += mutedStyle.Render("  " + o.ProjectName + " " + v.ProgressLabel)
	}

	return headerStyle.Render(spread(a.width-2, title, lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)))
}

var moodGlyphs = map[clockMood]string{
	moodFocus:    "●",
	moodBreak:    "☕",
	moodPaused:   "⏸",
	moodOvertime: "▲",
}

// timerBadge is the countdown shown in the footer on every tab.
func (a App) timerBadge() string {
	v, ok := a.engine.View()
	if !ok || v.Status == project.StatusIdle || v.Status == project.StatusCompleted {
		return ""
	}
	mood := moodOf(v)
	clock := formatClock(v.TimeLeft)
	if v.Overtime {
		clock = "+" + clock
	}
	return clockStyles[mood].Render(" " + moodGlyphs[mood] + " " + clock)
}

func (a App) renderFooter() string {
	right := a.timerBadge()
	if a.status != "" {
		right += mutedStyle.Render(" " + a.status)
	}
	return spread(a.width-2, footerStyle.Render(a.help.View(keys)), right)
}
