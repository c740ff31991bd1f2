package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sprintr/internal/project"
	"github.com/sadopc/sprintr/internal/store"
)

const quickFocusName = "Quick focus"

type timerModel struct {
	engine *project.Engine
	store  *store.Store
	events *eventQueue
	sched  scheduler
	bar    progress.Model
	width  int
	height int

	cursor     int
	todayFocus int64

	bell                bool
	quickMinutes        int
	defaultTaskMinutes  int
	defaultBreakMinutes int

	// pending holds a plan launched while the recover prompt was up.
	pending *pendingLaunch

	formActive  bool
	form        *huh.Form
	formName    *string
	formMinutes *string
	formBreak   *string
}

func newTimerModel(e *project.Engine, s *store.Store, q *eventQueue) timerModel {
	name, mins, brk := "", "", ""
	return timerModel{
		engine:              e,
		store:               s,
		events:              q,
		sched:               newScheduler(),
		bar:                 progress.New(progress.WithDefaultGradient()),
		bell:                true,
		quickMinutes:        25,
		defaultTaskMinutes:  25,
		defaultBreakMinutes: 5,
		pending:             &pendingLaunch{},
		formName:            &name,
		formMinutes:         &mins,
		formBreak:           &brk,
	}
}

func (t timerModel) Init() tea.Cmd {
	return t.loadData()
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.bar.Width = max(10, min(w-24, 60))
}

type pendingLaunch struct {
	msg *launchMsg
}

func (p *pendingLaunch) take() *launchMsg {
	m := p.msg
	p.msg = nil
	return m
}

// prompting is true while a saved project waits for recover or discard.
func (t timerModel) prompting() bool { return t.engine.HasSavedProject() }

type timerDataMsg struct {
	todayFocus          int64
	bell                bool
	quickMinutes        int
	defaultTaskMinutes  int
	defaultBreakMinutes int
}

func (t timerModel) loadData() tea.Cmd {
	return func() tea.Msg {
		total, _ := t.store.GetTodayFocus()
		bell, err := t.store.GetSetting("bell")
		return timerDataMsg{
			todayFocus:          total,
			bell:                err != nil || bell != "off",
			quickMinutes:        t.store.GetSettingInt("quick_focus_minutes", 25),
			defaultTaskMinutes:  t.store.GetSettingInt("default_task_minutes", 25),
			defaultBreakMinutes: t.store.GetSettingInt("default_break_minutes", 5),
		}
	}
}

// settle schedules ticks for the new engine state and reports what the
// engine announced.
func (t *timerModel) settle() tea.Cmd {
	return tea.Batch(t.sched.sync(t.engine.Live()), t.events.drain(t.bell))
}

func (t timerModel) do(op func() error) (timerModel, tea.Cmd) {
	if err := op(); err != nil {
		return t, errStatus("%v", friendlyError(err))
	}
	cmd := t.settle()
	return t, cmd
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg.(type) {
	case tickMsg, launchMsg, timerDataMsg:
	default:
		if t.formActive && t.form != nil {
			return t.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case timerDataMsg:
		t.todayFocus = msg.todayFocus
		t.bell = msg.bell
		t.quickMinutes = msg.quickMinutes
		t.defaultTaskMinutes = msg.defaultTaskMinutes
		t.defaultBreakMinutes = msg.defaultBreakMinutes
		return t, nil

	case tickMsg:
		if !t.sched.accept(msg) {
			return t, nil
		}
		if err := t.engine.Tick(); err != nil {
			t.sched.rearm(false)
			return t, nil
		}
		cmd := tea.Batch(t.sched.rearm(t.engine.Live()), t.events.drain(t.bell))
		return t, cmd

	case launchMsg:
		if t.prompting() {
			t.pending.msg = &msg
			return t, status(fmt.Sprintf("Plan %q will be set up once the saved project is recovered or discarded", msg.name))
		}
		return t.launch(msg.name, msg.tasks)

	case tea.KeyMsg:
		if t.prompting() {
			return t.updatePrompt(msg)
		}
		return t.updateKeys(msg)
	}
	return t, nil
}

func (t timerModel) updatePrompt(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Recover):
		if _, err := t.engine.RecoverProject(); err != nil {
			return t, errStatus("Could not recover: %v", err)
		}
		text := "Project recovered, press space to resume"
		if p := t.pending.take(); p != nil {
			text = fmt.Sprintf("Project recovered, plan %q was not set up", p.name)
		}
		cmd := tea.Batch(t.settle(), status(text))
		return t, cmd
	case key.Matches(msg, keys.Discard):
		if err := t.engine.DiscardSavedProject(); err != nil {
			return t, errStatus("Could not discard: %v", err)
		}
		if p := t.pending.take(); p != nil {
			return t.launch(p.name, p.tasks)
		}
		return t, status("Saved project discarded")
	}
	return t, nil
}

func (t timerModel) updateKeys(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start):
		if _, ok := t.engine.Session(); !ok {
			return t, status("No project. Press n for quick focus or launch a plan from Plans.")
		}
		return t.do(t.engine.StartProject)

	case key.Matches(msg, keys.Pause):
		s, ok := t.engine.Session()
		if !ok {
			return t, nil
		}
		if s.Phase == project.PhasePaused {
			return t.do(t.engine.Resume)
		}
		return t.do(t.engine.Pause)

	case key.Matches(msg, keys.Complete):
		return t.do(t.engine.CompleteCurrentTask)

	case key.Matches(msg, keys.Skip):
		return t.do(t.engine.SkipCurrentTask)

	case key.Matches(msg, keys.Continue):
		return t.do(t.engine.ContinueOvertime)

	case key.Matches(msg, keys.Abandon):
		var cmd tea.Cmd
		t, cmd = t.do(t.engine.AbandonProject)
		t.cursor = 0
		return t, cmd

	case key.Matches(msg, keys.Finish):
		return t.finish()

	case key.Matches(msg, keys.Quick):
		return t.quickFocus()

	case key.Matches(msg, keys.Insert):
		if _, ok := t.engine.Session(); !ok {
			return t, nil
		}
		return t.showInsertForm()

	case key.Matches(msg, keys.Delete):
		var cmd tea.Cmd
		t, cmd = t.do(func() error { return t.engine.RemoveTask(t.cursor) })
		t.clampCursor()
		return t, cmd

	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		t.cursor++
		t.clampCursor()
	}
	return t, nil
}

func (t *timerModel) clampCursor() {
	s, ok := t.engine.Session()
	if !ok {
		t.cursor = 0
		return
	}
	t.cursor = max(0, min(t.cursor, len(s.Tasks)-1))
}

func (t timerModel) launch(name string, tasks []project.ProjectTask) (timerModel, tea.Cmd) {
	if _, err := t.engine.CreateProject(name, tasks); err != nil {
		return t, errStatus("Could not set up project: %v", friendlyError(err))
	}
	t.cursor = 0
	return t, status(fmt.Sprintf("Project %q ready, press s to start", name))
}

func (t timerModel) quickFocus() (timerModel, tea.Cmd) {
	tasks := []project.ProjectTask{{Name: "Focus", EstimatedMinutes: t.quickMinutes}}
	if _, err := t.engine.CreateProject(quickFocusName, tasks); err != nil {
		return t, errStatus("%v", friendlyError(err))
	}
	t.cursor = 0
	return t.do(t.engine.StartProject)
}

func (t timerModel) finish() (timerModel, tea.Cmd) {
	record, err := t.engine.FinishProject()
	if err != nil {
		return t, errStatus("%v", friendlyError(err))
	}
	t.cursor = 0
	st := t.store
	return t, func() tea.Msg {
		run, err := st.SaveRun(runFromRecord(record))
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Could not save run: %v", err), isError: true}
		}
		return runSavedMsg{runID: run.ID}
	}
}

func runFromRecord(r project.ProjectRecord) store.Run {
	run := store.Run{
		SessionID:        r.SessionID,
		Name:             r.Name,
		EstimatedSeconds: int64(r.EstimatedSeconds),
		ActualSeconds:    int64(r.ActualSeconds),
		StartedAt:        r.StartedAt,
		CompletedAt:      r.CompletedAt,
	}
	for i, res := range r.Results {
		run.Results = append(run.Results, store.RunResult{
			Position:         i,
			TaskID:           res.TaskID,
			Name:             res.Name,
			EstimatedMinutes: res.EstimatedMinutes,
			ActualSeconds:    int64(res.ActualSeconds),
			Status:           string(res.Status),
			CompletedAt:      res.CompletedAt,
		})
	}
	return run
}

func friendlyError(err error) error {
	switch {
	case errors.Is(err, project.ErrNoSession):
		return errors.New("no active project")
	case errors.Is(err, project.ErrSavedProjectPending):
		return errors.New("recover or discard the saved project first")
	case errors.Is(err, project.ErrActiveProject):
		return errors.New("a project is already active, finish or abandon it first")
	case errors.Is(err, project.ErrInvalidPhase):
		return fmt.Errorf("not now (%v)", err)
	}
	return err
}

// --- Insert task form ---

func (t timerModel) showInsertForm() (timerModel, tea.Cmd) {
	*t.formName = ""
	*t.formMinutes = strconv.Itoa(t.defaultTaskMinutes)
	*t.formBreak = strconv.Itoa(t.defaultBreakMinutes)

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(t.formName),
			huh.NewInput().Title("Estimate (min)").Value(t.formMinutes).Validate(positiveInt),
			huh.NewInput().Title("Break after (min)").Value(t.formBreak).Validate(nonNegativeInt),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t timerModel) updateForm(msg tea.Msg) (timerModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		mins, _ := strconv.Atoi(*t.formMinutes)
		brk, _ := strconv.Atoi(*t.formBreak)
		return t.insertTask(project.ProjectTask{Name: *t.formName, EstimatedMinutes: mins, BreakMinutes: brk})
	}

	return t, cmd
}

// insertTask places a task after the selected one, but never before the
// task in progress.
func (t timerModel) insertTask(task project.ProjectTask) (timerModel, tea.Cmd) {
	s, ok := t.engine.Session()
	if !ok {
		return t, nil
	}
	after := t.cursor
	if s.Phase != project.PhaseSetup {
		after = max(after, s.CurrentTaskIndex)
	}
	var cmd tea.Cmd
	t, cmd = t.do(func() error { return t.engine.InsertTask(after, task) })
	t.cursor = after + 1
	t.clampCursor()
	return t, cmd
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("enter a whole number of minutes above 0")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("enter a whole number of minutes")
	}
	return nil
}

// --- Rendering ---

func (t timerModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}
	w := t.width - 4

	if t.formActive && t.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Insert Task"), "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	if t.prompting() {
		return t.renderPrompt(w)
	}

	v, ok := t.engine.View()
	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left, t.renderIdle(w), t.renderToday(w))
	}
	o, _ := t.engine.Outline()
	return lipgloss.JoinVertical(lipgloss.Left,
		t.renderTimerPanel(w, v, o),
		t.renderOutline(w, o),
		t.renderToday(w),
	)
}

func (t timerModel) renderPrompt(w int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		warningStyle.Bold(true).Render("An unfinished project was found"),
		"",
		mutedStyle.Render("Time that passed while away will be counted."),
		"",
		highlightStyle.Render("r: recover   d: discard"),
	)
	return activePanelStyle.Width(w).Align(lipgloss.Center).Render(content)
}

func (t timerModel) renderIdle(w int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		clockStyles[moodIdle].Width(w-6).Render(formatClock(t.quickMinutes*60)),
		mutedStyle.Render("■  NO PROJECT"),
		mutedStyle.Render(fmt.Sprintf("n: quick focus (%d min)   2: plans", t.quickMinutes)),
	)
	return panelStyle.Width(w).Render(content)
}

func (t timerModel) renderTimerPanel(w int, v project.View, o project.Outline) string {
	mood := moodOf(v)
	clock := clockStyles[mood].Width(w - 6)
	panel := activePanelStyle

	var timeDisplay, indicator string
	switch mood {
	case moodOvertime:
		timeDisplay = clock.Render("+" + formatClock(v.TimeLeft))
		indicator = errorStyle.Render("▲  OVERTIME")
		panel = overtimePanelStyle
	case moodPaused:
		timeDisplay = clock.Render(formatClock(v.TimeLeft))
		indicator = warningStyle.Render("⏸  PAUSED")
	case moodIdle:
		timeDisplay = clock.Render(formatClock(v.TimeLeft))
		indicator = mutedStyle.Render("■  READY")
		panel = panelStyle
	case moodBreak:
		timeDisplay = clock.Render(formatClock(v.TimeLeft))
		indicator = successStyle.Render("☕  BREAK")
	default:
		timeDisplay = clock.Render(formatClock(v.TimeLeft))
		indicator = successStyle.Render("●  FOCUS")
	}
	if v.Status == project.StatusCompleted {
		timeDisplay = clockStyles[moodFocus].Width(w - 6).Render("Done!")
		indicator = successStyle.Render("✓  PROJECT COMPLETE")
	}
	if v.Overtime && v.Status == project.StatusPaused {
		indicator = warningStyle.Render("⏸  PAUSED") + errorStyle.Render("  ▲ over")
	}

	taskLine := highlightStyle.Render(o.ProjectName) + mutedStyle.Render(" / ") + titleStyle.Render(v.TaskName)
	if v.Phase == project.TimerBreak && v.NextTaskName != "" {
		taskLine = highlightStyle.Render(o.ProjectName) + mutedStyle.Render(" / up next: ") + titleStyle.Render(v.NextTaskName)
	}

	bar := t.bar.ViewAs(v.ProgressFraction) + mutedStyle.Render("  "+v.ProgressLabel)

	rows := []string{timeDisplay, indicator, taskLine, "", bar}
	if v.ShowOvertimePrompt {
		rows = append(rows, "", errorStyle.Render("Estimate reached. c: complete  o: keep going  x: skip"))
	}
	if v.Status == project.StatusCompleted {
		rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("Estimated %s, spent %s. f: save to history",
			formatSeconds(int64(o.EstimatedSeconds)), formatSeconds(int64(o.ActualSeconds)))))
	}

	return panel.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, rows...))
}

func (t timerModel) renderOutline(w int, o project.Outline) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Tasks"))
	for i, l := range o.Lines {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		mark, actual := taskMarks[l.State], ""
		if l.State == project.TaskCompleted || l.State == project.TaskSkipped {
			actual = formatSeconds(int64(l.ActualSeconds))
		}

		est := fmt.Sprintf("%d min", l.EstimatedMinutes)
		if l.BreakMinutes > 0 && i < len(o.Lines)-1 {
			est += fmt.Sprintf(" + %d break", l.BreakMinutes)
		}
		row := fmt.Sprintf("%s%s %-24s %-18s %s", cursor, mark, style.Render(l.Name), mutedStyle.Render(est), actual)
		rows = append(rows, row)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  i: insert after  d: remove  X: abandon"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timerModel) renderToday(w int) string {
	return panelStyle.Width(w).Render(
		titleStyle.Render("Today") + "  " + highlightStyle.Render(formatSeconds(t.todayFocus)),
	)
}
