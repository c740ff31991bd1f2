package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sprintr/internal/planfile"
	"github.com/sadopc/sprintr/internal/project"
	"github.com/sadopc/sprintr/internal/store"
)

type plansModel struct {
	store  *store.Store
	width  int
	height int

	plans        []store.Plan
	tasks        []store.PlanTask
	cursor       int
	taskCursor   int
	showArchived bool
	viewingTasks bool // true = viewing tasks of selected plan

	formActive bool
	form       *huh.Form
	formType   string // "plan", "task", "rename"

	// Form field pointers (survive value copies)
	formName    *string
	formMinutes *string
	formBreak   *string

	defaultTaskMinutes  int
	defaultBreakMinutes int
}

func newPlansModel(s *store.Store) plansModel {
	name, mins, brk := "", "", ""
	return plansModel{
		store:               s,
		formName:            &name,
		formMinutes:         &mins,
		formBreak:           &brk,
		defaultTaskMinutes:  25,
		defaultBreakMinutes: 5,
	}
}

func (p *plansModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type plansDataMsg struct {
	plans               []store.Plan
	defaultTaskMinutes  int
	defaultBreakMinutes int
}

type planTasksDataMsg struct {
	tasks []store.PlanTask
}

func (p plansModel) refresh() tea.Cmd {
	return func() tea.Msg {
		plans, _ := p.store.ListPlans(p.showArchived)
		return plansDataMsg{
			plans:               plans,
			defaultTaskMinutes:  p.store.GetSettingInt("default_task_minutes", 25),
			defaultBreakMinutes: p.store.GetSettingInt("default_break_minutes", 5),
		}
	}
}

func (p plansModel) refreshTasks() tea.Cmd {
	if p.cursor >= len(p.plans) {
		return nil
	}
	pid := p.plans[p.cursor].ID
	return func() tea.Msg {
		tasks, _ := p.store.ListPlanTasks(pid)
		return planTasksDataMsg{tasks: tasks}
	}
}

func (p plansModel) update(msg tea.Msg) (plansModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case plansDataMsg:
		p.plans = msg.plans
		p.defaultTaskMinutes = msg.defaultTaskMinutes
		p.defaultBreakMinutes = msg.defaultBreakMinutes
		if p.cursor >= len(p.plans) {
			p.cursor = max(0, len(p.plans)-1)
		}
		return p, nil

	case planTasksDataMsg:
		p.tasks = msg.tasks
		if p.taskCursor >= len(p.tasks) {
			p.taskCursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updatePlanList(msg)
	}
	return p, nil
}

func (p plansModel) updatePlanList(msg tea.KeyMsg) (plansModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.plans)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.plans) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
			return p, p.refreshTasks()
		}
	case key.Matches(msg, keys.New):
		return p.showPlanForm("plan", "")
	case key.Matches(msg, keys.Insert):
		if len(p.plans) > 0 {
			return p.showPlanForm("rename", p.plans[p.cursor].Name)
		}
	case key.Matches(msg, keys.Delete):
		if len(p.plans) > 0 {
			p.store.ArchivePlan(p.plans[p.cursor].ID)
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Launch):
		if len(p.plans) > 0 {
			return p, p.launch(p.plans[p.cursor])
		}
	case key.Matches(msg, keys.Write):
		if len(p.plans) > 0 {
			return p, p.writeYAML(p.plans[p.cursor])
		}
	}
	return p, nil
}

func (p plansModel) updateTaskView(msg tea.KeyMsg) (plansModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(p.tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showTaskForm()
	case key.Matches(msg, keys.Delete):
		if len(p.tasks) > 0 {
			p.store.RemovePlanTask(p.tasks[p.taskCursor].ID)
			return p, p.refreshTasks()
		}
	case key.Matches(msg, keys.Launch):
		if p.cursor < len(p.plans) {
			return p, p.launch(p.plans[p.cursor])
		}
	}
	return p, nil
}

// launch hands the plan over to the timer.
func (p plansModel) launch(plan store.Plan) tea.Cmd {
	return func() tea.Msg {
		tasks, err := p.store.ListPlanTasks(plan.ID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if len(tasks) == 0 {
			return statusMsg{text: "Plan has no tasks. Press enter then n to add one.", isError: true}
		}
		return launchMsg{name: plan.Name, tasks: projectTasks(tasks)}
	}
}

func projectTasks(tasks []store.PlanTask) []project.ProjectTask {
	out := make([]project.ProjectTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, project.ProjectTask{
			Name:             t.Name,
			EstimatedMinutes: t.EstimatedMinutes,
			BreakMinutes:     t.BreakMinutes,
		})
	}
	return out
}

// writeYAML saves the plan as a plan file in the home directory.
func (p plansModel) writeYAML(plan store.Plan) tea.Cmd {
	return func() tea.Msg {
		tasks, err := p.store.ListPlanTasks(plan.ID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		pf := planfile.Plan{Name: plan.Name}
		for _, t := range tasks {
			pf.Tasks = append(pf.Tasks, planfile.Task{Name: t.Name, Minutes: t.EstimatedMinutes, Break: t.BreakMinutes})
		}
		data, err := planfile.Marshal(pf)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		path := filepath.Join(home, fmt.Sprintf("sprintr-plan-%s.yaml", slug(plan.Name)))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return statusMsg{text: "Plan written to " + path}
	}
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		}
		return '-'
	}, name)
}

func (p plansModel) showPlanForm(formType, name string) (plansModel, tea.Cmd) {
	*p.formName = name
	p.formType = formType

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Plan Name").Value(p.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p plansModel) showTaskForm() (plansModel, tea.Cmd) {
	*p.formName = ""
	*p.formMinutes = strconv.Itoa(p.defaultTaskMinutes)
	*p.formBreak = strconv.Itoa(p.defaultBreakMinutes)
	p.formType = "task"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(p.formName),
			huh.NewInput().Title("Estimate (min)").Value(p.formMinutes).Validate(positiveInt),
			huh.NewInput().Title("Break after (min)").Value(p.formBreak).Validate(nonNegativeInt),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p plansModel) updateForm(msg tea.Msg) (plansModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		name := strings.TrimSpace(*p.formName)
		switch p.formType {
		case "plan":
			if name != "" {
				if _, err := p.store.CreatePlan(name); err != nil {
					return p, errStatus("Could not create plan: %v", err)
				}
			}
			return p, p.refresh()
		case "rename":
			if name != "" && p.cursor < len(p.plans) {
				p.store.RenamePlan(p.plans[p.cursor].ID, name)
			}
			return p, p.refresh()
		case "task":
			if p.cursor < len(p.plans) {
				mins, _ := strconv.Atoi(strings.TrimSpace(*p.formMinutes))
				brk, _ := strconv.Atoi(strings.TrimSpace(*p.formBreak))
				if _, err := p.store.AddPlanTask(p.plans[p.cursor].ID, name, mins, brk); err != nil {
					return p, errStatus("Could not add task: %v", err)
				}
			}
			return p, p.refreshTasks()
		}
	}

	return p, cmd
}

func (p plansModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Plan")
		if p.formType == "rename" {
			title = titleStyle.Render("Rename Plan")
		} else if p.formType == "task" {
			title = titleStyle.Render("New Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks {
		return p.renderTaskView()
	}
	return p.renderPlanList()
}

func (p plansModel) renderPlanList() string {
	w := p.width - 4
	title := titleStyle.Render("Plans")

	if len(p.plans) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No plans yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for i, plan := range p.plans {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%-28s", cursor, plan.Name))
		if plan.Archived {
			row += mutedStyle.Render(" (archived)")
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  i: rename  d: archive  s: launch  w: write yaml  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p plansModel) renderTaskView() string {
	w := p.width - 4
	plan := p.plans[p.cursor]
	title := titleStyle.Render(plan.Name + " / Tasks")

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	var total int
	for i, task := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		detail := fmt.Sprintf(" %d min", task.EstimatedMinutes)
		if task.BreakMinutes > 0 && i < len(p.tasks)-1 {
			detail += fmt.Sprintf(" + %d break", task.BreakMinutes)
			total += task.BreakMinutes
		}
		total += task.EstimatedMinutes
		rows = append(rows, style.Render(fmt.Sprintf("%s%d. %s", cursor, i+1, task.Name))+mutedStyle.Render(detail))
	}

	rows = append(rows, "")
	rows = append(rows, highlightStyle.Render(fmt.Sprintf("  Total %d min", total)))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new task  d: remove  s: launch  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
