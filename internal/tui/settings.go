package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sprintr/internal/store"
)

// settingDef describes one editable setting. Minute settings are edited as
// text, the rest as on/off toggles.
type settingDef struct {
	key      string
	label    string
	fallback string
	minutes  bool
	validate func(string) error
}

var settingDefs = []settingDef{
	{key: "default_task_minutes", label: "Default task estimate", fallback: "25", minutes: true, validate: positiveInt},
	{key: "default_break_minutes", label: "Default break", fallback: "5", minutes: true, validate: nonNegativeInt},
	{key: "quick_focus_minutes", label: "Quick focus length", fallback: "25", minutes: true, validate: positiveInt},
	{key: "bell", label: "Terminal bell", fallback: "on"},
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// Form targets, pointers so they survive model copies.
	text    map[string]*string
	toggles map[string]*bool
}

func newSettingsModel(s *store.Store) settingsModel {
	m := settingsModel{
		store:   s,
		values:  map[string]string{},
		text:    map[string]*string{},
		toggles: map[string]*bool{},
	}
	for _, d := range settingDefs {
		if d.minutes {
			m.text[d.key] = new(string)
		} else {
			m.toggles[d.key] = new(bool)
		}
	}
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	values map[string]string
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		all, _ := s.store.GetAllSettings()
		values := make(map[string]string, len(all))
		for _, st := range all {
			values[st.Key] = st.Value
		}
		return settingsDataMsg{values: values}
	}
}

func (s settingsModel) value(d settingDef) string {
	if v, ok := s.values[d.key]; ok {
		return v
	}
	return d.fallback
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.values = msg.values
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) || key.Matches(msg, keys.New) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	var timing, alerts []huh.Field
	for _, d := range settingDefs {
		if d.minutes {
			*s.text[d.key] = s.value(d)
			timing = append(timing, huh.NewInput().
				Title(d.label+" (min)").
				Value(s.text[d.key]).
				Validate(d.validate))
			continue
		}
		*s.toggles[d.key] = s.value(d) != "off"
		alerts = append(alerts, huh.NewConfirm().
			Title(d.label).
			Affirmative("On").
			Negative("Off").
			Value(s.toggles[d.key]))
	}

	s.form = huh.NewForm(
		huh.NewGroup(timing...).Title("Timer"),
		huh.NewGroup(alerts...).Title("Alerts"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Back) {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.save(); err != nil {
			return s, errStatus("Could not save settings: %v", err)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return settingsChangedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) save() error {
	for _, d := range settingDefs {
		v := ""
		if d.minutes {
			v = strings.TrimSpace(*s.text[d.key])
		} else {
			v = boolSetting(*s.toggles[d.key])
		}
		if err := s.store.SetSetting(d.key, v); err != nil {
			return fmt.Errorf("setting %s: %w", d.key, err)
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, d := range settingDefs {
		label := lipgloss.NewStyle().Width(26).Render(d.label)
		rows = append(rows, "  "+label+" "+highlightStyle.Render(formatSettingValue(d.key, s.value(d))))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	for _, d := range settingDefs {
		if d.key != k || !d.minutes {
			continue
		}
		if mins, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", mins)
		}
	}
	return v
}

func boolSetting(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
