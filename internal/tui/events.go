package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/sprintr/internal/project"
)

type engineEvent struct {
	overtime *project.ProjectTask
	result   *project.ProjectTaskResult
	record   *project.ProjectRecord
}

// eventQueue collects engine notifications raised during an Update so they
// can be turned into messages once the engine call returns.
type eventQueue struct {
	events []engineEvent
	// bell receives the BEL byte, once per event that needs attention.
	bell io.Writer
}

func (q *eventQueue) OnTaskComplete(r project.ProjectTaskResult) {
	q.events = append(q.events, engineEvent{result: &r})
}

func (q *eventQueue) OnProjectComplete(r project.ProjectRecord) {
	q.events = append(q.events, engineEvent{record: &r})
}

func (q *eventQueue) OnOvertime(t project.ProjectTask) {
	q.events = append(q.events, engineEvent{overtime: &t})
}

// drain empties the queue into status messages. The bell rings once, apart
// from the status text, when an event needs attention.
func (q *eventQueue) drain(bell bool) tea.Cmd {
	if len(q.events) == 0 {
		return nil
	}
	events := q.events
	q.events = nil

	var cmds []tea.Cmd
	ring := false
	for _, e := range events {
		var text string
		switch {
		case e.overtime != nil:
			text = fmt.Sprintf("Time's up for %q", e.overtime.Name)
			ring = true
		case e.result != nil:
			text = fmt.Sprintf("Task %q %s after %s", e.result.Name, e.result.Status, formatSeconds(int64(e.result.ActualSeconds)))
		case e.record != nil:
			text = fmt.Sprintf("Project %q complete, press f to save it", e.record.Name)
			ring = true
		}
		cmds = append(cmds, status(text))
	}

	statuses := tea.Sequence(cmds...)
	if !ring || !bell || q.bell == nil {
		return statuses
	}
	return tea.Batch(statuses, q.ring())
}

func (q *eventQueue) ring() tea.Cmd {
	w := q.bell
	return func() tea.Msg {
		w.Write([]byte("\a"))
		return nil
	}
}
