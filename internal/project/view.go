package project

import "fmt"

// TimerPhase is the work/break axis shared with the single-task timer display.
type TimerPhase string

const (
	TimerWork  TimerPhase = "work"
	TimerBreak TimerPhase = "break"
)

// TimerStatus is the status axis shared with the single-task timer display.
type TimerStatus string

const (
	StatusIdle      TimerStatus = "idle"
	StatusRunning   TimerStatus = "running"
	StatusPaused    TimerStatus = "paused"
	StatusCompleted TimerStatus = "completed"
)

// View is everything a renderer may know about a session.
type View struct {
	// TimeLeft is the countdown in seconds, or the seconds past the estimate in overtime.
	TimeLeft      int
	TotalDuration int
	Phase         TimerPhase
	Status        TimerStatus
	Overtime      bool

	TaskName     string
	NextTaskName string

	ProgressLabel    string
	ProgressFraction float64

	ShowOvertimePrompt bool
}

// Project maps a session to its display record.
func Project(s Session) View {
	done, total := len(s.Results), len(s.Tasks)
	v := View{
		Phase:              TimerWork,
		ProgressLabel:      fmt.Sprintf("%d/%d", done, total),
		ShowOvertimePrompt: s.Phase == PhaseOvertime && !s.OvertimeDismissed,
	}
	if total > 0 {
		v.ProgressFraction = float64(done) / float64(total)
	}
	if total == 0 {
		return v
	}

	task := s.CurrentTask()
	v.TaskName = task.Name
	if s.CurrentTaskIndex+1 < total {
		v.NextTaskName = s.Tasks[s.CurrentTaskIndex+1].Name
	}

	switch s.Phase {
	case PhaseSetup:
		v.Status = StatusIdle
	case PhaseSummary:
		v.Status = StatusCompleted
		return v
	case PhasePaused:
		v.Status = StatusPaused
	default:
		v.Status = StatusRunning
	}

	switch s.underlyingPhase() {
	case PhaseBreak:
		v.Phase = TimerBreak
		v.TimeLeft = s.TimeLeft
		v.TotalDuration = task.BreakMinutes * 60
	case PhaseOvertime:
		v.Overtime = true
		v.TotalDuration = task.EstimatedMinutes * 60
		v.TimeLeft = s.ElapsedSeconds - v.TotalDuration
		if v.TimeLeft < 0 {
			v.TimeLeft = 0
		}
	default:
		v.TimeLeft = s.TimeLeft
		v.TotalDuration = task.EstimatedMinutes * 60
	}
	return v
}

// TaskState is the display state of one task in an Outline.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskCurrent   TaskState = "current"
	TaskCompleted TaskState = "completed"
	TaskSkipped   TaskState = "skipped"
)

type TaskLine struct {
	Name             string
	EstimatedMinutes int
	BreakMinutes     int
	State            TaskState
	// ActualSeconds is set once the task is finalized.
	ActualSeconds int
}

// Outline is the whole-project listing shown next to the countdown.
type Outline struct {
	ProjectName string
	Lines       []TaskLine
	// EstimatedSeconds and ActualSeconds only cover finalized tasks.
	EstimatedSeconds int
	ActualSeconds    int
}

// ProjectOutline maps a session to its task listing. A task whose break is
// running is already finalized and shows its result.
func ProjectOutline(s Session) Outline {
	o := Outline{
		ProjectName: s.Name,
		Lines:       make([]TaskLine, 0, len(s.Tasks)),
	}
	for i, t := range s.Tasks {
		l := TaskLine{
			Name:             t.Name,
			EstimatedMinutes: t.EstimatedMinutes,
			BreakMinutes:     t.BreakMinutes,
			State:            TaskPending,
		}
		switch {
		case i < len(s.Results):
			r := s.Results[i]
			l.State = TaskCompleted
			if r.Status == ResultSkipped {
				l.State = TaskSkipped
			}
			l.ActualSeconds = r.ActualSeconds
			o.EstimatedSeconds += r.EstimatedMinutes * 60
			o.ActualSeconds += r.ActualSeconds
		case i == s.CurrentTaskIndex && s.Phase != PhaseSetup:
			l.State = TaskCurrent
		}
		o.Lines = append(o.Lines, l)
	}
	return o
}
