package project

import (
	"fmt"
	"time"
)

// Phase is one mode of the session state machine.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseRunning  Phase = "running"
	PhaseBreak    Phase = "break"
	PhaseOvertime Phase = "overtime"
	PhasePaused   Phase = "paused"
	PhaseSummary  Phase = "summary"
)

// Live reports whether the phase consumes ticks.
func (p Phase) Live() bool {
	return p == PhaseRunning || p == PhaseBreak || p == PhaseOvertime
}

func (p Phase) valid() bool {
	switch p {
	case PhaseSetup, PhaseRunning, PhaseBreak, PhaseOvertime, PhasePaused, PhaseSummary:
		return true
	}
	return false
}

// ResultStatus tells how a task was finalized.
type ResultStatus string

const (
	ResultCompleted ResultStatus = "completed"
	ResultSkipped   ResultStatus = "skipped"
)

// ProjectTask is one author-defined step of a project.
type ProjectTask struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	// BreakMinutes is only used when the task is not the last one.
	BreakMinutes int `json:"breakMinutes"`
}

func (t ProjectTask) validate() error {
	if t.EstimatedMinutes <= 0 {
		return fmt.Errorf("task %q estimate must be positive: %w", t.Name, ErrNotValid)
	}
	if t.BreakMinutes < 0 {
		return fmt.Errorf("task %q break can't be negative: %w", t.Name, ErrNotValid)
	}
	return nil
}

// ProjectTaskResult is the immutable outcome of a finalized task.
type ProjectTaskResult struct {
	TaskID           string       `json:"taskId"`
	Name             string       `json:"name"`
	EstimatedMinutes int          `json:"estimatedMinutes"`
	ActualSeconds    int          `json:"actualSeconds"`
	Status           ResultStatus `json:"status"`
	CompletedAt      time.Time    `json:"completedAt"`
}

// Session is the whole mutable state of one in-progress project.
type Session struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Tasks            []ProjectTask       `json:"tasks"`
	Results          []ProjectTaskResult `json:"results"`
	CurrentTaskIndex int                 `json:"currentTaskIndex"`
	Phase            Phase               `json:"phase"`
	// TimeLeft is the remaining seconds of the current work or break countdown.
	TimeLeft int `json:"timeLeft"`
	// ElapsedSeconds is the time spent on the current task only.
	ElapsedSeconds    int       `json:"elapsedSeconds"`
	OvertimeDismissed bool      `json:"overtimeDismissed"`
	LastTickAt        time.Time `json:"lastTickAt"`
	StartedAt         time.Time `json:"startedAt"`
}

// CurrentTask returns the task at CurrentTaskIndex.
func (s Session) CurrentTask() ProjectTask {
	return s.Tasks[s.CurrentTaskIndex]
}

// inBreak tells if the current task has already been finalized. This is the
// only source for the work/break distinction of a paused session.
func (s Session) inBreak() bool {
	return len(s.Results) > s.CurrentTaskIndex
}

// underlyingPhase returns the phase a paused session would resume into.
func (s Session) underlyingPhase() Phase {
	if s.Phase != PhasePaused {
		return s.Phase
	}
	switch {
	case s.inBreak():
		return PhaseBreak
	case s.TimeLeft == 0:
		return PhaseOvertime
	default:
		return PhaseRunning
	}
}

func (s Session) clone() Session {
	c := s
	c.Tasks = append([]ProjectTask{}, s.Tasks...)
	c.Results = append([]ProjectTaskResult{}, s.Results...)
	return c
}

// validate checks the structural invariants a session must hold in every phase.
func (s Session) validate() error {
	if len(s.Tasks) == 0 {
		return fmt.Errorf("session has no tasks: %w", ErrNotValid)
	}
	for _, t := range s.Tasks {
		if err := t.validate(); err != nil {
			return err
		}
	}
	if !s.Phase.valid() {
		return fmt.Errorf("unknown phase %q: %w", s.Phase, ErrNotValid)
	}
	if s.CurrentTaskIndex < 0 || s.CurrentTaskIndex >= len(s.Tasks) {
		return fmt.Errorf("task index %d out of range: %w", s.CurrentTaskIndex, ErrNotValid)
	}
	if s.TimeLeft < 0 || s.ElapsedSeconds < 0 {
		return fmt.Errorf("negative counters: %w", ErrNotValid)
	}

	done := len(s.Results)
	if done != s.CurrentTaskIndex && done != s.CurrentTaskIndex+1 {
		return fmt.Errorf("%d results for task index %d: %w", done, s.CurrentTaskIndex, ErrNotValid)
	}
	switch s.Phase {
	case PhaseSetup:
		if done != 0 || s.CurrentTaskIndex != 0 {
			return fmt.Errorf("setup session with progress: %w", ErrNotValid)
		}
	case PhaseRunning, PhaseOvertime:
		if done != s.CurrentTaskIndex {
			return fmt.Errorf("%s session with finalized current task: %w", s.Phase, ErrNotValid)
		}
	case PhaseBreak:
		if done != s.CurrentTaskIndex+1 {
			return fmt.Errorf("break without a finalized task: %w", ErrNotValid)
		}
	case PhaseSummary:
		if s.CurrentTaskIndex != len(s.Tasks)-1 || done != len(s.Tasks) {
			return fmt.Errorf("summary with unfinished tasks: %w", ErrNotValid)
		}
	}
	return nil
}

// ProjectRecord is handed out once a project reaches its summary.
type ProjectRecord struct {
	SessionID        string
	Name             string
	Results          []ProjectTaskResult
	EstimatedSeconds int
	ActualSeconds    int
	StartedAt        time.Time
	CompletedAt      time.Time
}

func newRecord(s Session) ProjectRecord {
	r := ProjectRecord{
		SessionID:   s.ID,
		Name:        s.Name,
		Results:     append([]ProjectTaskResult{}, s.Results...),
		StartedAt:   s.StartedAt,
		CompletedAt: s.LastTickAt,
	}
	for _, res := range s.Results {
		r.EstimatedSeconds += res.EstimatedMinutes * 60
		r.ActualSeconds += res.ActualSeconds
	}
	return r
}
