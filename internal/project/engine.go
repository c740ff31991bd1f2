// Package project runs a multi-task project timer: a sequence of timed tasks
// with breaks in between, that survives the process being suspended or closed
// mid-countdown.
//
// An Engine is the only mutator of its session and is not safe for concurrent
// use; callers drive every operation, ticks included, from one goroutine.
package project

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/sadopc/sprintr/internal/log"
)

// EngineConfig is the configuration of the project engine.
type EngineConfig struct {
	Store    StateStore
	Clock    Clock
	Listener Listener
	Logger   log.Logger
	// NewID generates session and task IDs.
	NewID func() string
}

func (c *EngineConfig) defaults() error {
	if c.Store == nil {
		return fmt.Errorf("state store is required")
	}
	if c.Clock == nil {
		c.Clock = SystemClock
	}
	if c.Listener == nil {
		c.Listener = NoopListener
	}
	if c.NewID == nil {
		c.NewID = func() string { return ulid.Make().String() }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "project.Engine"})
	return nil
}

// Engine owns the single active project session.
type Engine struct {
	store    StateStore
	clock    Clock
	listener Listener
	logger   log.Logger
	newID    func() string

	session  *Session
	hasSaved bool
	// unannounced is the ID of a task that crossed its estimate while the
	// app was closed. Its overtime is announced on the next Resume.
	unannounced string
}

// NewEngine creates an engine and checks the store for a saved session.
// A saved session is not loaded until RecoverProject is called.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		store:    cfg.Store,
		clock:    cfg.Clock,
		listener: cfg.Listener,
		logger:   cfg.Logger,
		newID:    cfg.NewID,
	}
	if _, err := e.loadSaved(); err == nil {
		e.hasSaved = true
	}
	return e, nil
}

// Session returns a copy of the active session.
func (e *Engine) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	return e.session.clone(), true
}

// View projects the active session for display.
func (e *Engine) View() (View, bool) {
	if e.session == nil {
		return View{}, false
	}
	return Project(*e.session), true
}

// Outline lists the tasks of the active session for display.
func (e *Engine) Outline() (Outline, bool) {
	if e.session == nil {
		return Outline{}, false
	}
	return ProjectOutline(*e.session), true
}

// Live reports whether ticks should be scheduled.
func (e *Engine) Live() bool {
	return e.session != nil && e.session.Phase.Live()
}

// HasSavedProject reports whether a usable saved session waits for recover or discard.
func (e *Engine) HasSavedProject() bool { return e.hasSaved }

// CreateProject sets up a new session in the setup phase.
func (e *Engine) CreateProject(name string, tasks []ProjectTask) (Session, error) {
	if e.hasSaved {
		return Session{}, ErrSavedProjectPending
	}
	if e.session != nil {
		return Session{}, ErrActiveProject
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, fmt.Errorf("project name is required: %w", ErrNotValid)
	}
	if len(tasks) == 0 {
		return Session{}, fmt.Errorf("project needs at least one task: %w", ErrNotValid)
	}
	owned := make([]ProjectTask, 0, len(tasks))
	for i, t := range tasks {
		t, err := e.prepareTask(t, i)
		if err != nil {
			return Session{}, err
		}
		owned = append(owned, t)
	}

	s := &Session{
		ID:         e.newID(),
		Name:       name,
		Tasks:      owned,
		Results:    []ProjectTaskResult{},
		Phase:      PhaseSetup,
		TimeLeft:   owned[0].EstimatedMinutes * 60,
		LastTickAt: e.clock.Now(),
	}
	e.session = s
	e.persist()
	e.logger.Infof("Project %q created with %d tasks", name, len(owned))

	return s.clone(), nil
}

func (e *Engine) prepareTask(t ProjectTask, pos int) (ProjectTask, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		t.Name = fmt.Sprintf("Task %d", pos+1)
	}
	if err := t.validate(); err != nil {
		return ProjectTask{}, err
	}
	if t.ID == "" {
		t.ID = e.newID()
	}
	return t, nil
}

// StartProject moves a session from setup to running its first task.
func (e *Engine) StartProject() error {
	s, err := e.active(PhaseSetup)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	s.Phase = PhaseRunning
	s.TimeLeft = s.Tasks[0].EstimatedMinutes * 60
	s.ElapsedSeconds = 0
	s.StartedAt = now
	s.LastTickAt = now
	e.persist()
	e.logger.Debugf("Project %s started", s.ID)
	return nil
}

// Pause freezes a live session.
func (e *Engine) Pause() error {
	s, err := e.active(PhaseRunning, PhaseBreak, PhaseOvertime)
	if err != nil {
		return err
	}

	s.Phase = PhasePaused
	s.LastTickAt = e.clock.Now()
	e.persist()
	return nil
}

// Resume continues a paused session in the phase it was interrupted in.
func (e *Engine) Resume() error {
	s, err := e.active(PhasePaused)
	if err != nil {
		return err
	}

	s.Phase = s.underlyingPhase()
	s.LastTickAt = e.clock.Now()
	e.persist()

	if s.Phase == PhaseOvertime && e.unannounced == s.CurrentTask().ID {
		e.unannounced = ""
		e.listener.OnOvertime(s.CurrentTask())
	}
	return nil
}

// ContinueOvertime acknowledges the overtime prompt. The task keeps counting.
func (e *Engine) ContinueOvertime() error {
	s, err := e.active(PhaseOvertime)
	if err != nil {
		return err
	}

	s.OvertimeDismissed = true
	s.LastTickAt = e.clock.Now()
	e.persist()
	return nil
}

// InsertTask adds a task after afterIndex (-1 inserts at the front, setup only).
// Once started, tasks can only be inserted after the current one.
func (e *Engine) InsertTask(afterIndex int, task ProjectTask) error {
	s, err := e.active(PhaseSetup, PhaseRunning, PhaseBreak, PhaseOvertime, PhasePaused)
	if err != nil {
		return err
	}

	pos := afterIndex + 1
	if pos < 0 || pos > len(s.Tasks) {
		return fmt.Errorf("insert position %d out of range: %w", pos, ErrNotValid)
	}
	if s.Phase != PhaseSetup && pos <= s.CurrentTaskIndex {
		return fmt.Errorf("can't insert before the current task: %w", ErrInvalidPhase)
	}
	task, err = e.prepareTask(task, pos)
	if err != nil {
		return err
	}

	s.Tasks = append(s.Tasks[:pos], append([]ProjectTask{task}, s.Tasks[pos:]...)...)
	if s.Phase == PhaseSetup {
		s.TimeLeft = s.Tasks[0].EstimatedMinutes * 60
	}
	s.LastTickAt = e.clock.Now()
	e.persist()
	return nil
}

// RemoveTask drops a task that has not been started or finalized yet.
func (e *Engine) RemoveTask(index int) error {
	s, err := e.active(PhaseSetup, PhaseRunning, PhaseBreak, PhaseOvertime, PhasePaused)
	if err != nil {
		return err
	}

	if index < 0 || index >= len(s.Tasks) {
		return fmt.Errorf("task index %d out of range: %w", index, ErrNotValid)
	}
	if s.Phase == PhaseSetup {
		if len(s.Tasks) == 1 {
			return fmt.Errorf("can't remove the only task: %w", ErrNotValid)
		}
	} else if index <= s.CurrentTaskIndex {
		return fmt.Errorf("task %d already started: %w", index, ErrInvalidPhase)
	}

	s.Tasks = append(s.Tasks[:index], s.Tasks[index+1:]...)
	if s.Phase == PhaseSetup {
		s.TimeLeft = s.Tasks[0].EstimatedMinutes * 60
	}
	s.LastTickAt = e.clock.Now()
	e.persist()
	return nil
}

// FinishProject closes a session in its summary and clears the store.
func (e *Engine) FinishProject() (ProjectRecord, error) {
	s, err := e.active(PhaseSummary)
	if err != nil {
		return ProjectRecord{}, err
	}

	record := newRecord(*s)
	e.session = nil
	e.clear()
	e.logger.Infof("Project %s finished", record.SessionID)
	return record, nil
}

// AbandonProject drops an unfinished session without recording anything.
func (e *Engine) AbandonProject() error {
	s, err := e.active(PhaseSetup, PhaseRunning, PhaseBreak, PhaseOvertime, PhasePaused)
	if err != nil {
		return err
	}

	e.session = nil
	e.clear()
	e.logger.Infof("Project %s abandoned", s.ID)
	return nil
}

// active returns the session if its phase is one of the allowed ones.
func (e *Engine) active(allowed ...Phase) (*Session, error) {
	if e.session == nil {
		return nil, ErrNoSession
	}
	for _, p := range allowed {
		if e.session.Phase == p {
			return e.session, nil
		}
	}
	e.logger.Debugf("Ignored operation in %s phase", e.session.Phase)
	return nil, fmt.Errorf("phase %s: %w", e.session.Phase, ErrInvalidPhase)
}

// persist writes the session after a mutation. Failures leave the in-memory
// session authoritative; the next successful write catches up.
func (e *Engine) persist() {
	data, err := Marshal(*e.session)
	if err != nil {
		e.logger.Errorf("could not serialize session: %s", err)
		return
	}
	if err := e.store.Set(data); err != nil {
		e.logger.Warningf("could not persist session: %s", err)
	}
}

func (e *Engine) clear() {
	e.unannounced = ""
	if err := e.store.Delete(); err != nil {
		e.logger.Warningf("could not delete saved session: %s", err)
	}
}

func (e *Engine) loadSaved() (Session, error) {
	data, err := e.store.Get()
	if err != nil {
		e.logger.Warningf("could not read saved session: %s", err)
		return Session{}, ErrNoSavedProject
	}
	s, err := Unmarshal(data)
	if err != nil {
		e.logger.Debugf("Ignoring saved session: %s", err)
		return Session{}, ErrNoSavedProject
	}
	return s, nil
}
