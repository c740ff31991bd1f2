package project_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sadopc/sprintr/internal/project"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type memStore struct {
	data   []byte
	sets   int
	setErr error
}

func (m *memStore) Get() ([]byte, error) {
	if m.data == nil {
		return nil, nil
	}
	return append([]byte{}, m.data...), nil
}

func (m *memStore) Set(data []byte) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data = append([]byte{}, data...)
	return nil
}

func (m *memStore) Delete() error {
	m.data = nil
	return nil
}

func (m *memStore) saved(t *testing.T) project.Session {
	t.Helper()
	s, err := project.Unmarshal(m.data)
	require.NoError(t, err)
	return s
}

type recListener struct {
	results  []project.ProjectTaskResult
	records  []project.ProjectRecord
	overtime []project.ProjectTask
}

func (l *recListener) OnTaskComplete(r project.ProjectTaskResult) { l.results = append(l.results, r) }
func (l *recListener) OnProjectComplete(r project.ProjectRecord)  { l.records = append(l.records, r) }
func (l *recListener) OnOvertime(t project.ProjectTask)           { l.overtime = append(l.overtime, t) }

type harness struct {
	engine   *project.Engine
	clock    *fakeClock
	store    *memStore
	listener *recListener
}

func newHarness(t *testing.T, store *memStore) *harness {
	t.Helper()
	if store == nil {
		store = &memStore{}
	}
	h := &harness{
		clock:    &fakeClock{now: t0},
		store:    store,
		listener: &recListener{},
	}
	n := 0
	e, err := project.NewEngine(project.EngineConfig{
		Store:    h.store,
		Clock:    h.clock,
		Listener: h.listener,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	require.NoError(t, err)
	h.engine = e
	return h
}

// tick advances the clock and the engine n seconds.
func (h *harness) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		h.clock.Advance(time.Second)
		require.NoError(t, h.engine.Tick())
	}
}

func (h *harness) session(t *testing.T) project.Session {
	t.Helper()
	s, ok := h.engine.Session()
	require.True(t, ok, "expected an active session")
	return s
}

func tasks(specs ...[2]int) []project.ProjectTask {
	ts := make([]project.ProjectTask, 0, len(specs))
	for i, sp := range specs {
		ts = append(ts, project.ProjectTask{
			Name:             fmt.Sprintf("task %d", i+1),
			EstimatedMinutes: sp[0],
			BreakMinutes:     sp[1],
		})
	}
	return ts
}

func startedHarness(t *testing.T, ts []project.ProjectTask) *harness {
	t.Helper()
	h := newHarness(t, nil)
	_, err := h.engine.CreateProject("Write report", ts)
	require.NoError(t, err)
	require.NoError(t, h.engine.StartProject())
	return h
}

var errBoom = errors.New("boom")
