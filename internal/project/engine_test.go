package project_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/sprintr/internal/project"
)

func TestScenarioOvertimeAndCompletion(t *testing.T) {
	h := startedHarness(t, tasks([2]int{25, 5}, [2]int{25, 5}, [2]int{25, 0}))

	h.tick(t, 1500)
	s := h.session(t)
	assert.Equal(t, project.PhaseOvertime, s.Phase)
	assert.Equal(t, 1500, s.ElapsedSeconds)
	assert.Equal(t, 0, s.TimeLeft)
	assert.Empty(t, s.Results)
	require.Len(t, h.listener.overtime, 1)
	assert.Equal(t, "task 1", h.listener.overtime[0].Name)

	require.NoError(t, h.engine.CompleteCurrentTask())
	s = h.session(t)
	require.Len(t, s.Results, 1)
	assert.Equal(t, 1500, s.Results[0].ActualSeconds)
	assert.Equal(t, project.ResultCompleted, s.Results[0].Status)
	assert.Equal(t, project.PhaseBreak, s.Phase)
	assert.Equal(t, 300, s.TimeLeft)
	assert.Len(t, h.listener.results, 1)
	assert.Empty(t, h.listener.records)
}

func TestSkipSingleTaskGoesToSummary(t *testing.T) {
	h := startedHarness(t, tasks([2]int{10, 5}))

	require.NoError(t, h.engine.SkipCurrentTask())
	s := h.session(t)
	assert.Equal(t, project.PhaseSummary, s.Phase)
	assert.Equal(t, 0, s.TimeLeft)
	assert.Equal(t, 0, s.CurrentTaskIndex)
	require.Len(t, s.Results, 1)
	assert.Equal(t, project.ResultSkipped, s.Results[0].Status)
	require.Len(t, h.listener.records, 1)
	assert.Equal(t, 600, h.listener.records[0].EstimatedSeconds)
}

func TestRemoveRunningTaskIsRejected(t *testing.T) {
	h := startedHarness(t, tasks([2]int{25, 5}, [2]int{25, 0}))
	h.tick(t, 10)
	before := h.session(t)
	sets := h.store.sets

	err := h.engine.RemoveTask(before.CurrentTaskIndex)
	assert.ErrorIs(t, err, project.ErrInvalidPhase)
	assert.Equal(t, before, h.session(t))
	assert.Equal(t, sets, h.store.sets)
}

func TestOvertimeKeepsCountingUntilCompleted(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 0}, [2]int{1, 0}))

	h.tick(t, 60+45)
	s := h.session(t)
	assert.Equal(t, project.PhaseOvertime, s.Phase)
	assert.Equal(t, 105, s.ElapsedSeconds)
	assert.Len(t, h.listener.overtime, 1, "overtime is notified once per task")

	v, ok := h.engine.View()
	require.True(t, ok)
	assert.True(t, v.Overtime)
	assert.True(t, v.ShowOvertimePrompt)
	assert.Equal(t, 45, v.TimeLeft)

	require.NoError(t, h.engine.ContinueOvertime())
	s = h.session(t)
	assert.True(t, s.OvertimeDismissed)
	assert.Equal(t, project.PhaseOvertime, s.Phase)
	v, _ = h.engine.View()
	assert.False(t, v.ShowOvertimePrompt)

	h.tick(t, 5)
	require.NoError(t, h.engine.CompleteCurrentTask())
	s = h.session(t)
	assert.Equal(t, 110, s.Results[0].ActualSeconds)
}

func TestZeroBreakResolvesOnNextTick(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 0}, [2]int{2, 0}))

	h.tick(t, 30)
	require.NoError(t, h.engine.CompleteCurrentTask())
	s := h.session(t)
	assert.Equal(t, project.PhaseBreak, s.Phase)
	assert.Equal(t, 0, s.TimeLeft)

	h.tick(t, 1)
	s = h.session(t)
	assert.Equal(t, project.PhaseRunning, s.Phase)
	assert.Equal(t, 1, s.CurrentTaskIndex)
	assert.Equal(t, 120, s.TimeLeft)
	assert.Equal(t, 0, s.ElapsedSeconds)
	assert.False(t, s.OvertimeDismissed)
}

func TestBreakEndsIntoNextTask(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 1}, [2]int{3, 0}))

	h.tick(t, 20)
	require.NoError(t, h.engine.CompleteCurrentTask())
	h.tick(t, 59)
	s := h.session(t)
	assert.Equal(t, project.PhaseBreak, s.Phase)
	assert.Equal(t, 1, s.TimeLeft)
	assert.Equal(t, 20, s.ElapsedSeconds, "elapsed is frozen during a break")

	h.tick(t, 1)
	s = h.session(t)
	assert.Equal(t, project.PhaseRunning, s.Phase)
	assert.Equal(t, 1, s.CurrentTaskIndex)
	assert.Equal(t, 180, s.TimeLeft)
}

func TestCompletingLastTaskSummarizes(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 1}, [2]int{2, 9}))

	h.tick(t, 40)
	require.NoError(t, h.engine.CompleteCurrentTask())
	h.tick(t, 60)
	h.tick(t, 150)
	require.NoError(t, h.engine.CompleteCurrentTask())

	s := h.session(t)
	assert.Equal(t, project.PhaseSummary, s.Phase)
	assert.Equal(t, 1, s.CurrentTaskIndex)
	assert.Equal(t, 0, s.TimeLeft, "no break after the last task")
	require.Len(t, h.listener.records, 1)
	rec := h.listener.records[0]
	assert.Equal(t, 180, rec.EstimatedSeconds)
	assert.Equal(t, 190, rec.ActualSeconds)
	assert.Equal(t, t0, rec.StartedAt)
	assert.Equal(t, h.clock.now, rec.CompletedAt)

	assert.ErrorIs(t, h.engine.Tick(), project.ErrInvalidPhase)

	finished, err := h.engine.FinishProject()
	require.NoError(t, err)
	assert.Equal(t, rec, finished)
	assert.Nil(t, h.store.data)
	_, ok := h.engine.Session()
	assert.False(t, ok)
}

func TestPauseResume(t *testing.T) {
	tests := map[string]struct {
		prepare  func(t *testing.T, h *harness)
		expPhase project.Phase
	}{
		"Pausing a running task resumes running": {
			prepare:  func(t *testing.T, h *harness) { h.tick(t, 10) },
			expPhase: project.PhaseRunning,
		},
		"Pausing a break resumes the break": {
			prepare: func(t *testing.T, h *harness) {
				h.tick(t, 10)
				require.NoError(t, h.engine.CompleteCurrentTask())
				h.tick(t, 3)
			},
			expPhase: project.PhaseBreak,
		},
		"Pausing overtime resumes overtime": {
			prepare:  func(t *testing.T, h *harness) { h.tick(t, 70) },
			expPhase: project.PhaseOvertime,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h := startedHarness(t, tasks([2]int{1, 1}, [2]int{1, 0}))
			test.prepare(t, h)

			before := h.session(t)
			require.NoError(t, h.engine.Pause())
			paused := h.session(t)
			assert.Equal(t, project.PhasePaused, paused.Phase)
			assert.False(t, h.engine.Live())
			assert.ErrorIs(t, h.engine.Tick(), project.ErrInvalidPhase)

			h.clock.Advance(10 * time.Minute)
			require.NoError(t, h.engine.Resume())
			resumed := h.session(t)
			assert.Equal(t, test.expPhase, resumed.Phase)
			assert.Equal(t, before.TimeLeft, resumed.TimeLeft)
			assert.Equal(t, before.ElapsedSeconds, resumed.ElapsedSeconds)
			assert.Equal(t, h.clock.now, resumed.LastTickAt)
		})
	}
}

func TestInvalidPhaseOperationsAreNoops(t *testing.T) {
	h := newHarness(t, nil)

	assert.ErrorIs(t, h.engine.StartProject(), project.ErrNoSession)
	assert.ErrorIs(t, h.engine.Tick(), project.ErrNoSession)
	_, err := h.engine.FinishProject()
	assert.ErrorIs(t, err, project.ErrNoSession)

	_, err = h.engine.CreateProject("Deep work", tasks([2]int{5, 1}, [2]int{5, 0}))
	require.NoError(t, err)
	before := h.session(t)

	assert.ErrorIs(t, h.engine.Pause(), project.ErrInvalidPhase)
	assert.ErrorIs(t, h.engine.Resume(), project.ErrInvalidPhase)
	assert.ErrorIs(t, h.engine.CompleteCurrentTask(), project.ErrInvalidPhase)
	assert.ErrorIs(t, h.engine.SkipCurrentTask(), project.ErrInvalidPhase)
	assert.ErrorIs(t, h.engine.ContinueOvertime(), project.ErrInvalidPhase)
	_, err = h.engine.FinishProject()
	assert.ErrorIs(t, err, project.ErrInvalidPhase)
	assert.Equal(t, before, h.session(t))

	require.NoError(t, h.engine.StartProject())
	assert.ErrorIs(t, h.engine.StartProject(), project.ErrInvalidPhase)
	assert.ErrorIs(t, h.engine.ContinueOvertime(), project.ErrInvalidPhase)
}

func TestCreateProject(t *testing.T) {
	tests := map[string]struct {
		name   string
		tasks  []project.ProjectTask
		expErr error
	}{
		"A valid project should be created": {
			name:  "Launch",
			tasks: tasks([2]int{25, 5}),
		},
		"A missing name should fail": {
			name:   "  ",
			tasks:  tasks([2]int{25, 5}),
			expErr: project.ErrNotValid,
		},
		"No tasks should fail": {
			name:   "Launch",
			expErr: project.ErrNotValid,
		},
		"A zero estimate should fail": {
			name:   "Launch",
			tasks:  tasks([2]int{25, 5}, [2]int{0, 0}),
			expErr: project.ErrNotValid,
		},
		"A negative break should fail": {
			name:   "Launch",
			tasks:  tasks([2]int{25, -1}),
			expErr: project.ErrNotValid,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			s, err := h.engine.CreateProject(test.name, test.tasks)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				_, ok := h.engine.Session()
				assert.False(t, ok)
				assert.Nil(t, h.store.data)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, project.PhaseSetup, s.Phase)
			assert.Equal(t, test.tasks[0].EstimatedMinutes*60, s.TimeLeft)
			assert.NotEmpty(t, s.ID)
			for _, task := range s.Tasks {
				assert.NotEmpty(t, task.ID)
			}
			assert.Equal(t, s, h.store.saved(t))
		})
	}
}

func TestCreateProjectWhileActiveIsRejected(t *testing.T) {
	h := startedHarness(t, tasks([2]int{25, 5}))
	before := h.session(t)

	_, err := h.engine.CreateProject("Other", tasks([2]int{5, 0}))
	assert.ErrorIs(t, err, project.ErrActiveProject)
	assert.Equal(t, before, h.session(t))
}

func TestTaskNamesDefaultToPosition(t *testing.T) {
	h := newHarness(t, nil)
	s, err := h.engine.CreateProject("P", []project.ProjectTask{{EstimatedMinutes: 5}, {Name: " Review ", EstimatedMinutes: 5}})
	require.NoError(t, err)
	assert.Equal(t, "Task 1", s.Tasks[0].Name)
	assert.Equal(t, "Review", s.Tasks[1].Name)
}

func TestInsertTask(t *testing.T) {
	newTask := project.ProjectTask{Name: "new", EstimatedMinutes: 7, BreakMinutes: 2}

	tests := map[string]struct {
		started    bool
		prepare    func(t *testing.T, h *harness)
		afterIndex int
		expErr     error
		expNames   []string
	}{
		"Inserting at the front during setup should work": {
			afterIndex: -1,
			expNames:   []string{"new", "task 1", "task 2"},
		},
		"Inserting at the end during setup should work": {
			afterIndex: 1,
			expNames:   []string{"task 1", "task 2", "new"},
		},
		"Inserting out of range should fail": {
			afterIndex: 2,
			expErr:     project.ErrNotValid,
		},
		"Inserting after the running task should work": {
			started:    true,
			afterIndex: 0,
			expNames:   []string{"task 1", "new", "task 2"},
		},
		"Inserting before the running task should fail": {
			started:    true,
			afterIndex: -1,
			expErr:     project.ErrInvalidPhase,
		},
		"Inserting right after a finished task during its break should work": {
			started: true,
			prepare: func(t *testing.T, h *harness) {
				require.NoError(t, h.engine.CompleteCurrentTask())
			},
			afterIndex: 0,
			expNames:   []string{"task 1", "new", "task 2"},
		},
		"Inserting in summary should fail": {
			started: true,
			prepare: func(t *testing.T, h *harness) {
				require.NoError(t, h.engine.SkipCurrentTask())
				h.tick(t, 60)
				require.NoError(t, h.engine.SkipCurrentTask())
			},
			afterIndex: 1,
			expErr:     project.ErrInvalidPhase,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			_, err := h.engine.CreateProject("P", tasks([2]int{10, 1}, [2]int{10, 0}))
			require.NoError(t, err)
			if test.started {
				require.NoError(t, h.engine.StartProject())
			}
			if test.prepare != nil {
				test.prepare(t, h)
			}
			before := h.session(t)

			err = h.engine.InsertTask(test.afterIndex, newTask)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				assert.Equal(t, before, h.session(t))
				return
			}

			require.NoError(t, err)
			s := h.session(t)
			var names []string
			for _, task := range s.Tasks {
				names = append(names, task.Name)
			}
			assert.Equal(t, test.expNames, names)
			if s.Phase == project.PhaseSetup {
				assert.Equal(t, s.Tasks[0].EstimatedMinutes*60, s.TimeLeft)
			}
		})
	}
}

func TestRemoveTask(t *testing.T) {
	tests := map[string]struct {
		started  bool
		prepare  func(t *testing.T, h *harness)
		index    int
		expErr   error
		expNames []string
	}{
		"Removing during setup should work": {
			index:    0,
			expNames: []string{"task 2", "task 3"},
		},
		"Removing out of range should fail": {
			index:  3,
			expErr: project.ErrNotValid,
		},
		"Removing a pending task while running should work": {
			started:  true,
			index:    2,
			expNames: []string{"task 1", "task 2"},
		},
		"Removing the task in overtime should fail": {
			started: true,
			prepare: func(t *testing.T, h *harness) { h.tick(t, 600) },
			index:   0,
			expErr:  project.ErrInvalidPhase,
		},
		"Removing the paused task should fail": {
			started: true,
			prepare: func(t *testing.T, h *harness) { require.NoError(t, h.engine.Pause()) },
			index:   0,
			expErr:  project.ErrInvalidPhase,
		},
		"Removing a finished task should fail": {
			started: true,
			prepare: func(t *testing.T, h *harness) { require.NoError(t, h.engine.CompleteCurrentTask()) },
			index:   0,
			expErr:  project.ErrInvalidPhase,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			_, err := h.engine.CreateProject("P", tasks([2]int{10, 1}, [2]int{20, 1}, [2]int{30, 0}))
			require.NoError(t, err)
			if test.started {
				require.NoError(t, h.engine.StartProject())
			}
			if test.prepare != nil {
				test.prepare(t, h)
			}
			before := h.session(t)

			err = h.engine.RemoveTask(test.index)
			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
				assert.Equal(t, before, h.session(t))
				return
			}

			require.NoError(t, err)
			var names []string
			for _, task := range h.session(t).Tasks {
				names = append(names, task.Name)
			}
			assert.Equal(t, test.expNames, names)
		})
	}
}

func TestRemoveOnlyTaskInSetupFails(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.engine.CreateProject("P", tasks([2]int{10, 1}))
	require.NoError(t, err)
	assert.ErrorIs(t, h.engine.RemoveTask(0), project.ErrNotValid)
}

func TestRemovingTailDuringBreakEndsInSummary(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 1}, [2]int{1, 0}))
	h.tick(t, 30)
	require.NoError(t, h.engine.CompleteCurrentTask())
	require.NoError(t, h.engine.RemoveTask(1))

	h.tick(t, 60)
	s := h.session(t)
	assert.Equal(t, project.PhaseSummary, s.Phase)
	assert.Equal(t, 0, s.CurrentTaskIndex)
	assert.Len(t, h.listener.records, 1)
}

func TestAbandonProject(t *testing.T) {
	h := startedHarness(t, tasks([2]int{25, 5}, [2]int{25, 0}))
	h.tick(t, 100)
	require.NoError(t, h.engine.CompleteCurrentTask())

	require.NoError(t, h.engine.AbandonProject())
	assert.Nil(t, h.store.data)
	_, ok := h.engine.Session()
	assert.False(t, ok)
	assert.Empty(t, h.listener.records)
	assert.ErrorIs(t, h.engine.AbandonProject(), project.ErrNoSession)

	_, err := h.engine.CreateProject("Next", tasks([2]int{5, 0}))
	assert.NoError(t, err)
}

func TestAbandonInSummaryIsRejected(t *testing.T) {
	h := startedHarness(t, tasks([2]int{25, 5}))
	require.NoError(t, h.engine.CompleteCurrentTask())
	assert.ErrorIs(t, h.engine.AbandonProject(), project.ErrInvalidPhase)
	assert.NotNil(t, h.store.data)
}

func TestEveryMutationIsPersisted(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 1}, [2]int{1, 0}))
	h.tick(t, 3)
	assert.Equal(t, h.session(t), h.store.saved(t))

	require.NoError(t, h.engine.Pause())
	assert.Equal(t, h.session(t), h.store.saved(t))

	require.NoError(t, h.engine.Resume())
	require.NoError(t, h.engine.CompleteCurrentTask())
	assert.Equal(t, h.session(t), h.store.saved(t))
}

func TestStoreWriteFailureKeepsMemoryState(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 1}, [2]int{1, 0}))
	h.tick(t, 2)
	h.store.setErr = errBoom

	h.tick(t, 5)
	s := h.session(t)
	assert.Equal(t, 7, s.ElapsedSeconds)
	assert.Equal(t, 2, h.store.saved(t).ElapsedSeconds)

	h.store.setErr = nil
	h.tick(t, 1)
	assert.Equal(t, 8, h.store.saved(t).ElapsedSeconds)
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for run := 0; run < 20; run++ {
		h := startedHarness(t, tasks([2]int{1, 1}, [2]int{2, 0}, [2]int{1, 1}, [2]int{1, 0}))
		prev := h.session(t)

		for step := 0; step < 400; step++ {
			switch rnd.Intn(12) {
			case 0:
				_ = h.engine.Pause()
			case 1:
				_ = h.engine.Resume()
			case 2:
				_ = h.engine.CompleteCurrentTask()
			case 3:
				_ = h.engine.SkipCurrentTask()
			case 4:
				_ = h.engine.ContinueOvertime()
			case 5:
				_ = h.engine.RemoveTask(rnd.Intn(5))
			case 6:
				_ = h.engine.InsertTask(rnd.Intn(5)-1, project.ProjectTask{EstimatedMinutes: 1, BreakMinutes: rnd.Intn(2)})
			default:
				h.clock.Advance(time.Second)
				_ = h.engine.Tick()
			}

			s, ok := h.engine.Session()
			require.True(t, ok)

			if s.Phase != project.PhaseSummary {
				require.GreaterOrEqual(t, s.CurrentTaskIndex, 0)
				require.Less(t, s.CurrentTaskIndex, len(s.Tasks))
			} else {
				require.Equal(t, len(s.Tasks)-1, s.CurrentTaskIndex)
			}
			switch s.Phase {
			case project.PhaseRunning, project.PhaseOvertime:
				require.Len(t, s.Results, s.CurrentTaskIndex)
			case project.PhaseBreak:
				require.Len(t, s.Results, s.CurrentTaskIndex+1)
			}

			sameTask := s.CurrentTaskIndex == prev.CurrentTaskIndex && len(s.Results) == len(prev.Results)
			if sameTask {
				require.GreaterOrEqual(t, s.ElapsedSeconds, prev.ElapsedSeconds)
			}
			if !prev.Phase.Live() && s.Phase == prev.Phase {
				require.Equal(t, prev.ElapsedSeconds, s.ElapsedSeconds, "elapsed is frozen outside live phases")
			}
			prev = s
			if s.Phase == project.PhaseSummary {
				break
			}
		}
	}
}
