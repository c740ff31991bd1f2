package project_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/sprintr/internal/project"
)

func TestMarshalRoundTripEveryPhase(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.engine.CreateProject("Round trip", tasks([2]int{1, 1}, [2]int{1, 0}))
	require.NoError(t, err)

	check := func(exp project.Phase) {
		t.Helper()
		s := h.session(t)
		require.Equal(t, exp, s.Phase)
		data, err := project.Marshal(s)
		require.NoError(t, err)
		got, err := project.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	check(project.PhaseSetup)
	require.NoError(t, h.engine.StartProject())
	h.tick(t, 5)
	check(project.PhaseRunning)
	require.NoError(t, h.engine.Pause())
	check(project.PhasePaused)
	require.NoError(t, h.engine.Resume())
	h.tick(t, 60)
	check(project.PhaseOvertime)
	require.NoError(t, h.engine.ContinueOvertime())
	check(project.PhaseOvertime)
	require.NoError(t, h.engine.CompleteCurrentTask())
	check(project.PhaseBreak)
	h.tick(t, 60)
	require.NoError(t, h.engine.SkipCurrentTask())
	check(project.PhaseSummary)
}

func TestMarshalFieldNames(t *testing.T) {
	h := startedHarness(t, tasks([2]int{1, 1}, [2]int{1, 0}))
	require.NoError(t, h.engine.CompleteCurrentTask())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(h.store.data, &raw))
	for _, k := range []string{"id", "name", "tasks", "results", "currentTaskIndex", "phase", "timeLeft",
		"elapsedSeconds", "overtimeDismissed", "lastTickAt", "startedAt"} {
		assert.Contains(t, raw, k)
	}

	task := raw["tasks"].([]any)[0].(map[string]any)
	for _, k := range []string{"id", "name", "estimatedMinutes", "breakMinutes"} {
		assert.Contains(t, task, k)
	}
	result := raw["results"].([]any)[0].(map[string]any)
	for _, k := range []string{"taskId", "name", "estimatedMinutes", "actualSeconds", "status", "completedAt"} {
		assert.Contains(t, result, k)
	}
	assert.Equal(t, "break", raw["phase"])
	assert.Equal(t, "completed", result["status"])
}

func TestUnmarshalRejectsBrokenInvariants(t *testing.T) {
	tests := map[string]string{
		"Running with a result for the current task": `{"tasks":[{"id":"a","name":"a","estimatedMinutes":5},{"id":"b","name":"b","estimatedMinutes":5}],
			"results":[{"taskId":"a","status":"completed"}],"currentTaskIndex":0,"phase":"running","timeLeft":10}`,
		"Break without result": `{"tasks":[{"id":"a","name":"a","estimatedMinutes":5},{"id":"b","name":"b","estimatedMinutes":5}],
			"results":[],"currentTaskIndex":0,"phase":"break","timeLeft":10}`,
		"Summary before the last task": `{"tasks":[{"id":"a","name":"a","estimatedMinutes":5},{"id":"b","name":"b","estimatedMinutes":5}],
			"results":[{"taskId":"a","status":"completed"}],"currentTaskIndex":0,"phase":"summary"}`,
		"Negative time left": `{"tasks":[{"id":"a","name":"a","estimatedMinutes":5}],"results":[],"phase":"running","timeLeft":-1}`,
		"No tasks":           `{"tasks":[],"results":[],"phase":"setup"}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := project.Unmarshal([]byte(data))
			assert.ErrorIs(t, err, project.ErrNotValid)
		})
	}
}
