package project

// CompleteCurrentTask finalizes the current task as completed.
func (e *Engine) CompleteCurrentTask() error {
	return e.finalizeCurrentTask(ResultCompleted)
}

// SkipCurrentTask finalizes the current task as skipped.
func (e *Engine) SkipCurrentTask() error {
	return e.finalizeCurrentTask(ResultSkipped)
}

// finalizeCurrentTask records the current task with the time actually spent on
// it, overtime included, and moves to its break or to the summary.
func (e *Engine) finalizeCurrentTask(status ResultStatus) error {
	s, err := e.active(PhaseRunning, PhaseOvertime)
	if err != nil {
		return err
	}

	now := e.clock.Now()
	task := s.CurrentTask()
	result := ProjectTaskResult{
		TaskID:           task.ID,
		Name:             task.Name,
		EstimatedMinutes: task.EstimatedMinutes,
		ActualSeconds:    s.ElapsedSeconds,
		Status:           status,
		CompletedAt:      now,
	}
	s.Results = append(s.Results, result)
	s.LastTickAt = now

	last := s.CurrentTaskIndex+1 == len(s.Tasks)
	if last {
		s.Phase = PhaseSummary
		s.TimeLeft = 0
	} else {
		s.Phase = PhaseBreak
		s.TimeLeft = task.BreakMinutes * 60
	}
	e.persist()
	e.logger.Debugf("Task %s %s after %ds", task.ID, status, result.ActualSeconds)

	e.listener.OnTaskComplete(result)
	if last {
		e.listener.OnProjectComplete(newRecord(*s))
	}
	return nil
}
