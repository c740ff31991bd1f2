package project

// Tick advances the live session by one second. Zero crossings are resolved
// in the same tick that produced them.
func (e *Engine) Tick() error {
	s, err := e.active(PhaseRunning, PhaseBreak, PhaseOvertime)
	if err != nil {
		return err
	}

	s.LastTickAt = e.clock.Now()
	var overtime, completed bool
	switch s.Phase {
	case PhaseRunning:
		s.TimeLeft--
		s.ElapsedSeconds++
		if s.TimeLeft <= 0 {
			s.enterOvertime()
			overtime = true
		}
	case PhaseOvertime:
		s.ElapsedSeconds++
	case PhaseBreak:
		if s.TimeLeft > 0 {
			s.TimeLeft--
		}
		if s.TimeLeft == 0 {
			s.advanceTask()
			completed = s.Phase == PhaseSummary
		}
	}
	e.persist()

	if overtime {
		e.logger.Debugf("Task %s entered overtime", s.CurrentTask().ID)
		e.listener.OnOvertime(s.CurrentTask())
	}
	if completed {
		e.listener.OnProjectComplete(newRecord(*s))
	}
	return nil
}

func (s *Session) enterOvertime() {
	s.TimeLeft = 0
	s.Phase = PhaseOvertime
	s.OvertimeDismissed = false
}

// advanceTask ends a break: the next task starts, or the project is summarized
// when there is none.
func (s *Session) advanceTask() {
	next := s.CurrentTaskIndex + 1
	if next >= len(s.Tasks) {
		s.Phase = PhaseSummary
		s.TimeLeft = 0
		return
	}
	s.CurrentTaskIndex = next
	s.ElapsedSeconds = 0
	s.TimeLeft = s.Tasks[next].EstimatedMinutes * 60
	s.OvertimeDismissed = false
	s.Phase = PhaseRunning
}
