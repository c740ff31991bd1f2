package project

import (
	"time"
)

// RecoverProject loads the saved session and catches it up with the time that
// passed since its last mutation. The result is never live: a session that
// was counting comes back paused and waits for an explicit Resume. A task that
// ran over its estimate while away gets its overtime announced on that Resume.
func (e *Engine) RecoverProject() (Session, error) {
	if !e.hasSaved {
		return Session{}, ErrNoSavedProject
	}
	e.hasSaved = false

	saved, err := e.loadSaved()
	if err != nil {
		return Session{}, err
	}

	s := Reconcile(saved, e.clock.Now())
	e.session = &s
	if crossedEstimate(saved, s) {
		e.unannounced = s.CurrentTask().ID
	}
	e.persist()
	e.logger.Infof("Recovered project %s: %s -> %s", s.ID, saved.Phase, s.Phase)

	if saved.Phase != PhaseSummary && s.Phase == PhaseSummary {
		e.listener.OnProjectComplete(newRecord(s))
	}
	return s.clone(), nil
}

// crossedEstimate tells if the recovered task went into overtime during the
// gap, so its overtime was never announced.
func crossedEstimate(saved, recovered Session) bool {
	if recovered.underlyingPhase() != PhaseOvertime {
		return false
	}
	return saved.underlyingPhase() != PhaseOvertime || saved.CurrentTaskIndex != recovered.CurrentTaskIndex
}

// DiscardSavedProject drops the saved session without loading it.
func (e *Engine) DiscardSavedProject() error {
	if !e.hasSaved {
		return ErrNoSavedProject
	}
	e.hasSaved = false
	e.clear()
	e.logger.Infof("Saved project discarded")
	return nil
}

// Reconcile replays the whole seconds between s.LastTickAt and now onto s,
// following the same transitions a live tick sequence would take, across as
// many break and task boundaries as the gap spans. A result that would still
// be counting is returned paused; the work/break distinction survives through
// the recorded results. Setup, paused and summary sessions are returned
// unchanged.
func Reconcile(s Session, now time.Time) Session {
	s = s.clone()
	if !s.Phase.Live() {
		return s
	}

	gap := int(now.Sub(s.LastTickAt) / time.Second)
	if gap < 0 {
		gap = 0
	}
	s.replay(gap)
	s.LastTickAt = now

	if s.Phase.Live() {
		s.Phase = PhasePaused
	}
	return s
}

func (s *Session) replay(gap int) {
	for {
		switch s.Phase {
		case PhaseRunning:
			s.ElapsedSeconds += gap
			if gap < s.TimeLeft {
				s.TimeLeft -= gap
				return
			}
			s.enterOvertime()
			return
		case PhaseOvertime:
			s.ElapsedSeconds += gap
			return
		case PhaseBreak:
			// An empty break still takes the one tick that resolves it.
			cost := s.TimeLeft
			if cost == 0 {
				cost = 1
			}
			if gap < cost {
				s.TimeLeft -= gap
				return
			}
			gap -= cost
			s.TimeLeft = 0
			s.advanceTask()
		default:
			return
		}
	}
}
