package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// tickMsg carries the generation of the schedule that produced it. Ticks from
// an older generation are stale and dropped.
type tickMsg struct {
	gen int
	at  time.Time
}

// scheduler keeps at most one pending one-second tick. Every start or stop
// bumps the generation so a tick already in flight can't drive the engine
// twice.
type scheduler struct {
	interval time.Duration
	gen      int
	armed    bool
}

func newScheduler() scheduler {
	return scheduler{interval: time.Second}
}

// sync arms or disarms the schedule to match whether the session is live.
func (s *scheduler) sync(live bool) tea.Cmd {
	switch {
	case live && !s.armed:
		s.armed = true
		s.gen++
		return s.next()
	case !live && s.armed:
		s.armed = false
		s.gen++
	}
	return nil
}

// accept reports whether msg belongs to the current schedule.
func (s *scheduler) accept(msg tickMsg) bool {
	return s.armed && msg.gen == s.gen
}

// rearm schedules the following tick after an accepted one.
func (s *scheduler) rearm(live bool) tea.Cmd {
	if !live {
		s.armed = false
		s.gen++
		return nil
	}
	return s.next()
}

func (s scheduler) next() tea.Cmd {
	gen := s.gen
	return tea.Tick(s.interval, func(t time.Time) tea.Msg {
		return tickMsg{gen: gen, at: t}
	})
}
