package project

import "time"

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the real time in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// StateStore persists exactly one serialized session record.
// Get returns nil data and no error when nothing is stored.
type StateStore interface {
	Get() ([]byte, error)
	Set(data []byte) error
	Delete() error
}
