package store

import "time"

// Plan is a saved, reusable project definition.
type Plan struct {
	ID        int64
	Name      string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlanTask struct {
	ID               int64
	PlanID           int64
	Position         int
	Name             string
	EstimatedMinutes int
	BreakMinutes     int
}

// Run is a finished project.
type Run struct {
	ID               int64
	SessionID        string
	Name             string
	EstimatedSeconds int64
	ActualSeconds    int64
	StartedAt        time.Time
	CompletedAt      time.Time
	Results          []RunResult
}

type RunResult struct {
	ID               int64
	RunID            int64
	Position         int
	TaskID           string
	Name             string
	EstimatedMinutes int
	ActualSeconds    int64
	Status           string // completed, skipped
	CompletedAt      time.Time
}

type Setting struct {
	Key   string
	Value string
}

// RunFilter is used to filter runs in queries.
type RunFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// RunStats aggregates finished runs over a period.
type RunStats struct {
	Runs             int
	TasksCompleted   int
	TasksSkipped     int
	EstimatedSeconds int64
	ActualSeconds    int64
}
